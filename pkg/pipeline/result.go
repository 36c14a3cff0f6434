package pipeline

import (
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/naming"
)

// RepositoryMetrics is the metrics record of one repository.
type RepositoryMetrics struct {
	CyclomaticComplexityAvg float64      `json:"cyclomatic_complexity_avg" yaml:"cyclomatic_complexity_avg"`
	MaintainabilityIndexAvg float64      `json:"maintainability_index_avg" yaml:"maintainability_index_avg"`
	NamingStats             naming.Stats `json:"naming_stats"              yaml:"naming_stats"`
	PylintWarningCount      int          `json:"pylint_warning_count"      yaml:"pylint_warning_count"`
	CommentDensityAvg       float64      `json:"comment_density_avg"       yaml:"comment_density_avg"`
	ReadabilityScoreAvg     float64      `json:"readability_score_avg"     yaml:"readability_score_avg"`

	// SharedVocabScore is set only when the vocabulary score was requested.
	SharedVocabScore *float64 `json:"shared_vocab_score,omitempty" yaml:"shared_vocab_score,omitempty"`
}

// BatchResult maps repository names to their record. A nil record marks a
// repository without analyzable files; archives that failed extraction have
// no key.
type BatchResult map[string]*RepositoryMetrics

// Names returns the repository names in sorted order.
func (b BatchResult) Names() []string {
	return slices.Sorted(maps.Keys(b))
}

// Row is the flattened record of one repository in the Parquet dataset.
type Row struct {
	Repository              string   `parquet:"repository"`
	CyclomaticComplexityAvg float64  `parquet:"cyclomatic_complexity_avg"`
	MaintainabilityIndexAvg float64  `parquet:"maintainability_index_avg"`
	SnakeCase               int64    `parquet:"snake_case"`
	CamelCase               int64    `parquet:"camel_case"`
	PascalCase              int64    `parquet:"pascal_case"`
	NamingEntropy           float64  `parquet:"naming_entropy"`
	NamingStdDev            float64  `parquet:"naming_std_dev"`
	PylintWarningCount      int64    `parquet:"pylint_warning_count"`
	CommentDensityAvg       float64  `parquet:"comment_density_avg"`
	ReadabilityScoreAvg     float64  `parquet:"readability_score_avg"`
	SharedVocabScore        *float64 `parquet:"shared_vocab_score,optional"`
}

// Rows flattens the present records in name order. Repositories without a
// record are left out.
func (b BatchResult) Rows() []Row {
	rows := make([]Row, 0, len(b))

	for _, name := range b.Names() {
		m := b[name]
		if m == nil {
			continue
		}

		rows = append(rows, Row{
			Repository:              name,
			CyclomaticComplexityAvg: m.CyclomaticComplexityAvg,
			MaintainabilityIndexAvg: m.MaintainabilityIndexAvg,
			SnakeCase:               int64(m.NamingStats.SnakeCase),
			CamelCase:               int64(m.NamingStats.CamelCase),
			PascalCase:              int64(m.NamingStats.PascalCase),
			NamingEntropy:           m.NamingStats.Entropy,
			NamingStdDev:            m.NamingStats.StdDev,
			PylintWarningCount:      int64(m.PylintWarningCount),
			CommentDensityAvg:       m.CommentDensityAvg,
			ReadabilityScoreAvg:     m.ReadabilityScoreAvg,
			SharedVocabScore:        m.SharedVocabScore,
		})
	}

	return rows
}

// Diagnostics describes how a repository analysis went. It is reported
// through logs and telemetry and never serialized with the result.
type Diagnostics struct {
	Files    int
	Degraded map[string]int
	Duration time.Duration
}

// DegradedTotal returns the number of degraded per-file metrics.
func (d Diagnostics) DegradedTotal() int {
	total := 0

	for _, n := range d.Degraded {
		total += n
	}

	return total
}

// VocabRow is the vocabulary score of one repository.
type VocabRow struct {
	Repository string
	Score      float64
}

// VocabHeader is the CSV header of vocabulary rows.
var VocabHeader = []string{"repository", "shared_vocab_score"}

// Record returns the row as CSV fields.
func (r VocabRow) Record() []string {
	return []string{r.Repository, strconv.FormatFloat(r.Score, 'f', -1, 64)}
}
