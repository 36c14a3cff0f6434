// Package naming classifies identifiers by naming convention and summarizes
// how consistently a repository uses them.
package naming

import (
	"regexp"

	"github.com/Sumatoshi-tech/codelex/pkg/alg/stats"
)

// Style is the naming convention an identifier follows.
type Style int

// Naming styles. Unclassified identifiers count toward the total only.
const (
	Unclassified Style = iota
	SnakeCase
	CamelCase
	PascalCase
)

// String returns the bucket name used in serialized statistics.
func (s Style) String() string {
	switch s {
	case SnakeCase:
		return "snake_case"
	case CamelCase:
		return "camel_case"
	case PascalCase:
		return "pascal_case"
	case Unclassified:
		return "unclassified"
	}

	return "unclassified"
}

var (
	snakeCaseRe  = regexp.MustCompile(`^[a-z]+(_[a-z0-9]+)*$`)
	camelCaseRe  = regexp.MustCompile(`^[a-z]+([A-Z][a-z0-9]*)+$`)
	pascalCaseRe = regexp.MustCompile(`^[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]+)*$`)
)

// Classify returns the first style whose pattern matches id, checking
// snake_case, then camelCase, then PascalCase.
func Classify(id string) Style {
	switch {
	case snakeCaseRe.MatchString(id):
		return SnakeCase
	case camelCaseRe.MatchString(id):
		return CamelCase
	case pascalCaseRe.MatchString(id):
		return PascalCase
	default:
		return Unclassified
	}
}

// Stats summarizes the naming styles of an identifier sequence.
type Stats struct {
	SnakeCase  int     `json:"snake_case"  yaml:"snake_case"`
	CamelCase  int     `json:"camel_case"  yaml:"camel_case"`
	PascalCase int     `json:"pascal_case" yaml:"pascal_case"`
	Entropy    float64 `json:"entropy"     yaml:"entropy"`
	StdDev     float64 `json:"std_dev"     yaml:"std_dev"`

	// Total counts every identifier, classified or not.
	Total int `json:"-" yaml:"-"`
}

// Compute classifies every identifier (duplicates included) and derives the
// Shannon entropy of the bucket distribution and the population standard
// deviation of the three bucket counts. An empty input yields all zeros.
func Compute(ids []string) Stats {
	var st Stats

	for _, id := range ids {
		st.Total++

		switch Classify(id) {
		case SnakeCase:
			st.SnakeCase++
		case CamelCase:
			st.CamelCase++
		case PascalCase:
			st.PascalCase++
		case Unclassified:
		}
	}

	if st.Total == 0 {
		return st
	}

	counts := []int{st.SnakeCase, st.CamelCase, st.PascalCase}
	st.Entropy = stats.EntropyOver(counts, st.Total)
	_, st.StdDev = stats.MeanStdDev(stats.Float64s(counts))

	return st
}
