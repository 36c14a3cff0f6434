package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/codelex/pkg/pipeline"
)

const noValue = "-"

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// renderBatchTable prints one row per repository. Repositories without
// source files show dashes.
func renderBatchTable(w io.Writer, result pipeline.BatchResult) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{
		"Repository", "CC", "MI", "snake", "camel", "Pascal", "Entropy", "Std", "Warnings", "Density", "Readability", "Vocab",
	})

	rightAligned := make([]table.ColumnConfig, 0, 11)
	for col := 2; col <= 12; col++ {
		rightAligned = append(rightAligned, table.ColumnConfig{Number: col, Align: text.AlignRight})
	}

	tbl.SetColumnConfigs(rightAligned)

	for _, name := range result.Names() {
		m := result[name]
		if m == nil {
			tbl.AppendRow(table.Row{
				name, noValue, noValue, noValue, noValue, noValue, noValue, noValue, noValue, noValue, noValue, noValue,
			})

			continue
		}

		vocab := noValue
		if m.SharedVocabScore != nil {
			vocab = strconv.FormatFloat(*m.SharedVocabScore, 'f', 4, 64)
		}

		tbl.AppendRow(table.Row{
			name,
			formatFloat(m.CyclomaticComplexityAvg),
			formatFloat(m.MaintainabilityIndexAvg),
			m.NamingStats.SnakeCase,
			m.NamingStats.CamelCase,
			m.NamingStats.PascalCase,
			formatFloat(m.NamingStats.Entropy),
			formatFloat(m.NamingStats.StdDev),
			m.PylintWarningCount,
			formatFloat(m.CommentDensityAvg),
			formatFloat(m.ReadabilityScoreAvg),
			vocab,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d repositories", len(result))})
	tbl.Render()
}

func renderVocabTable(w io.Writer, rows []pipeline.VocabRow) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Repository", "Jaccard Score"})
	tbl.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	for _, row := range rows {
		tbl.AppendRow(table.Row{row.Repository, strconv.FormatFloat(row.Score, 'f', 4, 64)})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d repositories", len(rows))})
	tbl.Render()
}
