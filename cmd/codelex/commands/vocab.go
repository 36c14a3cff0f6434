package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codelex/pkg/persist"
	"github.com/Sumatoshi-tech/codelex/pkg/pipeline"
)

// Vocabulary output formats.
const (
	vocabFormatCSV   = "csv"
	vocabFormatTable = "table"
)

// VocabCommand holds the flags of the vocab command.
type VocabCommand struct {
	global *globalOptions
	output string
	format string
}

func newVocabCommand(global *globalOptions) *cobra.Command {
	vc := &VocabCommand{global: global}

	cmd := &cobra.Command{
		Use:   "vocab [archive-dir]",
		Short: "Score documentation/code vocabulary overlap",
		Long: `Compute the Jaccard similarity between the documentation vocabulary (README
files, docstrings, comments) and the code vocabulary (identifiers) of every
archive in archive-dir.

Examples:
  codelex vocab ../zipped_repos
  codelex vocab repos -o scores.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: vc.run,
	}

	cmd.Flags().StringVarP(&vc.output, "output", "o", "", "CSV output file (default from config; - for stdout)")
	cmd.Flags().StringVar(&vc.format, "format", vocabFormatTable, "stdout format: csv, table")

	return cmd
}

func (vc *VocabCommand) run(cmd *cobra.Command, args []string) error {
	if vc.format != vocabFormatCSV && vc.format != vocabFormatTable {
		return fmt.Errorf("%w: %q", persist.ErrUnknownFormat, vc.format)
	}

	rt, err := vc.global.setup(cmd)
	if err != nil {
		return err
	}
	defer rt.close(cmd.Context())

	if cmd.Flags().Changed("output") {
		rt.cfg.Output.VocabCSV = vc.output
	}

	pl, err := rt.newPipeline(false)
	if err != nil {
		return err
	}

	rows, err := pl.RunVocabBatch(cmd.Context(), rt.archiveDir(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if path := rt.cfg.Output.VocabCSV; path != "" && path != "-" {
		if err := writeVocabCSVFile(path, rows); err != nil {
			return err
		}

		if !vc.global.quiet {
			color.New(color.FgGreen).Fprintf(out, "Scored %d repositories, results saved to %s\n", len(rows), path)
		}
	}

	if vc.global.quiet && rt.cfg.Output.VocabCSV != "-" {
		return nil
	}

	if vc.format == vocabFormatCSV || rt.cfg.Output.VocabCSV == "-" {
		return writeVocabCSV(out, rows)
	}

	renderVocabTable(out, rows)

	return nil
}

func writeVocabCSV(w io.Writer, rows []pipeline.VocabRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}

	return persist.WriteCSV(w, pipeline.VocabHeader, records)
}

func writeVocabCSVFile(path string, rows []pipeline.VocabRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	writeErr := writeVocabCSV(file, rows)
	closeErr := file.Close()

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", path, closeErr)
	}

	return nil
}
