package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codelex/pkg/persist"
)

// MetricsCommand holds the flags of the metrics command.
type MetricsCommand struct {
	global  *globalOptions
	output  string
	format  string
	parquet string
	vocab   bool
	table   bool
}

func newMetricsCommand(global *globalOptions) *cobra.Command {
	mc := &MetricsCommand{global: global}

	cmd := &cobra.Command{
		Use:   "metrics [archive-dir]",
		Short: "Compute per-repository code metrics",
		Long: `Extract every archive in archive-dir, analyze its Python files and write
one metrics record per repository.

Examples:
  codelex metrics ../zipped_repos
  codelex metrics repos -o results.yaml --format yaml
  codelex metrics repos --vocab --parquet results.parquet`,
		Args: cobra.MaximumNArgs(1),
		RunE: mc.run,
	}

	cmd.Flags().StringVarP(&mc.output, "output", "o", "", "output file (default from config: repo_analysis_results.json)")
	cmd.Flags().StringVar(&mc.format, "format", "", "output format: json, yaml")
	cmd.Flags().StringVar(&mc.parquet, "parquet", "", "also write present records as a Parquet dataset")
	cmd.Flags().BoolVar(&mc.vocab, "vocab", false, "add shared_vocab_score to every record")
	cmd.Flags().BoolVar(&mc.table, "table", false, "print the result as a table")

	return cmd
}

func (mc *MetricsCommand) run(cmd *cobra.Command, args []string) error {
	rt, err := mc.global.setup(cmd)
	if err != nil {
		return err
	}
	defer rt.close(cmd.Context())

	cfg := rt.cfg

	if cmd.Flags().Changed("output") {
		cfg.Output.Path = mc.output
	}

	if cmd.Flags().Changed("format") {
		cfg.Output.Format = mc.format
	}

	if cmd.Flags().Changed("parquet") {
		cfg.Output.Parquet = mc.parquet
	}

	if cmd.Flags().Changed("vocab") {
		cfg.Vocabulary.Enabled = mc.vocab
	}

	codec, err := persist.CodecFor(cfg.Output.Format)
	if err != nil {
		return err
	}

	pl, err := rt.newPipeline(cfg.Vocabulary.Enabled)
	if err != nil {
		return err
	}

	result, err := pl.RunBatch(cmd.Context(), rt.archiveDir(args))
	if err != nil {
		return err
	}

	if err := persist.SaveFile(cfg.Output.Path, codec, result); err != nil {
		return err
	}

	if cfg.Output.Parquet != "" {
		if err := persist.WriteParquet(cfg.Output.Parquet, result.Rows()); err != nil {
			return err
		}
	}

	if mc.table {
		renderBatchTable(cmd.OutOrStdout(), result)
	}

	if !mc.global.quiet {
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
			"Analyzed %d repositories, results saved to %s\n", len(result), cfg.Output.Path)

		if cfg.Output.Parquet != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Parquet dataset saved to %s\n", cfg.Output.Parquet)
		}
	}

	return nil
}
