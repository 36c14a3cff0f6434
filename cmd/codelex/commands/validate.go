package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codelex/pkg/persist"
)

// ErrInvalidResult reports a batch result that violates the schema.
var ErrInvalidResult = errors.New("batch result does not match schema")

const stdinPath = "-"

func newValidateCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <result.json|->",
		Short: "Validate a metrics result against the batch result schema",
		Long: `Validate a JSON metrics result against the embedded batch result schema.

Examples:
  codelex validate repo_analysis_results.json
  codelex validate - < repo_analysis_results.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			return runValidate(cmd.InOrStdin(), cmd.OutOrStdout(), args[0])
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return data, nil
}

func runValidate(stdin io.Reader, out io.Writer, path string) error {
	data, err := readInput(stdin, path)
	if err != nil {
		return err
	}

	violations, err := persist.ValidateBatchResult(data)
	if err != nil {
		return err
	}

	if len(violations) == 0 {
		color.New(color.FgGreen).Fprintf(out, "Result is valid (%s)\n", path)

		return nil
	}

	color.New(color.FgRed).Fprintf(out, "Result validation failed (%s)\n", path)

	for _, v := range violations {
		color.New(color.FgRed).Fprintf(out, "  - %s\n", v)
	}

	return fmt.Errorf("%w: %d violations", ErrInvalidResult, len(violations))
}
