package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codelex/pkg/persist"
	"github.com/Sumatoshi-tech/codelex/pkg/pipeline"
)

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <result.json|result.yaml>",
		Short: "Print a saved metrics result as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := persist.CodecForPath(args[0])
			if err != nil {
				return err
			}

			result, err := persist.NewPersister[pipeline.BatchResult](codec).Load(args[0])
			if err != nil {
				return err
			}

			renderBatchTable(cmd.OutOrStdout(), result)

			return nil
		},
	}
}
