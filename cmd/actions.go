package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the supported actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range schemas.Actions() {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}
}
