package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mediasheet/internal/cli/formatter"
)

func newImportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load a campaign snapshot into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd)
			if err != nil {
				return err
			}
			res, err := app.Imports.ImportSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatImportResult(res))
			return nil
		},
	}
}
