package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mediasheet/internal/cli/formatter"
	"github.com/alexanderramin/mediasheet/internal/service"
	"github.com/alexanderramin/mediasheet/internal/tabsync"
)

func newSyncTabsCmd(s *session) *cobra.Command {
	var spreadsheetID, mode string

	cmd := &cobra.Command{
		Use:   "sync-tabs " + versionArgs + " --spreadsheet <id>",
		Short: "Align the spreadsheet tabs with the version's tabs without writing data",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := refFromArgs(args)
			if err != nil {
				return err
			}
			m, err := tabsync.ParseMode(mode)
			if err != nil {
				return err
			}
			app, err := s.App(cmd)
			if err != nil {
				return err
			}

			res, err := app.TabSync.SyncTabs(cmd.Context(), service.TabSyncRequest{
				Ref:           ref,
				SpreadsheetID: spreadsheetID,
				Mode:          m,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTabSyncResult(spreadsheetID, res))
			return nil
		},
	}

	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "target spreadsheet id")
	cmd.Flags().StringVar(&mode, "mode", string(tabsync.ModeAuto), "auto, creation or refresh")
	_ = cmd.MarkFlagRequired("spreadsheet")

	return cmd
}
