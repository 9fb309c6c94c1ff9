package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mediasheet/internal/cli/formatter"
	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
)

const versionArgs = "<client-id> <campaign-id> <version-id>"

func refFromArgs(args []string) (domain.VersionRef, error) {
	ref := domain.VersionRef{ClientID: args[0], CampaignID: args[1], VersionID: args[2]}
	if err := ref.Validate(); err != nil {
		return domain.VersionRef{}, err
	}
	return ref, nil
}

func newExportCmd(s *session) *cobra.Command {
	var spreadsheetID, actor string

	cmd := &cobra.Command{
		Use:   "export " + versionArgs + " --spreadsheet <id>",
		Short: "Write a campaign version into its Google Sheets document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := refFromArgs(args)
			if err != nil {
				return err
			}
			app, err := s.App(cmd)
			if err != nil {
				return err
			}
			if actor == "" {
				actor = defaultActor(s.cfg.Export.Actor)
			}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Exporting "+ref.VersionID, s.interactive() && !s.verbose)
			res, err := app.Exports.Export(cmd.Context(), export.Request{
				Ref:           ref,
				SpreadsheetID: spreadsheetID,
				Actor:         actor,
				Language:      s.lang.Language(),
			})
			stop()

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatExportResult(res))
			if err != nil {
				var f *export.Failure
				if errors.As(err, &f) && res != nil {
					return fmt.Errorf("export failed: %s", f.Kind)
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "target spreadsheet id")
	cmd.Flags().StringVar(&actor, "actor", "", "name recorded as the last data sync author")
	_ = cmd.MarkFlagRequired("spreadsheet")

	return cmd
}

// defaultActor is the configured actor, or the OS user.
func defaultActor(configured string) string {
	if configured != "" {
		return configured
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "mediasheet"
}
