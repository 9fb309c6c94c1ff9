package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mediasheet/internal/cli/formatter"
)

func newAuthCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google Sheets access",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Grant spreadsheet access and cache the token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := s.App(cmd)
				if err != nil {
					return err
				}
				tok, err := app.Auth.Login(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Access granted until %s\n",
					formatter.StyleGreen.Render("✓"), tok.Expiry.Local().Format("15:04"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the cached token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := s.App(cmd)
				if err != nil {
					return err
				}
				if err := app.Auth.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cached token removed."))
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether a cached token is available",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := s.App(cmd)
				if err != nil {
					return err
				}
				if app.Auth.HasCachedToken(cmd.Context()) {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("● authorized"))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleYellow.Render("● not authorized"))
				}
				return nil
			},
		},
	)
	return cmd
}
