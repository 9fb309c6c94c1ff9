package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mediasheet/internal/cli/formatter"
)

func newPreviewCmd(s *session) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "preview " + versionArgs,
		Short: "Show the tables an export would write",
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

			p, err := app.Previews.Preview(cmd.Context(), ref, s.lang.Language())
			if err != nil {
				return err
			}
			if tree {
				fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTree(formatter.HierarchyTree(p.Snapshot)))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPreview(ref, p))
			return nil
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "show the hierarchy as a tree")

	return cmd
}
