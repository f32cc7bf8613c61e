package cmd

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/on3d/engine/pack"
	"github.com/spf13/cobra"
)

func newTreeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <pack>",
		Short: "Print the folder tree of a pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openPack(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p.Tree().Walk(func(f *pack.Folder, depth int) {
				name := f.Name + "/"
				if depth == 0 {
					name = "/"
				}
				fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), name)
				for _, asset := range f.Files {
					fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth+1), asset.Name)
				}
			})
			return nil
		},
	}
}
