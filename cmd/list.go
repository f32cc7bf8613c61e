package cmd

import (
	"encoding/hex"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand(a *app) *cobra.Command {
	var digest bool
	cmd := &cobra.Command{
		Use:   "list <pack>",
		Short: "List the entries of a pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openPack(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if digest {
				fmt.Fprintln(w, "PATH\tOFFSET\tSIZE\tBLAKE2B-256")
			} else {
				fmt.Fprintln(w, "PATH\tOFFSET\tSIZE")
			}
			for _, e := range p.Entries() {
				if !digest {
					fmt.Fprintf(w, "%s\t%d\t%d\n", e.Path(), e.Offset, e.Size)
					continue
				}
				sum, err := p.Digest(e.Path())
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", e.Path(), e.Offset, e.Size, hex.EncodeToString(sum[:]))
			}
			fmt.Fprintf(w, "%d files, %d bytes\n", p.Len(), p.Size())
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&digest, "digest", false, "print the BLAKE2b-256 digest of every payload")
	return cmd
}
