package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExtractCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "extract <pack> <path>",
		Short: "Write the raw bytes of one entry",
		Long:  "Write the raw bytes of one entry to --output, or to stdout when no output is given.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openPack(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := p.GetFile(args[1])
			if err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of stdout")
	return cmd
}
