package cmd

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/on3d/testbed"
	"github.com/spf13/cobra"
)

func newSampleCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the sample level pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := testbed.BuildSamplePack()
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "sample.pack", "archive to write")
	return cmd
}
