package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spaghettifunk/on3d/engine"
	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spf13/cobra"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
}

// app is the state resolved once per invocation before a subcommand runs.
type app struct {
	flags  rootFlags
	config *engine.ApplicationConfig
}

// NewRootCommand builds the `on3d` command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "on3d",
		Short: "Build, inspect and extract on3d asset packs",
		Long: `on3d packs game assets (meshes, materials, scenes and collision
soups) into a single archive and decodes them back.

Pack arguments are locators: a file path, or an http(s) URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.flags.configPath, "config", "", "TOML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "override the log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newBuildCommand(a),
		newListCommand(a),
		newTreeCommand(a),
		newExtractCommand(a),
		newInspectCommand(a),
		newSampleCommand(a),
		newConfigCommand(a),
	)
	return rootCmd
}

func (a *app) resolve(cmd *cobra.Command) error {
	core.SetLogOutput(cmd.ErrOrStderr())

	cfg := engine.DefaultApplicationConfig()
	if a.flags.configPath != "" {
		loaded, err := engine.LoadApplicationConfig(a.flags.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "on3d:", err)
		return 1
	}
	return 0
}
