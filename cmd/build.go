package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spaghettifunk/on3d/engine/assets"
	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/pack"
	"github.com/spf13/cobra"
)

type buildFlags struct {
	output   string
	watch    bool
	debounce time.Duration
}

func newBuildCommand(a *app) *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build <dir>",
		Short: "Pack every file below a directory",
		Long: `Pack every regular file below <dir> into one archive. Entries are stored
in walk order with paths relative to <dir>.

With --watch the archive is rebuilt whenever a file below <dir> changes,
until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.output == "" {
				return fmt.Errorf("--output is required")
			}
			if err := buildDir(cmd.OutOrStdout(), args[0], flags.output); err != nil {
				return err
			}
			if !flags.watch {
				return nil
			}
			return watchDir(cmd.Context(), cmd.OutOrStdout(), args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "archive to write")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild when the source directory changes")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", 250*time.Millisecond, "quiet period before a watched rebuild")
	return cmd
}

func buildDir(out io.Writer, dir, output string) error {
	clock := core.NewClock()
	clock.Start()

	files, err := pack.CollectFS(os.DirFS(dir), ".")
	if err != nil {
		return err
	}
	// the archive may live inside the tree it is built from
	if rel, err := filepath.Rel(dir, output); err == nil {
		rel = filepath.ToSlash(rel)
		kept := files[:0]
		for _, f := range files {
			if f.Path != rel {
				kept = append(kept, f)
			}
		}
		files = kept
	}

	data, err := pack.Build(files)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(out, "packed %d files into %s (%d bytes) in %s\n", len(files), output, len(data), clock.Stop().Round(time.Microsecond))
	return nil
}

func watchDir(ctx context.Context, out io.Writer, dir string, flags *buildFlags) error {
	sw, err := assets.NewSourceWatcher()
	if err != nil {
		return err
	}
	defer sw.Close()
	if err := sw.AddRecursive(dir); err != nil {
		return err
	}

	outputAbs, _ := filepath.Abs(flags.output)
	timer := time.NewTimer(flags.debounce)
	timer.Stop()
	core.LogInfo("watching %s", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed, ok := <-sw.Changes():
			if !ok {
				return nil
			}
			if abs, _ := filepath.Abs(changed); abs == outputAbs {
				continue
			}
			core.LogDebug("changed: %s", changed)
			timer.Reset(flags.debounce)
		case err, ok := <-sw.Errors():
			if !ok {
				return nil
			}
			core.LogWarn("watch: %s", err)
		case <-timer.C:
			if err := buildDir(out, dir, flags.output); err != nil {
				core.LogError("rebuild failed: %s", err)
			}
		}
	}
}
