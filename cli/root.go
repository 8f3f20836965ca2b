package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/config"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version. main
// calls it with values injected through ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the forcegraph CLI until the command finishes or ctx is done.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stderr).ExecuteContext(ctx)
}

// newRootCmd builds the command tree. Logs go to logOut.
func newRootCmd(logOut io.Writer) *cobra.Command {
	var (
		verbose bool
		cfgPath string
	)

	root := &cobra.Command{
		Use:          "forcegraph",
		Short:        "forcegraph lays out graphs with a force-directed simulation",
		Long:         `forcegraph positions the nodes of a graph by simulating repulsion, spring and gravity forces, optionally on a background worker, and renders the result as SVG, PNG, ASCII, JSON or DOT.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(logOut, level)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cfgPath != "" {
				logger.Debug("loaded config", "path", cfgPath)
			}

			ctx := withLogger(cmd.Context(), logger)
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("forcegraph %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "TOML configuration file")

	root.AddCommand(newLayoutCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newConfigCmd())

	return root
}
