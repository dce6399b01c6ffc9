// Package cli implements the printshop command-line interface: the web
// server and offline rendering of the same products.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"printshop/internal/config"
	"printshop/internal/products"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// app is the state shared by all commands once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg     config.Config
	presets *products.Presets
	closer  io.Closer
}

// load reads the config and presets files and sets up logging.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Level()
	if a.verbose {
		level = log.DebugLevel
	}
	logger, closer := teeLogger(cfg.LogFile, level)
	a.closer = closer
	cmd.SetContext(withLogger(cmd.Context(), logger))

	if cfg.Presets == "" {
		a.presets = products.DefaultPresets()
		return nil
	}
	a.presets, err = products.LoadPresets(cfg.Presets)
	if err != nil {
		return err
	}
	logger.Debug("loaded presets", "path", cfg.Presets,
		"formats", len(a.presets.Formats), "layouts", len(a.presets.Layouts), "frames", len(a.presets.Frames))
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
		a.closer = nil
	}
}

// rootCommand builds the command tree. The caller closes the app once the
// command returns, whether or not it failed.
func rootCommand() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:          "printshop",
		Short:        "Print-ready photo layouts",
		Long:         `printshop turns photos into print-ready files: half-moon portrait frames, ID sheets, polaroids, multi-format sheets, A4 layouts and triptychs.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("printshop %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newPresetsCmd(a))
	return root, a
}

// Execute runs the CLI until ctx is cancelled or the command returns.
func Execute(ctx context.Context) error {
	root, a := rootCommand()
	return runRoot(ctx, root, a)
}

// runRoot executes root and releases the app's log file even when the
// command fails, since cobra skips post-run hooks after an error.
func runRoot(ctx context.Context, root *cobra.Command, a *app) error {
	defer a.close()
	return root.ExecuteContext(ctx)
}
