// Package main is the entry point for osk, an on-screen keyboard for the
// terminal.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/osk/internal/app"
	"github.com/dshills/osk/internal/config"
	"github.com/dshills/osk/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configDir string
	dataDir   string
}

// loadConfig reads the settings without watching them.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := []config.Option{
		config.WithWatcher(false),
		config.WithLogger(logging.Discard()),
	}
	if g.configDir != "" {
		opts = append(opts, config.WithConfigDir(g.configDir))
	}
	if g.dataDir != "" {
		opts = append(opts, config.WithDataDir(g.dataDir))
	}
	cfg := config.New(opts...)
	if err := cfg.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	run := &runFlags{}

	root := &cobra.Command{
		Use:   "osk",
		Short: "On-screen keyboard for the terminal",
		Long: `osk shows an on-screen keyboard in the terminal and turns mouse and touch
input on its keys into key presses on the system keyboard (through /dev/uinput).

Examples:
  osk                          # Show the keyboard
  osk run --dry-run            # Log key presses instead of sending them
  osk run --layout my.yaml     # Use a custom layout
  osk layout check my.yaml     # Validate a layout file
  osk snippets set 0 Hi "Hello, world"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeyboard(cmd, g, run)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("osk %s (commit %s, built %s)\n", version, commit, date))
	root.PersistentFlags().StringVar(&g.configDir, "config-dir", "", "Settings directory (default $XDG_CONFIG_HOME/osk)")
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "Data directory for the word database (default $XDG_DATA_HOME/osk)")
	run.register(root)

	root.AddCommand(
		newRunCmd(g),
		newSnippetsCmd(g),
		newLayoutCmd(),
		newVersionCmd(),
	)
	return root
}

type runFlags struct {
	layout  string
	dryRun  bool
	noWatch bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.layout, "layout", "l", "", "Layout file (default: settings, then built-in)")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Log synthesized input instead of sending it")
	cmd.Flags().BoolVar(&f.noWatch, "no-watch", false, "Do not reload settings and layout on change")
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Show the keyboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeyboard(cmd, g, f)
		},
	}
	f.register(cmd)
	return cmd
}

func runKeyboard(cmd *cobra.Command, g *globalFlags, f *runFlags) error {
	application, err := app.New(app.Options{
		ConfigDir:  g.configDir,
		DataDir:    g.dataDir,
		LayoutPath: f.layout,
		DryRun:     f.dryRun,
		NoWatch:    f.noWatch,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "osk %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		},
	}
}
