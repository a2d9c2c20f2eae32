package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/osk/internal/layout"
	"github.com/dshills/osk/internal/logging"
)

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect keyboard layouts",
	}

	check := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a layout file",
		Long: `Load a layout file and report keys that could not be set up. Such keys
are shown but do nothing. The command fails when there are any.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := layout.Load(args[0], logging.Discard())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			name := l.Name
			if name == "" {
				name = "(unnamed)"
			}
			b := l.Bounds()
			fmt.Fprintf(out, "layout %s: %d keys, size %gx%g\n", name, len(l.Keys()), b.X+b.W, b.Y+b.H)
			if layers := l.Layers(); len(layers) > 0 {
				fmt.Fprintf(out, "layers: %s\n", strings.Join(layers, ", "))
			}
			warnings := l.Warnings()
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %v\n", w)
			}
			if len(warnings) > 0 {
				return fmt.Errorf("%s: %d inert keys", args[0], len(warnings))
			}
			return nil
		},
	}

	cmd.AddCommand(check)
	return cmd
}
