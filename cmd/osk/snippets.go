package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/osk/internal/snippet"
)

// snippetFile loads the snippet store named by --file or the settings.
type snippetFile struct {
	g    *globalFlags
	path string
}

func (f *snippetFile) resolve(cmd *cobra.Command) (string, error) {
	if f.path != "" {
		return f.path, nil
	}
	cfg, err := f.g.loadConfig(cmd)
	if err != nil {
		return "", err
	}
	return cfg.Current().Paths.Snippets, nil
}

func (f *snippetFile) load(cmd *cobra.Command) (*snippet.Store, string, error) {
	path, err := f.resolve(cmd)
	if err != nil {
		return nil, "", err
	}
	s := snippet.NewStore()
	if err := snippet.Load(s, path); err != nil {
		return nil, "", err
	}
	return s, path, nil
}

func newSnippetsCmd(g *globalFlags) *cobra.Command {
	f := &snippetFile{g: g}
	cmd := &cobra.Command{
		Use:   "snippets",
		Short: "Manage the text snippets typed by macro keys",
	}
	cmd.PersistentFlags().StringVar(&f.path, "file", "", "Snippets file (default from settings)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List snippets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := f.load(cmd)
			if err != nil {
				return err
			}
			if s.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no snippets")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL\tTEXT")
			for _, sn := range s.List() {
				fmt.Fprintf(w, "%d\t%s\t%q\n", sn.ID, sn.Label, sn.Text)
			}
			return w.Flush()
		},
	}

	set := &cobra.Command{
		Use:   "set <id> <label> <text>",
		Short: "Create or replace a snippet",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, path, err := f.load(cmd)
			if err != nil {
				return err
			}
			if err := s.Set(id, args[1], args[2]); err != nil {
				return err
			}
			return snippet.Save(s, path)
		},
	}

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a snippet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, path, err := f.load(cmd)
			if err != nil {
				return err
			}
			if err := s.Delete(id); err != nil {
				return err
			}
			return snippet.Save(s, path)
		},
	}

	cmd.AddCommand(list, set, del)
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid snippet id %q", s)
	}
	return id, nil
}
