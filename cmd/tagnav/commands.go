package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treykane/tagnav/internal/app"
	"github.com/treykane/tagnav/internal/config"
	"github.com/treykane/tagnav/internal/pattern"
	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/tagtree"
	"github.com/treykane/tagnav/internal/vault"
)

const welcomeNote = "---\ntags: [tagnav]\n---\n# Welcome to tagnav\n\n" +
	"Folders are listed on the left, tags below them. Select either to list\n" +
	"its notes.\n\n" +
	"- Arrow keys move, Right expands, Left collapses\n" +
	"- Tab moves between panes\n" +
	"- / filters the note list, s cycles the sort\n" +
	"- ? shows every key\n\n" +
	"Add `tags:` to a note's front matter or write #tag/subtag in its body.\n"

func newInitCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [notes-dir]",
		Short: "Write a config file pointing at a notes directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.path()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			dir := flags.notesDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				if dir, err = config.DefaultNotesDir(); err != nil {
					return err
				}
			}
			dir, err = config.NormalizeNotesDir(dir)
			if err != nil {
				return fmt.Errorf("invalid notes directory: %w", err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			if empty, err := isDirEmpty(dir); err == nil && empty {
				if err := os.WriteFile(filepath.Join(dir, "Welcome.md"), []byte(welcomeNote), 0o644); err != nil {
					log.WithError(err).Warn("write welcome note")
				}
			}

			cfg := config.Config{NotesDir: dir, Settings: config.DefaultSettings()}
			if err := config.SaveTo(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nNotes directory: %s\n", path, dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func isDirEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

func newTagsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Print the tag tree with note counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.load()
			if err != nil {
				return err
			}
			v, err := vault.Open(cfg.NotesDir)
			if err != nil {
				return err
			}
			tree := tagtree.Build(v.MarkdownFiles(), v.FileTags, tagtree.Options{IncludeUntagged: cfg.ShowUntagged})
			if len(cfg.HiddenTags) > 0 {
				tree = tree.Filter(pattern.CompileAll(cfg.HiddenTags))
			}
			printTags(cmd.OutOrStdout(), tree)
			return nil
		},
	}
}

func printTags(w io.Writer, tree *tagtree.Tree) {
	var walk func(nodes []*tagtree.Node)
	walk = func(nodes []*tagtree.Node) {
		for _, n := range nodes {
			fmt.Fprintf(w, "%s#%s (%d)\n", strings.Repeat("  ", n.Depth()), n.Name, tree.TotalNoteCount(n))
			walk(n.SortedChildren())
		}
	}
	walk(tree.SortedRoots())
	if tree.IncludesUntagged() && len(tree.Untagged) > 0 {
		fmt.Fprintf(w, "untagged (%d)\n", len(tree.Untagged))
	}
}

func newTreeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the navigation pane as it would open",
		Long: `Print the navigation pane rows using the saved expansion state,
the way the navigator shows them on startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := flags.load()
			if err != nil {
				return err
			}
			m, err := app.New(app.Options{Config: cfg, ConfigPath: path})
			if err != nil {
				return err
			}
			printNavRows(cmd.OutOrStdout(), m.NavRows())
			return nil
		},
	}
}

func printNavRows(w io.Writer, navRows []rows.NavRow) {
	for _, r := range navRows {
		indent := strings.Repeat("  ", r.Level())
		switch r := r.(type) {
		case rows.FolderRow:
			name := r.Folder.Name
			if r.Folder.IsRoot() {
				name = "/"
			}
			fmt.Fprintf(w, "%s%s%s/\n", indent, marker(r.HasChildren, r.Expanded), name)
		case rows.TagRow:
			fmt.Fprintf(w, "%s%s#%s (%d)\n", indent, marker(r.HasChildren(), r.Expanded), r.Node.Name, r.Count)
		case rows.UntaggedRow:
			fmt.Fprintf(w, "%s  untagged (%d)\n", indent, r.Count)
		case rows.HeaderRow:
			fmt.Fprintf(w, "%s\n", strings.ToUpper(r.Title))
		case rows.SpacerRow:
			fmt.Fprintln(w)
		}
	}
}

func marker(hasChildren, expanded bool) string {
	switch {
	case !hasChildren:
		return "  "
	case expanded:
		return "- "
	default:
		return "+ "
	}
}
