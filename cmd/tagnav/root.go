package main

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/treykane/tagnav/internal/app"
	"github.com/treykane/tagnav/internal/config"
	"github.com/treykane/tagnav/internal/logging"
)

var log = logging.New("cli")

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	notesDir   string
	layout     string
	rtl        bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "tagnav",
		Short:         "Browse a markdown vault by folder and tag",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := flags.load()
			if err != nil {
				return err
			}
			return runTUI(cfg, path)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.tagnav/config.json)")
	pf.StringVar(&flags.notesDir, "notes-dir", "", "notes directory, overriding the config file")
	pf.StringVar(&flags.layout, "layout", "", "pane layout: auto, desktop or touch")
	pf.BoolVar(&flags.rtl, "rtl", false, "swap the meaning of left and right")

	cmd.AddCommand(newInitCmd(flags), newTagsCmd(flags), newTreeCmd(flags))
	return cmd
}

func (f *globalFlags) path() (string, error) {
	if f.configPath != "" {
		return f.configPath, nil
	}
	return config.ConfigPath()
}

// load reads the config file and applies flag overrides. A missing config
// file is fine when --notes-dir is given.
func (f *globalFlags) load() (config.Config, string, error) {
	path, err := f.path()
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.LoadFrom(path)
	switch {
	case errors.Is(err, config.ErrNotConfigured) && f.notesDir != "":
		cfg = config.Config{Settings: config.DefaultSettings()}
		path = ""
	case errors.Is(err, config.ErrNotConfigured):
		return config.Config{}, "", fmt.Errorf("no config at %s; run 'tagnav init' or pass --notes-dir", path)
	case err != nil:
		return config.Config{}, "", err
	}

	if f.notesDir != "" {
		dir, err := config.NormalizeNotesDir(f.notesDir)
		if err != nil {
			return config.Config{}, "", fmt.Errorf("invalid --notes-dir: %w", err)
		}
		cfg.NotesDir = dir
	}
	if f.layout != "" {
		switch l := config.Layout(f.layout); l {
		case config.LayoutAuto, config.LayoutDesktop, config.LayoutTouch:
			cfg.Layout = l
		default:
			return config.Config{}, "", fmt.Errorf("unknown layout %q", f.layout)
		}
	}
	if f.rtl {
		cfg.RTL = true
	}
	return cfg, path, nil
}

func runTUI(cfg config.Config, cfgPath string) error {
	m, err := app.New(app.Options{Config: cfg, ConfigPath: cfgPath, Watch: true})
	if err != nil {
		return err
	}
	// Log lines would corrupt the alternate screen unless they go to a file.
	if !logging.ToFile() {
		logging.SetOutput(io.Discard)
	}
	log.WithField("notes_dir", cfg.NotesDir).Debug("starting navigator")
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
