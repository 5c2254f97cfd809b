// Package config loads and saves tagnav settings.
//
// Settings live in ~/.tagnav/config.json and are read with viper. The core
// navigator packages only ever read a Settings value; writing happens from
// the CLI (tagnav init) and from the app when the user changes a sort mode.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configDirName  = ".tagnav"
	configFileName = "config.json"

	// keyDelimiter replaces viper's default "." so dotted action names in
	// keybindings are not split into nested keys.
	keyDelimiter = "::"
)

var ErrNotConfigured = errors.New("tagnav is not configured")

// SortOption names a file list ordering.
type SortOption string

const (
	SortNameAsc      SortOption = "name-asc"
	SortNameDesc     SortOption = "name-desc"
	SortModifiedDesc SortOption = "modified-desc"
	SortModifiedAsc  SortOption = "modified-asc"
	SortCreatedDesc  SortOption = "created-desc"
	SortCreatedAsc   SortOption = "created-asc"
	SortTitleAsc     SortOption = "title-asc"
	SortTitleDesc    SortOption = "title-desc"
)

var sortOptions = []SortOption{
	SortNameAsc, SortNameDesc,
	SortModifiedDesc, SortModifiedAsc,
	SortCreatedDesc, SortCreatedAsc,
	SortTitleAsc, SortTitleDesc,
}

// Valid reports whether s is a known sort option.
func (s SortOption) Valid() bool {
	for _, opt := range sortOptions {
		if s == opt {
			return true
		}
	}
	return false
}

// IsDateSort reports whether s orders by a timestamp, which is when date
// group headers make sense.
func (s SortOption) IsDateSort() bool {
	switch s {
	case SortModifiedDesc, SortModifiedAsc, SortCreatedDesc, SortCreatedAsc:
		return true
	}
	return false
}

// Next cycles through the sort options in declaration order.
func (s SortOption) Next() SortOption {
	for i, opt := range sortOptions {
		if opt == s {
			return sortOptions[(i+1)%len(sortOptions)]
		}
	}
	return SortModifiedDesc
}

// Layout selects the pane arrangement and therefore the scroll policy.
type Layout string

const (
	LayoutAuto    Layout = "auto"
	LayoutDesktop Layout = "desktop"
	LayoutTouch   Layout = "touch"
)

// FolderSort overrides the sort option for one folder.
type FolderSort struct {
	Folder string     `mapstructure:"folder" json:"folder"`
	Sort   SortOption `mapstructure:"sort" json:"sort"`
}

// PinnedNotes lists notes pinned to the top of one folder's file list.
type PinnedNotes struct {
	Folder string   `mapstructure:"folder" json:"folder"`
	Paths  []string `mapstructure:"paths" json:"paths"`
}

// Settings is the read-only view of configuration consumed by the navigator.
type Settings struct {
	ShowTags                bool          `mapstructure:"show_tags" json:"show_tags"`
	ShowUntagged            bool          `mapstructure:"show_untagged" json:"show_untagged"`
	ShowRootFolder          bool          `mapstructure:"show_root_folder" json:"show_root_folder"`
	ShowNotesFromSubfolders bool          `mapstructure:"show_notes_from_subfolders" json:"show_notes_from_subfolders"`
	GroupByDate             bool          `mapstructure:"group_by_date" json:"group_by_date"`
	ShowPreview             bool          `mapstructure:"show_preview" json:"show_preview"`
	PreviewRows             int           `mapstructure:"preview_rows" json:"preview_rows"`
	ShowDate                bool          `mapstructure:"show_date" json:"show_date"`
	ExcludedFolders         []string      `mapstructure:"excluded_folders" json:"excluded_folders"`
	ExcludedFiles           []string      `mapstructure:"excluded_files" json:"excluded_files"`
	ExcludedProperties      []string      `mapstructure:"excluded_properties" json:"excluded_properties"`
	HiddenTags              []string      `mapstructure:"hidden_tags" json:"hidden_tags"`
	DefaultSort             SortOption    `mapstructure:"default_sort" json:"default_sort"`
	FolderSorts             []FolderSort  `mapstructure:"folder_sorts" json:"folder_sorts"`
	Pinned                  []PinnedNotes `mapstructure:"pinned_notes" json:"pinned_notes"`
	ConfirmDelete           bool          `mapstructure:"confirm_delete" json:"confirm_delete"`
	RTL                     bool          `mapstructure:"rtl" json:"rtl"`
	Layout                  Layout        `mapstructure:"layout" json:"layout"`
	CompactWidth            int           `mapstructure:"compact_width" json:"compact_width"`
	Overscan                int           `mapstructure:"overscan" json:"overscan"`
	ChangeDebounce          time.Duration `mapstructure:"change_debounce" json:"change_debounce"`
}

// Config stores user-defined tagnav settings.
type Config struct {
	NotesDir    string            `mapstructure:"notes_dir" json:"notes_dir"`
	Keybindings map[string]string `mapstructure:"keybindings" json:"keybindings,omitempty"`
	KeymapFile  string            `mapstructure:"keymap_file" json:"keymap_file,omitempty"`
	Settings    `mapstructure:",squash"`
}

// DefaultSettings returns the settings used for keys absent from the file.
func DefaultSettings() Settings {
	return Settings{
		ShowTags:       true,
		ShowUntagged:   true,
		ShowPreview:    true,
		PreviewRows:    2,
		ShowDate:       true,
		GroupByDate:    true,
		DefaultSort:    SortModifiedDesc,
		ConfirmDelete:  true,
		Layout:         LayoutAuto,
		CompactWidth:   90,
		Overscan:       5,
		ChangeDebounce: 300 * time.Millisecond,
	}
}

// SortFor returns the effective sort option for a folder: its override when
// one exists, otherwise the default.
func (s Settings) SortFor(folder string) SortOption {
	for _, fs := range s.FolderSorts {
		if fs.Folder == folder && fs.Sort.Valid() {
			return fs.Sort
		}
	}
	if s.DefaultSort.Valid() {
		return s.DefaultSort
	}
	return SortModifiedDesc
}

// WithFolderSort returns a copy of s with folder's override set to sort.
func (s Settings) WithFolderSort(folder string, sort SortOption) Settings {
	out := make([]FolderSort, 0, len(s.FolderSorts)+1)
	for _, fs := range s.FolderSorts {
		if fs.Folder != folder {
			out = append(out, fs)
		}
	}
	s.FolderSorts = append(out, FolderSort{Folder: folder, Sort: sort})
	return s
}

// PinnedFor returns the pinned note paths of a folder in configured order.
func (s Settings) PinnedFor(folder string) []string {
	for _, p := range s.Pinned {
		if p.Folder == folder {
			return p.Paths
		}
	}
	return nil
}

// WithPinToggled returns a copy of s with note pinned in folder when it was
// not, and unpinned when it was. Pins keep their order; new pins go last.
func (s Settings) WithPinToggled(folder, note string) Settings {
	out := make([]PinnedNotes, 0, len(s.Pinned)+1)
	found := false
	for _, p := range s.Pinned {
		if p.Folder != folder {
			out = append(out, p)
			continue
		}
		found = true
		paths := make([]string, 0, len(p.Paths)+1)
		removed := false
		for _, existing := range p.Paths {
			if existing == note {
				removed = true
				continue
			}
			paths = append(paths, existing)
		}
		if !removed {
			paths = append(paths, note)
		}
		if len(paths) > 0 {
			out = append(out, PinnedNotes{Folder: folder, Paths: paths})
		}
	}
	if !found {
		out = append(out, PinnedNotes{Folder: folder, Paths: []string{note}})
	}
	s.Pinned = out
	return s
}

// DefaultNotesDir returns the default notes directory used by tagnav init.
func DefaultNotesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "notes"), nil
}

// ConfigPath returns the configuration file path.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Exists reports whether the config file exists.
func Exists() (bool, error) {
	path, err := ConfigPath()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load reads and validates the configuration at the default path.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates the configuration at path.
func LoadFrom(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ErrNotConfigured
		}
		return Config{}, err
	}

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	notesDir, err := NormalizeNotesDir(cfg.NotesDir)
	if err != nil {
		return Config{}, fmt.Errorf("invalid notes_dir: %w", err)
	}
	cfg.NotesDir = notesDir
	cfg.Settings = cfg.Settings.normalized()
	return cfg, nil
}

// Save writes configuration to the default path.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes configuration to path.
func SaveTo(path string, cfg Config) error {
	notesDir, err := NormalizeNotesDir(cfg.NotesDir)
	if err != nil {
		return fmt.Errorf("invalid notes_dir: %w", err)
	}
	cfg.NotesDir = notesDir
	cfg.Settings = cfg.Settings.normalized()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	v := newViper()
	for key, value := range cfg.values() {
		v.Set(key, value)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// NormalizeNotesDir expands and normalizes a notes directory path.
func NormalizeNotesDir(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is required")
	}

	expanded, err := expandHome(trimmed)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}

	return filepath.Clean(abs), nil
}

func expandHome(path string) (string, error) {
	if path == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	for key, value := range (Config{Settings: DefaultSettings()}).values() {
		if key == "notes_dir" || key == "keybindings" || key == "keymap_file" {
			continue
		}
		v.SetDefault(key, value)
	}
	return v
}

// values flattens cfg into viper keys. Durations are written as strings so
// the JSON file stays readable ("300ms").
func (cfg Config) values() map[string]any {
	s := cfg.Settings
	values := map[string]any{
		"notes_dir":                  cfg.NotesDir,
		"show_tags":                  s.ShowTags,
		"show_untagged":              s.ShowUntagged,
		"show_root_folder":           s.ShowRootFolder,
		"show_notes_from_subfolders": s.ShowNotesFromSubfolders,
		"group_by_date":              s.GroupByDate,
		"show_preview":               s.ShowPreview,
		"preview_rows":               s.PreviewRows,
		"show_date":                  s.ShowDate,
		"excluded_folders":           nonNil(s.ExcludedFolders),
		"excluded_files":             nonNil(s.ExcludedFiles),
		"excluded_properties":        nonNil(s.ExcludedProperties),
		"hidden_tags":                nonNil(s.HiddenTags),
		"default_sort":               string(s.DefaultSort),
		"folder_sorts":               folderSortValues(s.FolderSorts),
		"pinned_notes":               pinnedValues(s.Pinned),
		"confirm_delete":             s.ConfirmDelete,
		"rtl":                        s.RTL,
		"layout":                     string(s.Layout),
		"compact_width":              s.CompactWidth,
		"overscan":                   s.Overscan,
		"change_debounce":            s.ChangeDebounce.String(),
	}
	if len(cfg.Keybindings) > 0 {
		values["keybindings"] = cfg.Keybindings
	}
	if cfg.KeymapFile != "" {
		values["keymap_file"] = cfg.KeymapFile
	}
	return values
}

func folderSortValues(sorts []FolderSort) []map[string]any {
	out := make([]map[string]any, 0, len(sorts))
	for _, fs := range sorts {
		out = append(out, map[string]any{"folder": fs.Folder, "sort": string(fs.Sort)})
	}
	return out
}

func pinnedValues(pins []PinnedNotes) []map[string]any {
	out := make([]map[string]any, 0, len(pins))
	for _, p := range pins {
		out = append(out, map[string]any{"folder": p.Folder, "paths": nonNil(p.Paths)})
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// normalized clamps numeric settings and replaces unknown enum values with
// their defaults.
func (s Settings) normalized() Settings {
	defaults := DefaultSettings()
	if !s.DefaultSort.Valid() {
		s.DefaultSort = defaults.DefaultSort
	}
	switch s.Layout {
	case LayoutAuto, LayoutDesktop, LayoutTouch:
	default:
		s.Layout = defaults.Layout
	}
	if s.PreviewRows < 0 {
		s.PreviewRows = 0
	}
	if s.PreviewRows > 5 {
		s.PreviewRows = 5
	}
	if s.CompactWidth <= 0 {
		s.CompactWidth = defaults.CompactWidth
	}
	if s.Overscan < 0 {
		s.Overscan = 0
	}
	if s.ChangeDebounce <= 0 {
		s.ChangeDebounce = defaults.ChangeDebounce
	}
	return s
}
