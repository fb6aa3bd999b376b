package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/launchit/core"
	"gopkg.in/yaml.v3"
)

// Settings holds the launcher configuration.
type Settings struct {
	// MaxResults is the number of rows the display shows.
	// Default: 6
	MaxResults int `yaml:"max_results"`

	// PageFactor multiplies MaxResults to get the number of results kept.
	// Default: 4
	PageFactor int `yaml:"page_factor"`

	// IgnoreRules hide matching results.
	IgnoreRules []core.IgnoreRule `yaml:"ignore_rules"`

	// ProgramSources are the directories scanned for programs, in edit syntax.
	// Example: "!/usr/share/applications", "*/opt"
	ProgramSources []string `yaml:"program_sources"`

	// ProgramSuffixes are file extensions indexed as programs regardless of
	// the executable bit.
	ProgramSuffixes []string `yaml:"program_suffixes"`

	// IncludedFolders are searched by the filesystem source.
	IncludedFolders []core.IncludedFolder `yaml:"included_folders"`

	// ContextMenus are offered on file results.
	ContextMenus []core.ContextMenuTemplate `yaml:"context_menus"`

	// IndexCommand runs an external file index. "{query}" and "{max}" are
	// substituted. Empty disables the external index source.
	// Example: "locate -i -l {max} {query}"
	IndexCommand string `yaml:"index_command"`

	// MaxIndexResults caps results from the external index.
	// Default: 100
	MaxIndexResults int `yaml:"max_index_results"`

	// ReindexInterval is the period between background catalog reindexes.
	// Default: 10m
	ReindexInterval time.Duration `yaml:"reindex_interval"`

	// StartupDelay postpones the first catalog index after startup.
	// Default: 2s
	StartupDelay time.Duration `yaml:"startup_delay"`

	// DatabasePath is the catalog database directory.
	DatabasePath string `yaml:"database_path"`

	// DisabledSources lists source IDs excluded from fan-out.
	DisabledSources []string `yaml:"disabled_sources"`
}

// ConfigOption is a functional option for configuring Settings.
type ConfigOption func(*Settings)

// WithMaxResults sets the number of displayed rows.
func WithMaxResults(n int) ConfigOption {
	return func(s *Settings) {
		s.MaxResults = n
	}
}

// WithPageFactor sets how many pages of results are kept.
func WithPageFactor(n int) ConfigOption {
	return func(s *Settings) {
		s.PageFactor = n
	}
}

// WithIgnoreRules sets the ignore rules.
func WithIgnoreRules(rules ...core.IgnoreRule) ConfigOption {
	return func(s *Settings) {
		s.IgnoreRules = rules
	}
}

// WithProgramSources sets the program source directories.
func WithProgramSources(sources ...string) ConfigOption {
	return func(s *Settings) {
		s.ProgramSources = sources
	}
}

// WithIncludedFolders sets the folders searched by the filesystem source.
func WithIncludedFolders(folders ...core.IncludedFolder) ConfigOption {
	return func(s *Settings) {
		s.IncludedFolders = folders
	}
}

// WithContextMenus sets the file context menus.
func WithContextMenus(menus ...core.ContextMenuTemplate) ConfigOption {
	return func(s *Settings) {
		s.ContextMenus = menus
	}
}

// WithIndexCommand sets the external index command.
func WithIndexCommand(command string) ConfigOption {
	return func(s *Settings) {
		s.IndexCommand = command
	}
}

// WithReindexInterval sets the background reindex period.
func WithReindexInterval(d time.Duration) ConfigOption {
	return func(s *Settings) {
		s.ReindexInterval = d
	}
}

// WithStartupDelay sets the delay before the first background index.
func WithStartupDelay(d time.Duration) ConfigOption {
	return func(s *Settings) {
		s.StartupDelay = d
	}
}

// WithDatabasePath sets the catalog database directory.
func WithDatabasePath(path string) ConfigOption {
	return func(s *Settings) {
		s.DatabasePath = path
	}
}

// WithDisabledSources excludes sources from fan-out.
func WithDisabledSources(ids ...string) ConfigOption {
	return func(s *Settings) {
		s.DisabledSources = ids
	}
}

// DefaultSettings returns Settings with sensible defaults for a Linux desktop.
func DefaultSettings() *Settings {
	return &Settings{
		MaxResults: 6,
		PageFactor: 4,
		ProgramSources: []string{
			"!/usr/share/applications",
			"!~/.local/share/applications",
			"/usr/local/bin",
		},
		ProgramSuffixes: []string{"desktop", "sh", "AppImage"},
		IncludedFolders: []core.IncludedFolder{
			{Path: "~", MaxDepth: 3},
		},
		ContextMenus: []core.ContextMenuTemplate{
			{Name: "Open", Command: "xdg-open", Argument: "{path}"},
		},
		MaxIndexResults: 100,
		ReindexInterval: 10 * time.Minute,
		StartupDelay:    2 * time.Second,
		DatabasePath:    filepath.Join(dataHome(), "launchit", "catalog"),
	}
}

// NewSettings creates Settings with the default values and applies the provided options.
//
// Example:
//
//	settings := NewSettings(
//	    WithMaxResults(8),
//	    WithIgnoreRules(core.IgnoreRule{Pattern: "uninstall"}),
//	)
func NewSettings(opts ...ConfigOption) *Settings {
	s := DefaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPath returns the settings file location.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/launchit/settings.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/launchit/settings.yaml (default)
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "launchit", "settings.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "launchit", "settings.yaml")
	}
	return filepath.Join(home, ".config", "launchit", "settings.yaml")
}

func dataHome() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".local", "share")
	}
	return filepath.Join(home, ".local", "share")
}

// Load reads settings from a YAML file layered over the defaults.
// A missing file yields the defaults. The result is normalized and validated.
func Load(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteYAML writes the settings to a YAML file.
func (s *Settings) WriteYAML(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Normalize ensures the settings are in canonical form.
// It expands a leading "~" in paths and trims whitespace and leading dots
// from suffixes.
func (s *Settings) Normalize() {
	for i, src := range s.ProgramSources {
		src = strings.TrimSpace(src)
		// Keep the edit-syntax marker in front of the expanded path
		marker := ""
		for len(src) > 0 && (src[0] == '!' || src[0] == '*') {
			marker += src[:1]
			src = src[1:]
		}
		s.ProgramSources[i] = marker + ExpandHome(src)
	}
	for i, suffix := range s.ProgramSuffixes {
		s.ProgramSuffixes[i] = strings.TrimPrefix(strings.TrimSpace(suffix), ".")
	}
	for i := range s.IncludedFolders {
		s.IncludedFolders[i].Path = ExpandHome(s.IncludedFolders[i].Path)
	}
	s.DatabasePath = ExpandHome(s.DatabasePath)
	s.IndexCommand = strings.TrimSpace(s.IndexCommand)
}

// Validate checks that the settings are valid and complete.
// It automatically normalizes the settings before validation.
func (s *Settings) Validate() error {
	s.Normalize()

	if s.MaxResults < 1 {
		return fmt.Errorf("%w: max_results must be positive, got %d", ErrInvalidSettings, s.MaxResults)
	}
	if s.PageFactor < 1 {
		return fmt.Errorf("%w: page_factor must be positive, got %d", ErrInvalidSettings, s.PageFactor)
	}
	for i, rule := range s.IgnoreRules {
		if err := core.ValidateIgnoreRule(rule); err != nil {
			return fmt.Errorf("%w: ignore_rules[%d]: %w", ErrInvalidSettings, i, err)
		}
	}
	for i, src := range s.ProgramSources {
		if strings.TrimLeft(src, "!*") == "" {
			return fmt.Errorf("%w: program_sources[%d] has no path", ErrInvalidSettings, i)
		}
	}
	for i, folder := range s.IncludedFolders {
		if folder.Path == "" {
			return fmt.Errorf("%w: included_folders[%d] has no path", ErrInvalidSettings, i)
		}
		if folder.MaxDepth < 0 {
			return fmt.Errorf("%w: included_folders[%d] max_depth must be non-negative", ErrInvalidSettings, i)
		}
	}
	for i, menu := range s.ContextMenus {
		if menu.Name == "" || menu.Command == "" {
			return fmt.Errorf("%w: context_menus[%d] needs a name and a command", ErrInvalidSettings, i)
		}
	}
	if s.IndexCommand != "" && !strings.Contains(s.IndexCommand, "{query}") {
		return fmt.Errorf("%w: index_command must contain {query}", ErrInvalidSettings)
	}
	if s.MaxIndexResults < 1 {
		return fmt.Errorf("%w: max_index_results must be positive, got %d", ErrInvalidSettings, s.MaxIndexResults)
	}
	if s.ReindexInterval < 0 || s.StartupDelay < 0 {
		return fmt.Errorf("%w: durations must be non-negative", ErrInvalidSettings)
	}
	return nil
}

// SourceEnabled reports whether id is not listed in DisabledSources.
func (s *Settings) SourceEnabled(id string) bool {
	return !slices.Contains(s.DisabledSources, id)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
