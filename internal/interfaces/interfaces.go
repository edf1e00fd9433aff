// Package interfaces defines the shared data types and the interfaces used for
// dependency injection between configuration, content and the terminal UI.
package interfaces

import (
	"context"
)

// Theme represents visual styling configuration
type Theme struct {
	Name    string `yaml:"name"`
	Success string `yaml:"success"`
	Error   string `yaml:"error"`
	Warning string `yaml:"warning"`
	Info    string `yaml:"info"`
	Accent  string `yaml:"accent"`
	Muted   string `yaml:"muted"`

	// CodeStyle is the chroma style used for code blocks
	CodeStyle string `yaml:"codeStyle"`
}

// PanelDefaults apply to every section unless the section overrides them
type PanelDefaults struct {
	Spring               map[string]float64 `yaml:"spring,omitempty"`
	KeepCollapsedContent bool               `yaml:"keepCollapsedContent"`
	FPS                  int                `yaml:"fps"`
	Style                map[string]any     `yaml:"style,omitempty"`
}

// LoggingSettings configure the log output of the viewer
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"` // "file", "stderr", "discard" or a path
}

// Settings is the complete configuration file
type Settings struct {
	Theme     string           `yaml:"theme"`
	Themes    map[string]Theme `yaml:"themes"`
	Panel     PanelDefaults    `yaml:"panel"`
	Logging   LoggingSettings  `yaml:"logging"`
	Documents []string         `yaml:"documents,omitempty"`
}

// ContentBlock represents structured content inside a section
type ContentBlock struct {
	Type     string     `yaml:"type"` // "text", "code", "list", "table", "separator"
	Content  string     `yaml:"content,omitempty"`
	Title    string     `yaml:"title,omitempty"`
	Language string     `yaml:"language,omitempty"`
	Items    []string   `yaml:"items,omitempty"`
	Headers  []string   `yaml:"headers,omitempty"`
	Rows     [][]string `yaml:"rows,omitempty"`
}

// Section is one collapsible panel of a document
type Section struct {
	ID     string         `yaml:"id"`
	Title  string         `yaml:"title"`
	Level  int            `yaml:"level"`
	Open   bool           `yaml:"open"`
	Blocks []ContentBlock `yaml:"blocks"`

	// Per-section panel overrides
	FixedHeight          *float64           `yaml:"fixedHeight,omitempty"`
	KeepCollapsedContent *bool              `yaml:"keepCollapsedContent,omitempty"`
	Spring               map[string]float64 `yaml:"spring,omitempty"`
	Style                map[string]any     `yaml:"style,omitempty"`
	Attrs                map[string]string  `yaml:"attrs,omitempty"`
}

// Document is a titled list of sections loaded from one file
type Document struct {
	Title    string    `yaml:"title"`
	Path     string    `yaml:"-"`
	Sections []Section `yaml:"sections"`
}

// ConfigManager handles configuration loading and theme lookup
type ConfigManager interface {
	// Load returns the configuration, creating the default file if needed
	Load() (*Settings, error)

	// Save persists the configuration file
	Save(settings *Settings) error

	// LoadTheme retrieves theme configuration by name
	LoadTheme(name string) (*Theme, error)

	// ListThemes returns all theme names in sorted order
	ListThemes() ([]string, error)

	// Validate checks the configuration for unusable values
	Validate(settings *Settings) error

	// GetConfigPath returns the path to the configuration file
	GetConfigPath() string
}

// ContentRenderer turns section content into terminal text
type ContentRenderer interface {
	// RenderSection renders all blocks of a section for the given width
	RenderSection(section Section, width int, theme *Theme) (string, error)

	// RenderBlock renders a single content block
	RenderBlock(block ContentBlock, width int, theme *Theme) (string, error)
}

// DocumentLoader reads documents from disk
type DocumentLoader interface {
	// Load reads every path and returns the documents in path order
	Load(ctx context.Context, paths []string) ([]Document, error)
}
