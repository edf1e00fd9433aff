// Package config implements configuration management for the collapse viewer.
// It handles the YAML configuration file, theme lookup, panel defaults and the
// logging setup, creating a default file on first use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/logging"
)

// Manager implements the ConfigManager interface
type Manager struct {
	configPath   string
	cachedConfig *interfaces.Settings
	logger       *logging.Logger
}

// NewManager creates a configuration manager. An empty path selects the
// OS-appropriate default location.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		defaultPath, err := getConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to determine configuration path: %w", err)
		}
		path = defaultPath
	}

	manager := &Manager{
		configPath: path,
		logger:     logging.GetConfigLogger(),
	}

	// Ensure configuration directory exists with appropriate permissions
	if err := manager.ensureConfigDirectory(); err != nil {
		return nil, fmt.Errorf("failed to create configuration directory: %w", err)
	}

	return manager, nil
}

// getConfigPath determines the OS-appropriate configuration file path
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}

	var configDir string
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		configDir = filepath.Join(xdgConfigHome, "collapse")
	} else {
		configDir = filepath.Join(homeDir, ".config", "collapse")
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

// ensureConfigDirectory creates the configuration directory
func (m *Manager) ensureConfigDirectory() error {
	configDir := filepath.Dir(m.configPath)

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	return nil
}

// Load reads and parses the configuration file, creating defaults if necessary
func (m *Manager) Load() (*interfaces.Settings, error) {
	// Return cached configuration if available
	if m.cachedConfig != nil {
		return m.cachedConfig, nil
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		settings := DefaultSettings()
		if err := m.Save(settings); err != nil {
			return nil, fmt.Errorf("failed to create default configuration: %w", err)
		}
		m.logger.Info("Created default configuration", "path", m.configPath)
		return settings, nil
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var settings interfaces.Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	applyDefaults(&settings)

	if err := m.Validate(&settings); err != nil {
		return nil, fmt.Errorf("configuration %s is invalid: %w", m.configPath, err)
	}

	m.logger.LogConfigLoad(m.configPath, settings.Theme)
	m.cachedConfig = &settings
	return &settings, nil
}

// Save writes the configuration to disk
func (m *Manager) Save(settings *interfaces.Settings) error {
	if err := m.Validate(settings); err != nil {
		return fmt.Errorf("cannot save invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	m.cachedConfig = settings
	return nil
}

// DefaultSettings generates a sensible default configuration
func DefaultSettings() *interfaces.Settings {
	return &interfaces.Settings{
		Theme: "github",
		Themes: map[string]interfaces.Theme{
			"github": {
				Name:      "github",
				Success:   "#28a745",
				Error:     "#dc3545",
				Warning:   "#ffc107",
				Info:      "#17a2b8",
				Accent:    "#0366d6",
				Muted:     "#6a737d",
				CodeStyle: "github",
			},
			"monokai": {
				Name:      "monokai",
				Success:   "#a6e22e",
				Error:     "#f92672",
				Warning:   "#fd971f",
				Info:      "#66d9ef",
				Accent:    "#ae81ff",
				Muted:     "#75715e",
				CodeStyle: "monokai",
			},
		},
		Panel: interfaces.PanelDefaults{
			Spring: map[string]float64{
				"stiffness": 170,
				"damping":   26,
			},
			FPS: 60,
		},
		Logging: interfaces.LoggingSettings{
			Level:  "info",
			Format: "text",
			Output: "file",
		},
	}
}

// applyDefaults fills values a hand-edited file may leave out
func applyDefaults(settings *interfaces.Settings) {
	defaults := DefaultSettings()

	if settings.Theme == "" {
		settings.Theme = defaults.Theme
	}
	if len(settings.Themes) == 0 {
		settings.Themes = defaults.Themes
	}
	if settings.Panel.FPS == 0 {
		settings.Panel.FPS = defaults.Panel.FPS
	}
	if settings.Logging.Level == "" {
		settings.Logging.Level = defaults.Logging.Level
	}
	if settings.Logging.Format == "" {
		settings.Logging.Format = defaults.Logging.Format
	}
	if settings.Logging.Output == "" {
		settings.Logging.Output = defaults.Logging.Output
	}
}

// LoadTheme retrieves theme configuration by name
func (m *Manager) LoadTheme(name string) (*interfaces.Theme, error) {
	settings, err := m.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	theme, exists := settings.Themes[name]
	if !exists {
		return nil, fmt.Errorf("theme '%s' not found", name)
	}

	// Ensure the name field is set correctly
	theme.Name = name

	return &theme, nil
}

// ListThemes returns all available theme names
func (m *Manager) ListThemes() ([]string, error) {
	settings, err := m.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	names := make([]string, 0, len(settings.Themes))
	for name := range settings.Themes {
		names = append(names, name)
	}
	slices.Sort(names)

	return names, nil
}

// Validate ensures the configuration can drive the viewer
func (m *Manager) Validate(settings *interfaces.Settings) error {
	if err := validate(settings); err != nil {
		return errors.NewConfigurationError("config").
			WithLogger(m.logger).
			WithOperation("validate").
			WithMessage("invalid configuration").
			WithCause(err).
			WithoutStackTrace().
			Build()
	}
	return nil
}

func validate(settings *interfaces.Settings) error {
	if settings == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if _, exists := settings.Themes[settings.Theme]; !exists {
		return fmt.Errorf("selected theme '%s' is not defined", settings.Theme)
	}

	if settings.Panel.FPS < 0 || settings.Panel.FPS > 240 {
		return fmt.Errorf("fps must be between 1 and 240, got %d", settings.Panel.FPS)
	}

	for key, value := range settings.Panel.Spring {
		switch key {
		case "stiffness", "damping", "precision":
		default:
			return fmt.Errorf("unknown spring parameter '%s'", key)
		}
		if value < 0 {
			return fmt.Errorf("spring parameter '%s' cannot be negative", key)
		}
	}

	switch strings.ToLower(settings.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", settings.Logging.Level)
	}

	switch settings.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", settings.Logging.Format)
	}

	return nil
}

// GetConfigPath returns the path to the configuration file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// InvalidateCache clears the cached configuration, forcing a reload on next access
func (m *Manager) InvalidateCache() {
	m.cachedConfig = nil
}

// LoggingConfig converts the logging settings into a logger configuration.
// The "file" output resolves to the per-user log file.
func LoggingConfig(settings interfaces.LoggingSettings) (logging.Config, error) {
	config := logging.DefaultConfig()
	config.Level = logging.ParseLevel(settings.Level)
	if settings.Format != "" {
		config.Format = settings.Format
	}

	switch settings.Output {
	case "", "file":
		path, err := logging.DefaultLogFile()
		if err != nil {
			return config, err
		}
		config.Output = path
	default:
		config.Output = settings.Output
	}

	return config, nil
}
