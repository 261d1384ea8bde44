package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigDir is the per-repository directory holding config and
	// the default database
	ProjectConfigDir = ".paradigm"
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "config.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/paradigm"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	userDir string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	home, _ := os.UserHomeDir()
	return &Loader{logger: logger, userDir: home}
}

// Load loads configuration with layered precedence:
//  1. Default config
//  2. User config (~/.config/paradigm/config.yaml)
//  3. explicitPath if set, otherwise .paradigm/config.yaml in startDir or
//     the nearest parent that has one
//
// A missing explicitPath is an error; missing layered files are not.
func (l *Loader) Load(startDir, explicitPath string) (*Config, error) {
	config := DefaultConfig()

	if userPath := l.userConfigPath(); userPath != "" {
		if userConfig, err := loadLayer(userPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userPath), slog.String("error", err.Error()))
		}
	}

	projectPath := explicitPath
	if projectPath == "" {
		projectPath = FindProjectConfig(startDir)
	}
	if projectPath != "" {
		projectConfig, err := loadLayer(projectPath)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", projectPath, err)
		}
		l.logger.Debug("Loaded project config", slog.String("path", projectPath))
		config.Merge(projectConfig)
	} else {
		l.logger.Debug("No project config found")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// EnsureProjectConfig writes the default config to
// repoRoot/.paradigm/config.yaml unless a file is already there. It returns
// the path and whether the file was created.
func (l *Loader) EnsureProjectConfig(repoRoot string) (string, bool, error) {
	path := filepath.Join(repoRoot, ProjectConfigDir, ProjectConfigFile)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := DefaultConfig().SaveToFile(path); err != nil {
		return "", false, err
	}
	l.logger.Info("Created default project config", slog.String("path", path))
	return path, true, nil
}

func (l *Loader) userConfigPath() string {
	if l.userDir == "" {
		return ""
	}
	return filepath.Join(l.userDir, UserConfigDir, UserConfigFile)
}

// FindProjectConfig searches for .paradigm/config.yaml in dir and its
// parents. Returns "" if none exists.
func FindProjectConfig(dir string) string {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigDir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
