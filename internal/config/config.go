// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for transcriptr.
type Config struct {
	ProjectsDir       string `mapstructure:"projects_dir" yaml:"projects_dir"`
	OutputFormat      string `mapstructure:"output_format" yaml:"output_format"`
	PageSize          int    `mapstructure:"page_size" yaml:"page_size"`
	ImageExportMode   string `mapstructure:"image_export_mode" yaml:"image_export_mode"`
	CacheEnabled      bool   `mapstructure:"cache_enabled" yaml:"cache_enabled"`
	DataDir           string `mapstructure:"data_dir" yaml:"data_dir"`
	CleanupPeriodDays int    `mapstructure:"cleanup_period_days" yaml:"cleanup_period_days"`
	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`
	LogFile           string `mapstructure:"log_file" yaml:"log_file"`
}

// DefaultProjectsDir returns the standard Claude Code projects directory.
func DefaultProjectsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("transcriptr")

	// Set defaults
	v.SetDefault("projects_dir", DefaultProjectsDir())
	v.SetDefault("output_format", "html")
	v.SetDefault("page_size", 2000)
	v.SetDefault("image_export_mode", "")
	v.SetDefault("cache_enabled", true)
	v.SetDefault("data_dir", "")
	v.SetDefault("cleanup_period_days", 30)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	// Setup ENV binding with TRANSCRIPTR_ prefix
	v.SetEnvPrefix("TRANSCRIPTR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool/int parsing
	// Note: BindEnv errors are very rare (only invalid key names), but we check them anyway
	if err := v.BindEnv("projects_dir", "TRANSCRIPTR_PROJECTS_DIR"); err != nil {
		return nil, fmt.Errorf("binding projects_dir env: %w", err)
	}
	if err := v.BindEnv("output_format", "TRANSCRIPTR_OUTPUT_FORMAT"); err != nil {
		return nil, fmt.Errorf("binding output_format env: %w", err)
	}
	if err := v.BindEnv("page_size", "TRANSCRIPTR_PAGE_SIZE"); err != nil {
		return nil, fmt.Errorf("binding page_size env: %w", err)
	}
	if err := v.BindEnv("image_export_mode", "TRANSCRIPTR_IMAGE_EXPORT_MODE"); err != nil {
		return nil, fmt.Errorf("binding image_export_mode env: %w", err)
	}
	if err := v.BindEnv("cache_enabled", "TRANSCRIPTR_CACHE_ENABLED"); err != nil {
		return nil, fmt.Errorf("binding cache_enabled env: %w", err)
	}
	if err := v.BindEnv("data_dir", "TRANSCRIPTR_DATA_DIR"); err != nil {
		return nil, fmt.Errorf("binding data_dir env: %w", err)
	}
	if err := v.BindEnv("cleanup_period_days", "TRANSCRIPTR_CLEANUP_PERIOD_DAYS"); err != nil {
		return nil, fmt.Errorf("binding cleanup_period_days env: %w", err)
	}
	if err := v.BindEnv("log_level", "TRANSCRIPTR_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("binding log_level env: %w", err)
	}
	if err := v.BindEnv("log_file", "TRANSCRIPTR_LOG_FILE"); err != nil {
		return nil, fmt.Errorf("binding log_file env: %w", err)
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		// Need to set config file explicitly for merge
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/transcriptr/transcriptr.yml or $XDG_CONFIG_HOME/transcriptr/transcriptr.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "transcriptr", "transcriptr.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "transcriptr", "transcriptr.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./transcriptr.yml in the current working directory.
func ProjectPath() string {
	return "transcriptr.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	path := ProjectPath()

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
