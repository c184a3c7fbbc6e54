package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the project file islet looks for in the working directory
	ConfigFileName = "islet.yaml"

	// CurrentVersion is the config file version written by SaveConfig
	CurrentVersion = "1.0"
)

// Config represents an islet project configuration
type Config struct {
	// ComponentDirs are searched for *.html component files, in order. Earlier
	// directories take priority when two components share a name.
	ComponentDirs []string `yaml:"component_dirs,omitempty" validate:"dive,required"`

	// OutDir is where compile writes modules when no -o is given
	OutDir string `yaml:"out_dir" validate:"required"`

	// Minify minifies rendered HTML and compiled modules
	Minify bool `yaml:"minify,omitempty"`

	// Debug enables engine debug logging
	Debug bool `yaml:"debug,omitempty"`

	// Version tracks the config file version for future migrations
	Version string `yaml:"version" validate:"required,oneof=1.0"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		ComponentDirs: []string{},
		OutDir:        "dist",
		Version:       CurrentVersion,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and reports every invalid field
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var msgs []string
	for _, e := range verrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, e.Param(), e.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("invalid %s: %s", ConfigFileName, strings.Join(msgs, "; "))
}

// LoadConfig loads islet.yaml from dir. A missing file yields the defaults.
func LoadConfig(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults for missing fields
	if config.OutDir == "" {
		config.OutDir = "dist"
	}
	if config.Version == "" {
		config.Version = CurrentVersion
	}

	// Component directories are relative to the config file
	for i, d := range config.ComponentDirs {
		if d != "" && !filepath.IsAbs(d) {
			config.ComponentDirs[i] = filepath.Join(dir, d)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes config to islet.yaml in dir
func SaveConfig(dir string, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ComponentFiles lists the *.html files of every component directory in
// priority order
func (c *Config) ComponentFiles() ([]string, error) {
	var files []string
	for _, dir := range c.ComponentDirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}
		files = append(files, matches...)
	}
	return files, nil
}
