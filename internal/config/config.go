// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageNATS   = "nats"
	StorageMemory = "memory"
)

// Snapshot codecs.
const (
	CodecJSON    = "json"
	CodecMsgPack = "msgpack"
)

// DefaultDebounce is the delay between the last form change and the snapshot write.
const DefaultDebounce = 300 * time.Millisecond

// Config holds all configuration values for stepform.
type Config struct {
	DataDir      string        `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile      string        `mapstructure:"log_file" yaml:"log_file"`
	Storage      string        `mapstructure:"storage" yaml:"storage"`
	Codec        string        `mapstructure:"codec" yaml:"codec"`
	Debounce     time.Duration `mapstructure:"debounce" yaml:"debounce"`
	ConfirmSteps bool          `mapstructure:"confirm_steps" yaml:"confirm_steps"`
	FormsDir     string        `mapstructure:"forms_dir" yaml:"forms_dir"`
	Theme        string        `mapstructure:"theme" yaml:"theme"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		DataDir:      ".stepform",
		LogLevel:     "info",
		Storage:      StorageFile,
		Codec:        CodecJSON,
		Debounce:     DefaultDebounce,
		ConfirmSteps: false,
		FormsDir:     "forms",
		Theme:        "catppuccin-mocha",
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("stepform")

	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("storage", def.Storage)
	v.SetDefault("codec", def.Codec)
	v.SetDefault("debounce", def.Debounce)
	v.SetDefault("confirm_steps", def.ConfirmSteps)
	v.SetDefault("forms_dir", def.FormsDir)
	v.SetDefault("theme", def.Theme)

	v.SetEnvPrefix("STEPFORM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool/duration parsing
	for _, key := range []string{"data_dir", "log_level", "log_file", "storage", "codec", "debounce", "confirm_steps", "forms_dir", "theme"} {
		if err := v.BindEnv(key, "STEPFORM_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values no backend or codec understands.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageNATS, StorageMemory:
	default:
		return fmt.Errorf("invalid storage %q (want %s, %s or %s)", c.Storage, StorageFile, StorageNATS, StorageMemory)
	}
	switch c.Codec {
	case CodecJSON, CodecMsgPack:
	default:
		return fmt.Errorf("invalid codec %q (want %s or %s)", c.Codec, CodecJSON, CodecMsgPack)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("invalid debounce %s: must not be negative", c.Debounce)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// SnapshotDir is where the file backend keeps snapshots.
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.DataDir, "snapshots")
}

// NATSDir is the JetStream store directory for the nats backend.
func (c *Config) NATSDir() string {
	return filepath.Join(c.DataDir, "nats")
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/stepform/stepform.yml or $XDG_CONFIG_HOME/stepform/stepform.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stepform", "stepform.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stepform", "stepform.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "stepform.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	return write(GlobalPath(), cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

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
