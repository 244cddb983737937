// Package config loads docsift configuration from .docsift.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	sifterrors "github.com/docsift/docsift/internal/errors"
	"github.com/docsift/docsift/internal/record"
)

// DefaultFileName is the per-project configuration file name.
const DefaultFileName = ".docsift.yaml"

// EnvIndexPath overrides the configured index path when set.
const EnvIndexPath = "DOCSIFT_INDEX_PATH"

// Config is the complete docsift configuration.
type Config struct {
	Populate PopulateConfig `yaml:"populate"`
	Index    IndexConfig    `yaml:"index"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PopulateConfig configures record extraction.
type PopulateConfig struct {
	// Glob selects the files to populate from.
	Glob string `yaml:"glob"`
	// Strategy is the merge strategy: merge, split, or both.
	Strategy string `yaml:"strategy"`
	// BasePath is prepended to every record path.
	BasePath string `yaml:"base_path"`
}

// IndexConfig configures the destination index.
type IndexConfig struct {
	// Path is the on-disk index directory.
	Path string `yaml:"path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Populate: PopulateConfig{
			Glob:     "**/*.md",
			Strategy: string(record.StrategyMerge),
		},
		Index: IndexConfig{
			Path: ".docsift/records.bleve",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist. Environment overrides apply last.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, sifterrors.New(sifterrors.ErrCodeConfigNotFound,
				fmt.Sprintf("cannot read config %s", path), err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, sifterrors.New(sifterrors.ErrCodeConfigInvalid,
			fmt.Sprintf("cannot parse config %s", path), err)
	}

	if envPath := os.Getenv(EnvIndexPath); envPath != "" {
		cfg.Index.Path = envPath
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDefault loads the configuration from the current directory.
func LoadDefault() (Config, error) {
	return Load(filepath.Join(".", DefaultFileName))
}

// Validate checks field values that downstream code assumes.
func (c Config) Validate() error {
	if _, err := record.ParseStrategy(c.Populate.Strategy); err != nil {
		return sifterrors.New(sifterrors.ErrCodeConfigInvalid, err.Error(), err)
	}
	if c.Index.Path == "" {
		return sifterrors.New(sifterrors.ErrCodeConfigInvalid,
			"index.path must not be empty", nil)
	}
	return nil
}

// Strategy returns the parsed merge strategy. Call after Validate.
func (c Config) Strategy() record.Strategy {
	s, _ := record.ParseStrategy(c.Populate.Strategy)
	return s
}
