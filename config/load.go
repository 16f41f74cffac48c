package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/declgen/errors"
)

var globalConfig *Config

// Load reads the configuration for the working directory. The result is
// cached until Reset.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get working directory")
	}
	cfg, err := LoadFrom(dir)
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// LoadFrom reads the configuration as seen from dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("DECLGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	projectFile := FindProjectConfig(dir)
	if err := mergeConfigFiles(v, projectFile); err != nil {
		return nil, err
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	cfg.File = projectFile
	return cfg, nil
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path, on top of the
// defaults and without environment variables.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", configPath)
	}
	cfg.File = configPath
	return cfg, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
}

// FindProjectConfig searches for declgen.toml by walking up the directory
// tree from start. Returns the path to the first config file found, or empty
// string if none found.
func FindProjectConfig(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// mergeConfigFiles merges configuration files in precedence order, lowest
// first. Environment variables still win over every file.
func mergeConfigFiles(v *viper.Viper, projectFile string) error {
	var configPaths []string
	if home, err := os.UserHomeDir(); err == nil {
		configPaths = append(configPaths, filepath.Join(home, ".declgen", "config.toml"))
	}
	if projectFile != "" {
		configPaths = append(configPaths, projectFile)
	}

	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err != nil {
			continue
		}
		fileViper := viper.New()
		fileViper.SetConfigFile(configPath)
		fileViper.SetConfigType("toml")

		if err := fileViper.ReadInConfig(); err != nil {
			return errors.WithHint(
				errors.Wrapf(err, "failed to read config file %s", configPath),
				"declgen.toml must be valid TOML",
			)
		}
		if err := v.MergeConfigMap(fileViper.AllSettings()); err != nil {
			return errors.Wrapf(err, "failed to merge config file %s", configPath)
		}
	}
	return nil
}

// ProjectRoot resolves project.root against the directory of the config
// file, or against the working directory when there is none.
func (c *Config) ProjectRoot() (string, error) {
	root := c.Project.Root
	if root == "" {
		root = "."
	}
	if !filepath.IsAbs(root) && c.File != "" {
		root = filepath.Join(filepath.Dir(c.File), root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve project root %s", root)
	}
	return abs, nil
}

// ManifestPath resolves output.manifest against the project root. Empty
// means the manifest is disabled.
func (c *Config) ManifestPath(root string) string {
	if c.Output.Manifest == "" {
		return ""
	}
	if filepath.IsAbs(c.Output.Manifest) {
		return c.Output.Manifest
	}
	return filepath.Join(root, c.Output.Manifest)
}
