// Package config loads declgen.toml.
//
// Sources are merged in precedence order, lowest first: built-in defaults,
// the user config (~/.declgen/config.toml), the project declgen.toml found by
// walking up from the working directory, then DECLGEN_* environment variables
// (DECLGEN_GENERATE_JOBS=4 sets generate.jobs).
package config

import "github.com/teranos/declgen/resource"

// ProjectFile is the project configuration file name.
const ProjectFile = "declgen.toml"

// Config represents the declgen configuration
type Config struct {
	Project   ProjectConfig   `mapstructure:"project"`
	Resources ResourcesConfig `mapstructure:"resources"`
	Generate  GenerateConfig  `mapstructure:"generate"`
	Output    OutputConfig    `mapstructure:"output"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Log       LogConfig       `mapstructure:"log"`

	// File is the project config that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// ProjectConfig selects the Go packages to scan
type ProjectConfig struct {
	Root       string   `mapstructure:"root"`     // relative to the config file's directory
	Packages   []string `mapstructure:"packages"` // go/packages patterns (default: ./...)
	Tests      bool     `mapstructure:"tests"`    // include _test.go files
	BuildFlags []string `mapstructure:"build_flags"`
}

// ResourcesConfig configures resource table aggregation
type ResourcesConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Dirs          []string `mapstructure:"dirs"`     // scanned recursively, relative to the project root
	Patterns      []string `mapstructure:"patterns"` // base-name globs
	RootNamespace string   `mapstructure:"root_namespace"`
	OutputDir     string   `mapstructure:"output_dir"`
	Package       string   `mapstructure:"package"` // empty = derived from output_dir

	// Overrides pin the key of individual tables:
	//
	//	[[resources.overrides]]
	//	path = "Resources/Strings.resx"
	//	class_name = "UIStrings"
	Overrides []resource.Override `mapstructure:"overrides"`
}

// GenerateConfig configures the synthesizers
type GenerateConfig struct {
	Jobs            int    `mapstructure:"jobs"` // 0 = one per CPU
	DirectivePrefix string `mapstructure:"directive_prefix"`
	Constructors    bool   `mapstructure:"constructors"`
	Bindings        bool   `mapstructure:"bindings"`
	Services        bool   `mapstructure:"services"`
}

// OutputConfig configures how artifacts reach the disk
type OutputConfig struct {
	Manifest    string `mapstructure:"manifest"` // empty = no manifest
	DeleteStale bool   `mapstructure:"delete_stale"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceMS int      `mapstructure:"debounce_ms"`
	Ignore     []string `mapstructure:"ignore"` // base-name globs never treated as inputs
}

// LogConfig configures logging
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Theme string `mapstructure:"theme"`
}
