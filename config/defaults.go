package config

import (
	"github.com/spf13/viper"
)

// Default values shared with the CLI help text.
const (
	DefaultManifest   = ".declgen/manifest.db"
	DefaultDebounceMS = 300
	DefaultOutputDir  = "resources"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("project.root", ".")
	v.SetDefault("project.packages", []string{"./..."})
	v.SetDefault("project.tests", false)
	v.SetDefault("project.build_flags", []string{})

	v.SetDefault("resources.enabled", true)
	v.SetDefault("resources.dirs", []string{"."})
	v.SetDefault("resources.patterns", []string{"*.resx"})
	v.SetDefault("resources.root_namespace", "")
	v.SetDefault("resources.output_dir", DefaultOutputDir)
	v.SetDefault("resources.package", "")

	v.SetDefault("generate.jobs", 0)
	v.SetDefault("generate.directive_prefix", "declgen")
	v.SetDefault("generate.constructors", true)
	v.SetDefault("generate.bindings", true)
	v.SetDefault("generate.services", true)

	v.SetDefault("output.manifest", DefaultManifest)
	v.SetDefault("output.delete_stale", true)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
	v.SetDefault("watch.ignore", []string{"*.g.go", "*~", ".#*"})

	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", "")
}
