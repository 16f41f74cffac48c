package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/declgen/resource"
)

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ProjectFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Project.Root)
	assert.Equal(t, []string{"./..."}, cfg.Project.Packages)
	assert.True(t, cfg.Resources.Enabled)
	assert.Equal(t, []string{"*.resx"}, cfg.Resources.Patterns)
	assert.Equal(t, DefaultOutputDir, cfg.Resources.OutputDir)
	assert.Equal(t, "declgen", cfg.Generate.DirectivePrefix)
	assert.True(t, cfg.Generate.Constructors)
	assert.Equal(t, DefaultManifest, cfg.Output.Manifest)
	assert.True(t, cfg.Output.DeleteStale)
	assert.Equal(t, DefaultDebounceMS, cfg.Watch.DebounceMS)
	assert.NoError(t, cfg.Validate(), "defaults must validate")
}

func TestLoadFrom_FindsProjectConfigUpward(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	path := writeConfig(t, root, `
[project]
packages = ["./internal/..."]

[resources]
dirs = ["Resources"]
patterns = ["*.resx", "*.toml"]
root_namespace = "App"

[[resources.overrides]]
path = "Resources/Strings.resx"
class_name = "UIStrings"

[generate]
jobs = 2
bindings = false
`)
	nested := filepath.Join(root, "internal", "app")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := LoadFrom(nested)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, []string{"./internal/..."}, cfg.Project.Packages)
	assert.Equal(t, []string{"Resources"}, cfg.Resources.Dirs)
	assert.Equal(t, []string{"*.resx", "*.toml"}, cfg.Resources.Patterns)
	assert.Equal(t, "App", cfg.Resources.RootNamespace)
	assert.Equal(t, []resource.Override{{Path: "Resources/Strings.resx", ClassName: "UIStrings"}}, cfg.Resources.Overrides)
	assert.Equal(t, 2, cfg.Generate.Jobs)
	assert.False(t, cfg.Generate.Bindings)
	assert.True(t, cfg.Generate.Services, "unset keys keep their defaults")

	projectRoot, err := cfg.ProjectRoot()
	require.NoError(t, err)
	assert.Equal(t, root, projectRoot, "project.root is relative to the config file")
	assert.Equal(t, filepath.Join(root, DefaultManifest), cfg.ManifestPath(projectRoot))
}

func TestLoadFrom_EnvironmentWins(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	writeConfig(t, root, "[generate]\njobs = 2\n")
	t.Setenv("DECLGEN_GENERATE_JOBS", "6")
	t.Setenv("DECLGEN_LOG_JSON", "true")

	cfg, err := LoadFrom(root)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Generate.Jobs)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadFrom_NoProjectConfig(t *testing.T) {
	isolateHome(t)
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, "declgen", cfg.Generate.DirectivePrefix)
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	writeConfig(t, root, "[generate\njobs = ")

	_, err := LoadFrom(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ProjectFile)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[output]\nmanifest = \"\"\ndelete_stale = false\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Output.Manifest)
	assert.Empty(t, cfg.ManifestPath("/project"), "empty manifest disables it")
	assert.False(t, cfg.Output.DeleteStale)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := LoadWithViper(v)
		require.NoError(t, err)
		return *cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero jobs is valid (one per CPU)", func(c *Config) { c.Generate.Jobs = 0 }, false},
		{"negative jobs is invalid", func(c *Config) { c.Generate.Jobs = -1 }, true},
		{"zero debounce is valid", func(c *Config) { c.Watch.DebounceMS = 0 }, false},
		{"negative debounce is invalid", func(c *Config) { c.Watch.DebounceMS = -5 }, true},
		{"empty directive prefix", func(c *Config) { c.Generate.DirectivePrefix = "" }, true},
		{"directive prefix with colon", func(c *Config) { c.Generate.DirectivePrefix = "gen:x" }, true},
		{"bad resource pattern", func(c *Config) { c.Resources.Patterns = []string{"[*.resx"} }, true},
		{"bad resource pattern ignored when disabled", func(c *Config) {
			c.Resources.Enabled = false
			c.Resources.Patterns = []string{"[*.resx"}
		}, false},
		{"empty output dir", func(c *Config) { c.Resources.OutputDir = "" }, true},
		{"package must be identifier", func(c *Config) { c.Resources.Package = "my-res" }, true},
		{"no packages", func(c *Config) { c.Project.Packages = nil }, true},
		{"bad ignore pattern", func(c *Config) { c.Watch.Ignore = []string{"["} }, true},
		{"override without path", func(c *Config) {
			c.Resources.Overrides = []resource.Override{{ClassName: "X"}}
		}, true},
		{"override pinning nothing", func(c *Config) {
			c.Resources.Overrides = []resource.Override{{Path: "a.resx"}}
		}, true},
		{"duplicate override", func(c *Config) {
			c.Resources.Overrides = []resource.Override{
				{Path: "a.resx", ClassName: "A"},
				{Path: "a.resx", Namespace: "N"},
			}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_Caches(t *testing.T) {
	isolateHome(t)
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}
