package config

import (
	"go/token"
	"path"

	"github.com/teranos/declgen/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Jobs: 0 = one worker per CPU, negative = invalid
	if c.Generate.Jobs < 0 {
		return errors.Newf("generate.jobs must be >= 0, got %d", c.Generate.Jobs)
	}
	if c.Generate.DirectivePrefix == "" {
		return errors.New("generate.directive_prefix cannot be empty")
	}
	if !token.IsIdentifier(c.Generate.DirectivePrefix) {
		return errors.Newf("generate.directive_prefix must be an identifier, got %q", c.Generate.DirectivePrefix)
	}

	// Debounce: 0 = run on every event (valid per "zero means zero"), negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	for _, pattern := range c.Watch.Ignore {
		if _, err := path.Match(pattern, ""); err != nil {
			return errors.Newf("watch.ignore: invalid pattern %q", pattern)
		}
	}

	if len(c.Project.Packages) == 0 {
		return errors.WithHint(
			errors.New("project.packages cannot be empty"),
			`use packages = ["./..."] to scan the whole module`,
		)
	}

	// Resource settings only matter when aggregation is enabled
	if c.Resources.Enabled {
		if c.Resources.OutputDir == "" {
			return errors.New("resources.output_dir cannot be empty when resources are enabled")
		}
		if len(c.Resources.Patterns) == 0 {
			return errors.New("resources.patterns cannot be empty when resources are enabled")
		}
		for _, pattern := range c.Resources.Patterns {
			if _, err := path.Match(pattern, ""); err != nil {
				return errors.Newf("resources.patterns: invalid pattern %q", pattern)
			}
		}
		if c.Resources.Package != "" && !token.IsIdentifier(c.Resources.Package) {
			return errors.Newf("resources.package must be a Go identifier, got %q", c.Resources.Package)
		}
	}

	seen := make(map[string]bool, len(c.Resources.Overrides))
	for i, o := range c.Resources.Overrides {
		if o.Path == "" {
			return errors.Newf("resources.overrides[%d]: path cannot be empty", i)
		}
		if seen[o.Path] {
			return errors.Newf("resources.overrides: %s listed twice", o.Path)
		}
		seen[o.Path] = true
		if o.IsZero() {
			return errors.Newf("resources.overrides[%d] (%s) overrides nothing", i, o.Path)
		}
	}

	return nil
}
