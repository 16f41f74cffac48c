package resource

import (
	"sort"
	"strings"

	"github.com/teranos/declgen/errors"
)

// Parser reads the entries of one table format.
type Parser func(data []byte) ([]RawEntry, error)

var parsers = map[string]Parser{
	".resx": parseResx,
	".toml": parseTOML,
	".yaml": parseYAML,
	".yml":  parseYAML,
	".json": parseJSON,
}

// Formats lists the supported table extensions.
func Formats() []string {
	out := make([]string, 0, len(parsers))
	for ext := range parsers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Parse reads a table, choosing the format by file extension.
func Parse(path string, data []byte) ([]RawEntry, error) {
	_, _, ext := SplitName(path)
	parse, ok := parsers[strings.ToLower(ext)]
	if !ok {
		return nil, errors.WithHintf(
			errors.Newf("unsupported resource table format %q", ext),
			"supported formats: %s", strings.Join(Formats(), ", "),
		)
	}
	entries, err := parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	for i, e := range entries {
		if e.Name == "" {
			return nil, errors.Newf("%s: entry %d has no name", path, i)
		}
	}
	return entries, nil
}

// tableEntry is the long form shared by the TOML, YAML and JSON formats.
type tableEntry struct {
	Value   *string `toml:"value" yaml:"value" json:"value"`
	Type    string  `toml:"type" yaml:"type" json:"type"`
	Comment string  `toml:"comment" yaml:"comment" json:"comment"`
}

func (t tableEntry) raw(name string) RawEntry {
	e := RawEntry{Name: name, Type: t.Type, Comment: t.Comment}
	if t.Value != nil {
		e.Value, e.HasValue = *t.Value, true
	}
	return e
}
