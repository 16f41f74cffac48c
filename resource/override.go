package resource

import (
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/errors"
)

// SidecarSuffix names the optional metadata file next to a table:
// Strings.resx.meta.toml overrides the key of Strings.resx.
const SidecarSuffix = ".meta.toml"

// Override pins parts of a table's canonical key. Empty fields fall back to
// the value derived from the table's path.
type Override struct {
	Path        string `toml:"-" mapstructure:"path"`
	Namespace   string `toml:"namespace" mapstructure:"namespace"`
	ClassName   string `toml:"class_name" mapstructure:"class_name"`
	ResourceKey string `toml:"resource_key" mapstructure:"resource_key"`
}

func (o Override) Equal(other Override) bool { return o == other }

func (o Override) Hash(h *equatable.Hasher) {
	h.String(o.Path)
	h.String(o.Namespace)
	h.String(o.ClassName)
	h.String(o.ResourceKey)
}

// IsZero reports whether the override pins nothing.
func (o Override) IsZero() bool {
	return o.Namespace == "" && o.ClassName == "" && o.ResourceKey == ""
}

// ParseSidecar reads a .meta.toml override.
func ParseSidecar(path string, data []byte) (Override, error) {
	var o Override
	dec := toml.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		return Override{}, errors.Wrapf(err, "failed to parse sidecar %s", path)
	}
	o.Path = path
	return o, nil
}
