package synth

import (
	"strings"

	"github.com/teranos/declgen/descriptor"
	"github.com/teranos/declgen/equatable"
)

// Members is a type descriptor with the member descriptors it owns, the input
// of the per-type synthesizers.
type Members struct {
	Type       descriptor.Type
	Fields     equatable.Seq[descriptor.Field]
	Properties equatable.Seq[descriptor.Property]
}

func (m Members) Equal(o Members) bool {
	return m.Type.Equal(o.Type) && m.Fields.Equal(o.Fields) && m.Properties.Equal(o.Properties)
}

func (m Members) Hash(h *equatable.Hasher) {
	m.Type.Hash(h)
	m.Fields.Hash(h)
	m.Properties.Hash(h)
}

// Local reports whether the type is declared inside a function.
func (m Members) Local() bool { return IsLocal(m.Type) }

// Generic reports whether the type has type parameters.
func (m Members) Generic() bool { return IsGeneric(m.Type.ValueType) }

// IsLocal reports whether t is declared inside a function, where generated
// package-level code cannot name it.
func IsLocal(t descriptor.Type) bool {
	for s := range t.Containing.Values() {
		if s.Kind == "func" {
			return true
		}
	}
	return false
}

// IsGeneric reports whether a rendered named type carries type parameters.
func IsGeneric(valueType string) bool {
	return strings.ContainsRune(valueType, '[') && !strings.HasPrefix(valueType, "[")
}

// CollectMembers groups field and property descriptors under the types
// carrying annotation, preserving the order of types in ds.
func CollectMembers(ds []descriptor.Descriptor, annotation string) []Members {
	fields := make(map[string][]descriptor.Field)
	props := make(map[string][]descriptor.Property)
	for _, d := range ds {
		switch d := d.(type) {
		case descriptor.Field:
			fields[d.Owner] = append(fields[d.Owner], d)
		case descriptor.Property:
			props[d.Owner] = append(props[d.Owner], d)
		}
	}
	var out []Members
	for _, d := range ds {
		t, ok := d.(descriptor.Type)
		if !ok || !t.HasAnnotation(annotation) {
			continue
		}
		out = append(out, Members{
			Type:       t,
			Fields:     equatable.From(fields[t.QualifiedName]),
			Properties: equatable.From(props[t.QualifiedName]),
		})
	}
	return out
}

// ReceiverName is the conventional one-letter receiver for typeName.
func ReceiverName(typeName string) string {
	return strings.ToLower(typeName[:1])
}
