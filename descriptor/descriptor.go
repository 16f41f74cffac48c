// Package descriptor snapshots host declarations into immutable values.
//
// A descriptor holds only strings, booleans and equatable sequences. Two
// enumerations of unchanged source produce descriptors that are Equal, which is
// what lets the pipeline skip re-synthesis.
package descriptor

import (
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/typedconst"
)

// Kind is the descriptor variant.
type Kind uint8

const (
	KindType Kind = iota + 1
	KindField
	KindProperty
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindField:
		return "field"
	case KindProperty:
		return "property"
	case KindMethod:
		return "method"
	}
	return "unknown"
}

// Access is a declaration's visibility.
type Access uint8

const (
	AccessUnexported Access = iota
	AccessExported
)

func (a Access) String() string {
	if a == AccessExported {
		return "exported"
	}
	return "unexported"
}

// NamedArg is a key: value directive argument.
type NamedArg struct {
	Name  string
	Value typedconst.Constant
}

func (n NamedArg) Equal(o NamedArg) bool { return n.Name == o.Name && n.Value.Equal(o.Value) }

func (n NamedArg) Hash(h *equatable.Hasher) {
	h.String(n.Name)
	n.Value.Hash(h)
}

// Annotation is one directive with its evaluated arguments.
type Annotation struct {
	Name       string
	Positional equatable.Seq[typedconst.Constant]
	Named      equatable.Seq[NamedArg]
}

// Arg returns the named argument.
func (a Annotation) Arg(name string) (typedconst.Constant, bool) {
	for n := range a.Named.Values() {
		if n.Name == name {
			return n.Value, true
		}
	}
	return typedconst.Null(), false
}

func (a Annotation) Equal(o Annotation) bool {
	return a.Name == o.Name && a.Positional.Equal(o.Positional) && a.Named.Equal(o.Named)
}

func (a Annotation) Hash(h *equatable.Hasher) {
	h.String(a.Name)
	a.Positional.Hash(h)
	a.Named.Hash(h)
}

// ScopeRef names one enclosing scope of a type.
type ScopeRef struct {
	// Kind is "package", "func" or "type".
	Kind string
	Name string
}

func (s ScopeRef) Equal(o ScopeRef) bool { return s == o }

func (s ScopeRef) Hash(h *equatable.Hasher) {
	h.String(s.Kind)
	h.String(s.Name)
}

// Common is shared by every descriptor variant.
type Common struct {
	Name          string
	QualifiedName string
	// ValueType is rendered relative to the declaring package.
	ValueType   string
	Access      Access
	Package     string
	PackageName string
	// Dir is the package directory relative to the project root.
	Dir         string
	Annotations equatable.Seq[Annotation]
}

// Annotation returns the first annotation with the given name.
func (c Common) Annotation(name string) (Annotation, bool) {
	for a := range c.Annotations.Values() {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// HasAnnotation reports whether an annotation with the given name is attached.
func (c Common) HasAnnotation(name string) bool {
	_, ok := c.Annotation(name)
	return ok
}

func (c Common) equal(o Common) bool {
	return c.Name == o.Name &&
		c.QualifiedName == o.QualifiedName &&
		c.ValueType == o.ValueType &&
		c.Access == o.Access &&
		c.Package == o.Package &&
		c.PackageName == o.PackageName &&
		c.Dir == o.Dir &&
		c.Annotations.Equal(o.Annotations)
}

func (c Common) hash(h *equatable.Hasher) {
	h.String(c.Name)
	h.String(c.QualifiedName)
	h.String(c.ValueType)
	h.Uint64(uint64(c.Access))
	h.String(c.Package)
	h.String(c.PackageName)
	h.String(c.Dir)
	c.Annotations.Hash(h)
}

// Descriptor is implemented by Type, Field, Property and Method.
type Descriptor interface {
	Kind() Kind
	Base() Common
	Hash(h *equatable.Hasher)
	isDescriptor()
}

// Equal compares two descriptors of any variant.
func Equal(a, b Descriptor) bool {
	switch a := a.(type) {
	case Type:
		b, ok := b.(Type)
		return ok && a.Equal(b)
	case Field:
		b, ok := b.(Field)
		return ok && a.Equal(b)
	case Property:
		b, ok := b.(Property)
		return ok && a.Equal(b)
	case Method:
		b, ok := b.(Method)
		return ok && a.Equal(b)
	}
	return a == nil && b == nil
}

// Type describes a named type declaration.
type Type struct {
	Common
	Shape string
	// Containing lists enclosing scopes from innermost to outermost.
	Containing equatable.Seq[ScopeRef]
	// HintName is "pkgname.Type" (or "pkgname.Func.Type" for local types).
	HintName string
}

func (t Type) Kind() Kind { return KindType }
func (t Type) Base() Common { return t.Common }
func (Type) isDescriptor() {}

func (t Type) Equal(o Type) bool {
	return t.Common.equal(o.Common) && t.Shape == o.Shape && t.Containing.Equal(o.Containing) && t.HintName == o.HintName
}

func (t Type) Hash(h *equatable.Hasher) {
	h.Uint64(uint64(KindType))
	t.Common.hash(h)
	h.String(t.Shape)
	t.Containing.Hash(h)
	h.String(t.HintName)
}

// Field describes a struct field.
type Field struct {
	Common
	Owner          string
	HasInitializer bool
}

func (f Field) Kind() Kind { return KindField }
func (f Field) Base() Common { return f.Common }
func (Field) isDescriptor() {}

// AutoWireable reports whether a constructor may take this field as a parameter.
func (f Field) AutoWireable() bool { return !f.HasInitializer }

func (f Field) Equal(o Field) bool {
	return f.Common.equal(o.Common) && f.Owner == o.Owner && f.HasInitializer == o.HasInitializer
}

func (f Field) Hash(h *equatable.Hasher) {
	h.Uint64(uint64(KindField))
	f.Common.hash(h)
	h.String(f.Owner)
	h.Bool(f.HasInitializer)
}

// Property describes a getter method.
type Property struct {
	Common
	Owner        string
	TrivialBody  bool
	BackingField string
}

func (p Property) Kind() Kind { return KindProperty }
func (p Property) Base() Common { return p.Common }
func (Property) isDescriptor() {}

// AutoWireable reports whether the getter only returns its backing field.
func (p Property) AutoWireable() bool { return p.TrivialBody }

func (p Property) Equal(o Property) bool {
	return p.Common.equal(o.Common) && p.Owner == o.Owner && p.TrivialBody == o.TrivialBody && p.BackingField == o.BackingField
}

func (p Property) Hash(h *equatable.Hasher) {
	h.Uint64(uint64(KindProperty))
	p.Common.hash(h)
	h.String(p.Owner)
	h.Bool(p.TrivialBody)
	h.String(p.BackingField)
}

// Method describes a function or a non-getter method.
type Method struct {
	Common
	// Owner is empty for package-level functions.
	Owner string
}

func (m Method) Kind() Kind { return KindMethod }
func (m Method) Base() Common { return m.Common }
func (Method) isDescriptor() {}

func (m Method) Equal(o Method) bool {
	return m.Common.equal(o.Common) && m.Owner == o.Owner
}

func (m Method) Hash(h *equatable.Hasher) {
	h.Uint64(uint64(KindMethod))
	m.Common.hash(h)
	h.String(m.Owner)
}
