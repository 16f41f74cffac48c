// Package typedconst models the typed-constant arguments attached to annotations.
//
// A Constant is a closed variant: Null, String, Bool, Numeric, TypeRef, Enum or
// Array. Constants hold only plain values so two constants built from separate
// enumerations of the same source compare equal.
package typedconst

import (
	"fmt"
	"strings"

	"github.com/teranos/declgen/equatable"
)

// Kind tags the variant held by a Constant.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindNumeric
	KindTypeRef
	KindEnum
	KindArray
)

var kindNames = [...]string{"null", "string", "bool", "numeric", "typeref", "enum", "array"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// TypeName names a named or predeclared type. Pkg is the import path and is
// empty for predeclared types such as string or int.
type TypeName struct {
	Pkg  string
	Name string
}

// ParseTypeName splits "path/to/pkg.Name" into a TypeName.
func ParseTypeName(qualified string) TypeName {
	slash := strings.LastIndex(qualified, "/")
	dot := strings.LastIndex(qualified, ".")
	if dot <= slash {
		return TypeName{Name: qualified}
	}
	return TypeName{Pkg: qualified[:dot], Name: qualified[dot+1:]}
}

// String returns the fully qualified spelling.
func (t TypeName) String() string {
	if t.Pkg == "" {
		return t.Name
	}
	return t.Pkg + "." + t.Name
}

func (t TypeName) Equal(o TypeName) bool { return t == o }

func (t TypeName) Hash(h *equatable.Hasher) {
	h.String(t.Pkg)
	h.String(t.Name)
}

// Constant is one typed constant. The zero value is Null.
type Constant struct {
	kind Kind
	// text holds the String payload or the canonical numeric text.
	text string
	// numKind is the Go basic type of a Numeric, e.g. "int64" or "untyped float".
	numKind string
	b       bool
	// typ is the TypeRef target, the Enum type or the Array element type.
	typ   TypeName
	raw   *Constant
	elems equatable.Seq[Constant]
}

// Null returns the null constant.
func Null() Constant { return Constant{} }

// String returns a string constant.
func String(s string) Constant { return Constant{kind: KindString, text: s} }

// Bool returns a boolean constant.
func Bool(b bool) Constant { return Constant{kind: KindBool, b: b} }

// Numeric returns a numeric constant of the given Go basic kind. text must be
// the canonical decimal spelling produced by the host (see Int, Uint, Float).
func Numeric(kind, text string) Constant {
	return Constant{kind: KindNumeric, numKind: kind, text: text}
}

// TypeRef returns a reference to a type.
func TypeRef(t TypeName) Constant { return Constant{kind: KindTypeRef, typ: t} }

// Enum returns a value of a named type whose underlying value is raw.
// raw must be a String, Bool or Numeric constant.
func Enum(t TypeName, raw Constant) Constant {
	r := raw
	return Constant{kind: KindEnum, typ: t, raw: &r}
}

// Array returns a slice constant with the given element type.
func Array(elem TypeName, elems ...Constant) Constant {
	return Constant{kind: KindArray, typ: elem, elems: equatable.From(elems)}
}

func (c Constant) Kind() Kind { return c.kind }

// Str returns the String payload.
func (c Constant) Str() string { return c.text }

// BoolValue returns the Bool payload.
func (c Constant) BoolValue() bool { return c.b }

// NumericKind returns the Go basic kind of a Numeric.
func (c Constant) NumericKind() string { return c.numKind }

// NumericText returns the canonical spelling of a Numeric.
func (c Constant) NumericText() string { return c.text }

// Type returns the TypeRef target, Enum type or Array element type.
func (c Constant) Type() TypeName { return c.typ }

// Raw returns the underlying value of an Enum.
func (c Constant) Raw() Constant {
	if c.raw == nil {
		return Null()
	}
	return *c.raw
}

// Elems returns the elements of an Array.
func (c Constant) Elems() equatable.Seq[Constant] { return c.elems }

// Equal reports structural equality.
func (c Constant) Equal(o Constant) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindNull:
		return true
	case KindString:
		return c.text == o.text
	case KindBool:
		return c.b == o.b
	case KindNumeric:
		return c.numKind == o.numKind && c.text == o.text
	case KindTypeRef:
		return c.typ == o.typ
	case KindEnum:
		return c.typ == o.typ && c.Raw().Equal(o.Raw())
	case KindArray:
		return c.typ == o.typ && c.elems.Equal(o.elems)
	}
	return false
}

// Hash feeds the tag and payload into h.
func (c Constant) Hash(h *equatable.Hasher) {
	h.Uint64(uint64(c.kind))
	switch c.kind {
	case KindString:
		h.String(c.text)
	case KindBool:
		h.Bool(c.b)
	case KindNumeric:
		h.String(c.numKind)
		h.String(c.text)
	case KindTypeRef:
		c.typ.Hash(h)
	case KindEnum:
		c.typ.Hash(h)
		c.Raw().Hash(h)
	case KindArray:
		c.typ.Hash(h)
		c.elems.Hash(h)
	}
}

// GoString renders the constant for logs and diagnostics.
func (c Constant) GoString() string {
	switch c.kind {
	case KindNull:
		return "null"
	case KindString:
		return fmt.Sprintf("%q", c.text)
	case KindBool:
		return fmt.Sprintf("%t", c.b)
	case KindNumeric:
		return c.numKind + "(" + c.text + ")"
	case KindTypeRef:
		return "type " + c.typ.String()
	case KindEnum:
		return c.typ.String() + "(" + c.Raw().GoString() + ")"
	case KindArray:
		parts := make([]string, 0, c.elems.Len())
		for v := range c.elems.Values() {
			parts = append(parts, v.GoString())
		}
		return "[]" + c.typ.String() + "{" + strings.Join(parts, ", ") + "}"
	}
	return c.kind.String()
}
