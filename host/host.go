// Package host defines the boundary between declgen and the program it reads.
//
// A Provider exposes the program's symbol graph: declarations, the directive
// annotations attached to them, their value types, and the text files that sit
// next to the code. Symbols are live handles and must never be retained past the
// run that produced them; the descriptor package snapshots them into values.
package host

import (
	"context"

	"github.com/teranos/declgen/typedconst"
)

// Kind classifies a declaration.
type Kind uint8

const (
	// KindUnknown covers declarations with no descriptor: constants, variables, labels.
	KindUnknown Kind = iota
	// KindType is a named type declaration.
	KindType
	// KindField is a struct field.
	KindField
	// KindProperty is a getter method: no parameters, exactly one result.
	KindProperty
	// KindMethod is any other function or method.
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

// Origin locates a declaration's package.
type Origin struct {
	PkgPath string
	PkgName string
	// Dir is the package directory relative to the project root, slash-separated.
	Dir string
}

// Symbol is a live handle into the host's symbol graph.
type Symbol interface {
	Kind() Kind
	// Name is the simple identifier.
	Name() string
	// QualifiedName is "pkgpath.Name" for package-level declarations and
	// "pkgpath.Owner.Name" for members.
	QualifiedName() string
	Exported() bool
	// Implicit reports members the user never spelled out: promoted
	// embedded members and blank fields.
	Implicit() bool
	// Parent is the owning type for members, or the enclosing function for
	// function-local types; nil at package scope.
	Parent() Symbol
	Origin() Origin
	// Shape describes a type's underlying form: "struct", "interface",
	// "func", "basic", ... Empty for non-types.
	Shape() string
	// HasInitializer reports fields that carry a default value.
	HasInitializer() bool
	// BackingField returns the field a getter returns directly, and false when
	// the body does anything else.
	BackingField() (string, bool)
}

// RawArg is one directive argument as evaluated by the host.
type RawArg struct {
	// Name is empty for positional arguments.
	Name string
	// Expr is the source spelling, kept for diagnostics.
	Expr  string
	Value typedconst.Constant
	// Err is set when Expr could not be evaluated to a constant.
	Err error
}

// RawAnnotation is one directive attached to a declaration.
type RawAnnotation struct {
	Name string
	Args []RawArg
}

// Provider is the host symbol-graph service.
type Provider interface {
	// Declarations enumerates every declaration in scope. An error aborts the run.
	Declarations(ctx context.Context) ([]Symbol, error)
	// Annotations returns the directives attached to sym in source order.
	Annotations(sym Symbol) []RawAnnotation
	// TypeName returns the fully qualified type of sym's value: the field type,
	// the getter or function result, or the type itself.
	TypeName(sym Symbol) string
	// ReadFile returns the contents of a project file.
	ReadFile(path string) ([]byte, error)
}
