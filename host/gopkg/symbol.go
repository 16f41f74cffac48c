package gopkg

import (
	"go/ast"
	"go/token"
	"go/types"
	"reflect"

	"github.com/teranos/declgen/host"
	"golang.org/x/tools/go/packages"
)

// defaultTag marks fields initialized from a struct tag rather than wired.
const defaultTag = "default"

type symbol struct {
	kind        host.Kind
	obj         types.Object
	name        string
	qualified   string
	implicit    bool
	parent      *symbol
	origin      host.Origin
	shape       string
	initializer bool
	backing     string
	doc         *ast.CommentGroup
	pkg         *packages.Package
	pos         token.Pos
	valueType   types.Type
}

func (s *symbol) Kind() host.Kind       { return s.kind }
func (s *symbol) Name() string          { return s.name }
func (s *symbol) QualifiedName() string { return s.qualified }
func (s *symbol) Exported() bool        { return token.IsExported(s.name) }
func (s *symbol) Implicit() bool        { return s.implicit }
func (s *symbol) Origin() host.Origin   { return s.origin }
func (s *symbol) Shape() string         { return s.shape }
func (s *symbol) HasInitializer() bool  { return s.initializer }

func (s *symbol) Parent() host.Symbol {
	if s.parent == nil {
		return nil
	}
	return s.parent
}

func (s *symbol) BackingField() (string, bool) {
	return s.backing, s.backing != ""
}

func hasDefault(tag string) bool {
	_, ok := reflect.StructTag(tag).Lookup(defaultTag)
	return ok
}
