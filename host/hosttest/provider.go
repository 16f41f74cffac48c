// Package hosttest provides an in-memory host.Provider for tests.
package hosttest

import (
	"context"
	"io/fs"
	"os"
	"strings"
	"testing/fstest"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/host"
)

// Symbol is a plain-struct host.Symbol.
type Symbol struct {
	SymKind     host.Kind
	SymName     string
	Qualified   string
	Unexported  bool
	IsImplicit  bool
	Owner       *Symbol
	Pkg         host.Origin
	TypeShape   string
	Initializer bool
	Backing     string
	ValueType   string
	Directives  []host.RawAnnotation
}

func (s *Symbol) Kind() host.Kind { return s.SymKind }
func (s *Symbol) Name() string    { return s.SymName }

func (s *Symbol) QualifiedName() string {
	if s.Qualified != "" {
		return s.Qualified
	}
	if s.Owner != nil {
		return s.Owner.QualifiedName() + "." + s.SymName
	}
	return s.Pkg.PkgPath + "." + s.SymName
}

func (s *Symbol) Exported() bool { return !s.Unexported }
func (s *Symbol) Implicit() bool { return s.IsImplicit }

func (s *Symbol) Parent() host.Symbol {
	if s.Owner == nil {
		return nil
	}
	return s.Owner
}

func (s *Symbol) Origin() host.Origin {
	if s.Owner != nil && s.Pkg == (host.Origin{}) {
		return s.Owner.Origin()
	}
	return s.Pkg
}

func (s *Symbol) Shape() string        { return s.TypeShape }
func (s *Symbol) HasInitializer() bool { return s.Initializer }

func (s *Symbol) BackingField() (string, bool) {
	return s.Backing, s.Backing != ""
}

// Provider serves a fixed symbol list and file map.
type Provider struct {
	Symbols []*Symbol
	Files   map[string][]byte
	// Err, when set, is returned by Declarations.
	Err error
	// Calls counts Declarations invocations.
	Calls int
}

// Declarations returns deep copies so successive enumerations never share
// handles, like a host that reloads its symbol graph.
func (p *Provider) Declarations(ctx context.Context) ([]host.Symbol, error) {
	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	copies := make(map[*Symbol]*Symbol, len(p.Symbols))
	var clone func(s *Symbol) *Symbol
	clone = func(s *Symbol) *Symbol {
		if s == nil {
			return nil
		}
		if c, ok := copies[s]; ok {
			return c
		}
		c := *s
		copies[s] = &c
		c.Owner = clone(s.Owner)
		return &c
	}
	out := make([]host.Symbol, 0, len(p.Symbols))
	for _, s := range p.Symbols {
		out = append(out, clone(s))
	}
	return out, nil
}

func (p *Provider) Annotations(sym host.Symbol) []host.RawAnnotation {
	if s, ok := sym.(*Symbol); ok {
		return s.Directives
	}
	return nil
}

func (p *Provider) TypeName(sym host.Symbol) string {
	if s, ok := sym.(*Symbol); ok {
		return s.ValueType
	}
	return ""
}

// ReadFile serves Files; paths are compared slash-separated.
func (p *Provider) ReadFile(path string) ([]byte, error) {
	data, ok := p.Files[strings.ReplaceAll(path, "\\", "/")]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "read %s", path)
	}
	return data, nil
}

// SetFile replaces one file's contents.
func (p *Provider) SetFile(path, content string) {
	if p.Files == nil {
		p.Files = make(map[string][]byte)
	}
	p.Files[path] = []byte(content)
}

// RemoveFile deletes one file.
func (p *Provider) RemoveFile(path string) {
	delete(p.Files, path)
}

// FS is a live read-only view of Files, for code that discovers files
// by walking a directory tree.
func (p *Provider) FS() fs.FS {
	return filesFS{p}
}

type filesFS struct{ p *Provider }

func (f filesFS) Open(name string) (fs.File, error) {
	m := make(fstest.MapFS, len(f.p.Files))
	for path, data := range f.p.Files {
		m[path] = &fstest.MapFile{Data: data}
	}
	return m.Open(name)
}
