package gopkg

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/declgen/host"
	"github.com/teranos/declgen/typedconst"
	"golang.org/x/tools/go/packages"
)

const appSource = `package app

import "io"

type Lifetime int

const (
	Transient Lifetime = iota
	Singleton
)

// Mailer sends mail.
//
//declgen:Service(Singleton, as: io.Writer, tags: []string{"mail", "smtp"})
//declgen:Constructor
type Mailer struct {
	out     io.Writer
	Retries int ` + "`default:\"3\"`" + `
	_       struct{}
	Base
}

type Base struct{ ID string }

func (m *Mailer) Out() io.Writer { return m.out }

func (m *Mailer) Count() int { return m.Retries * 2 }

//declgen:Provider
func NewMailer(w io.Writer) *Mailer { return &Mailer{out: w} }

//declgen:Bad(1+, )
func Broken() {}

//declgen:Weird(x: NewMailer)
func Weird() {}

func Outer() {
	type local struct{ A int }
	_ = local{}
}
`

// loadSource type-checks files in-process so the test does not shell out to
// the go command.
func loadSource(t *testing.T, files map[string]string) *Provider {
	t.Helper()
	fset := token.NewFileSet()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var syntax []*ast.File
	for _, name := range names {
		f, err := parser.ParseFile(fset, name, files[name], parser.ParseComments)
		require.NoError(t, err)
		syntax = append(syntax, f)
	}

	info := &types.Info{
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
		Types: make(map[ast.Expr]types.TypeAndValue),
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	tpkg, err := conf.Check("example.com/app", fset, syntax, info)
	require.NoError(t, err)

	pkg := &packages.Package{
		PkgPath:   "example.com/app",
		Name:      tpkg.Name(),
		GoFiles:   names,
		Fset:      fset,
		Syntax:    syntax,
		Types:     tpkg,
		TypesInfo: info,
	}
	p := newProvider("/proj", "", nil)
	p.index(pkg)
	p.sort()
	return p
}

func symbolsByName(t *testing.T, p *Provider) map[string]host.Symbol {
	t.Helper()
	syms, err := p.Declarations(context.Background())
	require.NoError(t, err)
	out := make(map[string]host.Symbol, len(syms))
	for _, s := range syms {
		out[s.QualifiedName()] = s
	}
	return out
}

func TestProvider_Classification(t *testing.T) {
	p := loadSource(t, map[string]string{"/proj/app/app.go": appSource})
	syms := symbolsByName(t, p)

	tests := []struct {
		name     string
		kind     host.Kind
		implicit bool
	}{
		{"example.com/app.Mailer", host.KindType, false},
		{"example.com/app.Mailer.out", host.KindField, false},
		{"example.com/app.Mailer.Retries", host.KindField, false},
		{"example.com/app.Mailer._", host.KindField, true},
		{"example.com/app.Mailer.Base", host.KindField, true},
		{"example.com/app.Mailer.Out", host.KindProperty, false},
		{"example.com/app.Mailer.Count", host.KindProperty, false},
		{"example.com/app.NewMailer", host.KindMethod, false},
		{"example.com/app.Outer.local", host.KindType, false},
		{"example.com/app.Singleton", host.KindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := syms[tt.name]
			require.True(t, ok, "symbol %s not enumerated", tt.name)
			assert.Equal(t, tt.kind, s.Kind())
			assert.Equal(t, tt.implicit, s.Implicit())
			assert.Equal(t, "app", s.Origin().Dir)
		})
	}

	assert.True(t, syms["example.com/app.Mailer.Retries"].HasInitializer())
	assert.False(t, syms["example.com/app.Mailer.out"].HasInitializer())
	assert.False(t, syms["example.com/app.Mailer.out"].Exported())

	field, ok := syms["example.com/app.Mailer.Out"].BackingField()
	assert.True(t, ok)
	assert.Equal(t, "out", field)
	_, ok = syms["example.com/app.Mailer.Count"].BackingField()
	assert.False(t, ok, "computed getter has no backing field")

	local := syms["example.com/app.Outer.local"]
	require.NotNil(t, local.Parent())
	assert.Equal(t, "example.com/app.Outer", local.Parent().QualifiedName())
	assert.Equal(t, "struct", syms["example.com/app.Mailer"].Shape())
	assert.Equal(t, "basic", syms["example.com/app.Lifetime"].Shape())
}

func TestProvider_TypeName(t *testing.T) {
	p := loadSource(t, map[string]string{"/proj/app/app.go": appSource})
	syms := symbolsByName(t, p)

	assert.Equal(t, "io.Writer", p.TypeName(syms["example.com/app.Mailer.out"]))
	assert.Equal(t, "*Mailer", p.TypeName(syms["example.com/app.NewMailer"]))
	assert.Equal(t, "int", p.TypeName(syms["example.com/app.Mailer.Count"]))
	assert.Equal(t, "", p.TypeName(syms["example.com/app.Broken"]))
}

func TestProvider_Annotations(t *testing.T) {
	p := loadSource(t, map[string]string{"/proj/app/app.go": appSource})
	syms := symbolsByName(t, p)

	anns := p.Annotations(syms["example.com/app.Mailer"])
	require.Len(t, anns, 2)

	svc := anns[0]
	assert.Equal(t, "Service", svc.Name)
	require.Len(t, svc.Args, 3)
	for _, a := range svc.Args {
		require.NoError(t, a.Err, a.Expr)
	}

	lifetime := typedconst.TypeName{Pkg: "example.com/app", Name: "Lifetime"}
	assert.Equal(t, "", svc.Args[0].Name)
	assert.True(t, svc.Args[0].Value.Equal(typedconst.Enum(lifetime, typedconst.Numeric("int", "1"))))

	assert.Equal(t, "as", svc.Args[1].Name)
	assert.True(t, svc.Args[1].Value.Equal(typedconst.TypeRef(typedconst.TypeName{Pkg: "io", Name: "Writer"})))

	assert.Equal(t, "tags", svc.Args[2].Name)
	want := typedconst.Array(typedconst.TypeName{Name: "string"}, typedconst.String("mail"), typedconst.String("smtp"))
	assert.True(t, svc.Args[2].Value.Equal(want), svc.Args[2].Value.GoString())

	assert.Equal(t, "Constructor", anns[1].Name)
	assert.Empty(t, anns[1].Args)

	prov := p.Annotations(syms["example.com/app.NewMailer"])
	require.Len(t, prov, 1)
	assert.Equal(t, "Provider", prov[0].Name)
}

func TestProvider_AnnotationErrors(t *testing.T) {
	p := loadSource(t, map[string]string{"/proj/app/app.go": appSource})
	syms := symbolsByName(t, p)

	bad := p.Annotations(syms["example.com/app.Broken"])
	require.Len(t, bad, 1)
	require.Len(t, bad[0].Args, 1)
	assert.Error(t, bad[0].Args[0].Err)

	weird := p.Annotations(syms["example.com/app.Weird"])
	require.Len(t, weird, 1)
	require.Len(t, weird[0].Args, 1)
	assert.Equal(t, "x", weird[0].Args[0].Name)
	assert.Error(t, weird[0].Args[0].Err, "a function value is not a constant")
}

func TestProvider_StructuralEqualityAcrossLoads(t *testing.T) {
	first := loadSource(t, map[string]string{"/proj/app/app.go": appSource})
	second := loadSource(t, map[string]string{"/proj/app/app.go": appSource})

	a := first.Annotations(symbolsByName(t, first)["example.com/app.Mailer"])
	b := second.Annotations(symbolsByName(t, second)["example.com/app.Mailer"])
	require.Len(t, b, len(a))
	for i := range a {
		require.Len(t, b[i].Args, len(a[i].Args))
		for j := range a[i].Args {
			assert.True(t, a[i].Args[j].Value.Equal(b[i].Args[j].Value))
		}
	}
}

func TestParseDirective_Syntax(t *testing.T) {
	constant := func(ast.Expr) (typedconst.Constant, error) { return typedconst.Bool(true), nil }

	tests := []struct {
		text    string
		name    string
		args    int
		wantErr bool
	}{
		{"Bindable", "Bindable", 0, false},
		{"Bindable()", "Bindable", 0, false},
		{"di.Service(a, b: c)", "di.Service", 2, false},
		{"Service(a", "Service", 1, true},
		{"9bad(a)", "9bad", 1, true},
		{"Service(1: x)", "Service", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ann := parseDirective(tt.text, constant)
			assert.Equal(t, tt.name, ann.Name)
			require.Len(t, ann.Args, tt.args)
			if tt.wantErr {
				assert.Error(t, ann.Args[0].Err)
			}
		})
	}
}
