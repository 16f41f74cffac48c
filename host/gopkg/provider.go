// Package gopkg implements host.Provider over golang.org/x/tools/go/packages.
//
// Loading type-checks the configured packages once; every Declarations call
// returns the symbols collected at load time, and directive arguments are
// evaluated lazily against the declaring file's scope.
package gopkg

import (
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/host"
	"github.com/teranos/declgen/logger"
	"github.com/teranos/declgen/synth"
	"github.com/teranos/declgen/typedconst"
	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"
)

// DefaultDirectivePrefix introduces declgen directives: //declgen:Name(...)
const DefaultDirectivePrefix = "declgen"

// Config selects what to load.
type Config struct {
	// Dir is the project root; package directories are reported relative to it.
	Dir string
	// Patterns are go/packages patterns, e.g. "./...".
	Patterns []string
	// Tests includes _test.go files.
	Tests bool
	// DirectivePrefix overrides DefaultDirectivePrefix.
	DirectivePrefix string
	// BuildFlags are passed to the go command.
	BuildFlags []string
}

// Provider serves the symbols of a set of loaded packages.
type Provider struct {
	root    string
	prefix  string
	symbols []*symbol
	logger  *zap.SugaredLogger
}

var _ host.Provider = (*Provider)(nil)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedTypes |
	packages.NeedSyntax | packages.NeedTypesInfo

// Load type-checks the packages matching cfg.Patterns.
// Packages with type errors are still indexed when type information is available.
func Load(ctx context.Context, cfg Config) (*Provider, error) {
	log := logger.ComponentLogger("host.gopkg")

	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve project root %s", cfg.Dir)
	}
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	pcfg := &packages.Config{
		Context:    ctx,
		Dir:        root,
		Mode:       loadMode,
		Tests:      cfg.Tests,
		BuildFlags: cfg.BuildFlags,
	}
	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load packages %v", patterns)
	}
	if len(pkgs) == 0 {
		return nil, errors.WithHint(
			errors.Newf("no packages found for %v", patterns),
			"check project.packages in declgen.toml",
		)
	}

	p := newProvider(root, cfg.DirectivePrefix, log)
	usable := 0
	for _, pkg := range pkgs {
		for _, perr := range pkg.Errors {
			log.Warnw("Package has errors", logger.FieldPackage, pkg.PkgPath, logger.FieldError, perr.Msg)
		}
		if pkg.Types == nil || pkg.TypesInfo == nil {
			continue
		}
		usable++
		p.index(pkg)
	}
	if usable == 0 {
		return nil, errors.Newf("none of the %d packages matched by %v could be type-checked", len(pkgs), patterns)
	}
	p.sort()

	log.Infow("Loaded packages", logger.FieldCount, usable)
	return p, nil
}

func newProvider(root, prefix string, log *zap.SugaredLogger) *Provider {
	if prefix == "" {
		prefix = DefaultDirectivePrefix
	}
	if log == nil {
		log = logger.ComponentLogger("host.gopkg")
	}
	return &Provider{root: root, prefix: prefix, logger: log}
}

// Declarations returns every indexed symbol ordered by qualified name.
func (p *Provider) Declarations(ctx context.Context) ([]host.Symbol, error) {
	out := make([]host.Symbol, 0, len(p.symbols))
	for _, s := range p.symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Annotations parses and evaluates the directives in sym's doc comment.
func (p *Provider) Annotations(sym host.Symbol) []host.RawAnnotation {
	s, ok := sym.(*symbol)
	if !ok || s.doc == nil {
		return nil
	}
	return parseDirectives(s.doc, p.prefix, func(e ast.Expr) (typedconst.Constant, error) {
		return evalExpr(s.pkg.Fset, s.pkg.Types, s.pos, e)
	})
}

// TypeName renders sym's value type with its own package unqualified.
func (p *Provider) TypeName(sym host.Symbol) string {
	s, ok := sym.(*symbol)
	if !ok || s.valueType == nil {
		return ""
	}
	return types.TypeString(s.valueType, types.RelativeTo(s.pkg.Types))
}

// ReadFile reads a file relative to the project root.
func (p *Provider) ReadFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.root, filepath.FromSlash(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return data, nil
}

func (p *Provider) sort() {
	sort.SliceStable(p.symbols, func(i, j int) bool {
		return p.symbols[i].qualified < p.symbols[j].qualified
	})
}

func (p *Provider) relDir(pkg *packages.Package) string {
	var file string
	switch {
	case len(pkg.CompiledGoFiles) > 0:
		file = pkg.CompiledGoFiles[0]
	case len(pkg.GoFiles) > 0:
		file = pkg.GoFiles[0]
	default:
		return ""
	}
	rel, err := filepath.Rel(p.root, filepath.Dir(file))
	if err != nil {
		return filepath.ToSlash(filepath.Dir(file))
	}
	return filepath.ToSlash(rel)
}

// index collects the declarations of one package.
func (p *Provider) index(pkg *packages.Package) {
	origin := host.Origin{PkgPath: pkg.PkgPath, PkgName: pkg.Name, Dir: p.relDir(pkg)}
	typeSyms := make(map[*types.TypeName]*symbol)

	var files []*ast.File
	for _, file := range pkg.Syntax {
		if generatedByDeclgen(file) {
			continue
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool {
		return pkg.Fset.File(files[i].Pos()).Name() < pkg.Fset.File(files[j].Pos()).Name()
	})

	// Types first so methods can find their receiver regardless of file order.
	for _, file := range files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			switch gd.Tok {
			case token.TYPE:
				for _, spec := range gd.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && len(gd.Specs) == 1 {
						doc = gd.Doc
					}
					if s := p.addType(pkg, origin, ts, doc, nil); s != nil {
						typeSyms[s.obj.(*types.TypeName)] = s
					}
				}
			case token.CONST, token.VAR:
				for _, spec := range gd.Specs {
					vs := spec.(*ast.ValueSpec)
					for _, name := range vs.Names {
						obj := pkg.TypesInfo.Defs[name]
						if obj == nil {
							continue
						}
						p.symbols = append(p.symbols, &symbol{
							kind:      host.KindUnknown,
							obj:       obj,
							name:      name.Name,
							qualified: pkg.PkgPath + "." + name.Name,
							origin:    origin,
							pkg:       pkg,
							pos:       name.Pos(),
							valueType: obj.Type(),
						})
					}
				}
			}
		}
	}

	for _, file := range files {
		for _, decl := range file.Decls {
			if fd, ok := decl.(*ast.FuncDecl); ok {
				p.addFunc(pkg, origin, fd, typeSyms)
			}
		}
	}
}

// generatedByDeclgen reports whether file is an artifact of an earlier run.
// Such files are type-checked with the package but never indexed, so a run
// does not read its own output.
func generatedByDeclgen(file *ast.File) bool {
	for _, cg := range file.Comments {
		if cg.Pos() > file.Package {
			break
		}
		for _, c := range cg.List {
			if c.Text == synth.Header {
				return true
			}
		}
	}
	return false
}

func (p *Provider) addType(pkg *packages.Package, origin host.Origin, ts *ast.TypeSpec, doc *ast.CommentGroup, parent *symbol) *symbol {
	obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok || obj == nil {
		return nil
	}
	qualified := pkg.PkgPath + "." + ts.Name.Name
	if parent != nil {
		qualified = parent.qualified + "." + ts.Name.Name
	}
	s := &symbol{
		kind:      host.KindType,
		obj:       obj,
		name:      ts.Name.Name,
		qualified: qualified,
		parent:    parent,
		origin:    origin,
		shape:     shapeOf(obj.Type(), ts.Assign.IsValid()),
		doc:       doc,
		pkg:       pkg,
		pos:       ts.Pos(),
		valueType: obj.Type(),
	}
	p.symbols = append(p.symbols, s)

	if st, ok := ts.Type.(*ast.StructType); ok {
		if under, ok := obj.Type().Underlying().(*types.Struct); ok {
			p.addFields(pkg, origin, s, st, under)
		}
	}
	return s
}

// addFields walks the AST field list in step with the checked struct so each
// field gets both its doc comment and its types.Var.
func (p *Provider) addFields(pkg *packages.Package, origin host.Origin, owner *symbol, st *ast.StructType, under *types.Struct) {
	idx := 0
	for _, f := range st.Fields.List {
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for k := 0; k < n && idx < under.NumFields(); k++ {
			v := under.Field(idx)
			tag := under.Tag(idx)
			idx++
			pos := f.Pos()
			if len(f.Names) > 0 {
				pos = f.Names[k].Pos()
			}
			p.symbols = append(p.symbols, &symbol{
				kind:        host.KindField,
				obj:         v,
				name:        v.Name(),
				qualified:   owner.qualified + "." + v.Name(),
				implicit:    v.Embedded() || v.Name() == "_",
				parent:      owner,
				origin:      origin,
				initializer: hasDefault(tag),
				doc:         f.Doc,
				pkg:         pkg,
				pos:         pos,
				valueType:   v.Type(),
			})
		}
	}
}

func (p *Provider) addFunc(pkg *packages.Package, origin host.Origin, fd *ast.FuncDecl, typeSyms map[*types.TypeName]*symbol) {
	obj, ok := pkg.TypesInfo.Defs[fd.Name].(*types.Func)
	if !ok || obj == nil {
		return
	}
	sig := obj.Type().(*types.Signature)

	s := &symbol{
		kind:   host.KindMethod,
		obj:    obj,
		name:   fd.Name.Name,
		origin: origin,
		doc:    fd.Doc,
		pkg:    pkg,
		pos:    fd.Pos(),
	}
	if sig.Results().Len() == 1 {
		s.valueType = sig.Results().At(0).Type()
	}

	if recv := sig.Recv(); recv != nil {
		owner := typeSyms[receiverTypeName(recv.Type())]
		if owner == nil {
			return
		}
		s.parent = owner
		s.qualified = owner.qualified + "." + fd.Name.Name
		if sig.Params().Len() == 0 && sig.Results().Len() == 1 {
			s.kind = host.KindProperty
			s.backing = backingField(fd)
		}
	} else {
		s.qualified = pkg.PkgPath + "." + fd.Name.Name
	}
	p.symbols = append(p.symbols, s)

	if fd.Body == nil {
		return
	}
	// Function-local types are scoped by their function.
	ast.Inspect(fd.Body, func(n ast.Node) bool {
		ds, ok := n.(*ast.DeclStmt)
		if !ok {
			return true
		}
		gd, ok := ds.Decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			return true
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			p.addType(pkg, origin, ts, doc, s)
		}
		return false
	})
}

func receiverTypeName(t types.Type) *types.TypeName {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	if named, ok := types.Unalias(t).(*types.Named); ok {
		return named.Origin().Obj()
	}
	return nil
}

// backingField reports the field returned by a body of exactly `return recv.field`.
func backingField(fd *ast.FuncDecl) string {
	if fd.Body == nil || len(fd.Body.List) != 1 || fd.Recv == nil || len(fd.Recv.List) != 1 {
		return ""
	}
	names := fd.Recv.List[0].Names
	if len(names) != 1 {
		return ""
	}
	ret, ok := fd.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return ""
	}
	sel, ok := ret.Results[0].(*ast.SelectorExpr)
	if !ok {
		return ""
	}
	if x, ok := sel.X.(*ast.Ident); !ok || x.Name != names[0].Name {
		return ""
	}
	return sel.Sel.Name
}

func shapeOf(t types.Type, alias bool) string {
	if alias {
		return "alias"
	}
	switch t.Underlying().(type) {
	case *types.Struct:
		return "struct"
	case *types.Interface:
		return "interface"
	case *types.Signature:
		return "func"
	case *types.Basic:
		return "basic"
	case *types.Slice:
		return "slice"
	case *types.Array:
		return "array"
	case *types.Map:
		return "map"
	case *types.Pointer:
		return "pointer"
	case *types.Chan:
		return "chan"
	}
	return strings.ToLower(strings.TrimPrefix(types.TypeString(t.Underlying(), nil), "*"))
}
