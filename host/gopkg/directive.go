package gopkg

import (
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/host"
	"github.com/teranos/declgen/typedconst"
)

type evalFunc func(ast.Expr) (typedconst.Constant, error)

// parseDirectives extracts //<prefix>:Name(args) lines from a doc comment.
//
// Arguments use composite-literal syntax: positional values separated by
// commas, named values spelled key: value.
//
//	//declgen:Service(Singleton, as: io.Writer, tags: []string{"mail"})
func parseDirectives(doc *ast.CommentGroup, prefix string, eval evalFunc) []host.RawAnnotation {
	marker := "//" + prefix + ":"
	var out []host.RawAnnotation
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, marker) {
			continue
		}
		out = append(out, parseDirective(strings.TrimSpace(c.Text[len(marker):]), eval))
	}
	return out
}

func parseDirective(text string, eval evalFunc) host.RawAnnotation {
	name, args := text, ""
	if i := strings.IndexByte(text, '('); i >= 0 {
		name = strings.TrimSpace(text[:i])
		rest := strings.TrimSpace(text[i:])
		if !strings.HasSuffix(rest, ")") {
			return host.RawAnnotation{Name: name, Args: []host.RawArg{{
				Expr: rest,
				Err:  errors.Newf("unterminated argument list %q", rest),
			}}}
		}
		args = rest[1 : len(rest)-1]
	}

	ann := host.RawAnnotation{Name: name}
	if !validDirectiveName(name) {
		ann.Args = []host.RawArg{{Expr: text, Err: errors.Newf("invalid directive name %q", name)}}
		return ann
	}
	if strings.TrimSpace(args) == "" {
		return ann
	}

	expr, err := parser.ParseExpr("_{" + args + "}")
	if err != nil {
		ann.Args = []host.RawArg{{Expr: args, Err: errors.Wrap(err, "malformed directive arguments")}}
		return ann
	}
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		ann.Args = []host.RawArg{{Expr: args, Err: errors.Newf("malformed directive arguments %q", args)}}
		return ann
	}

	for _, elt := range lit.Elts {
		var arg host.RawArg
		value := elt
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			key, ok := kv.Key.(*ast.Ident)
			if !ok {
				arg.Expr = types.ExprString(kv)
				arg.Err = errors.Newf("argument name %s is not an identifier", types.ExprString(kv.Key))
				ann.Args = append(ann.Args, arg)
				continue
			}
			arg.Name = key.Name
			value = kv.Value
		}
		arg.Expr = types.ExprString(value)
		arg.Value, arg.Err = eval(value)
		ann.Args = append(ann.Args, arg)
	}
	return ann
}

func validDirectiveName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if !token.IsIdentifier(part) {
			return false
		}
	}
	return true
}

// evalExpr type-checks e as if it appeared at pos and converts the result.
func evalExpr(fset *token.FileSet, pkg *types.Package, pos token.Pos, e ast.Expr) (typedconst.Constant, error) {
	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	if err := types.CheckExpr(fset, pkg, pos, e, info); err != nil {
		return typedconst.Null(), errors.Wrapf(err, "cannot evaluate %s", types.ExprString(e))
	}
	return convert(e, info)
}

func convert(e ast.Expr, info *types.Info) (typedconst.Constant, error) {
	tv, ok := info.Types[e]
	if !ok {
		return typedconst.Null(), errors.Unsupportedf("no type information for %s", types.ExprString(e))
	}
	switch {
	case tv.IsType():
		tn, err := typeNameOf(tv.Type)
		if err != nil {
			return typedconst.Null(), err
		}
		return typedconst.TypeRef(tn), nil
	case tv.IsNil():
		return typedconst.Null(), nil
	case tv.Value != nil:
		return constantOf(tv.Type, tv.Value)
	}

	lit, ok := ast.Unparen(e).(*ast.CompositeLit)
	if !ok {
		return typedconst.Null(), errors.Unsupportedf("%s is not a constant, type, or slice literal", types.ExprString(e))
	}
	sl, ok := tv.Type.Underlying().(*types.Slice)
	if !ok {
		return typedconst.Null(), errors.Unsupportedf("composite literal of %s: only slices are supported", tv.Type)
	}
	elem, err := typeNameOf(sl.Elem())
	if err != nil {
		return typedconst.Null(), errors.Wrap(err, "slice element type")
	}
	elems := make([]typedconst.Constant, 0, len(lit.Elts))
	for i, elt := range lit.Elts {
		if _, ok := elt.(*ast.KeyValueExpr); ok {
			return typedconst.Null(), errors.Unsupportedf("indexed slice element %d", i)
		}
		c, err := convert(elt, info)
		if err != nil {
			return typedconst.Null(), errors.Wrapf(err, "slice element %d", i)
		}
		elems = append(elems, c)
	}
	return typedconst.Array(elem, elems...), nil
}

func constantOf(t types.Type, v constant.Value) (typedconst.Constant, error) {
	t = types.Unalias(t)
	if named, ok := t.(*types.Named); ok {
		basic, ok := named.Underlying().(*types.Basic)
		if !ok {
			return typedconst.Null(), errors.Unsupportedf("constant of non-basic type %s", t)
		}
		raw, err := basicConstant(basic, v)
		if err != nil {
			return typedconst.Null(), err
		}
		tn, err := typeNameOf(named)
		if err != nil {
			return typedconst.Null(), err
		}
		return typedconst.Enum(tn, raw), nil
	}
	basic, ok := t.(*types.Basic)
	if !ok {
		return typedconst.Null(), errors.Unsupportedf("constant of type %s", t)
	}
	return basicConstant(basic, v)
}

func basicConstant(b *types.Basic, v constant.Value) (typedconst.Constant, error) {
	info := b.Info()
	switch {
	case info&types.IsBoolean != 0:
		return typedconst.Bool(constant.BoolVal(v)), nil
	case info&types.IsString != 0:
		return typedconst.String(constant.StringVal(v)), nil
	case info&types.IsInteger != 0:
		return typedconst.Numeric(b.Name(), constant.ToInt(v).ExactString()), nil
	case info&types.IsFloat != 0:
		f, _ := constant.Float64Val(v)
		bits := 64
		if b.Kind() == types.Float32 {
			bits = 32
		}
		return typedconst.Numeric(b.Name(), strconv.FormatFloat(f, 'g', -1, bits)), nil
	case info&types.IsComplex != 0:
		return typedconst.Numeric(b.Name(), v.String()), nil
	}
	return typedconst.Null(), errors.Unsupportedf("constant of basic type %s", b.Name())
}

func typeNameOf(t types.Type) (typedconst.TypeName, error) {
	switch t := types.Unalias(t).(type) {
	case *types.Named:
		if t.TypeArgs().Len() > 0 {
			return typedconst.TypeName{}, errors.Unsupportedf("generic type instance %s", t)
		}
		obj := t.Obj()
		if obj.Pkg() == nil {
			return typedconst.TypeName{Name: obj.Name()}, nil
		}
		if obj.Parent() != obj.Pkg().Scope() {
			return typedconst.TypeName{}, errors.Unsupportedf("function-local type %s", obj.Name())
		}
		return typedconst.TypeName{Pkg: obj.Pkg().Path(), Name: obj.Name()}, nil
	case *types.Basic:
		if t.Info()&types.IsUntyped != 0 {
			return typedconst.TypeName{}, errors.Unsupportedf("untyped type %s", t.Name())
		}
		return typedconst.TypeName{Name: t.Name()}, nil
	}
	return typedconst.TypeName{}, errors.Unsupportedf("composite type %s", t)
}
