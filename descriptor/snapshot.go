package descriptor

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/teranos/declgen/diag"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/host"
	"github.com/teranos/declgen/typedconst"
)

// Snapshot captures sym as a descriptor. Implicit members and declarations
// with no descriptor variant yield (nil, false).
func Snapshot(p host.Provider, sym host.Symbol) (Descriptor, bool) {
	d, _, ok := snapshot(p, sym)
	return d, ok
}

// Set is the result of one enumeration.
type Set struct {
	// Descriptors are sorted by qualified name.
	Descriptors []Descriptor
	// Diagnostics report directives that were dropped.
	Diagnostics []diag.Diagnostic
}

// SnapshotAll enumerates p and snapshots every declaration.
// Only enumeration failure or cancellation returns an error.
func SnapshotAll(ctx context.Context, p host.Provider) (*Set, error) {
	syms, err := p.Declarations(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate declarations")
	}
	set := &Set{}
	for _, sym := range syms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, diags, ok := snapshot(p, sym)
		set.Diagnostics = append(set.Diagnostics, diags...)
		if ok {
			set.Descriptors = append(set.Descriptors, d)
		}
	}
	slices.SortStableFunc(set.Descriptors, func(a, b Descriptor) int {
		return cmp.Or(
			cmp.Compare(a.Base().QualifiedName, b.Base().QualifiedName),
			cmp.Compare(a.Kind(), b.Kind()),
		)
	})
	slices.SortFunc(set.Diagnostics, diag.Compare)
	return set, nil
}

func snapshot(p host.Provider, sym host.Symbol) (Descriptor, []diag.Diagnostic, bool) {
	if sym == nil || sym.Implicit() {
		return nil, nil, false
	}
	switch sym.Kind() {
	case host.KindType, host.KindField, host.KindProperty, host.KindMethod:
	default:
		return nil, nil, false
	}

	anns, diags := annotations(p, sym)
	origin := sym.Origin()
	common := Common{
		Name:          sym.Name(),
		QualifiedName: sym.QualifiedName(),
		ValueType:     p.TypeName(sym),
		Access:        AccessUnexported,
		Package:       origin.PkgPath,
		PackageName:   origin.PkgName,
		Dir:           origin.Dir,
		Annotations:   anns,
	}
	if sym.Exported() {
		common.Access = AccessExported
	}

	owner := ""
	if parent := sym.Parent(); parent != nil {
		owner = parent.QualifiedName()
	}

	switch sym.Kind() {
	case host.KindType:
		return Type{
			Common:     common,
			Shape:      sym.Shape(),
			Containing: containing(sym),
			HintName:   origin.PkgName + "." + strings.TrimPrefix(common.QualifiedName, origin.PkgPath+"."),
		}, diags, true
	case host.KindField:
		return Field{Common: common, Owner: owner, HasInitializer: sym.HasInitializer()}, diags, true
	case host.KindProperty:
		backing, trivial := sym.BackingField()
		return Property{Common: common, Owner: owner, TrivialBody: trivial, BackingField: backing}, diags, true
	default:
		return Method{Common: common, Owner: owner}, diags, true
	}
}

func containing(sym host.Symbol) equatable.Seq[ScopeRef] {
	var chain []ScopeRef
	for parent := sym.Parent(); parent != nil; parent = parent.Parent() {
		kind := "type"
		if parent.Kind() == host.KindMethod {
			kind = "func"
		}
		chain = append(chain, ScopeRef{Kind: kind, Name: parent.QualifiedName()})
	}
	chain = append(chain, ScopeRef{Kind: "package", Name: sym.Origin().PkgPath})
	return equatable.From(chain)
}

// annotations converts raw directives, dropping any with an argument the host
// could not evaluate.
func annotations(p host.Provider, sym host.Symbol) (equatable.Seq[Annotation], []diag.Diagnostic) {
	raws := p.Annotations(sym)
	if len(raws) == 0 {
		return equatable.Seq[Annotation]{}, nil
	}
	var (
		out   []Annotation
		diags []diag.Diagnostic
	)
	for _, raw := range raws {
		ann, err := convertAnnotation(raw)
		if err != nil {
			diags = append(diags, diag.Warnf(diag.CodeAnnotationArg, sym.QualifiedName(),
				"directive %s dropped: %v", raw.Name, err))
			continue
		}
		out = append(out, ann)
	}
	return equatable.From(out), diags
}

func convertAnnotation(raw host.RawAnnotation) (Annotation, error) {
	var (
		positional []typedconst.Constant
		named      []NamedArg
		seen       = make(map[string]bool)
	)
	for _, arg := range raw.Args {
		if arg.Err != nil {
			return Annotation{}, errors.Wrapf(arg.Err, "argument %s", arg.Expr)
		}
		if arg.Name == "" {
			if len(named) > 0 {
				return Annotation{}, errors.Newf("positional argument %s after named arguments", arg.Expr)
			}
			positional = append(positional, arg.Value)
			continue
		}
		if seen[arg.Name] {
			return Annotation{}, errors.Newf("argument %s given twice", arg.Name)
		}
		seen[arg.Name] = true
		named = append(named, NamedArg{Name: arg.Name, Value: arg.Value})
	}
	return Annotation{
		Name:       raw.Name,
		Positional: equatable.From(positional),
		Named:      equatable.From(named),
	}, nil
}
