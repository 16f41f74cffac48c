// Package services renders one registration table per package from
// //declgen:Service types and //declgen:Provider functions.
//
//	//declgen:Service(Singleton, as: io.Writer, name: "mailer")
//	type Mailer struct{ ... }
//
//	//declgen:Provider(Transient)
//	func NewClock() Clock { ... }
//
// The first positional argument is the lifetime. Every argument is a typed
// constant and is written back as a Go literal, so enum lifetimes keep their
// type and type references become reflect.Type values.
package services

import (
	"slices"
	"strconv"
	"strings"

	"github.com/teranos/declgen/descriptor"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/pipeline"
	"github.com/teranos/declgen/synth"
	"github.com/teranos/declgen/typedconst"
)

const (
	// ServiceAnnotation marks a type as a service.
	ServiceAnnotation = "Service"
	// ProviderAnnotation marks a function as a service factory.
	ProviderAnnotation = "Provider"
	// FileName is the per-package artifact file name.
	FileName = "declgen.services.g.go"
)

// reservedArgs are named arguments with a dedicated registration field.
var reservedArgs = map[string]bool{"as": true, "name": true}

// Input is every service and provider of one package.
type Input struct {
	Path      string
	Name      string
	Dir       string
	Services  equatable.Seq[descriptor.Type]
	Providers equatable.Seq[descriptor.Method]
}

func (in Input) Equal(o Input) bool {
	return in.Path == o.Path && in.Name == o.Name && in.Dir == o.Dir &&
		in.Services.Equal(o.Services) && in.Providers.Equal(o.Providers)
}

func (in Input) Hash(h *equatable.Hasher) {
	h.String(in.Path)
	h.String(in.Name)
	h.String(in.Dir)
	in.Services.Hash(h)
	in.Providers.Hash(h)
}

// Empty reports whether the package declares nothing to register.
func (in Input) Empty() bool {
	return in.Services.Len() == 0 && in.Providers.Len() == 0
}

// Collect builds one Input per package that declares services or providers,
// sorted by package path.
func Collect(ds []descriptor.Descriptor) []Input {
	type pkgEntry struct {
		in        Input
		services  []descriptor.Type
		providers []descriptor.Method
	}
	byPkg := make(map[string]*pkgEntry)
	get := func(c descriptor.Common) *pkgEntry {
		e, ok := byPkg[c.Package]
		if !ok {
			e = &pkgEntry{in: Input{Path: c.Package, Name: c.PackageName, Dir: c.Dir}}
			byPkg[c.Package] = e
		}
		return e
	}
	for _, d := range ds {
		switch d := d.(type) {
		case descriptor.Type:
			if d.HasAnnotation(ServiceAnnotation) {
				e := get(d.Common)
				e.services = append(e.services, d)
			}
		case descriptor.Method:
			if d.HasAnnotation(ProviderAnnotation) {
				e := get(d.Common)
				e.providers = append(e.providers, d)
			}
		}
	}

	out := make([]Input, 0, len(byPkg))
	for _, e := range byPkg {
		e.in.Services = equatable.From(e.services)
		e.in.Providers = equatable.From(e.providers)
		out = append(out, e.in)
	}
	slices.SortFunc(out, func(a, b Input) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// Name is the artifact name for in.
func Name(in Input) string {
	return synth.JoinDir(in.Dir, FileName)
}

type registration struct {
	name, lifetime, typ, as, factory string
	options                          [][2]string
}

// Synthesize renders the registration table of one package.
func Synthesize(in Input) (pipeline.Artifact, error) {
	if in.Empty() {
		return pipeline.Artifact{}, errors.Newf("package %s declares no services", in.Path)
	}
	f := synth.NewFile(in.Name, in.Path)
	f.Imports().Reserve("DeclgenRegistration", "DeclgenServices")
	q := f.Imports().Qualifier()
	reflectPkg := f.Imports().Add("reflect")

	var regs []registration
	for t := range in.Services.Values() {
		ann, _ := t.Annotation(ServiceAnnotation)
		if t.Shape == "interface" {
			f.Skip("service %s: interfaces have no implementation to register", t.Name)
			continue
		}
		if synth.IsLocal(t) || synth.IsGeneric(t.ValueType) {
			f.Skip("service %s: type cannot be named at package level", t.Name)
			continue
		}
		reg, err := fromAnnotation(ann, synth.ToSnakeCase(t.Name), q)
		if err != nil {
			f.Skip("service %s: %v", t.Name, err)
			continue
		}
		reg.typ = reflectPkg + ".TypeFor[" + t.Name + "]()"
		regs = append(regs, reg)
	}
	for m := range in.Providers.Values() {
		ann, _ := m.Annotation(ProviderAnnotation)
		switch {
		case m.Owner != "":
			f.Skip("provider %s: only package-level functions can be providers", m.Name)
			continue
		case m.ValueType == "":
			f.Skip("provider %s: must return exactly one value", m.Name)
			continue
		}
		reg, err := fromAnnotation(ann, synth.ToSnakeCase(m.Name), q)
		if err != nil {
			f.Skip("provider %s: %v", m.Name, err)
			continue
		}
		reg.typ = reflectPkg + ".TypeFor[" + f.Imports().Type(m.ValueType) + "]()"
		reg.factory = m.Name
		regs = append(regs, reg)
	}
	slices.SortStableFunc(regs, func(a, b registration) int { return strings.Compare(a.name, b.name) })

	f.Printf("\n// DeclgenRegistration describes one service a container can build.\n")
	f.Printf("type DeclgenRegistration struct {\n")
	f.Printf("\tName     string\n")
	f.Printf("\tLifetime any\n")
	f.Printf("\tType     %s.Type\n", reflectPkg)
	f.Printf("\tAs       %s.Type\n", reflectPkg)
	f.Printf("\tFactory  any\n")
	f.Printf("\tOptions  map[string]any\n")
	f.Printf("}\n\n")

	f.Printf("// DeclgenServices lists the services declared in package %s.\n", in.Name)
	f.Printf("var DeclgenServices = []DeclgenRegistration{\n")
	for _, r := range regs {
		f.Printf("\t{\n\t\tName: %s,\n", strconv.Quote(r.name))
		if r.lifetime != "" {
			f.Printf("\t\tLifetime: %s,\n", r.lifetime)
		}
		f.Printf("\t\tType: %s,\n", r.typ)
		if r.as != "" {
			f.Printf("\t\tAs: %s,\n", r.as)
		}
		if r.factory != "" {
			f.Printf("\t\tFactory: %s,\n", r.factory)
		}
		if len(r.options) > 0 {
			f.Printf("\t\tOptions: map[string]any{\n")
			for _, o := range r.options {
				f.Printf("\t\t\t%s: %s,\n", strconv.Quote(o[0]), o[1])
			}
			f.Printf("\t\t},\n")
		}
		f.Printf("\t},\n")
	}
	f.Printf("}\n")
	return f.Artifact(Name(in))
}

// fromAnnotation reads the lifetime, name, as and option arguments.
func fromAnnotation(ann descriptor.Annotation, defaultName string, q typedconst.Qualifier) (registration, error) {
	reg := registration{name: defaultName}
	for i, c := range ann.Positional.All() {
		lit, err := c.Literal(q)
		if err != nil {
			return registration{}, errors.Wrapf(err, "argument %d", i)
		}
		if i == 0 {
			reg.lifetime = lit
			continue
		}
		reg.options = append(reg.options, [2]string{"arg" + strconv.Itoa(i), lit})
	}
	if v, ok := ann.Arg("name"); ok {
		if v.Kind() != typedconst.KindString {
			return registration{}, errors.Newf("name must be a string, got %s", v.Kind())
		}
		reg.name = v.Str()
	}
	if v, ok := ann.Arg("as"); ok {
		if v.Kind() != typedconst.KindTypeRef {
			return registration{}, errors.Newf("as must be a type, got %s", v.Kind())
		}
		lit, err := v.Literal(q)
		if err != nil {
			return registration{}, errors.Wrap(err, "as")
		}
		reg.as = lit
	}
	for n := range ann.Named.Values() {
		if reservedArgs[n.Name] {
			continue
		}
		lit, err := n.Value.Literal(q)
		if err != nil {
			return registration{}, errors.Wrapf(err, "argument %s", n.Name)
		}
		reg.options = append(reg.options, [2]string{n.Name, lit})
	}
	return reg, nil
}
