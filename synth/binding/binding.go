// Package binding renders a name-based property lookup for struct types
// annotated //declgen:Bindable.
//
// Only getters whose body is a single return of a field are bound. Anything
// else might have side effects and is listed as skipped.
package binding

import (
	"strconv"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/pipeline"
	"github.com/teranos/declgen/synth"
)

// Annotation is the directive name that requests a binding.
const Annotation = "Bindable"

// Name is the artifact name for m.
func Name(m synth.Members) string {
	return synth.FileName(m.Type.Dir, m.Type.HintName, "binding")
}

// Synthesize renders Property and PropertyNames for one annotated type.
func Synthesize(m synth.Members) (pipeline.Artifact, error) {
	t := m.Type
	switch {
	case t.Shape != "struct":
		return pipeline.Artifact{}, errors.Newf("%s is a %s, bindings need a struct", t.Name, t.Shape)
	case m.Local():
		return pipeline.Artifact{}, errors.Newf("%s is declared inside a function", t.Name)
	case m.Generic():
		return pipeline.Artifact{}, errors.Newf("%s is generic", t.Name)
	}

	f := synth.NewFile(t.PackageName, t.Package)
	recv := synth.ReceiverName(t.Name)

	var bound []string
	for p := range m.Properties.Values() {
		if !p.AutoWireable() {
			f.Skip("property %s: getter body is not a plain field read", p.Name)
			continue
		}
		bound = append(bound, p.Name)
	}
	if len(bound) < m.Properties.Len() {
		f.Printf("\n")
	}

	f.Printf("// Property returns the value of the named property of %s.\n", t.Name)
	f.Printf("func (%s *%s) Property(name string) (any, bool) {\n", recv, t.Name)
	if len(bound) > 0 {
		f.Printf("\tswitch name {\n")
		for _, name := range bound {
			f.Printf("\tcase %s:\n\t\treturn %s.%s(), true\n", strconv.Quote(name), recv, name)
		}
		f.Printf("\t}\n")
	}
	f.Printf("\treturn nil, false\n}\n\n")

	f.Printf("// PropertyNames lists the names Property resolves.\n")
	f.Printf("func (*%s) PropertyNames() []string {\n\treturn []string{", t.Name)
	for i, name := range bound {
		if i > 0 {
			f.Printf(", ")
		}
		f.Printf("%s", strconv.Quote(name))
	}
	f.Printf("}\n}\n")
	return f.Artifact(Name(m))
}
