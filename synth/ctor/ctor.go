// Package ctor renders constructors for struct types annotated
// //declgen:Constructor.
//
// The constructor takes one parameter per auto-wireable field. Fields with a
// default:"..." initializer are left to their initializer and listed as
// skipped. Named arguments:
//
//	name: "MakeMailer"   // function name, default "New" + type name
//	pointer: false       // return T instead of *T
package ctor

import (
	"strconv"
	"strings"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/pipeline"
	"github.com/teranos/declgen/synth"
	"github.com/teranos/declgen/typedconst"
)

// Annotation is the directive name that requests a constructor.
const Annotation = "Constructor"

// Name is the artifact name for m.
func Name(m synth.Members) string {
	return synth.FileName(m.Type.Dir, m.Type.HintName, "ctor")
}

// Synthesize renders the constructor of one annotated type.
func Synthesize(m synth.Members) (pipeline.Artifact, error) {
	t := m.Type
	switch {
	case t.Shape != "struct":
		return pipeline.Artifact{}, errors.Newf("%s is a %s, constructors need a struct", t.Name, t.Shape)
	case m.Local():
		return pipeline.Artifact{}, errors.Newf("%s is declared inside a function", t.Name)
	case m.Generic():
		return pipeline.Artifact{}, errors.Newf("%s is generic", t.Name)
	}

	ann, _ := t.Annotation(Annotation)
	funcName := "New" + strings.ToUpper(t.Name[:1]) + t.Name[1:]
	if v, ok := ann.Arg("name"); ok {
		if v.Kind() != typedconst.KindString {
			return pipeline.Artifact{}, errors.Newf("%s: name must be a string, got %s", Annotation, v.Kind())
		}
		funcName = v.Str()
	}
	pointer := true
	if v, ok := ann.Arg("pointer"); ok {
		if v.Kind() != typedconst.KindBool {
			return pipeline.Artifact{}, errors.Newf("%s: pointer must be a bool, got %s", Annotation, v.Kind())
		}
		pointer = v.BoolValue()
	}

	f := synth.NewFile(t.PackageName, t.Package)
	f.Imports().Reserve(t.Name, funcName)

	type param struct{ name, field, typ string }
	var params []param
	used := map[string]bool{}
	skipped := false
	for field := range m.Fields.Values() {
		if !field.AutoWireable() {
			f.Skip("field %s: has a default initializer", field.Name)
			skipped = true
			continue
		}
		name := synth.ParamName(field.Name)
		for base, i := name, 2; used[name]; i++ {
			name = base + strconv.Itoa(i)
		}
		used[name] = true
		f.Imports().Reserve(name)
		params = append(params, param{name: name, field: field.Name})
	}
	if skipped {
		f.Printf("\n")
	}
	// Types are qualified after every parameter name is reserved so an
	// import alias never shadows a parameter.
	fi := 0
	for field := range m.Fields.Values() {
		if field.AutoWireable() {
			params[fi].typ = f.Imports().Type(field.ValueType)
			fi++
		}
	}

	result, amp := t.Name, ""
	if pointer {
		result, amp = "*"+t.Name, "&"
	}
	f.Printf("// %s returns a %s with every wireable field set.\n", funcName, t.Name)
	f.Printf("func %s(", funcName)
	for i, p := range params {
		if i > 0 {
			f.Printf(", ")
		}
		f.Printf("%s %s", p.name, p.typ)
	}
	f.Printf(") %s {\n", result)
	if len(params) == 0 {
		f.Printf("\treturn %s%s{}\n}\n", amp, t.Name)
	} else {
		f.Printf("\treturn %s%s{\n", amp, t.Name)
		for _, p := range params {
			f.Printf("\t\t%s: %s,\n", p.field, p.name)
		}
		f.Printf("\t}\n}\n")
	}
	return f.Artifact(Name(m))
}
