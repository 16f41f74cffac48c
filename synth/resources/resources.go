// Package resources renders one accessor file per merged resource key.
//
// For a key App.Strings with neutral and fr tables the output reads:
//
//	type Strings struct{}
//
//	func (Strings) Hello(tag language.Tag) string {
//		switch localeOfStrings(tag) {
//		case "fr":
//			return "Bonjour"
//		}
//		return "Hello"
//	}
//
// Locale selection goes through a language.Matcher built from the key's
// locales, with the neutral table as the fallback.
package resources

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/pipeline"
	"github.com/teranos/declgen/resource"
	"github.com/teranos/declgen/synth"
	"golang.org/x/text/language"
)

const languagePkg = "golang.org/x/text/language"

// Input is one merged group and where its accessor goes.
type Input struct {
	Group resource.Group
	// Package is the Go package name of the output directory.
	Package string
	// Dir is the slash-separated output directory relative to the project root.
	Dir string
}

func (in Input) Equal(o Input) bool {
	return in.Package == o.Package && in.Dir == o.Dir && in.Group.Equal(o.Group)
}

func (in Input) Hash(h *equatable.Hasher) {
	h.String(in.Package)
	h.String(in.Dir)
	in.Group.Hash(h)
}

// Name is the artifact name for in: "<dir>/<ResourceKey>.g.go".
func Name(in Input) string {
	return synth.JoinDir(in.Dir, in.Group.Key.ResourceKey+".g.go")
}

// helpers are the package-level names an accessor file declares besides its
// class. No prefix is a prefix of another, so distinct classes never share one.
type helpers struct {
	locales  string
	matcher  string
	localeOf string
}

// reserved are methods every accessor type declares itself.
var reserved = map[string]bool{"Keys": true}

// Synthesize renders the accessor type for one group.
func Synthesize(in Input) (pipeline.Artifact, error) {
	g := in.Group
	class := g.Key.ClassName
	if !token.IsIdentifier(class) {
		return pipeline.Artifact{}, errors.Newf("class name %q is not an identifier", class)
	}

	f := synth.NewFile(in.Package, "")
	f.Imports().Reserve(class)
	lang := f.Imports().Add(languagePkg)

	locales := make([]string, 0, g.Locales.Len())
	for l := range g.Locales.Values() {
		locales = append(locales, string(l))
	}
	if len(locales) == 0 || locales[0] != resource.Neutral {
		// The matcher's first tag is its fallback.
		locales = append([]string{resource.Neutral}, locales...)
	}

	// Helpers carry the exact class name so accessors for classes that
	// differ only in case can share a package.
	h := helpers{
		locales:  "locales" + class,
		matcher:  "matcher" + class,
		localeOf: "localeOf" + class,
	}
	f.Printf("// %s holds the %s resources.\n", class, g.Key.ResourceKey)
	f.Printf("//\n// Sources:\n")
	for p := range g.Paths.Values() {
		f.Printf("//   - %s\n", string(p))
	}
	f.Printf("type %s struct{}\n\n", class)

	f.Printf("var %s = []string{", h.locales)
	for i, l := range locales {
		if i > 0 {
			f.Printf(", ")
		}
		f.Printf("%s", strconv.Quote(l))
	}
	f.Printf("}\n\n")

	f.Printf("var %s = %s.NewMatcher([]%s.Tag{\n", h.matcher, lang, lang)
	for _, l := range locales {
		if l == resource.Neutral {
			f.Printf("\t%s.Und,\n", lang)
			continue
		}
		f.Printf("\t%s.MustParse(%s),\n", lang, strconv.Quote(l))
	}
	f.Printf("})\n\n")

	f.Printf("func %s(tag %s.Tag) string {\n", h.localeOf, lang)
	f.Printf("\t_, i, _ := %s.Match(tag)\n", h.matcher)
	f.Printf("\treturn %s[i]\n}\n\n", h.locales)

	var names []string
	for e := range g.Entries.Values() {
		switch {
		case !token.IsIdentifier(e.Name):
			f.Skip("entry %q: not a Go identifier", e.Name)
			f.Printf("\n")
			continue
		case reserved[e.Name]:
			f.Skip("entry %q: name is reserved", e.Name)
			f.Printf("\n")
			continue
		case !isStringType(e.Type):
			f.Skip("entry %q: type %s is not a string", e.Name, e.Type)
			f.Printf("\n")
			continue
		}
		names = append(names, e.Name)
		writeEntry(f, lang, class, h, locales, e)
	}

	f.Printf("// Keys lists the generated entries.\n")
	f.Printf("func (%s) Keys() []string {\n\treturn []string{", class)
	for i, n := range names {
		if i > 0 {
			f.Printf(", ")
		}
		f.Printf("%s", strconv.Quote(n))
	}
	f.Printf("}\n}\n")

	return f.Artifact(Name(in))
}

func writeEntry(f *synth.File, lang, class string, h helpers, locales []string, e resource.Entry) {
	if e.Comment != "" {
		for _, line := range strings.Split(strings.TrimSpace(e.Comment), "\n") {
			f.Printf("// %s\n", strings.TrimSpace(line))
		}
	}
	neutral, _ := e.Value(resource.Neutral)
	f.Printf("func (%s) %s(tag %s.Tag) string {\n", class, e.Name, lang)

	var cases []string
	for _, l := range locales {
		if l == resource.Neutral {
			continue
		}
		v, ok := resolve(e, l)
		if !ok || v == neutral {
			continue
		}
		cases = append(cases, "\tcase "+strconv.Quote(l)+":\n\t\treturn "+strconv.Quote(v)+"\n")
	}
	if len(cases) > 0 {
		f.Printf("\tswitch %s(tag) {\n", h.localeOf)
		for _, c := range cases {
			f.Printf("%s", c)
		}
		f.Printf("\t}\n")
	}
	f.Printf("\treturn %s\n}\n\n", strconv.Quote(neutral))
}

// resolve finds the value for locale, walking parent locales ("fr-CA" -> "fr")
// before giving up. The neutral value is not consulted.
func resolve(e resource.Entry, locale string) (string, bool) {
	tag, err := language.Parse(locale)
	if err != nil {
		return e.Value(locale)
	}
	for !tag.IsRoot() {
		if v, ok := e.Value(tag.String()); ok {
			return v, true
		}
		tag = tag.Parent()
	}
	return "", false
}

// isStringType reports whether a declared entry type is a string. Tables from
// .NET projects spell it "System.String" with an optional assembly qualifier.
func isStringType(t string) bool {
	t = strings.TrimSpace(t)
	if i := strings.IndexByte(t, ','); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "", "string", "System.String":
		return true
	}
	return false
}
