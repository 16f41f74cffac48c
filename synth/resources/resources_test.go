package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/resource"
)

func lv(locale, value string) resource.LocaleValue {
	return resource.LocaleValue{Locale: locale, Value: value, HasValue: true}
}

func stringsGroup() resource.Group {
	return resource.Group{
		Key:     resource.Key{Namespace: "App", ClassName: "Strings", ResourceKey: "App.Strings"},
		Paths:   equatable.Of[equatable.String]("Strings.fr.resx", "Strings.resx"),
		Locales: equatable.Of[equatable.String]("", "fr", "fr-CA"),
		Entries: equatable.Of(
			resource.Entry{Name: "Bye", Values: equatable.Of(lv("", "Bye"))},
			resource.Entry{Name: "Hello", Comment: "Shown on start.", Values: equatable.Of(lv("", "Hello"), lv("fr", "Bonjour"))},
			resource.Entry{Name: "Logo", Type: "System.Byte[], mscorlib", Values: equatable.Of(lv("", "AAE="))},
			resource.Entry{Name: "my-key", Values: equatable.Of(lv("", "x"))},
			resource.Entry{Name: "Title", Type: "System.String, mscorlib", Values: equatable.Of(lv("", "T"), lv("fr-CA", "T-ca"))},
		),
	}
}

func TestSynthesize_Accessor(t *testing.T) {
	in := Input{Group: stringsGroup(), Package: "resources", Dir: "gen"}
	a, err := Synthesize(in)
	require.NoError(t, err)

	assert.Equal(t, "gen/App.Strings.g.go", a.Name)
	assert.Contains(t, a.Text, "package resources")
	assert.Contains(t, a.Text, `"golang.org/x/text/language"`)
	assert.Contains(t, a.Text, "type Strings struct{}")
	assert.Contains(t, a.Text, `var localesStrings = []string{"", "fr", "fr-CA"}`)
	assert.Contains(t, a.Text, "language.Und,")
	assert.Contains(t, a.Text, `language.MustParse("fr-CA"),`)

	assert.Contains(t, a.Text, "// Shown on start.\nfunc (Strings) Hello(tag language.Tag) string {")
	// fr-CA has no value of its own and falls back to fr.
	assert.Contains(t, a.Text, "\tcase \"fr\":\n\t\treturn \"Bonjour\"\n\tcase \"fr-CA\":\n\t\treturn \"Bonjour\"\n")
	assert.Contains(t, a.Text, "func (Strings) Bye(tag language.Tag) string {\n\treturn \"Bye\"\n}")
	assert.Contains(t, a.Text, "\tcase \"fr-CA\":\n\t\treturn \"T-ca\"\n")

	assert.Contains(t, a.Text, `// declgen: skipped entry "my-key": not a Go identifier`)
	assert.Contains(t, a.Text, `// declgen: skipped entry "Logo": type System.Byte[], mscorlib is not a string`)
	assert.NotContains(t, a.Text, "func (Strings) Logo")
	assert.Contains(t, a.Text, `return []string{"Bye", "Hello", "Title"}`)
}

func TestSynthesize_Deterministic(t *testing.T) {
	in := Input{Group: stringsGroup(), Package: "resources"}
	a, err := Synthesize(in)
	require.NoError(t, err)
	b, err := Synthesize(Input{Group: stringsGroup(), Package: "resources"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "App.Strings.g.go", a.Name)
	assert.True(t, in.Equal(Input{Group: stringsGroup(), Package: "resources"}))
}

func TestSynthesize_NeutralOnlyAddsFallbackLocale(t *testing.T) {
	g := resource.Group{
		Key:     resource.Key{Namespace: "App", ClassName: "Errors", ResourceKey: "App.Errors"},
		Locales: equatable.Of[equatable.String]("de"),
		Entries: equatable.Of(resource.Entry{Name: "Oops", Values: equatable.Of(lv("de", "Hoppla"))}),
	}
	a, err := Synthesize(Input{Group: g, Package: "res"})
	require.NoError(t, err)
	assert.Contains(t, a.Text, `var localesErrors = []string{"", "de"}`)
	assert.Contains(t, a.Text, "\tcase \"de\":\n\t\treturn \"Hoppla\"\n\t}\n\treturn \"\"\n")
}

func TestSynthesize_BadClassName(t *testing.T) {
	g := stringsGroup()
	g.Key.ClassName = "not valid"
	_, err := Synthesize(Input{Group: g, Package: "resources"})
	assert.Error(t, err)
}

func TestSynthesize_HelpersKeepClassCase(t *testing.T) {
	upper := stringsGroup()
	lower := stringsGroup()
	lower.Key.ClassName = "strings"
	lower.Key.ResourceKey = "App.Lower.strings"

	a, err := Synthesize(Input{Group: upper, Package: "resources"})
	require.NoError(t, err)
	b, err := Synthesize(Input{Group: lower, Package: "resources"})
	require.NoError(t, err)

	for _, name := range []string{"localesStrings", "matcherStrings", "localeOfStrings"} {
		assert.Contains(t, a.Text, name)
		assert.NotContains(t, b.Text, name)
	}
	assert.Contains(t, b.Text, "func localeOfstrings(tag language.Tag) string {")
	assert.Contains(t, b.Text, "switch localeOfstrings(tag) {")
}
