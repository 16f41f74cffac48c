package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/declgen/diag"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/pipeline"
)

func TestSafe_PassesThrough(t *testing.T) {
	out := Safe(func(s string) (pipeline.Artifact, error) {
		return pipeline.Artifact{Name: "a.g.go", Text: s}, nil
	}, "a.g.go", "A", "text")
	assert.Equal(t, pipeline.Artifact{Name: "a.g.go", Text: "text"}, out.Artifact)
	assert.Equal(t, 0, out.Diagnostics.Len())
}

func TestSafe_ErrorBecomesFailureArtifact(t *testing.T) {
	out := Safe(func(string) (pipeline.Artifact, error) {
		return pipeline.Artifact{}, errors.New("boom\nsecond line")
	}, "pkg/a.ctor.g.go", "pkg.A", "")

	assert.Equal(t, "pkg/a.ctor.g.go", out.Artifact.Name)
	assert.True(t, Failed(out.Artifact.Text))
	assert.Contains(t, out.Artifact.Text, "//\tboom\n//\tsecond line\n")
	assert.Contains(t, out.Artifact.Text, "package ignore")

	require.Equal(t, 1, out.Diagnostics.Len())
	d := out.Diagnostics.At(0)
	assert.Equal(t, diag.CodeSynthesis, d.Code)
	assert.Equal(t, diag.SeverityError, d.Severity)
	assert.Equal(t, "pkg.A", d.Subject)
	assert.Equal(t, "synthesis failed: boom", d.Message)
}

func TestSafe_RecoversPanic(t *testing.T) {
	out := Safe(func(v []int) (pipeline.Artifact, error) {
		_ = v[3]
		return pipeline.Artifact{}, nil
	}, "x.g.go", "X", nil)
	assert.True(t, Failed(out.Artifact.Text))
	require.Equal(t, 1, out.Diagnostics.Len())
	assert.Contains(t, out.Diagnostics.At(0).Message, "panic")
}

func TestImportSet_Type(t *testing.T) {
	s := NewImportSet("example.com/app")
	s.Reserve("yaml")

	assert.Equal(t, "io.Writer", s.Type("io.Writer"))
	assert.Equal(t, "Mailer", s.Type("example.com/app.Mailer"))
	assert.Equal(t, "map[string][]*yaml2.Node", s.Type("map[string][]*gopkg.in/yaml.v3.Node"))
	assert.Equal(t, "toml.Primitive", s.Type("github.com/pelletier/go-toml/v2.Primitive"))
	assert.Equal(t, "func(context.Context) error", s.Type("func(context.Context) error"))

	assert.Equal(t, `import (
	"context"
	toml "github.com/pelletier/go-toml/v2"
	yaml2 "gopkg.in/yaml.v3"
	"io"
)
`, s.Decl())
}

func TestImportSet_Qualifier(t *testing.T) {
	s := NewImportSet("example.com/app")
	q := s.Qualifier()
	assert.Equal(t, "", q("example.com/app"))
	assert.Equal(t, "reflect", q("reflect"))
	assert.Equal(t, "reflect", q("reflect"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "", NewImportSet("x").Decl())
}

func TestFile_ArtifactIsFormatted(t *testing.T) {
	f := NewFile("app", "example.com/app")
	w := f.Imports().Type("io.Writer")
	f.Skip("field %s: reason", "X")
	f.Printf("\nfunc   Use(w %s)   {}\n", w)

	a, err := f.Artifact("app/use.g.go")
	require.NoError(t, err)
	assert.Equal(t, Header+`

package app

import (
	"io"
)

// declgen: skipped field X: reason

func Use(w io.Writer) {}
`, a.Text)

	bad := NewFile("app", "")
	bad.Printf("func {")
	_, err = bad.Artifact("bad.g.go")
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "internal/mail/mail.mailer.ctor.g.go", FileName("internal/mail", "mail.Mailer", "ctor"))
	assert.Equal(t, "main.app.binding.g.go", FileName(".", "main.App", "binding"))
	assert.Equal(t, "gen/App.Strings.g.go", JoinDir("gen/", "App.Strings.g.go"))
}

func TestCasing(t *testing.T) {
	assert.Equal(t, "https_connection", ToSnakeCase("HTTPSConnection"))
	assert.Equal(t, "mailer", ToSnakeCase("Mailer"))
	assert.Equal(t, "new_clock", ToSnakeCase("NewClock"))

	assert.Equal(t, "url", ParamName("URL"))
	assert.Equal(t, "httpClient", ParamName("HTTPClient"))
	assert.Equal(t, "out", ParamName("out"))
	assert.Equal(t, "string_", ParamName("String"))
	assert.Equal(t, "type_", ParamName("Type"))
}
