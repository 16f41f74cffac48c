package ctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/declgen/descriptor"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/synth"
	"github.com/teranos/declgen/typedconst"
)

func common(name, valueType string) descriptor.Common {
	return descriptor.Common{
		Name:          name,
		QualifiedName: "example.com/app/mail.Mailer." + name,
		ValueType:     valueType,
		Package:       "example.com/app/mail",
		PackageName:   "mail",
		Dir:           "mail",
	}
}

func mailer(args ...descriptor.NamedArg) synth.Members {
	t := descriptor.Type{
		Common:     common("Mailer", "Mailer"),
		Shape:      "struct",
		Containing: equatable.Of(descriptor.ScopeRef{Kind: "package", Name: "example.com/app/mail"}),
		HintName:   "mail.Mailer",
	}
	t.QualifiedName = "example.com/app/mail.Mailer"
	t.Annotations = equatable.Of(descriptor.Annotation{Name: Annotation, Named: equatable.From(args)})
	return synth.Members{
		Type: t,
		Fields: equatable.Of(
			descriptor.Field{Common: common("out", "io.Writer"), Owner: t.QualifiedName},
			descriptor.Field{Common: common("Retries", "int"), Owner: t.QualifiedName, HasInitializer: true},
			descriptor.Field{Common: common("Client", "*net/http.Client"), Owner: t.QualifiedName},
		),
	}
}

func TestSynthesize_Constructor(t *testing.T) {
	m := mailer()
	a, err := Synthesize(m)
	require.NoError(t, err)

	assert.Equal(t, "mail/mail.mailer.ctor.g.go", a.Name)
	assert.Contains(t, a.Text, "package mail")
	assert.Contains(t, a.Text, "\"io\"\n\t\"net/http\"\n")
	assert.Contains(t, a.Text, "// declgen: skipped field Retries: has a default initializer")
	assert.Contains(t, a.Text, "func NewMailer(out io.Writer, client *http.Client) *Mailer {")
	assert.Contains(t, a.Text, "return &Mailer{")
	assert.Contains(t, a.Text, "out:    out,")
	assert.Contains(t, a.Text, "Client: client,")
	assert.NotContains(t, a.Text, "Retries:")
}

func TestSynthesize_NamedArgs(t *testing.T) {
	m := mailer(
		descriptor.NamedArg{Name: "name", Value: typedconst.String("MakeMailer")},
		descriptor.NamedArg{Name: "pointer", Value: typedconst.Bool(false)},
	)
	a, err := Synthesize(m)
	require.NoError(t, err)
	assert.Contains(t, a.Text, "func MakeMailer(out io.Writer, client *http.Client) Mailer {")
	assert.Contains(t, a.Text, "return Mailer{")

	_, err = Synthesize(mailer(descriptor.NamedArg{Name: "pointer", Value: typedconst.String("yes")}))
	assert.Error(t, err)
}

func TestSynthesize_Rejects(t *testing.T) {
	m := mailer()
	m.Type.Shape = "interface"
	_, err := Synthesize(m)
	assert.Error(t, err)

	m = mailer()
	m.Type.Containing = equatable.Of(descriptor.ScopeRef{Kind: "func", Name: "example.com/app/mail.run"})
	_, err = Synthesize(m)
	assert.Error(t, err)

	// Through Safe the failure becomes a marked artifact instead of an error.
	out := synth.Safe(Synthesize, Name(m), m.Type.HintName, m)
	assert.True(t, synth.Failed(out.Artifact.Text))
	assert.Equal(t, "mail/mail.mailer.ctor.g.go", out.Artifact.Name)
}
