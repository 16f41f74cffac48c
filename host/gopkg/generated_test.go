package gopkg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/declgen/descriptor"
	"github.com/teranos/declgen/synth"
	"github.com/teranos/declgen/synth/binding"
)

const personSource = `package app

//declgen:Bindable
type Person struct {
	name string
}

func (p *Person) Name() string { return p.name }
`

// bindPerson loads files and renders the binding artifact for Person.
func bindPerson(t *testing.T, files map[string]string) string {
	t.Helper()
	p := loadSource(t, files)
	set, err := descriptor.SnapshotAll(context.Background(), p)
	require.NoError(t, err)
	members := synth.CollectMembers(set.Descriptors, binding.Annotation)
	require.Len(t, members, 1)
	a, err := binding.Synthesize(members[0])
	require.NoError(t, err)
	return a.Text
}

func TestProvider_SkipsOwnArtifacts(t *testing.T) {
	first := bindPerson(t, map[string]string{"/proj/app/person.go": personSource})
	require.Contains(t, first, "PropertyNames")
	assert.NotContains(t, first, "skipped")

	second := bindPerson(t, map[string]string{
		"/proj/app/person.go":               personSource,
		"/proj/app/app.person.binding.g.go": first,
	})
	assert.Equal(t, first, second, "regenerating next to the previous output must not change it")
}

func TestProvider_IndexesForeignGeneratedFiles(t *testing.T) {
	foreign := "// Code generated by stringer. DO NOT EDIT.\n\npackage app\n\n" +
		"func (p *Person) Label() string { return p.name }\n"
	own := synth.Header + "\n\npackage app\n\nfunc (p *Person) Own() string { return p.name }\n"
	p := loadSource(t, map[string]string{
		"/proj/app/person.go":   personSource,
		"/proj/app/person.g.go": foreign,
		"/proj/app/own.g.go":    own,
	})
	syms := symbolsByName(t, p)

	assert.Contains(t, syms, "example.com/app.Person.Label")
	assert.NotContains(t, syms, "example.com/app.Person.Own")
}
