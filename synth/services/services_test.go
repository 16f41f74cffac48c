package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/declgen/descriptor"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/typedconst"
)

const pkg = "example.com/app/mail"

func common(name, valueType string, anns ...descriptor.Annotation) descriptor.Common {
	return descriptor.Common{
		Name: name, QualifiedName: pkg + "." + name, ValueType: valueType,
		Package: pkg, PackageName: "mail", Dir: "mail",
		Annotations: equatable.From(anns),
	}
}

var singleton = typedconst.Enum(typedconst.TypeName{Pkg: pkg, Name: "Lifetime"}, typedconst.Numeric("int", "1"))

func fixture() []descriptor.Descriptor {
	return []descriptor.Descriptor{
		descriptor.Type{
			Common: common("Mailer", "Mailer", descriptor.Annotation{
				Name:       ServiceAnnotation,
				Positional: equatable.Of(singleton),
				Named: equatable.Of(
					descriptor.NamedArg{Name: "as", Value: typedconst.TypeRef(typedconst.TypeName{Pkg: "io", Name: "Writer"})},
					descriptor.NamedArg{Name: "tags", Value: typedconst.Array(typedconst.TypeName{Name: "string"}, typedconst.String("a"), typedconst.String("b"))},
				),
			}),
			Shape: "struct",
		},
		descriptor.Type{Common: common("Sender", "Sender", descriptor.Annotation{Name: ServiceAnnotation}), Shape: "interface"},
		descriptor.Type{Common: common("Plain", "Plain"), Shape: "struct"},
		descriptor.Method{Common: common("NewClock", "*example.com/app/clock.Clock", descriptor.Annotation{
			Name:  ProviderAnnotation,
			Named: equatable.Of(descriptor.NamedArg{Name: "name", Value: typedconst.String("clock")}),
		})},
		descriptor.Method{Common: common("Broken", "int", descriptor.Annotation{
			Name:       ProviderAnnotation,
			Positional: equatable.Of(typedconst.Numeric("complex128", "(1 + 2i)")),
		})},
		descriptor.Method{Common: common("Send", "error", descriptor.Annotation{Name: ProviderAnnotation}), Owner: pkg + ".Mailer"},
	}
}

func TestCollect(t *testing.T) {
	ins := Collect(fixture())
	require.Len(t, ins, 1)
	in := ins[0]
	assert.Equal(t, pkg, in.Path)
	assert.Equal(t, "mail", in.Name)
	assert.Equal(t, 2, in.Services.Len())
	assert.Equal(t, 3, in.Providers.Len())
	assert.Equal(t, "mail/declgen.services.g.go", Name(in))
	assert.Empty(t, Collect([]descriptor.Descriptor{descriptor.Type{Common: common("Plain", "Plain")}}))
}

func TestSynthesize_Registry(t *testing.T) {
	a, err := Synthesize(Collect(fixture())[0])
	require.NoError(t, err)

	assert.Contains(t, a.Text, "package mail")
	assert.Contains(t, a.Text, `"example.com/app/clock"`)
	assert.Contains(t, a.Text, "type DeclgenRegistration struct {")
	assert.Contains(t, a.Text, "var DeclgenServices = []DeclgenRegistration{")

	assert.Contains(t, a.Text, `"mailer"`)
	assert.Contains(t, a.Text, "Lifetime(1),")
	assert.Contains(t, a.Text, "reflect.TypeFor[Mailer](),")
	assert.Contains(t, a.Text, "reflect.TypeFor[io.Writer](),")
	assert.Contains(t, a.Text, `"tags": []string{"a", "b"},`)

	assert.Contains(t, a.Text, `"clock"`)
	assert.Contains(t, a.Text, "reflect.TypeFor[*clock.Clock](),")
	assert.Contains(t, a.Text, "NewClock,")

	assert.Contains(t, a.Text, "// declgen: skipped service Sender: interfaces have no implementation to register")
	assert.Contains(t, a.Text, "// declgen: skipped provider Broken: argument 0: complex constant (1 + 2i)")
	assert.Contains(t, a.Text, "// declgen: skipped provider Send: only package-level functions can be providers")

	again, err := Synthesize(Collect(fixture())[0])
	require.NoError(t, err)
	assert.Equal(t, a.Text, again.Text)
}

func TestSynthesize_Empty(t *testing.T) {
	_, err := Synthesize(Input{Path: pkg, Name: "mail"})
	assert.Error(t, err)
}
