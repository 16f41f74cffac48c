package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/declgen/descriptor"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/synth"
)

func TestSynthesize_Binding(t *testing.T) {
	owner := "example.com/app.Settings"
	m := synth.Members{
		Type: descriptor.Type{
			Common: descriptor.Common{
				Name: "Settings", QualifiedName: owner, ValueType: "Settings",
				Package: "example.com/app", PackageName: "app", Dir: ".",
			},
			Shape:    "struct",
			HintName: "app.Settings",
		},
		Properties: equatable.Of(
			descriptor.Property{Common: descriptor.Common{Name: "Name", ValueType: "string"}, Owner: owner, TrivialBody: true, BackingField: "name"},
			descriptor.Property{Common: descriptor.Common{Name: "Computed", ValueType: "int"}, Owner: owner},
			descriptor.Property{Common: descriptor.Common{Name: "Port", ValueType: "int"}, Owner: owner, TrivialBody: true, BackingField: "port"},
		),
	}

	a, err := Synthesize(m)
	require.NoError(t, err)
	assert.Equal(t, "app.settings.binding.g.go", a.Name)
	assert.Contains(t, a.Text, "// declgen: skipped property Computed: getter body is not a plain field read")
	assert.Contains(t, a.Text, "func (s *Settings) Property(name string) (any, bool) {")
	assert.Contains(t, a.Text, "\tcase \"Name\":\n\t\treturn s.Name(), true\n")
	assert.Contains(t, a.Text, "\tcase \"Port\":\n\t\treturn s.Port(), true\n")
	assert.NotContains(t, a.Text, "s.Computed()")
	assert.Contains(t, a.Text, `return []string{"Name", "Port"}`)
}

func TestSynthesize_NoProperties(t *testing.T) {
	m := synth.Members{Type: descriptor.Type{
		Common: descriptor.Common{Name: "Node", Package: "example.com/app", PackageName: "app"},
		Shape:  "struct", HintName: "app.Node",
	}}
	a, err := Synthesize(m)
	require.NoError(t, err)
	assert.Contains(t, a.Text, "func (n *Node) Property(name string) (any, bool) {\n\treturn nil, false\n}")
}
