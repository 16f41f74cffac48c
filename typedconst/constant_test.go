package typedconst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/typedconst"
)

func TestConstant_Equality(t *testing.T) {
	lifetime := typedconst.TypeName{Pkg: "example.com/di", Name: "Lifetime"}

	tests := []struct {
		name  string
		a, b  typedconst.Constant
		equal bool
	}{
		{"null", typedconst.Null(), typedconst.Null(), true},
		{"zero value is null", typedconst.Constant{}, typedconst.Null(), true},
		{"string", typedconst.String("a"), typedconst.String("a"), true},
		{"string differs", typedconst.String("a"), typedconst.String("b"), false},
		{"bool", typedconst.Bool(true), typedconst.Bool(true), true},
		{"numeric kind matters", typedconst.Numeric("int", "1"), typedconst.Numeric("int64", "1"), false},
		{"string vs null", typedconst.String(""), typedconst.Null(), false},
		{"enum", typedconst.Enum(lifetime, typedconst.Numeric("int", "1")), typedconst.Enum(lifetime, typedconst.Numeric("int", "1")), true},
		{"enum raw differs", typedconst.Enum(lifetime, typedconst.Numeric("int", "1")), typedconst.Enum(lifetime, typedconst.Numeric("int", "2")), false},
		{
			"array",
			typedconst.Array(typedconst.TypeName{Name: "string"}, typedconst.String("x"), typedconst.String("y")),
			typedconst.Array(typedconst.TypeName{Name: "string"}, typedconst.String("x"), typedconst.String("y")),
			true,
		},
		{
			"array order",
			typedconst.Array(typedconst.TypeName{Name: "string"}, typedconst.String("x"), typedconst.String("y")),
			typedconst.Array(typedconst.TypeName{Name: "string"}, typedconst.String("y"), typedconst.String("x")),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			if tt.equal {
				assert.Equal(t, equatable.HashOf(tt.a), equatable.HashOf(tt.b))
			}
		})
	}
}

func TestConstant_Literal(t *testing.T) {
	q := func(path string) string {
		switch path {
		case "example.com/app":
			return ""
		case "example.com/di":
			return "di"
		}
		return path
	}

	tests := []struct {
		name string
		c    typedconst.Constant
		want string
	}{
		{"null", typedconst.Null(), "nil"},
		{"string escapes", typedconst.String("say \"hi\"\n"), `"say \"hi\"\n"`},
		{"bool", typedconst.Bool(false), "false"},
		{"int", typedconst.Numeric("int", "-42"), "-42"},
		{"untyped int", typedconst.Numeric("untyped int", "7"), "7"},
		{"int64", typedconst.Numeric("int64", "7"), "int64(7)"},
		{"uint8", typedconst.Numeric("uint8", "255"), "uint8(255)"},
		{"float keeps float type", typedconst.Numeric("float64", "2"), "2.0"},
		{"float", typedconst.Numeric("untyped float", "0.25"), "0.25"},
		{"float32", typedconst.Numeric("float32", "1.5"), "float32(1.5)"},
		{"rune", typedconst.Numeric("untyped rune", "65"), "rune(65)"},
		{"type ref", typedconst.TypeRef(typedconst.TypeName{Pkg: "io", Name: "Reader"}), "reflect.TypeFor[io.Reader]()"},
		{"type ref same package", typedconst.TypeRef(typedconst.TypeName{Pkg: "example.com/app", Name: "Store"}), "reflect.TypeFor[Store]()"},
		{"predeclared type ref", typedconst.TypeRef(typedconst.TypeName{Name: "error"}), "reflect.TypeFor[error]()"},
		{
			"enum",
			typedconst.Enum(typedconst.TypeName{Pkg: "example.com/di", Name: "Lifetime"}, typedconst.Numeric("int", "1")),
			"di.Lifetime(1)",
		},
		{
			"string enum",
			typedconst.Enum(typedconst.TypeName{Pkg: "example.com/app", Name: "Mode"}, typedconst.String("fast")),
			`Mode("fast")`,
		},
		{
			"array of enums",
			typedconst.Array(
				typedconst.TypeName{Pkg: "example.com/di", Name: "Lifetime"},
				typedconst.Enum(typedconst.TypeName{Pkg: "example.com/di", Name: "Lifetime"}, typedconst.Numeric("int", "0")),
			),
			"[]di.Lifetime{di.Lifetime(0)}",
		},
		{"empty array", typedconst.Array(typedconst.TypeName{Name: "string"}), "[]string{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.c.Literal(q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConstant_LiteralUnsupported(t *testing.T) {
	tests := []struct {
		name string
		c    typedconst.Constant
	}{
		{"complex", typedconst.Numeric("complex128", "(1 + 2i)")},
		{"int overflow", typedconst.Numeric("untyped int", "99999999999999999999")},
		{"infinite float", typedconst.Numeric("float64", "+Inf")},
		{"enum of array", typedconst.Enum(typedconst.TypeName{Name: "T"}, typedconst.Array(typedconst.TypeName{Name: "int"}))},
		{"array with unsupported element", typedconst.Array(typedconst.TypeName{Name: "complex128"}, typedconst.Numeric("complex128", "1i"))},
		{"nameless type ref", typedconst.TypeRef(typedconst.TypeName{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.c.Literal(typedconst.Unqualified)
			require.Error(t, err)
			assert.True(t, errors.IsUnsupported(err))
		})
	}
}

func TestParseTypeName(t *testing.T) {
	assert.Equal(t, typedconst.TypeName{Pkg: "github.com/x/y", Name: "T"}, typedconst.ParseTypeName("github.com/x/y.T"))
	assert.Equal(t, typedconst.TypeName{Pkg: "io", Name: "Reader"}, typedconst.ParseTypeName("io.Reader"))
	assert.Equal(t, typedconst.TypeName{Name: "string"}, typedconst.ParseTypeName("string"))
	assert.Equal(t, typedconst.TypeName{Pkg: "gopkg.in/yaml.v3", Name: "Node"}, typedconst.ParseTypeName("gopkg.in/yaml.v3.Node"))
	assert.Equal(t, "io.Reader", typedconst.TypeName{Pkg: "io", Name: "Reader"}.String())
}
