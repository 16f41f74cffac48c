package typedconst

import (
	"math"
	"strconv"
	"strings"

	"github.com/teranos/declgen/errors"
)

// Qualifier maps an import path to the identifier generated code uses for it.
// It returns "" for the package the literal is rendered into.
type Qualifier func(pkgPath string) string

// Unqualified renders every type by its full import path; useful in tests and logs.
func Unqualified(pkgPath string) string { return pkgPath }

// Literal re-materializes c as a Go expression that evaluates to the same value
// and type when assigned to an interface. Shapes Go source cannot spell
// (complex numbers, non-finite floats, integers outside int64 for the default
// int type) fail with errors.ErrUnsupported.
func (c Constant) Literal(q Qualifier) (string, error) {
	switch c.kind {
	case KindNull:
		return "nil", nil
	case KindString:
		return strconv.Quote(c.text), nil
	case KindBool:
		return strconv.FormatBool(c.b), nil
	case KindNumeric:
		return numericLiteral(c.numKind, c.text)
	case KindTypeRef:
		if c.typ.Name == "" {
			return "", errors.Unsupportedf("type reference without a name")
		}
		return q("reflect") + ".TypeFor[" + qualify(c.typ, q) + "]()", nil
	case KindEnum:
		if c.typ.Name == "" {
			return "", errors.Unsupportedf("enum value without a type")
		}
		raw := c.Raw()
		switch raw.kind {
		case KindString, KindBool, KindNumeric:
		default:
			return "", errors.Unsupportedf("enum %s with %s underlying value", c.typ, raw.kind)
		}
		inner, err := raw.Literal(q)
		if err != nil {
			return "", errors.Wrapf(err, "enum %s", c.typ)
		}
		return qualify(c.typ, q) + "(" + inner + ")", nil
	case KindArray:
		if c.typ.Name == "" {
			return "", errors.Unsupportedf("array without an element type")
		}
		parts := make([]string, 0, c.elems.Len())
		for i, e := range c.elems.All() {
			lit, err := e.Literal(q)
			if err != nil {
				return "", errors.Wrapf(err, "array element %d", i)
			}
			parts = append(parts, lit)
		}
		return "[]" + qualify(c.typ, q) + "{" + strings.Join(parts, ", ") + "}", nil
	}
	return "", errors.Unsupportedf("constant kind %s", c.kind)
}

func qualify(t TypeName, q Qualifier) string {
	if t.Pkg == "" {
		return t.Name
	}
	if local := q(t.Pkg); local != "" {
		return local + "." + t.Name
	}
	return t.Name
}

func numericLiteral(kind, text string) (string, error) {
	if strings.Contains(kind, "complex") {
		return "", errors.Unsupportedf("complex constant %s", text)
	}
	switch kind {
	case "int", "untyped int":
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			return "", errors.Unsupportedf("integer constant %s overflows int", text)
		}
		return text, nil
	case "float64", "untyped float":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return "", errors.Unsupportedf("float constant %s is not finite", text)
		}
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}
		return text, nil
	case "untyped rune":
		return "rune(" + text + ")", nil
	case "":
		return "", errors.Unsupportedf("numeric constant %s without a kind", text)
	}
	return kind + "(" + text + ")", nil
}
