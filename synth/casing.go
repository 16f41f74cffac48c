package synth

import (
	"go/token"
	"strings"
	"unicode"
)

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Handles acronyms properly (e.g., "HTTPSConnection" -> "https_connection")
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		// Insert an underscore at a word boundary; acronym runs stay together
		// until the last capital that starts a lowercase word.
		if i > 0 && unicode.IsUpper(r) {
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if !prevUpper || nextLower {
				result.WriteRune('_')
			}
		}

		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// ParamName converts a field name to a parameter name: the leading capital
// run is lowercased ("URL" -> "url", "HTTPClient" -> "httpClient") and a
// keyword gets a trailing underscore.
func ParamName(field string) string {
	runes := []rune(field)
	for i := 0; i < len(runes) && unicode.IsUpper(runes[i]); i++ {
		// Keep the capital that starts the next word.
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	name := string(runes)
	if token.IsKeyword(name) || isPredeclared(name) {
		name += "_"
	}
	return name
}

func isPredeclared(name string) bool {
	switch name {
	case "any", "bool", "byte", "error", "string", "rune", "int", "len", "cap",
		"new", "make", "append", "copy", "delete", "panic", "nil", "true", "false":
		return true
	}
	return false
}
