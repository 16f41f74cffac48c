package resource

import (
	"path"
	"strings"

	"golang.org/x/text/language"
)

// SplitName splits a table file name into its base name, locale and extension:
// "Strings.fr-CA.resx" -> ("Strings", "fr-CA", ".resx"). A trailing segment
// that is not a known BCP 47 tag stays part of the base name.
func SplitName(file string) (base, locale, ext string) {
	name := path.Base(strings.ReplaceAll(file, "\\", "/"))
	ext = path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	i := strings.LastIndexByte(stem, '.')
	if i <= 0 {
		return stem, Neutral, ext
	}
	tag, ok := ParseLocale(stem[i+1:])
	if !ok {
		return stem, Neutral, ext
	}
	return stem[:i], tag, ext
}

// ParseLocale canonicalizes a BCP 47 tag. Unknown or ill-formed tags are rejected.
func ParseLocale(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil || tag == language.Und {
		return "", false
	}
	return tag.String(), true
}

// CompareLocale orders the neutral locale first, then locales ordinally.
func CompareLocale(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == Neutral:
		return -1
	case b == Neutral:
		return 1
	}
	return strings.Compare(a, b)
}
