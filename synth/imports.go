package synth

import (
	"go/token"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/teranos/declgen/typedconst"
)

// ImportSet assigns local names to the packages a generated file refers to.
// Names are stable for a given sequence of Add calls, so rendering the same
// input twice yields the same imports.
type ImportSet struct {
	self    string
	aliases map[string]string
	taken   map[string]bool
}

// NewImportSet returns an empty set for a file in package self.
func NewImportSet(self string) *ImportSet {
	return &ImportSet{self: self, aliases: map[string]string{}, taken: map[string]bool{}}
}

// Reserve marks identifiers the file declares so imports never shadow them.
func (s *ImportSet) Reserve(names ...string) {
	for _, n := range names {
		s.taken[n] = true
	}
}

// Add imports pkgPath and returns its local name, or "" for the file's own package.
func (s *ImportSet) Add(pkgPath string) string {
	if pkgPath == "" || pkgPath == s.self {
		return ""
	}
	if alias, ok := s.aliases[pkgPath]; ok {
		return alias
	}
	base := guessName(pkgPath)
	alias := base
	for i := 2; s.taken[alias] || token.IsKeyword(alias); i++ {
		alias = base + strconv.Itoa(i)
	}
	s.aliases[pkgPath] = alias
	s.taken[alias] = true
	return alias
}

// Qualifier adapts the set for typedconst.Constant.Literal.
func (s *ImportSet) Qualifier() typedconst.Qualifier {
	return s.Add
}

// qualifiedIdent matches "import/path.Name" in a types.TypeString rendered
// relative to the declaring package.
var qualifiedIdent = regexp.MustCompile(`([A-Za-z0-9_~-]+(?:[./][A-Za-z0-9_~-]+)*)\.([A-Za-z_][A-Za-z0-9_]*)`)

// Type rewrites a type string so every package path becomes its local name.
func (s *ImportSet) Type(typeString string) string {
	return qualifiedIdent.ReplaceAllStringFunc(typeString, func(m string) string {
		i := strings.LastIndexByte(m, '.')
		pkgPath, name := m[:i], m[i+1:]
		if alias := s.Add(pkgPath); alias != "" {
			return alias + "." + name
		}
		return name
	})
}

// Len returns the number of imported packages.
func (s *ImportSet) Len() int { return len(s.aliases) }

// Decl renders the import block, or "" when nothing is imported.
func (s *ImportSet) Decl() string {
	if len(s.aliases) == 0 {
		return ""
	}
	paths := make([]string, 0, len(s.aliases))
	for p := range s.aliases {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	var sb strings.Builder
	sb.WriteString("import (\n")
	for _, p := range paths {
		alias := s.aliases[p]
		if alias == path.Base(p) {
			sb.WriteString("\t" + strconv.Quote(p) + "\n")
		} else {
			sb.WriteString("\t" + alias + " " + strconv.Quote(p) + "\n")
		}
	}
	sb.WriteString(")\n")
	return sb.String()
}

// guessName derives a package name from its import path: the last element
// without a major version suffix, sanitized to an identifier.
func guessName(pkgPath string) string {
	elems := strings.Split(pkgPath, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'):
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" || ('0' <= out[0] && out[0] <= '9') {
		out = "pkg" + out
	}
	return out
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}
