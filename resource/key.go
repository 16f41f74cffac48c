package resource

import (
	"go/token"
	"path"
	"path/filepath"
	"strings"

	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/errors"
)

// Options configure key resolution.
type Options struct {
	// ProjectRoot is the directory namespaces are derived relative to.
	ProjectRoot string
	// RootNamespace prefixes every derived namespace.
	RootNamespace string
	// Overrides from configuration, matched by project-relative path.
	Overrides equatable.Seq[Override]
}

func (o Options) Equal(other Options) bool {
	return o.ProjectRoot == other.ProjectRoot &&
		o.RootNamespace == other.RootNamespace &&
		o.Overrides.Equal(other.Overrides)
}

func (o Options) Hash(h *equatable.Hasher) {
	h.String(o.ProjectRoot)
	h.String(o.RootNamespace)
	o.Overrides.Hash(h)
}

// override returns the configured override for p.
func (o Options) override(p string) (Override, bool) {
	for ov := range o.Overrides.Values() {
		if path.Clean(filepath.ToSlash(ov.Path)) == path.Clean(p) {
			return ov, true
		}
	}
	return Override{}, false
}

// Resolve computes the canonical key of f. Explicit hints win; anything not
// hinted is derived from the path relative to the project root.
func Resolve(f Fragment, opts Options) (Key, error) {
	base, _, _ := SplitName(f.Path)

	class := f.ClassNameHint
	if class == "" {
		class = Identifier(base)
	}
	if !token.IsIdentifier(class) {
		return Key{}, errors.Newf("class name %q is not a valid identifier", class)
	}

	namespace := f.NamespaceHint
	if namespace == "" {
		derived, err := deriveNamespace(f.Path, opts)
		switch {
		case err == nil:
			namespace = derived
		case f.ResourceKeyHint != "":
			// The resource key hint alone is enough to place the table.
			if i := strings.LastIndexByte(f.ResourceKeyHint, '.'); i > 0 {
				namespace = f.ResourceKeyHint[:i]
			}
		default:
			return Key{}, err
		}
	}
	for _, seg := range splitNamespace(namespace) {
		if !token.IsIdentifier(seg) {
			return Key{}, errors.Newf("namespace %q has invalid segment %q", namespace, seg)
		}
	}

	resourceKey := f.ResourceKeyHint
	if resourceKey == "" {
		resourceKey = joinNamespace(namespace, Identifier(base))
	}
	return Key{Namespace: namespace, ClassName: class, ResourceKey: resourceKey}, nil
}

func deriveNamespace(p string, opts Options) (string, error) {
	rel := filepath.ToSlash(p)
	if filepath.IsAbs(p) {
		if opts.ProjectRoot == "" {
			return "", errors.Newf("%s is absolute and no project root is configured", p)
		}
		r, err := filepath.Rel(opts.ProjectRoot, p)
		if err != nil {
			return "", errors.Wrapf(err, "%s is not under the project root", p)
		}
		rel = filepath.ToSlash(r)
	}
	rel = path.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", errors.Newf("%s is outside the project root", p)
	}

	ns := opts.RootNamespace
	dir := path.Dir(rel)
	if dir == "." {
		return ns, nil
	}
	for _, seg := range strings.Split(dir, "/") {
		ns = joinNamespace(ns, Identifier(seg))
	}
	return ns, nil
}

func joinNamespace(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

func splitNamespace(ns string) []string {
	if ns == "" {
		return nil
	}
	return strings.Split(ns, ".")
}

// Identifier sanitizes s into a Go identifier: invalid runes become '_',
// a leading digit gets a '_' prefix and keywords get a '_' suffix.
// It returns "" when nothing usable remains.
func Identifier(s string) string {
	var b strings.Builder
	for i, r := range s {
		valid := r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || (i > 0 && '0' <= r && r <= '9')
		switch {
		case valid:
			b.WriteRune(r)
		case i == 0 && '0' <= r && r <= '9':
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "_") == "" {
		return ""
	}
	if token.IsKeyword(out) {
		out += "_"
	}
	return out
}
