package resource

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/errors"
)

// ReadFunc reads a project file; host.Provider.ReadFile satisfies it.
type ReadFunc func(path string) ([]byte, error)

// ParseFragment builds a fragment from a table's bytes and its optional
// sidecar. Configured overrides take precedence over the sidecar.
func ParseFragment(p string, data, sidecar []byte, opts Options) (Fragment, error) {
	entries, err := Parse(p, data)
	if err != nil {
		return Fragment{}, err
	}
	_, locale, _ := SplitName(p)
	f := Fragment{Path: p, Locale: locale}
	f.Entries = equatable.From(entries)

	ov, ok := opts.override(p)
	if !ok && len(sidecar) > 0 {
		ov, err = ParseSidecar(p+SidecarSuffix, sidecar)
		if err != nil {
			return Fragment{}, err
		}
		ok = true
	}
	if ok {
		f.NamespaceHint = ov.Namespace
		f.ClassNameHint = ov.ClassName
		f.ResourceKeyHint = ov.ResourceKey
	}
	return f, nil
}

// LoadFragment reads a table and its sidecar through read and parses them.
func LoadFragment(ctx context.Context, read ReadFunc, p string, opts Options) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return Fragment{}, err
	}
	data, err := read(p)
	if err != nil {
		return Fragment{}, errors.Wrapf(err, "failed to read resource table %s", p)
	}
	sidecar, err := ReadSidecar(read, p)
	if err != nil {
		return Fragment{}, err
	}
	return ParseFragment(p, data, sidecar, opts)
}

// ReadSidecar returns the sidecar contents of table p, or nil if there is none.
func ReadSidecar(read ReadFunc, p string) ([]byte, error) {
	data, err := read(p + SidecarSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sidecar for %s", p)
	}
	return data, nil
}

// Discover walks dirs in fsys and returns the slash-separated paths of files
// whose base name matches any pattern. Hidden directories, vendor and
// testdata are skipped, as are sidecars. A missing dir is not an error.
func Discover(ctx context.Context, fsys fs.FS, dirs, patterns []string) ([]string, error) {
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, pattern := range patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, errors.Wrapf(err, "invalid resource pattern %q", pattern)
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, dir := range dirs {
		start := path.Clean(strings.TrimPrefix(filepath.ToSlash(dir), "/"))
		err := fs.WalkDir(fsys, start, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && p == start {
					return fs.SkipDir
				}
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if p != start && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
					return fs.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(name, SidecarSuffix) || !matchAny(patterns, name) {
				return nil
			}
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s for resource tables", start)
		}
	}
	slices.Sort(out)
	return out, nil
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
