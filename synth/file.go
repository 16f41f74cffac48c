package synth

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/pipeline"
)

// File accumulates the body of one generated Go file. Imports are collected
// while the body is written and rendered ahead of it.
type File struct {
	pkgName string
	imports *ImportSet
	body    strings.Builder
}

// NewFile starts a file in package pkgName whose import path is pkgPath.
func NewFile(pkgName, pkgPath string) *File {
	return &File{pkgName: pkgName, imports: NewImportSet(pkgPath)}
}

// Imports returns the file's import set.
func (f *File) Imports() *ImportSet { return f.imports }

// Printf appends formatted text to the body.
func (f *File) Printf(format string, args ...any) {
	fmt.Fprintf(&f.body, format, args...)
}

// Skip records a visible trace comment for something deliberately not generated.
func (f *File) Skip(format string, args ...any) {
	f.body.WriteString("// declgen: skipped " + fmt.Sprintf(format, args...) + "\n")
}

// Source assembles and formats the file.
func (f *File) Source() ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(Header + "\n\n")
	sb.WriteString("package " + f.pkgName + "\n\n")
	if decl := f.imports.Decl(); decl != "" {
		sb.WriteString(decl + "\n")
	}
	sb.WriteString(f.body.String())

	src, err := format.Source([]byte(sb.String()))
	if err != nil {
		return nil, errors.WithDetail(errors.Wrap(err, "generated source does not parse"), sb.String())
	}
	return src, nil
}

// Artifact formats the file into an artifact called name.
func (f *File) Artifact(name string) (pipeline.Artifact, error) {
	src, err := f.Source()
	if err != nil {
		return pipeline.Artifact{}, errors.Wrapf(err, "render %s", name)
	}
	return pipeline.Artifact{Name: name, Text: string(src)}, nil
}
