// Package output puts synthesized artifacts on disk and checks that the
// files on disk match what a run would write.
package output

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/logger"
	"github.com/teranos/declgen/pipeline"
	"github.com/teranos/declgen/synth"
)

// Writer maps artifact names onto files below a project root.
type Writer struct {
	root   string
	logger *zap.SugaredLogger
}

// NewWriter returns a Writer rooted at root.
func NewWriter(root string) *Writer {
	return &Writer{root: root, logger: logger.ComponentLogger("output")}
}

// Path returns the file an artifact name maps to.
func (w *Writer) Path(name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", errors.Newf("artifact name %q escapes the project root", name)
	}
	return filepath.Join(w.root, local), nil
}

// Write stores a unless the file already holds the same bytes, and reports
// whether it wrote. The file is replaced atomically so a concurrent build
// never sees half an artifact.
func (w *Writer) Write(a pipeline.Artifact) (bool, error) {
	path, err := w.Path(a.Name)
	if err != nil {
		return false, err
	}
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, []byte(a.Text)) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.Wrapf(err, "failed to create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return false, errors.Wrapf(err, "failed to create temp file for %s", a.Name)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(a.Text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, errors.Wrapf(err, "failed to write %s", a.Name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, errors.Wrapf(err, "failed to close %s", a.Name)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return false, errors.Wrapf(err, "failed to chmod %s", a.Name)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return false, errors.Wrapf(err, "failed to replace %s", a.Name)
	}

	w.logger.Debugw("Wrote artifact", logger.FieldArtifact, a.Name, "bytes", len(a.Text))
	return true, nil
}

// Remove deletes a previously generated artifact and reports whether it did.
// A missing file is not an error. A file without the generated-code header
// has been taken over by hand and is left in place.
func (w *Writer) Remove(name string) (bool, error) {
	path, err := w.Path(name)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", name)
	}
	if !IsGenerated(data) {
		w.logger.Warnw("Keeping stale artifact without generated header", logger.FieldArtifact, name)
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, errors.Wrapf(err, "failed to remove %s", name)
	}
	w.logger.Debugw("Removed artifact", logger.FieldArtifact, name)
	return true, nil
}

// IsGenerated reports whether content carries the declgen header before its
// package clause.
func IsGenerated(content []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == synth.Header {
			return true
		}
		if strings.HasPrefix(line, "package ") {
			return false
		}
	}
	return false
}
