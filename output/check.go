package output

import (
	"bytes"
	"os"
	"slices"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/output/manifest"
	"github.com/teranos/declgen/pipeline"
)

// CheckResult holds the result of comparing a run with the files on disk.
type CheckResult struct {
	UpToDate bool
	// Missing artifacts have no file yet.
	Missing []string
	// Different artifacts have a file with other content.
	Different []string
	// Stale artifacts were recorded by an earlier run, are no longer
	// produced and still exist on disk.
	Stale []string
}

// Check compares artifacts with the files the Writer would write them to.
// recorded is the manifest from the last generate, or nil when there is none.
func (w *Writer) Check(artifacts []pipeline.Artifact, recorded []manifest.Entry) (*CheckResult, error) {
	res := &CheckResult{}
	current := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		current[a.Name] = true
		path, err := w.Path(a.Name)
		if err != nil {
			return nil, err
		}
		different, err := fileDiffers(path, a.Text)
		switch {
		case os.IsNotExist(err):
			res.Missing = append(res.Missing, a.Name)
		case err != nil:
			return nil, err
		case different:
			res.Different = append(res.Different, a.Name)
		}
	}

	for _, e := range recorded {
		if current[e.Name] {
			continue
		}
		path, err := w.Path(e.Name)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err == nil && IsGenerated(data) {
			res.Stale = append(res.Stale, e.Name)
		}
	}

	slices.Sort(res.Missing)
	slices.Sort(res.Different)
	slices.Sort(res.Stale)
	res.UpToDate = len(res.Missing) == 0 && len(res.Different) == 0 && len(res.Stale) == 0
	return res, nil
}

// fileDiffers compares a file with the text it should hold. A missing file
// is returned as an os.IsNotExist error.
func fileDiffers(path, text string) (bool, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, err
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", path)
	}
	return !bytes.Equal(content, []byte(text)), nil
}
