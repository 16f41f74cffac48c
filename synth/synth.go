// Package synth turns canonical values into generated Go source.
//
// Synthesizers are pure: the same input always renders byte-identical text,
// formatted through go/format. Safe isolates failures per key so one broken
// declaration or resource table produces a marked diagnostic artifact instead
// of failing the whole run.
package synth

import (
	"fmt"
	"strings"

	"github.com/teranos/declgen/diag"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/pipeline"
)

// Header opens every generated file.
const Header = "// Code generated by declgen. DO NOT EDIT."

// Synthesizer renders one canonical value into an artifact.
type Synthesizer[T any] func(T) (pipeline.Artifact, error)

// Output is a synthesized artifact together with the diagnostics raised while
// producing it. Outputs are memoized by the pipeline, so diagnostics travel
// with them and are replayed on runs that reuse the output.
type Output struct {
	Artifact    pipeline.Artifact
	Diagnostics equatable.Seq[diag.Diagnostic]
}

// Safe runs s on v. An error or a panic becomes a failure artifact under name
// plus a synthesis diagnostic about subject.
func Safe[T any](s Synthesizer[T], name, subject string, v T) (out Output) {
	defer func() {
		if r := recover(); r != nil {
			out = failed(name, subject, fmt.Sprintf("panic: %v", r))
		}
	}()
	a, err := s(v)
	if err != nil {
		return failed(name, subject, err.Error())
	}
	return Output{Artifact: a}
}

func failed(name, subject, cause string) Output {
	return Output{
		Artifact: pipeline.Artifact{Name: name, Text: FailureText(subject, cause)},
		Diagnostics: diag.Seq(diag.Errorf(diag.CodeSynthesis, subject,
			"synthesis failed: %s", firstLine(cause))),
	}
}

// FailureText is the content of an artifact whose synthesis failed. The build
// constraint keeps the file out of every build.
func FailureText(subject, cause string) string {
	var sb strings.Builder
	sb.WriteString("//go:build ignore\n\n")
	sb.WriteString(Header + "\n\n")
	fmt.Fprintf(&sb, "// declgen: synthesis failed for %s\n//\n", subject)
	for _, line := range strings.Split(strings.TrimRight(cause, "\n"), "\n") {
		sb.WriteString(strings.TrimRight("//\t"+line, " \t") + "\n")
	}
	sb.WriteString("\npackage ignore\n")
	return sb.String()
}

// Failed reports whether text is a failure artifact.
func Failed(text string) bool {
	return strings.HasPrefix(text, "//go:build ignore\n\n"+Header+"\n\n// declgen: synthesis failed")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// FileName builds a descriptor artifact name:
// "<dir>/<lower(hint)>.<synthesizer>.g.go".
func FileName(dir, hint, synthesizer string) string {
	return JoinDir(dir, strings.ToLower(hint)+"."+synthesizer+".g.go")
}

// JoinDir joins a slash-separated directory and a file name.
func JoinDir(dir, file string) string {
	dir = strings.Trim(strings.ReplaceAll(dir, "\\", "/"), "/")
	if dir == "" || dir == "." {
		return file
	}
	return dir + "/" + file
}
