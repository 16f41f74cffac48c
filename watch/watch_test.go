package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string, debounce time.Duration) <-chan []string {
	t.Helper()
	w, err := New(Options{Root: root, Debounce: debounce, Ignore: []string{"*.g.go"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) error {
			batches <- changed
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		w.Close()
	})
	return batches
}

// collect gathers batches until every wanted path has been seen.
func collect(t *testing.T, batches <-chan []string, want ...string) map[string]bool {
	t.Helper()
	seen := make(map[string]bool)
	deadline := time.After(5 * time.Second)
	for {
		missing := false
		for _, w := range want {
			if !seen[w] {
				missing = true
			}
		}
		if !missing {
			return seen
		}
		select {
		case batch := <-batches:
			for _, p := range batch {
				seen[p] = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v, saw %v", want, seen)
		}
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Resources"), 0o755))
	batches := startWatcher(t, root, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "Resources", "Strings.resx"), []byte("<root/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "strings.g.go"), []byte("package x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.go"), []byte("package app"), 0o644))

	seen := collect(t, batches, "Resources/Strings.resx", "app.go")
	assert.False(t, seen["strings.g.go"], "generated files are ignored")
	assert.False(t, seen[".hidden"], "hidden files are ignored")
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, 20*time.Millisecond)

	dir := filepath.Join(root, "internal")
	require.NoError(t, os.Mkdir(dir, 0o755))
	collect(t, batches, "internal")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "svc.go"), []byte("package internal"), 0o644))
	collect(t, batches, "internal/svc.go")
}

func TestWatcher_DebounceCoalesces(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, 300*time.Millisecond)

	for _, name := range []string{"a.go", "b.go", "c.go"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("package x"), 0o644))
	}

	select {
	case batch := <-batches:
		assert.Equal(t, []string{"a.go", "b.go", "c.go"}, batch)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}
}

func TestWatcher_Ignored(t *testing.T) {
	w := &Watcher{ignore: []string{"*.g.go", "*~"}}
	tests := map[string]bool{
		"app.go":                 false,
		"Resources/Strings.resx": false,
		"resources/strings.g.go": true,
		"app.go~":                true,
		".declgen/manifest.db":   true,
		"vendor/x/y.go":          true,
		"res/.Strings.resx.tmp1": true,
	}
	for rel, want := range tests {
		assert.Equal(t, want, w.ignored(rel), rel)
	}
}
