package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherLifecycle(t *testing.T) {
	w, err := New(DefaultConfig(t.TempDir()))
	require.NoError(t, err)

	_, err = w.Start()
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}

func TestWatcherSignalsOnDocumentChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "recipes"), 0o755))

	w, err := New(Config{Root: dir, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	changes, err := w.Start()
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipes", "grammar.json"), []byte("{}"), 0o644))

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change signal")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Root: dir, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	changes, err := w.Start()
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-changes:
		t.Fatal("non-document files must not trigger a rerun")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	w, err := New(DefaultConfig(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	_, err = w.Start()
	assert.Error(t, err)
	_ = w.Stop()
}
