package media

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruner_Prune(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.Add(-48 * time.Hour)

	files := map[string]time.Time{
		"old.mp3":         old,
		"old.part":        old,
		"nested/old.webm": old,
		"new.mp3":         now,
		"keep-me.txt":     old,
		"nested/new.m4a":  now,
	}
	for name, mtime := range files {
		path := filepath.Join(dir, name)
		touch(t, path)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}

	p := NewPruner(dir, "mp3", zerolog.New(io.Discard))
	p.now = func() time.Time { return now }

	t.Run("dry run", func(t *testing.T) {
		removed, err := p.Prune(24*time.Hour, true)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "old.mp3"),
			filepath.Join(dir, "old.part"),
			filepath.Join(dir, "nested", "old.webm"),
		}, removed)
		assert.FileExists(t, filepath.Join(dir, "old.mp3"))
	})

	t.Run("delete", func(t *testing.T) {
		removed, err := p.Prune(24*time.Hour, false)
		require.NoError(t, err)
		assert.Len(t, removed, 3)

		assert.NoFileExists(t, filepath.Join(dir, "old.mp3"))
		assert.NoFileExists(t, filepath.Join(dir, "nested", "old.webm"))
		assert.FileExists(t, filepath.Join(dir, "new.mp3"))
		assert.FileExists(t, filepath.Join(dir, "nested", "new.m4a"))
		assert.FileExists(t, filepath.Join(dir, "keep-me.txt"))
	})
}

func TestPruner_Prune_MissingDir(t *testing.T) {
	p := NewPruner(filepath.Join(t.TempDir(), "nope"), "mp3", zerolog.New(io.Discard))
	removed, err := p.Prune(time.Hour, false)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
