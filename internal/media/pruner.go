package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// Pruner removes old download artifacts.
type Pruner struct {
	dir     string
	pattern string
	log     zerolog.Logger
	now     func() time.Time
}

// NewPruner creates a Pruner for dir. Finished files with the codec
// extension and the downloader's intermediate and partial files are
// considered.
func NewPruner(dir, codec string, log zerolog.Logger) *Pruner {
	return &Pruner{
		dir:     dir,
		pattern: fmt.Sprintf("**/*.{%s,webm,m4a,mp4,opus,ogg,aac,mka,weba,part,ytdl}", codec),
		log:     log,
		now:     time.Now,
	}
}

// Prune deletes matching files last modified more than olderThan ago and
// returns their paths. With dryRun nothing is deleted.
func (p *Pruner) Prune(olderThan time.Duration, dryRun bool) ([]string, error) {
	fsys := os.DirFS(p.dir)

	matches, err := doublestar.Glob(fsys, p.pattern, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("glob %s: %w", p.dir, err)
	}

	cutoff := p.now().Add(-olderThan)

	var removed []string
	for _, rel := range matches {
		info, err := fs.Stat(fsys, rel)
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(p.dir, filepath.FromSlash(rel))

		if !dryRun {
			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("remove %s: %w", path, err)
			}
		}

		p.log.Debug().Str("path", path).Bool("dry_run", dryRun).Msg("pruned download")
		removed = append(removed, path)
	}

	return removed, nil
}
