package zipidx

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/zipidx/internal/ziptype"
)

const defaultExtractWorkers = 4

// extractConfig holds configuration for ExtractDir.
type extractConfig struct {
	workers   int
	overwrite bool
}

// ExtractOption configures ExtractDir.
type ExtractOption func(*extractConfig)

// ExtractWithWorkers sets the number of concurrent extraction workers.
// Values < 1 fall back to the default of 4.
func ExtractWithWorkers(n int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.workers = n
	}
}

// ExtractWithOverwrite controls whether existing files are replaced.
// By default they are skipped.
func ExtractWithOverwrite(enabled bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = enabled
	}
}

// ExtractDir writes the members under prefix to destDir, preserving their
// archive-relative paths. A prefix of "" or "." extracts everything.
//
// Files are written atomically (temp file + rename) by a bounded worker
// pool; parent directories are created as needed. Preloaded members are
// extracted without touching the archive.
func (a *Archive) ExtractDir(destDir, prefix string, opts ...ExtractOption) error {
	cfg := extractConfig{workers: defaultExtractWorkers}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = defaultExtractWorkers
	}

	slashPrefix := ""
	if prefix != "" && prefix != "." {
		if !fs.ValidPath(prefix) {
			return &fs.PathError{Op: "extract", Path: prefix, Err: fs.ErrInvalid}
		}
		slashPrefix = prefix + "/"
	}

	// Validate before spawning workers so a bad path fails the whole call
	// without partial extraction racing the error return.
	type job struct {
		entry Entry
		dest  string
	}
	var jobs []job
	for e := range a.table.Entries() {
		rel := ziptype.ToSlash(e.Path, a.conv)
		if slashPrefix != "" && !strings.HasPrefix(rel, slashPrefix) {
			continue
		}
		if !fs.ValidPath(rel) {
			return &fs.PathError{Op: "extract", Path: e.Path, Err: fs.ErrInvalid}
		}
		jobs = append(jobs, job{entry: e, dest: filepath.Join(destDir, filepath.FromSlash(rel))})
	}

	g := new(errgroup.Group)
	g.SetLimit(cfg.workers)
	for _, j := range jobs {
		g.Go(func() error {
			return a.extractOne(j.entry, j.dest, &cfg)
		})
	}
	return g.Wait()
}

func (a *Archive) extractOne(e Entry, dest string, cfg *extractConfig) error {
	if !cfg.overwrite {
		if _, err := os.Lstat(dest); err == nil {
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract %s: %w", e.Path, err)
	}

	content, err := a.ReadMember(e.Path)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(dest, content); err != nil {
		return fmt.Errorf("extract %s: %w", e.Path, err)
	}
	return nil
}
