package sizer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/types"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// Sizer computes the byte size of a directory subtree.
type Sizer interface {
	// ComputeSize returns Missing when path is not a directory. The error is
	// non-nil only when ctx is done before the traversal finishes.
	ComputeSize(ctx context.Context, path string) (types.Size, error)
}

// FSSizer sums regular file sizes under a directory. Top-level subdirectories are
// walked concurrently on a bounded pool; the call still blocks until every walk is done.
// Symlinks are followed and each directory is entered at most once per call, so link
// cycles end. Unreadable entries and dangling links are skipped.
type FSSizer struct {
	workers  int
	excludes *ignore.GitIgnore
	log      zerolog.Logger
}

// Option configures an FSSizer
type Option func(*FSSizer)

// WithWorkers bounds the number of concurrent subtree walks. Values < 1 mean 1.
func WithWorkers(n int) Option {
	return func(s *FSSizer) {
		s.workers = max(n, 1)
	}
}

// WithExcludePatterns skips entries matching gitignore-style patterns, relative
// to the directory being sized.
func WithExcludePatterns(patterns ...string) Option {
	return func(s *FSSizer) {
		if len(patterns) == 0 {
			s.excludes = nil
			return
		}
		s.excludes = ignore.CompileIgnoreLines(patterns...)
	}
}

// NewFSSizer creates a filesystem sizer
func NewFSSizer(log zerolog.Logger, opts ...Option) *FSSizer {
	s := &FSSizer{
		workers: min(max(runtime.NumCPU(), 1), 8),
		log:     log.With().Str("component", "sizer").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FSSizer) ComputeSize(ctx context.Context, path string) (types.Size, error) {
	if err := ctx.Err(); err != nil {
		return types.Unknown(), err
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return types.Missing(), nil
	}

	start := time.Now()
	seen := newVisitedSet()
	seen.enter(path, info)

	entries, err := os.ReadDir(path)
	if err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("cannot read directory, reporting readable subset")
	}

	var total atomic.Int64
	p := pool.New().WithMaxGoroutines(s.workers).WithContext(ctx)
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		info, ok := s.stat(child, entry)
		if !ok || s.excluded(path, child, info.IsDir()) {
			continue
		}
		switch {
		case info.IsDir():
			if !seen.enter(child, info) {
				continue
			}
			p.Go(func(ctx context.Context) error {
				n, err := s.walk(ctx, path, child, seen)
				total.Add(n)
				return err
			})
		case info.Mode().IsRegular():
			total.Add(info.Size())
		}
	}

	if err := p.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.Unknown(), ctxErr
		}
		return types.Unknown(), err
	}

	s.log.Debug().
		Str("path", path).
		Int64("bytes", total.Load()).
		Dur("duration", time.Since(start)).
		Msg("computed directory size")
	return types.Bytes(total.Load()), nil
}

// walk sums one subtree. Only context errors are returned.
func (s *FSSizer) walk(ctx context.Context, root, dir string, seen *visitedSet) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Debug().Err(err).Str("path", dir).Msg("skipping unreadable entry")
	}

	var size int64
	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		info, ok := s.stat(child, entry)
		if !ok || s.excluded(root, child, info.IsDir()) {
			continue
		}
		switch {
		case info.IsDir():
			if !seen.enter(child, info) {
				s.log.Debug().Str("path", child).Msg("directory already counted, not following")
				continue
			}
			n, err := s.walk(ctx, root, child, seen)
			size += n
			if err != nil {
				return size, err
			}
		case info.Mode().IsRegular():
			size += info.Size()
		}
	}
	return size, nil
}

// stat describes entry, resolving symlinks to their target.
func (s *FSSizer) stat(path string, entry fs.DirEntry) (fs.FileInfo, bool) {
	var (
		info fs.FileInfo
		err  error
	)
	if entry.Type()&fs.ModeSymlink != 0 {
		info, err = os.Stat(path)
	} else {
		info, err = entry.Info()
	}
	if err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("skipping entry without stat")
		return nil, false
	}
	return info, true
}

func (s *FSSizer) excluded(root, path string, isDir bool) bool {
	if s.excludes == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir && s.excludes.MatchesPath(rel+"/") {
		return true
	}
	return s.excludes.MatchesPath(rel)
}

// SizerFunc adapts a function to the Sizer interface.
type SizerFunc func(ctx context.Context, path string) (types.Size, error)

func (f SizerFunc) ComputeSize(ctx context.Context, path string) (types.Size, error) {
	return f(ctx, path)
}
