package triggers

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DirectorySource yields the paths of the currently resolved directory set.
type DirectorySource interface {
	Paths(ctx context.Context) []string
}

// Invalidator drops cached sizes by path.
type Invalidator interface {
	InvalidateAll(ctx context.Context, paths []string)
}

// Triggers turns lifecycle events into full-catalog cache invalidation.
// It never guesses which directory changed: every resolved path is dropped.
type Triggers struct {
	source  DirectorySource
	cache   Invalidator
	log     zerolog.Logger
	flushes atomic.Int64
}

// New creates Triggers over the given directory source and cache.
func New(source DirectorySource, cache Invalidator, log zerolog.Logger) *Triggers {
	return &Triggers{
		source: source,
		cache:  cache,
		log:    log.With().Str("component", "triggers").Logger(),
	}
}

// OnLifecycleEvent handles one host event. It reports whether the cache was
// invalidated.
func (t *Triggers) OnLifecycleEvent(ctx context.Context, kind EventKind, payload string) bool {
	if !flushable(kind, payload) {
		t.log.Debug().Stringer("event", kind).Str("payload", payload).Msg("event ignored")
		return false
	}

	n := t.flush(ctx)
	t.log.Info().Stringer("event", kind).Str("payload", payload).Int("paths", n).Msg("cached sizes invalidated")
	return true
}

// HandleEvent parses name and dispatches it to OnLifecycleEvent.
func (t *Triggers) HandleEvent(ctx context.Context, name, payload string) (bool, error) {
	kind, err := ParseEventKind(name)
	if err != nil {
		return false, err
	}
	return t.OnLifecycleEvent(ctx, kind, payload), nil
}

// Refresh performs the explicit refresh: a synchronous full invalidation.
// It returns the number of paths invalidated.
func (t *Triggers) Refresh(ctx context.Context) int {
	n := t.flush(ctx)
	t.log.Info().Int("paths", n).Msg("refresh requested")
	return n
}

// Flushes returns how many full invalidations have run.
func (t *Triggers) Flushes() int64 {
	return t.flushes.Load()
}

func (t *Triggers) flush(ctx context.Context) int {
	paths := t.source.Paths(ctx)
	t.cache.InvalidateAll(ctx, paths)
	t.flushes.Add(1)
	return len(paths)
}
