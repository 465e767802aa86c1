package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/triggers"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) OnLifecycleEvent(_ context.Context, kind triggers.EventKind, payload string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, kind.String()+":"+payload)
	return true
}

func (s *recordingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func TestConvertEvent(t *testing.T) {
	now := time.Now()

	ev, ok := convertEvent(fsnotify.Event{Name: "/a", Op: fsnotify.Create | fsnotify.Write}, now)
	require.True(t, ok)
	assert.Equal(t, EventCreate, ev.Type)
	assert.Equal(t, "/a", ev.Path)

	ev, ok = convertEvent(fsnotify.Event{Name: "/a", Op: fsnotify.Remove}, now)
	require.True(t, ok)
	assert.Equal(t, "remove", ev.Type.String())

	_, ok = convertEvent(fsnotify.Event{Name: "/a", Op: fsnotify.Chmod}, now)
	assert.False(t, ok, "chmod does not change sizes")
}

func TestDebouncerCoalescesPerRoot(t *testing.T) {
	d := NewDebouncer(30*time.Millisecond, time.Second, 8)
	defer d.Close()

	for i := 0; i < 5; i++ {
		d.Add(Event{Root: "/a", Path: "/a/f"})
	}
	d.Add(Event{Root: "/b", Path: "/b/f"})

	got := map[string]int{}
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case batch := <-d.Batches():
			got[batch.Root] = len(batch.Events)
		case <-timeout:
			t.Fatal("timed out waiting for batches")
		}
	}

	assert.Equal(t, map[string]int{"/a": 5, "/b": 1}, got)
	assert.Zero(t, d.Pending())
}

func TestDebouncerMaxDelay(t *testing.T) {
	d := NewDebouncer(80*time.Millisecond, 150*time.Millisecond, 8)
	defer d.Close()

	start := time.Now()
	stop := time.After(600 * time.Millisecond)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.Add(Event{Root: "/busy"})
		case batch := <-d.Batches():
			assert.Equal(t, "/busy", batch.Root)
			assert.Less(t, time.Since(start), 500*time.Millisecond, "a busy root must still flush")
			return
		case <-stop:
			t.Fatal("busy root never flushed")
		}
	}
}

func TestDebouncerClose(t *testing.T) {
	d := NewDebouncer(time.Hour, time.Hour, 1)
	d.Add(Event{Root: "/a"})
	d.Close()
	d.Close()

	d.Add(Event{Root: "/a"})
	assert.Zero(t, d.Pending())
	select {
	case <-d.Done():
	default:
		t.Fatal("done not closed")
	}
}

func newTestWatcher(t *testing.T, sink Sink) *FSNotifyWatcher {
	t.Helper()
	w, err := NewFSNotifyWatcher(Config{
		DebounceDelay:    20 * time.Millisecond,
		MaxDebounceDelay: 200 * time.Millisecond,
	}, sink, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWatcherEmitsFSChangedForRoot(t *testing.T) {
	uploads := t.TempDir()
	themes := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(uploads, "2024"), 0o755))

	sink := &recordingSink{}
	w := newTestWatcher(t, sink)
	require.NoError(t, w.Start(context.Background(), []string{uploads, themes}))
	assert.ElementsMatch(t, []string{uploads, themes}, w.Roots())

	require.NoError(t, os.WriteFile(filepath.Join(uploads, "2024", "a.jpg"), []byte("data"), 0o644))

	assert.Eventually(t, func() bool { return len(sink.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	for _, event := range sink.snapshot() {
		assert.Equal(t, "fs-changed:"+uploads, event)
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	sink := &recordingSink{}
	w := newTestWatcher(t, sink)
	require.NoError(t, w.Start(context.Background(), []string{root}))

	nested := filepath.Join(root, "new")
	require.NoError(t, os.Mkdir(nested, 0o755))
	assert.Eventually(t, func() bool { return len(sink.snapshot()) >= 1 }, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	before := len(sink.snapshot())

	require.NoError(t, os.WriteFile(filepath.Join(nested, "f.bin"), make([]byte, 10), 0o644))
	assert.Eventually(t, func() bool { return len(sink.snapshot()) > before }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherSkipsMissingRoots(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, &recordingSink{})

	err := w.Add(root, filepath.Join(root, "missing"), "")
	assert.Error(t, err)
	assert.Equal(t, []string{root}, w.Roots())
}

func TestWatcherStopsWithContext(t *testing.T) {
	root := t.TempDir()
	sink := &recordingSink{}
	w := newTestWatcher(t, sink)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, []string{root}))
	cancel()

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Add(root), ErrWatcherClosed)
}
