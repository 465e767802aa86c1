package watcher

import (
	"context"
	"time"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/triggers"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

const (
	// EventCreate represents file/directory creation
	EventCreate EventType = iota
	// EventWrite represents file modification
	EventWrite
	// EventRemove represents file/directory removal
	EventRemove
	// EventRename represents file/directory rename
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is a size-relevant change under a watched root
type Event struct {
	Type      EventType
	Path      string
	Root      string
	Timestamp time.Time
}

// Sink receives the lifecycle events the watcher emits.
type Sink interface {
	OnLifecycleEvent(ctx context.Context, kind triggers.EventKind, payload string) bool
}

// Config holds configuration for the watcher
type Config struct {
	// DebounceDelay is the quiet period before a root's batch is emitted
	DebounceDelay time.Duration
	// MaxDebounceDelay bounds how long a busy root can keep postponing its batch
	MaxDebounceDelay time.Duration
}

// DefaultConfig returns the watcher defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay:    500 * time.Millisecond,
		MaxDebounceDelay: 5 * time.Second,
	}
}

// convertEvent maps an fsnotify event to an Event. Permission-only changes do
// not affect sizes and yield false.
func convertEvent(event fsnotify.Event, now time.Time) (Event, bool) {
	var eventType EventType

	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventWrite
	case event.Has(fsnotify.Remove):
		eventType = EventRemove
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return Event{}, false
	}

	return Event{Type: eventType, Path: event.Name, Timestamp: now}, true
}
