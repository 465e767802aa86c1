package triggers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrUnknownEvent is returned when an event name is not a known lifecycle event.
var ErrUnknownEvent = errors.New("unknown lifecycle event")

// EventKind names a host lifecycle signal that may change directory sizes.
type EventKind string

const (
	ItemUploaded     EventKind = "item-uploaded"
	ItemEdited       EventKind = "item-edited"
	UpgradeCompleted EventKind = "upgrade-completed"
	PluginDeleted    EventKind = "plugin-deleted"
	MetadataUpdated  EventKind = "metadata-updated"
	UploadHandled    EventKind = "upload-handled"
	// OptionChanged and TransientDeleted carry the option name as payload and
	// only invalidate for names in FlushableOptions.
	OptionChanged    EventKind = "option-changed"
	TransientDeleted EventKind = "transient-deleted"
	RefreshRequested EventKind = "refresh-requested"
	// FSChanged is emitted by the filesystem watcher.
	FSChanged EventKind = "fs-changed"
)

// EventKinds lists every known kind.
var EventKinds = []EventKind{
	ItemUploaded,
	ItemEdited,
	UpgradeCompleted,
	PluginDeleted,
	MetadataUpdated,
	UploadHandled,
	OptionChanged,
	TransientDeleted,
	RefreshRequested,
	FSChanged,
}

// FlushableOptions are the option names whose change invalidates sizes:
// the active plugin list, the uninstall list and the theme update list.
var FlushableOptions = []string{"active_plugins", "uninstall_plugins", "update_themes"}

// ParseEventKind maps a name to its EventKind.
func ParseEventKind(name string) (EventKind, error) {
	kind := EventKind(strings.ToLower(strings.TrimSpace(name)))
	if !lo.Contains(EventKinds, kind) {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	return kind, nil
}

// Filtered reports whether the kind only fires for allow-listed payloads.
func (k EventKind) Filtered() bool {
	return k == OptionChanged || k == TransientDeleted
}

func (k EventKind) String() string {
	return string(k)
}

// flushable reports whether an event of kind k with payload should invalidate.
func flushable(k EventKind, payload string) bool {
	if !k.Filtered() {
		return true
	}
	return lo.Contains(FlushableOptions, payload)
}
