package triggers

import (
	"context"
	"sync"
	"testing"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/cache"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/catalog"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []string

func (s staticSource) Paths(context.Context) []string { return s }

type recordingInvalidator struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingInvalidator) InvalidateAll(_ context.Context, paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), paths...))
}

func TestParseEventKind(t *testing.T) {
	for _, kind := range EventKinds {
		got, err := ParseEventKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}

	got, err := ParseEventKind("  Item-Uploaded ")
	require.NoError(t, err)
	assert.Equal(t, ItemUploaded, got)

	_, err = ParseEventKind("theme-switched")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestUnfilteredEventsAlwaysInvalidate(t *testing.T) {
	inv := &recordingInvalidator{}
	tr := New(staticSource{"/u", "/t"}, inv, zerolog.Nop())

	for _, kind := range []EventKind{ItemUploaded, ItemEdited, UpgradeCompleted, PluginDeleted,
		MetadataUpdated, UploadHandled, RefreshRequested, FSChanged} {
		assert.True(t, tr.OnLifecycleEvent(context.Background(), kind, ""), kind)
	}

	assert.Len(t, inv.calls, 8)
	assert.Equal(t, []string{"/u", "/t"}, inv.calls[0])
	assert.Equal(t, int64(8), tr.Flushes())
}

func TestFilteredEventsUseAllowList(t *testing.T) {
	tests := []struct {
		kind    EventKind
		payload string
		want    bool
	}{
		{OptionChanged, "active_plugins", true},
		{OptionChanged, "uninstall_plugins", true},
		{OptionChanged, "update_themes", true},
		{OptionChanged, "blogname", false},
		{OptionChanged, "", false},
		{TransientDeleted, "update_themes", true},
		{TransientDeleted, "update_core", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.payload, func(t *testing.T) {
			inv := &recordingInvalidator{}
			tr := New(staticSource{"/u"}, inv, zerolog.Nop())

			assert.Equal(t, tt.want, tr.OnLifecycleEvent(context.Background(), tt.kind, tt.payload))
			if tt.want {
				assert.Len(t, inv.calls, 1)
			} else {
				assert.Empty(t, inv.calls)
			}
		})
	}
}

func TestHandleEvent(t *testing.T) {
	inv := &recordingInvalidator{}
	tr := New(staticSource{"/u"}, inv, zerolog.Nop())

	ok, err := tr.HandleEvent(context.Background(), "option-changed", "active_plugins")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.HandleEvent(context.Background(), "bogus", "")
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.False(t, ok)
	assert.Len(t, inv.calls, 1)
}

type fixedEnvironment struct{}

func (fixedEnvironment) CommonDirectory(key string) string {
	if key == catalog.DirUploads {
		return "/u"
	}
	return ""
}
func (fixedEnvironment) InstallRoot() string  { return "/srv/www" }
func (fixedEnvironment) DatabaseName() string { return "wordpress" }

func TestRefreshInvalidatesEveryResolvedPath(t *testing.T) {
	ctx := context.Background()
	cat := catalog.New(fixedEnvironment{}, catalog.Options{
		CommonDirectories: []string{catalog.DirUploads},
		CustomDirectories: "Logs|/var/log",
		ShowSum:           true,
	}, zerolog.Nop())

	store := cache.NewMemoryStore()
	sc := cache.NewSizeCache(store, 60, zerolog.Nop())
	sc.Put(ctx, "/u", 10, 60)
	sc.Put(ctx, "/var/log", 20, 60)
	sc.Put(ctx, "/unrelated", 30, 60)

	tr := New(cat, sc, zerolog.Nop())
	assert.Equal(t, 2, tr.Refresh(ctx))

	_, ok := sc.Get(ctx, "/u")
	assert.False(t, ok)
	_, ok = sc.Get(ctx, "/var/log")
	assert.False(t, ok)
	_, ok = sc.Get(ctx, "/unrelated")
	assert.True(t, ok, "paths outside the catalog are left alone")
}
