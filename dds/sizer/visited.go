package sizer

import (
	"io/fs"
	"path/filepath"
	"sync"
)

// visitedSet records the directories a single ComputeSize call has entered,
// keyed by their identity on disk rather than by path.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// enter marks the directory and reports whether it was new. Directories that
// cannot be identified are never entered.
func (v *visitedSet) enter(path string, info fs.FileInfo) bool {
	key, ok := directoryKey(path, info)
	if !ok {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, dup := v.seen[key]; dup {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

func realPathKey(path string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	return resolved, true
}
