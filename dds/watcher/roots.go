package watcher

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/armon/go-radix"
)

// RootIndex maps arbitrary paths to the watched root that contains them,
// using longest-prefix lookup on a radix tree.
type RootIndex struct {
	mu   sync.RWMutex
	tree *radix.Tree
}

// NewRootIndex creates an index over roots.
func NewRootIndex(roots ...string) *RootIndex {
	idx := &RootIndex{tree: radix.New()}
	for _, root := range roots {
		idx.Insert(root)
	}
	return idx
}

// Insert adds root. It reports false for an empty root.
func (idx *RootIndex) Insert(root string) bool {
	if root == "" {
		return false
	}
	key := indexKey(root)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree.Insert(key, root)
	return true
}

// Remove drops root from the index.
func (idx *RootIndex) Remove(root string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree.Delete(indexKey(root))
}

// Match returns the deepest root containing path, as it was inserted.
func (idx *RootIndex) Match(path string) (string, bool) {
	key := indexKey(path)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	_, value, ok := idx.tree.LongestPrefix(key)
	if !ok {
		return "", false
	}
	return value.(string), true
}

// Roots returns the indexed roots in lexical order.
func (idx *RootIndex) Roots() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	roots := make([]string, 0, idx.tree.Len())
	idx.tree.Walk(func(_ string, value interface{}) bool {
		roots = append(roots, value.(string))
		return false
	})
	sort.Strings(roots)
	return roots
}

// Len returns the number of indexed roots.
func (idx *RootIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Len()
}

// indexKey cleans path and terminates it with a separator so "/var/log"
// never prefixes "/var/logs".
func indexKey(path string) string {
	key := filepath.ToSlash(filepath.Clean(path))
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}
	return key
}
