package cache

import (
	"crypto/md5"
	"encoding/hex"
)

// KeyPrefix namespaces size entries so they cannot collide with other cached state.
const KeyPrefix = "DD-Path-Size-"

// Key derives the cache key for a path. The path is hashed exactly as given:
// "/a/b" and "/a/b/" are different keys.
func Key(path string) string {
	sum := md5.Sum([]byte(path))
	return KeyPrefix + hex.EncodeToString(sum[:])
}
