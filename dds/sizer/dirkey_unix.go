//go:build unix

package sizer

import (
	"fmt"
	"io/fs"
	"syscall"
)

// directoryKey identifies a directory by device and inode.
func directoryKey(path string, info fs.FileInfo) (string, bool) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return fmt.Sprintf("%d:%d", st.Dev, st.Ino), true
	}
	return realPathKey(path)
}
