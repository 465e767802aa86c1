//go:build !unix

package sizer

import "io/fs"

func directoryKey(path string, _ fs.FileInfo) (string, bool) {
	return realPathKey(path)
}
