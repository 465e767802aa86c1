package report

import "strings"

// TrimmedPath is a path shortened for display.
type TrimmedPath struct {
	Path     string `json:"path"`
	FullPath string `json:"full_path"`
	Trimmed  bool   `json:"trimmed"`
}

// TrimPath strips installRoot from the front of path and truncates what is left
// to length runes. FullPath keeps the untruncated relative form.
func TrimPath(path, installRoot string, length int) TrimmedPath {
	if installRoot != "" && len(path) >= len(installRoot) &&
		strings.EqualFold(path[:len(installRoot)], installRoot) {
		path = path[len(installRoot):]
	}

	out := TrimmedPath{Path: path, FullPath: path}
	if length < 0 {
		return out
	}
	if runes := []rune(path); len(runes) > length {
		out.Path = string(runes[:length])
		out.Trimmed = true
	}
	return out
}
