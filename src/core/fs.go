package core

import (
	"os"
	"time"
)

// PathExists returns true if the given path exists, following symlinks.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ModTime returns the modification time of path and whether it exists at all.
func ModTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// ModTime returns the artifact's current on-disk modification time.
// The bool is false if the file no longer exists.
func (a Artifact) ModTime() (time.Time, bool) {
	return ModTime(a.path)
}

// Exists returns true if the artifact's underlying file currently exists.
func (a Artifact) Exists() bool {
	return PathExists(a.path)
}
