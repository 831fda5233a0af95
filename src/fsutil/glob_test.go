package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesStarWithinSegment(t *testing.T) {
	assert.True(t, Matches("*.go", "/root", "/root/main.go"))
	assert.False(t, Matches("*.go", "/root", "/root/sub/main.go"))
}

func TestMatchesDoubleStarAcrossSegments(t *testing.T) {
	assert.True(t, Matches("**/*.go", "/root", "/root/main.go"))
	assert.True(t, Matches("**/*.go", "/root", "/root/a/b/c.go"))
	assert.False(t, Matches("**/*.go", "/root", "/root/a/b/c.txt"))
}

func TestExpandIsDeterministicAndExcludesHidden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "")
	writeFile(t, filepath.Join(dir, "a.txt"), "")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "")
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), "")

	files, err := Expand(dir, Fileset{Includes: []string{"**/*.txt"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "sub/c.txt"}, files)
}

func TestExpandHonoursExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.txt"), "")
	writeFile(t, filepath.Join(dir, "skip.txt"), "")

	files, err := Expand(dir, Fileset{Includes: []string{"*.txt"}, Excludes: []string{"skip.txt"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, files)
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}
