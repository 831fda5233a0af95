package watch

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xake-build/xake/src/core"
	"github.com/xake-build/xake/src/db"
)

func TestWatchedDirsFollowsArtifactDepsThroughPhony(t *testing.T) {
	dir := t.TempDir()
	database := db.Open(dir)
	defer database.CloseAndFlush()

	fileTarget := core.File(dir, "src/in.txt")
	artifact := core.NewArtifact(dir, "src/in.txt")
	assert.NoError(t, database.Put(core.BuildResult{
		Target:       fileTarget,
		Dependencies: []core.Dependency{core.NewFileSnapshot(artifact, time.Now())},
	}))

	main := core.Phony("main")
	assert.NoError(t, database.Put(core.BuildResult{
		Target:       main,
		Dependencies: []core.Dependency{core.NewArtifactDep(fileTarget)},
	}))

	dirs := watchedDirs(database, []core.Target{main})
	_, ok := dirs[filepath.Join(dir, "src")]
	assert.True(t, ok)
}

func TestWatchedDirsSkipsAlwaysRerunTargets(t *testing.T) {
	dir := t.TempDir()
	database := db.Open(dir)
	defer database.CloseAndFlush()

	main := core.Phony("main")
	assert.NoError(t, database.Put(core.BuildResult{
		Target:       main,
		Dependencies: []core.Dependency{core.AlwaysRerun()},
	}))

	dirs := watchedDirs(database, []core.Target{main})
	assert.Empty(t, dirs)
}

func TestWatchedDirsCollectsFilelistDirectories(t *testing.T) {
	dir := t.TempDir()
	database := db.Open(dir)
	defer database.CloseAndFlush()

	target := core.Phony("gen")
	spec := core.FilesetSpec{Includes: []string{"*.go"}}
	assert.NoError(t, database.Put(core.BuildResult{
		Target:       target,
		Dependencies: []core.Dependency{core.NewFilelistDep(spec, []string{filepath.Join(dir, "a.go"), filepath.Join(dir, "pkg", "b.go")})},
	}))

	dirs := watchedDirs(database, []core.Target{target})
	_, okA := dirs[dir]
	_, okB := dirs[filepath.Join(dir, "pkg")]
	assert.True(t, okA)
	assert.True(t, okB)
}
