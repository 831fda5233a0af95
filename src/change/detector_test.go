package change

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xake-build/xake/src/core"
)

type fakeStore map[string]core.BuildResult

func (s fakeStore) Get(target core.Target) (core.BuildResult, bool) {
	r, ok := s[target.String()]
	return r, ok
}

func noEnv(string) (string, bool)  { return "", false }
func noVars(string) (string, bool) { return "", false }
func noExpand(core.FilesetSpec) ([]string, error) { return nil, nil }

func TestNoStoredResultIsDirty(t *testing.T) {
	d := New(fakeStore{}, noEnv, noVars, noExpand)
	dirty, reason := d.IsDirty(core.Phony("main"))
	assert.True(t, dirty)
	assert.Equal(t, "unknown state", reason)
}

func TestEmptyDependenciesIsDirty(t *testing.T) {
	target := core.Phony("main")
	store := fakeStore{target.String(): core.BuildResult{Target: target}}
	d := New(store, noEnv, noVars, noExpand)
	dirty, reason := d.IsDirty(target)
	assert.True(t, dirty)
	assert.Equal(t, "no dependencies", reason)
}

func TestAlwaysRerunIsDirty(t *testing.T) {
	target := core.Phony("main")
	store := fakeStore{target.String(): core.BuildResult{
		Target:       target,
		Dependencies: []core.Dependency{core.AlwaysRerun()},
	}}
	d := New(store, noEnv, noVars, noExpand)
	dirty, _ := d.IsDirty(target)
	assert.True(t, dirty)
}

func TestFileSnapshotWithinToleranceIsClean(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	writeFile(t, path)
	artifact := core.NewArtifact(dir, "in.txt")
	mtime, _ := artifact.ModTime()

	target := core.File(dir, "out.txt")
	writeFile(t, filepath.Join(dir, "out.txt"))
	store := fakeStore{target.String(): core.BuildResult{
		Target:       target,
		Dependencies: []core.Dependency{core.NewFileSnapshot(artifact, mtime.Add(50*time.Millisecond))},
	}}
	d := New(store, noEnv, noVars, noExpand)
	dirty, reason := d.IsDirty(target)
	assert.False(t, dirty, reason)
}

func TestFileSnapshotOutsideToleranceIsDirty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	writeFile(t, path)
	artifact := core.NewArtifact(dir, "in.txt")
	mtime, _ := artifact.ModTime()

	target := core.File(dir, "out.txt")
	writeFile(t, filepath.Join(dir, "out.txt"))
	store := fakeStore{target.String(): core.BuildResult{
		Target:       target,
		Dependencies: []core.Dependency{core.NewFileSnapshot(artifact, mtime.Add(time.Second))},
	}}
	d := New(store, noEnv, noVars, noExpand)
	dirty, _ := d.IsDirty(target)
	assert.True(t, dirty)
}

func TestEnvVarChangeIsDirty(t *testing.T) {
	target := core.Phony("build")
	store := fakeStore{target.String(): core.BuildResult{
		Target:       target,
		Dependencies: []core.Dependency{core.NewEnvVarDep("MODE", "debug", true)},
	}}
	env := func(name string) (string, bool) {
		if name == "MODE" {
			return "release", true
		}
		return "", false
	}
	d := New(store, env, noVars, noExpand)
	dirty, _ := d.IsDirty(target)
	assert.True(t, dirty)
}

func TestDirtyArtifactDepPropagates(t *testing.T) {
	dir := t.TempDir()
	dep := core.File(dir, "dep.txt")
	main := core.Phony("main")
	store := fakeStore{
		main.String(): {
			Target:       main,
			Dependencies: []core.Dependency{core.NewArtifactDep(dep)},
		},
		// dep has no stored result at all -> dirty -> propagates to main
	}
	writeFile(t, filepath.Join(dir, "dep.txt"))
	d := New(store, noEnv, noVars, noExpand)
	dirty, reason := d.IsDirty(main)
	assert.True(t, dirty)
	assert.Contains(t, reason, "dep.txt")
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}
