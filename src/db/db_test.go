package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xake-build/xake/src/core"
)

func TestPutThenGet(t *testing.T) {
	dir := t.TempDir()
	d := Open(dir)
	defer d.CloseAndFlush()

	target := core.Phony("main")
	result := core.BuildResult{
		Target:       target,
		Dependencies: []core.Dependency{core.AlwaysRerun()},
		BuiltAt:      time.Now(),
	}
	assert.NoError(t, d.Put(result))

	got, ok := d.Get(target)
	assert.True(t, ok)
	assert.Equal(t, 1, len(got.Dependencies))
}

func TestGetMissingReturnsNotOk(t *testing.T) {
	d := Open(t.TempDir())
	defer d.CloseAndFlush()
	_, ok := d.Get(core.Phony("ghost"))
	assert.False(t, ok)
}

func TestReopenRecoversEntries(t *testing.T) {
	dir := t.TempDir()
	d := Open(dir)
	target := core.File(dir, "out.txt")
	assert.NoError(t, d.Put(core.BuildResult{
		Target:       target,
		Dependencies: []core.Dependency{core.NewFileSnapshot(core.NewArtifact(dir, "in.txt"), time.Now())},
		BuiltAt:      time.Now(),
	}))
	assert.NoError(t, d.CloseAndFlush())

	d2 := Open(dir)
	defer d2.CloseAndFlush()
	got, ok := d2.Get(target)
	assert.True(t, ok)
	assert.Equal(t, 1, len(got.Dependencies))
}

func TestCorruptTailIsTolerated(t *testing.T) {
	dir := t.TempDir()
	d := Open(dir)
	target := core.Phony("main")
	assert.NoError(t, d.Put(core.BuildResult{Target: target, Dependencies: []core.Dependency{core.AlwaysRerun()}}))
	assert.NoError(t, d.CloseAndFlush())

	// Append a garbage trailing record to simulate a crash mid-write.
	f, err := os.OpenFile(filepath.Join(dir, DefaultFileName), os.O_APPEND|os.O_WRONLY, 0644)
	assert.NoError(t, err)
	_, err = f.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 99, 1, 2, 3})
	assert.NoError(t, f.Close())

	d2 := Open(dir)
	defer d2.CloseAndFlush()
	got, ok := d2.Get(target)
	assert.True(t, ok, "the valid leading record must survive a corrupt trailing one")
	assert.Equal(t, 1, len(got.Dependencies))
}
