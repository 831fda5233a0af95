package xconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xake-build/xake/src/core"
)

func write(t *testing.T, dir, contents string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0644))
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cfg := Load(dir, core.Configuration{})
	assert.Equal(t, core.Configuration{}, cfg)
}

func TestLoadFillsZeroValuesOnly(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "[build]\nthreads=4\n[log]\nlevel=chatty\n[vars]\ntarget=release\n")

	cfg := Load(dir, core.Configuration{})
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, core.Chatty, cfg.ConLogLevel)
	assert.Equal(t, "release", cfg.Vars["target"])
}

func TestLoadNeverOverridesCallerValues(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "[build]\nthreads=4\n[vars]\ntarget=release\n")

	cfg := Load(dir, core.Configuration{Threads: 8, Vars: map[string]string{"target": "debug"}})
	assert.Equal(t, 8, cfg.Threads)
	assert.Equal(t, "debug", cfg.Vars["target"])
}

func TestLoadMalformedFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "this is not valid ini [[[")

	cfg := Load(dir, core.Configuration{Threads: 2})
	assert.Equal(t, 2, cfg.Threads)
}
