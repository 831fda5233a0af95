// Package recipe implements the recipe runtime: the ambient task context a
// running recipe uses to demand other targets and record every dependency
// it touches, plus the rule constructors exposed to script code.
package recipe

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xake-build/xake/src/cli/logging"
	"github.com/xake-build/xake/src/core"
	"github.com/xake-build/xake/src/fsutil"
	"github.com/xake-build/xake/src/process"
)

var log = logging.Log

// A NeedResult is what resolving and executing one demanded name produces:
// the Target it resolved to, and the Dependency that should be recorded
// for it (an ArtifactDep for an ordinary target, or a FileSnapshot for the
// "just an existing file, no rule" case — see the executor's JustFile
// handling).
type NeedResult struct {
	Target core.Target
	Dep    core.Dependency
	Err    error
}

// A Needer resolves and executes a batch of demanded names, in parallel,
// returning one NeedResult per name in the same order. forceFile is true
// for need_files, where every name is resolved as a file target regardless
// of whether a like-named phony rule exists.
type Needer interface {
	Need(names []string, forceFile bool) []NeedResult
}

// Context is the ambient object a recipe runs with. It is only ever
// touched by the single goroutine executing its recipe, so it needs no
// internal locking beyond what's required to keep the race detector quiet
// about the result pointer also being read by the executor after the
// recipe returns (hence the mutex around Append).
type Context struct {
	Target core.Target
	Root   string
	Vars   map[string]string
	Needer Needer
	Runner *process.Runner

	mu     sync.Mutex
	result *core.BuildResult
}

// NewContext constructs a Context for target, accumulating dependencies
// into result as the recipe calls the methods below.
func NewContext(target core.Target, root string, vars map[string]string, needer Needer, runner *process.Runner, result *core.BuildResult) *Context {
	return &Context{Target: target, Root: root, Vars: vars, Needer: needer, Runner: runner, result: result}
}

func (c *Context) append(dep core.Dependency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Append(dep)
}

// Need resolves each name to a Target (phony if a phony rule matches it,
// otherwise a file under Root), awaits its execution and appends an
// ArtifactDep (or FileSnapshot, for a bare pre-existing file) for each, in
// call order. It returns the first error encountered, if any, after all
// names have been attempted.
func (c *Context) Need(names ...string) error {
	return c.need(names, false)
}

// NeedFiles is like Need but every name is resolved as a file target,
// bypassing phony matching — used for filesets where the caller knows
// every entry names a real file.
func (c *Context) NeedFiles(names ...string) error {
	return c.need(names, true)
}

func (c *Context) need(names []string, forceFile bool) error {
	if len(names) == 0 {
		return nil
	}
	results := c.Needer.Need(names, forceFile)
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		c.append(r.Dep)
	}
	return firstErr
}

// GetEnv reads an OS environment variable and records an EnvVar dependency
// on its current value (or absence).
func (c *Context) GetEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	c.append(core.NewEnvVarDep(name, value, ok))
	return value, ok
}

// GetVar reads a script-level variable and records a ScriptVar dependency
// on its current value (or absence).
func (c *Context) GetVar(name string) (string, bool) {
	value, ok := c.Vars[name]
	c.append(core.NewScriptVarDep(name, value, ok))
	return value, ok
}

// GetFiles expands a fileset against Root and records a Filelist
// dependency on the resulting ordered match list.
func (c *Context) GetFiles(spec core.FilesetSpec) ([]string, error) {
	matches, err := fsutil.Expand(c.Root, fsutil.Fileset{Includes: spec.Includes, Excludes: spec.Excludes, IncludeHidden: spec.IncludeHidden})
	if err != nil {
		return nil, err
	}
	c.append(core.NewFilelistDep(spec, matches))
	return matches, nil
}

// AlwaysRerun records the sentinel dependency that forces this target to
// rebuild on every run, regardless of anything else it did or didn't touch.
func (c *Context) AlwaysRerun() {
	c.append(core.AlwaysRerun())
}

// WriteLog emits a message tagged with the recipe's target at the given
// level.
func (c *Context) WriteLog(level core.LogLevel, format string, args ...interface{}) {
	msg := fmt.Sprintf("[%s] %s", c.Target.Name(), fmt.Sprintf(format, args...))
	switch level {
	case core.Diag:
		log.Debug(msg)
	case core.Chatty:
		log.Info(msg)
	case core.Loud:
		log.Notice(msg)
	case core.Quiet, core.Normal:
		log.Warning(msg)
	default:
		log.Info(msg)
	}
}

// Run shells out to exe (or to a command line split with a shell lexer, if
// args is empty), with output streamed to the logger and tagged with the
// target's name. It is not itself a recorded dependency; a recipe that
// wants the command's staleness tracked should record its real inputs via
// Need/GetFiles.
func (c *Context) Run(ctx context.Context, exe string, args ...string) (stdout, stderr []byte, err error) {
	return c.Runner.Run(ctx, c.Target.Name(), exe, args, c.Root, nil)
}
