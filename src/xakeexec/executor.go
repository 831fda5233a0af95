// Package xakeexec implements the executor: it wires together the rule
// set, the change detector and the build database, submits work to the
// worker pool, and aggregates failures across a build invocation.
package xakeexec

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/xake-build/xake/src/change"
	"github.com/xake-build/xake/src/cli/logging"
	"github.com/xake-build/xake/src/core"
	"github.com/xake-build/xake/src/db"
	"github.com/xake-build/xake/src/fsutil"
	"github.com/xake-build/xake/src/process"
	"github.com/xake-build/xake/src/recipe"
	"github.com/xake-build/xake/src/worker"
)

var log = logging.Log

// Executor orchestrates rule lookup, pool submission, DB update and error
// aggregation for one build invocation.
type Executor struct {
	Root   string
	Config core.Configuration
	Rules  *core.RuleSet
	DB     *db.DB
	Pool   *worker.Pool
	Runner *process.Runner

	detector *change.Detector
}

// New constructs an Executor. The caller is responsible for the lifetimes
// of database and pool (Open/CloseAndFlush, NewPool).
func New(cfg core.Configuration, rules *core.RuleSet, database *db.DB, pool *worker.Pool, runner *process.Runner) *Executor {
	e := &Executor{Root: cfg.ProjectRoot, Config: cfg, Rules: rules, DB: database, Pool: pool, Runner: runner}
	e.detector = change.New(database, os.LookupEnv, e.lookupVar, e.expand)
	return e
}

func (e *Executor) lookupVar(name string) (string, bool) {
	v, ok := e.Config.Vars[name]
	return v, ok
}

func (e *Executor) expand(spec core.FilesetSpec) ([]string, error) {
	return fsutil.Expand(e.Root, fsutil.Fileset{Includes: spec.Includes, Excludes: spec.Excludes, IncludeHidden: spec.IncludeHidden})
}

// Resolve turns a bare script-level name into a Target: Phony if a phony
// rule matches it, otherwise File(root, name).
func (e *Executor) Resolve(name string, forceFile bool) core.Target {
	if !forceFile && e.Rules.HasPhony(name) {
		return core.Phony(name)
	}
	return core.File(e.Root, name)
}

// ExecOne executes target (or returns its memoised result if another
// caller already started it this run) and returns the outcome plus the
// Dependency the caller should record for having demanded it.
func (e *Executor) ExecOne(target core.Target) worker.Result {
	rule, ok := e.Rules.Locate(target, e.Root)
	if !ok {
		if target.IsFile() {
			if mtime, exists := core.ModTime(target.Name()); exists {
				return worker.Result{
					Status: worker.JustFile,
					Dep:    core.NewFileSnapshot(core.NewArtifact(e.Root, target.Name()), mtime),
				}
			}
		}
		return worker.Result{Err: core.NewNoRuleError(target)}
	}
	return e.Pool.Submit(target, func() worker.Result {
		return e.runRule(target, rule)
	})
}

func (e *Executor) runRule(target core.Target, rule core.Rule) worker.Result {
	dirty, reason := e.detector.IsDirty(target)
	if !dirty {
		log.Debug("Skipped %s", target.Name())
		return worker.Result{Status: worker.Skipped, Dep: core.NewArtifactDep(target)}
	}
	log.Info("Building %s (%s)", target.Name(), reason)

	result := core.NewBuildResult(target)
	ctx := recipe.NewContext(target, e.Root, e.Config.Vars, (*neederAdapter)(e), e.Runner, result)

	err := runRecipeSafely(rule.Recipe, ctx)
	if err != nil {
		log.Warning("Build failed for %s: %s", target.Name(), err)
		return worker.Result{Err: core.NewRecipeFailure(target, err)}
	}
	result.BuiltAt = time.Now()
	if putErr := e.DB.Put(*result); putErr != nil {
		log.Warning("Failed to persist build result for %s: %s", target.Name(), putErr)
	}
	return worker.Result{Status: worker.Succeeded, Dep: core.NewArtifactDep(target)}
}

// runRecipeSafely converts a recipe panic into an error, same spirit as
// please's buildTarget recover: a misbehaving recipe fails its own subtree
// rather than taking down the whole build.
func runRecipeSafely(r core.Recipe, ctx interface{}) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", rec)
			}
		}
	}()
	return r(ctx)
}

// ExecMany runs ExecOne for every target in parallel and collects the
// results. The combined status is Succeeded if any child succeeded, else
// Skipped. All errors across the batch are aggregated, not just the first.
func (e *Executor) ExecMany(targets []core.Target) (worker.ExecStatus, []core.Dependency, error) {
	type outcome struct {
		dep    core.Dependency
		status worker.ExecStatus
		err    error
	}
	outcomes := make([]outcome, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target core.Target) {
			defer wg.Done()
			r := e.ExecOne(target)
			outcomes[i] = outcome{dep: r.Dep, status: r.Status, err: r.Err}
		}(i, target)
	}
	wg.Wait()

	var merr error
	status := worker.Skipped
	deps := make([]core.Dependency, 0, len(targets))
	for _, o := range outcomes {
		if o.err != nil {
			merr = multierror.Append(merr, o.err)
			continue
		}
		if o.status == worker.Succeeded {
			status = worker.Succeeded
		}
		deps = append(deps, o.dep)
	}
	return status, deps, merr
}

// neederAdapter lets Executor satisfy recipe.Needer without exposing that
// method set on Executor's own public API (need is a behaviour of "the
// thing resolving names for a running recipe", not of the executor as a
// whole).
type neederAdapter Executor

func (n *neederAdapter) Need(names []string, forceFile bool) []recipe.NeedResult {
	e := (*Executor)(n)
	targets := make([]core.Target, len(names))
	for i, name := range names {
		targets[i] = e.Resolve(name, forceFile)
	}

	// Release our permit before waiting on the sub-build so that a chain of
	// nested `need` calls cannot deadlock against the pool's concurrency cap.
	e.Pool.Release()
	results := make([]recipe.NeedResult, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target core.Target) {
			defer wg.Done()
			r := e.ExecOne(target)
			results[i] = recipe.NeedResult{Target: target, Dep: r.Dep, Err: r.Err}
		}(i, target)
	}
	wg.Wait()
	e.Pool.Acquire()

	return results
}
