// Package change implements the change detector: given a target and its
// last-persisted BuildResult, decide whether the target is dirty (must be
// rebuilt). Recursion over ArtifactDep dependencies is memoised per build
// invocation so the total cost stays linear in the dependency DAG.
package change

import (
	"fmt"
	"sync"

	"github.com/xake-build/xake/src/core"
)

// Store is the subset of the build database the detector needs.
type Store interface {
	Get(target core.Target) (core.BuildResult, bool)
}

// EnvLookup resolves an environment variable's current value.
type EnvLookup func(name string) (value string, ok bool)

// VarLookup resolves a script-level variable's current value.
type VarLookup func(name string) (value string, ok bool)

// Expander re-expands a fileset and returns the current ordered match list.
type Expander func(spec core.FilesetSpec) ([]string, error)

// A Detector evaluates dirtiness for one build invocation. Construct a
// fresh Detector per invocation: its memo table is only valid for a single
// run because the answer can depend on targets that are being rebuilt as
// the run progresses.
type Detector struct {
	store    Store
	env      EnvLookup
	vars     VarLookup
	expand   Expander
	mu       sync.Mutex
	memo     map[string]result
	evalSeen map[string]bool // guards against (erroneous) dependency cycles
}

type result struct {
	dirty  bool
	reason string
}

// New constructs a Detector backed by the given collaborators.
func New(store Store, env EnvLookup, vars VarLookup, expand Expander) *Detector {
	return &Detector{
		store:    store,
		env:      env,
		vars:     vars,
		expand:   expand,
		memo:     map[string]result{},
		evalSeen: map[string]bool{},
	}
}

// IsDirty reports whether target must be rebuilt, and why.
func (d *Detector) IsDirty(target core.Target) (bool, string) {
	key := target.String()
	d.mu.Lock()
	if r, ok := d.memo[key]; ok {
		d.mu.Unlock()
		return r.dirty, r.reason
	}
	if d.evalSeen[key] {
		// A cycle reached back to a target still being evaluated; treat it
		// as clean from this caller's perspective to break the recursion —
		// the cycle itself isn't something this detector models resolving.
		d.mu.Unlock()
		return false, ""
	}
	d.evalSeen[key] = true
	d.mu.Unlock()

	dirty, reason := d.evaluate(target)

	d.mu.Lock()
	delete(d.evalSeen, key)
	d.memo[key] = result{dirty: dirty, reason: reason}
	d.mu.Unlock()
	return dirty, reason
}

func (d *Detector) evaluate(target core.Target) (bool, string) {
	if target.IsFile() && !core.PathExists(target.Name()) {
		return true, "target not found"
	}
	prev, ok := d.store.Get(target)
	if !ok {
		return true, "unknown state"
	}
	if len(prev.Dependencies) == 0 {
		return true, "no dependencies"
	}
	for _, dep := range prev.Dependencies {
		if dirty, reason := d.evaluateDependency(dep); dirty {
			return true, reason
		}
	}
	return false, ""
}

func (d *Detector) evaluateDependency(dep core.Dependency) (bool, string) {
	switch dep.Kind {
	case core.AlwaysRerunDep:
		return true, "marked always-rerun"

	case core.FileSnapshotDep:
		mtime, exists := dep.Artifact.ModTime()
		if !exists {
			return true, fmt.Sprintf("file %s no longer exists", dep.Artifact.Path())
		}
		if diff := mtime.Sub(dep.MTime); diff > core.TOLERANCE || diff < -core.TOLERANCE {
			return true, fmt.Sprintf("file %s changed (mtime drift %s)", dep.Artifact.Path(), diff)
		}
		return false, ""

	case core.ArtifactDepKind:
		if dep.Target.IsFile() && !core.PathExists(dep.Target.Name()) {
			return true, fmt.Sprintf("dependency %s no longer exists", dep.Target.Name())
		}
		if dirty, reason := d.IsDirty(dep.Target); dirty {
			return true, fmt.Sprintf("dependency %s is dirty: %s", dep.Target.Name(), reason)
		}
		return false, ""

	case core.EnvVarDep:
		current, ok := d.env(dep.Name)
		if ok != dep.HasValue || current != dep.Value {
			return true, fmt.Sprintf("env var %s changed", dep.Name)
		}
		return false, ""

	case core.ScriptVarDep:
		current, ok := d.vars(dep.Name)
		if ok != dep.HasValue || current != dep.Value {
			return true, fmt.Sprintf("script var %s changed", dep.Name)
		}
		return false, ""

	case core.FilelistDep:
		current, err := d.expand(dep.Fileset)
		if err != nil || !stringsEqual(current, dep.Resolved) {
			return true, "fileset expansion changed"
		}
		return false, ""

	default:
		return true, "unrecognised dependency kind"
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
