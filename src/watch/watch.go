// Package watch implements the filesystem watcher that re-triggers a build
// whenever one of its recorded file dependencies changes.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/xake-build/xake/src/cli/logging"
	"github.com/xake-build/xake/src/core"
	"github.com/xake-build/xake/src/db"
	"github.com/xake-build/xake/src/worker"
)

var log = logging.Log

const debounceInterval = 50 * time.Millisecond

// Builder is the subset of xakeexec.Executor that watch needs. Declared
// locally (rather than importing xakeexec) so that xakeexec can in turn
// depend on nothing in this package.
type Builder interface {
	ExecMany(targets []core.Target) (worker.ExecStatus, []core.Dependency, error)
}

// Watch inspects the DB for the dependencies recorded against want from the
// build that already ran, registers a watch on every directory containing a
// FileSnapshot or Filelist dependency, and re-invokes ExecMany on want
// whenever one of them changes. Watcher errors are logged and watching
// continues; it returns nil only once the watcher's event or error channel
// is closed.
func Watch(b Builder, database *db.DB, want []core.Target) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs := watchedDirs(database, want)
	if len(dirs) == 0 {
		log.Warning("nothing file-based to watch among the requested targets")
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			log.Warning("could not watch %s: %s", dir, err)
		}
	}
	log.Notice("watching %d director(ies) for changes...", len(dirs))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			log.Info("change detected: %s", event)
			drain(watcher, debounceInterval)

			status, _, err := b.ExecMany(want)
			if err != nil {
				log.Warning("rebuild failed: %s", err)
			} else {
				log.Notice("rebuild finished: %s", status)
			}

			// The set of watched files can change between runs (a recipe may
			// start depending on a new file); re-derive and refresh.
			newDirs := watchedDirs(database, want)
			for dir := range newDirs {
				if _, already := dirs[dir]; !already {
					if err := watcher.Add(dir); err != nil {
						log.Warning("could not watch %s: %s", dir, err)
					}
				}
			}
			dirs = newDirs
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error: %s", err)
		}
	}
}

// drain discards events arriving within window of each other, coalescing a
// burst (e.g. an editor's save-via-rename) into the single rebuild already
// triggered by the first one.
func drain(watcher *fsnotify.Watcher, window time.Duration) {
	for {
		select {
		case <-watcher.Events:
		case <-time.After(window):
			return
		}
	}
}

// watchedDirs collects the distinct directories containing a FileSnapshot
// or Filelist dependency recorded for any of want, recursing through
// ArtifactDep to pick up transitive dependencies too (so the common
// "phony main demands the real file targets" idiom still surfaces the
// underlying files). A target's dependencies are scanned in recorded order
// and the scan stops at an AlwaysRerun entry: those recorded after it
// contribute nothing, those recorded before it (such as the needs of a
// Demands rule, which records AlwaysRerun last) still do.
func watchedDirs(database *db.DB, want []core.Target) map[string]struct{} {
	dirs := map[string]struct{}{}
	seen := map[string]bool{}

	var visit func(target core.Target)
	visit = func(target core.Target) {
		key := target.String()
		if seen[key] {
			return
		}
		seen[key] = true

		result, ok := database.Get(target)
		if !ok {
			return
		}
		for _, dep := range result.Dependencies {
			switch dep.Kind {
			case core.AlwaysRerunDep:
				return
			case core.FileSnapshotDep:
				dirs[filepath.Dir(dep.Artifact.Path())] = struct{}{}
			case core.FilelistDep:
				for _, path := range dep.Resolved {
					dirs[filepath.Dir(path)] = struct{}{}
				}
			case core.ArtifactDepKind:
				visit(dep.Target)
			}
		}
	}

	// Phony targets themselves are never watchable paths, but their
	// recorded ArtifactDep entries are followed just like any other
	// target's so that the Demands idiom ("main" -> real file targets)
	// still surfaces the underlying files.
	for _, target := range want {
		visit(target)
	}
	return dirs
}
