package core

import "time"

// A DependencyKind tags which variant of Dependency a value holds.
type DependencyKind int

// The recognised dependency variants. New variants must be appended, never
// inserted, so a persisted DependencyKind byte keeps its meaning across
// versions (a kind that package change does not recognise is treated as
// dirty).
const (
	FileSnapshotDep DependencyKind = iota
	ArtifactDepKind
	EnvVarDep
	ScriptVarDep
	FilelistDep
	AlwaysRerunDep
)

// A Dependency is one thing a recipe observed while it ran: a file it read,
// another target it demanded, an environment or script variable it
// consulted, a fileset it expanded, or an explicit opt-out of caching.
//
// Only the fields relevant to Kind are populated; callers should switch on
// Kind rather than guessing from which fields are non-zero.
type Dependency struct {
	Kind DependencyKind

	// FileSnapshotDep
	Artifact Artifact
	MTime    time.Time

	// ArtifactDepKind
	Target Target

	// EnvVarDep / ScriptVarDep
	Name     string
	Value    string
	HasValue bool

	// FilelistDep
	Fileset  FilesetSpec
	Resolved []string
}

// FilesetSpec is the include/exclude glob set a Filelist dependency was
// recorded against. It mirrors package fsutil's Fileset field-for-field so
// the two convert trivially without core depending on fsutil.
type FilesetSpec struct {
	Includes      []string
	Excludes      []string
	IncludeHidden bool
}

// NewFileSnapshot records that a recipe consumed a file at a given mtime.
func NewFileSnapshot(a Artifact, mtime time.Time) Dependency {
	return Dependency{Kind: FileSnapshotDep, Artifact: a, MTime: mtime}
}

// NewArtifactDep records that a recipe demanded another target via need.
func NewArtifactDep(t Target) Dependency {
	return Dependency{Kind: ArtifactDepKind, Target: t}
}

// NewEnvVarDep records the value (or absence) of an environment variable a
// recipe consulted.
func NewEnvVarDep(name, value string, has bool) Dependency {
	return Dependency{Kind: EnvVarDep, Name: name, Value: value, HasValue: has}
}

// NewScriptVarDep records the value (or absence) of a script-level variable
// a recipe consulted.
func NewScriptVarDep(name, value string, has bool) Dependency {
	return Dependency{Kind: ScriptVarDep, Name: name, Value: value, HasValue: has}
}

// NewFilelistDep records a fileset expansion a recipe performed.
func NewFilelistDep(fileset FilesetSpec, resolved []string) Dependency {
	list := make([]string, len(resolved))
	copy(list, resolved)
	return Dependency{Kind: FilelistDep, Fileset: fileset, Resolved: list}
}

// AlwaysRerun is the sentinel dependency a recipe records to opt out of
// caching entirely.
func AlwaysRerun() Dependency {
	return Dependency{Kind: AlwaysRerunDep}
}

// BuildResult is the persisted record of a target's last successful
// execution: the ordered dependencies it observed, and when it finished.
// It is only ever persisted after a recipe returns successfully.
type BuildResult struct {
	Target       Target
	Dependencies []Dependency
	BuiltAt      time.Time
}

// NewBuildResult constructs an empty, in-progress result for target. The
// executor hands the returned pointer to the recipe runtime, which appends
// to Dependencies as the recipe calls need/get_env/get_var/get_files.
func NewBuildResult(t Target) *BuildResult {
	return &BuildResult{Target: t}
}

// Append records one more dependency, preserving call order.
func (r *BuildResult) Append(dep Dependency) {
	r.Dependencies = append(r.Dependencies, dep)
}
