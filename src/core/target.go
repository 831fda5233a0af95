// Package core contains the data model shared across the build engine:
// targets, artifacts, recorded dependencies, build results and rule sets.
package core

import (
	"path/filepath"
)

// A Kind distinguishes the two flavours of Target.
type Kind int

// The two kinds of target.
const (
	FileKind Kind = iota
	PhonyKind
)

// A Target is either a file artifact or a phony name.
// It is a value type: two Targets are equal (==) iff they have the same
// Kind and the same normalised Name, so Target is safe to use as a map key.
type Target struct {
	kind Kind
	name string
}

// File constructs a Target for a file at path, which is resolved relative
// to root if it isn't already absolute.
func File(root, path string) Target {
	return Target{kind: FileKind, name: absPath(root, path)}
}

// Phony constructs a Target for a phony name. Phony names are not paths and
// are never resolved against a project root.
func Phony(name string) Target {
	return Target{kind: PhonyKind, name: name}
}

// IsFile returns true if this target is a file target.
func (t Target) IsFile() bool { return t.kind == FileKind }

// IsPhony returns true if this target is a phony target.
func (t Target) IsPhony() bool { return t.kind == PhonyKind }

// Name returns the target's identifying name: the absolute path for a file
// target, or the bare name for a phony target.
func (t Target) Name() string { return t.name }

// String implements fmt.Stringer. File targets print their absolute path;
// phony targets print their bare name.
func (t Target) String() string {
	return t.name
}

// gobTarget is Target's exported wire representation; Target's fields are
// unexported so that callers can't construct one bypassing absPath, but gob
// only encodes exported fields, so persistence goes through this proxy.
type gobTarget struct {
	Kind Kind
	Name string
}

// GobEncode implements gob.GobEncoder.
func (t Target) GobEncode() ([]byte, error) {
	return encodeGob(gobTarget{Kind: t.kind, Name: t.name})
}

// GobDecode implements gob.GobDecoder.
func (t *Target) GobDecode(data []byte) error {
	var g gobTarget
	if err := decodeGob(data, &g); err != nil {
		return err
	}
	t.kind, t.name = g.Kind, g.Name
	return nil
}

func absPath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(root, path))
}

// Artifact is a handle onto a single on-disk file, used to query its
// modification time. Two Artifacts are equal when their normalised
// absolute paths are equal.
type Artifact struct {
	path string
}

// NewArtifact constructs an Artifact for an absolute or root-relative path.
func NewArtifact(root, path string) Artifact {
	return Artifact{path: absPath(root, path)}
}

// Path returns the artifact's normalised absolute path.
func (a Artifact) Path() string { return a.path }

// Equal reports whether two artifacts refer to the same normalised path.
func (a Artifact) Equal(other Artifact) bool { return a.path == other.path }

// GobEncode implements gob.GobEncoder.
func (a Artifact) GobEncode() ([]byte, error) {
	return encodeGob(a.path)
}

// GobDecode implements gob.GobDecoder.
func (a *Artifact) GobDecode(data []byte) error {
	return decodeGob(data, &a.path)
}
