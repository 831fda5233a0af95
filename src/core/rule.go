package core

import (
	"fmt"
)

// A Recipe is the user-supplied body of a rule. It runs with access to an
// ambient task context (see package recipe); the context type is opaque to
// core to avoid an import cycle, so recipes are plain functions of a single
// interface{} context value that the recipe package casts back to its own
// *Context.
type Recipe func(ctx interface{}) error

// A PredicateFunc tests an absolute file path for a FilePredicate rule.
type PredicateFunc func(absPath string) bool

// RuleKind tags which variant of Rule a value holds.
type RuleKind int

// The three rule variants, evaluated in list order by RuleSet.Locate.
const (
	FilePatternRule RuleKind = iota
	FilePredicateRule
	PhonyRule
)

// A Rule binds a pattern to a Recipe. Rules are constructed once at
// script-load time and never mutated afterwards.
type Rule struct {
	Kind   RuleKind
	Glob   string        // FilePatternRule
	Match  PredicateFunc // FilePredicateRule
	Name   string        // PhonyRule
	Recipe Recipe
}

// NewFilePatternRule builds a rule that matches file targets whose path,
// relative to the project root, matches glob (Ant-style * and **).
func NewFilePatternRule(glob string, recipe Recipe) Rule {
	return Rule{Kind: FilePatternRule, Glob: glob, Recipe: recipe}
}

// NewFilePredicateRule builds a rule that matches file targets whose
// absolute path satisfies fn.
func NewFilePredicateRule(fn PredicateFunc, recipe Recipe) Rule {
	return Rule{Kind: FilePredicateRule, Match: fn, Recipe: recipe}
}

// NewPhonyRule builds a rule that matches the phony target named name.
func NewPhonyRule(name string, recipe Recipe) Rule {
	return Rule{Kind: PhonyRule, Name: name, Recipe: recipe}
}

// GlobMatcher is implemented by the fileset package; core depends on it only
// through this interface to avoid importing godirwalk et al into the data
// model package.
type GlobMatcher interface {
	Matches(pattern, root, path string) bool
}

// A RuleSet is an ordered collection of pattern→recipe bindings. Rules are
// evaluated in the order they were added; the first match wins.
type RuleSet struct {
	rules   []Rule
	matcher GlobMatcher
}

// NewRuleSet constructs an empty rule set that will use matcher to evaluate
// FilePatternRule globs.
func NewRuleSet(matcher GlobMatcher) *RuleSet {
	return &RuleSet{matcher: matcher}
}

// Add appends rule to the set.
func (rs *RuleSet) Add(rule Rule) {
	rs.rules = append(rs.rules, rule)
}

// Locate returns the first rule (in addition order) that matches target, or
// ok=false if none does.
func (rs *RuleSet) Locate(target Target, root string) (rule Rule, ok bool) {
	for _, r := range rs.rules {
		if rs.matches(r, target, root) {
			return r, true
		}
	}
	return Rule{}, false
}

func (rs *RuleSet) matches(r Rule, target Target, root string) bool {
	switch r.Kind {
	case PhonyRule:
		return target.IsPhony() && r.Name == target.Name()
	case FilePredicateRule:
		return target.IsFile() && r.Match != nil && r.Match(target.Name())
	case FilePatternRule:
		return target.IsFile() && rs.matcher != nil && rs.matcher.Matches(r.Glob, root, target.Name())
	default:
		return false
	}
}

// HasPhony returns true if a Phony rule named name exists. This is how
// target resolution (as opposed to rule lookup for execution) decides
// whether a bare name like "clean" should become Phony("clean") or
// File(root, "clean") — see the "phony shadowing" invariant.
func (rs *RuleSet) HasPhony(name string) bool {
	for _, r := range rs.rules {
		if r.Kind == PhonyRule && r.Name == name {
			return true
		}
	}
	return false
}

// String renders a rule for diagnostics.
func (r Rule) String() string {
	switch r.Kind {
	case PhonyRule:
		return fmt.Sprintf("phony(%s)", r.Name)
	case FilePredicateRule:
		return "predicate(...)"
	case FilePatternRule:
		return fmt.Sprintf("pattern(%s)", r.Glob)
	default:
		return "rule(?)"
	}
}
