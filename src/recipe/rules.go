package recipe

import "github.com/xake-build/xake/src/core"

// Func adapts a typed recipe body into the core.Recipe signature the rule
// set stores. core.Recipe is untyped (func(interface{}) error) purely to
// avoid package core importing package recipe; every recipe in practice is
// authored against *Context and wrapped with Func.
func Func(body func(*Context) error) core.Recipe {
	return func(ctx interface{}) error {
		rc, ok := ctx.(*Context)
		if !ok {
			panic("recipe.Func: context is not a *recipe.Context")
		}
		return body(rc)
	}
}

// FilePattern builds a rule matching file targets whose path, relative to
// the project root, matches glob (Ant-style * and **).
func FilePattern(glob string, body func(*Context) error) core.Rule {
	return core.NewFilePatternRule(glob, Func(body))
}

// FilePredicate builds a rule matching file targets whose absolute path
// satisfies fn.
func FilePredicate(fn core.PredicateFunc, body func(*Context) error) core.Rule {
	return core.NewFilePredicateRule(fn, Func(body))
}

// Phony builds a rule matching the phony target named name.
func Phony(name string, body func(*Context) error) core.Rule {
	return core.NewPhonyRule(name, Func(body))
}

// Demands desugars to a phony rule named name whose body simply needs every
// target in deps and then marks itself AlwaysRerun — the idiom for "this
// name is just an umbrella over other targets".
func Demands(name string, deps ...string) core.Rule {
	return Phony(name, func(c *Context) error {
		if err := c.Need(deps...); err != nil {
			return err
		}
		c.AlwaysRerun()
		return nil
	})
}
