// Command xake is the reference script driver: it parses a thin set of
// flags, wires logging, configuration, the persistent database, the
// worker pool and the executor together, declares a small set of example
// rules (the Rule DSL itself is out of scope for the core; a real project
// wires its own rules the same way, via recipe.FilePattern/recipe.Phony),
// and runs a build.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"

	"github.com/xake-build/xake/src/cli"
	"github.com/xake-build/xake/src/cli/logging"
	"github.com/xake-build/xake/src/core"
	"github.com/xake-build/xake/src/db"
	"github.com/xake-build/xake/src/fsutil"
	"github.com/xake-build/xake/src/process"
	"github.com/xake-build/xake/src/recipe"
	"github.com/xake-build/xake/src/watch"
	"github.com/xake-build/xake/src/worker"
	"github.com/xake-build/xake/src/xakeexec"
	"github.com/xake-build/xake/src/xconfig"
)

var log = logging.Log

var opts struct {
	ProjectRoot string            `short:"r" long:"root" description:"Root of the project to build." default:"."`
	Threads     int               `short:"n" long:"num_threads" description:"Number of concurrent build operations. Defaults to the number of CPUs."`
	Verbosity   string            `short:"v" long:"verbosity" description:"Console log level: silent, quiet, normal, loud, chatty, diag." default:"normal"`
	LogFile     string            `long:"log_file" description:"File to echo full logging output to."`
	LogFileLvl  string            `long:"log_file_level" description:"Log level for the file sink." default:"diag"`
	Vars        map[string]string `long:"var" description:"key:value pairs available to recipes via get_var."`
	FailOnError bool              `long:"fail_on_error" description:"Exit non-zero and print an aggregated error if anything failed."`
	Watch       bool              `long:"watch" description:"After the first build, watch its recorded file dependencies and rebuild on change."`
	Args        struct {
		Want []string `positional-arg-name:"targets" description:"Targets to build. Defaults to 'main'."`
	} `positional-args:"true"`
}

func main() {
	os.Exit(run())
}

func run() int {
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	runID := uuid.New()
	cli.InitLogging(parseLevel(opts.Verbosity))
	if opts.LogFile != "" && parseLevel(opts.LogFileLvl) != core.Silent {
		if err := cli.InitFileLogging(parseLevel(opts.Verbosity), opts.LogFile, parseLevel(opts.LogFileLvl)); err != nil {
			log.Warning("could not set up file logging: %s", err)
		}
	}

	root, err := filepath.Abs(opts.ProjectRoot)
	if err != nil {
		log.Error("invalid project root %s: %s", opts.ProjectRoot, err)
		return 1
	}

	cfg := core.Configuration{
		ProjectRoot: root,
		Threads:     opts.Threads,
		Want:        opts.Args.Want,
		FailOnError: opts.FailOnError,
		Vars:        opts.Vars,
		ConLogLevel: parseLevel(opts.Verbosity),
	}
	cfg = xconfig.Load(root, cfg)

	rules := exampleRules()

	database := db.Open(cfg.ProjectRoot)
	defer database.CloseAndFlush()

	pool := worker.NewPool(cfg.ThreadsOrDefault(runtime.NumCPU()))
	executor := xakeexec.New(cfg, rules, database, pool, process.New())

	want := resolveWant(executor, cfg.WantOrDefault())

	start := time.Now()
	status, _, buildErr := executor.ExecMany(want)
	log.Notice("[%s] finished in %s (%s)", runID, humanize.RelTime(start, time.Now(), "", ""), status)

	if buildErr != nil {
		if cfg.FailOnError {
			log.Error("build failed: %s", buildErr)
			return 1
		}
		log.Warning("build failed: %s", buildErr)
	}

	if opts.Watch {
		if err := watch.Watch(executor, database, want); err != nil {
			log.Error("watch failed: %s", err)
			return 1
		}
	}

	if buildErr != nil {
		return 1
	}
	return 0
}

func resolveWant(executor *xakeexec.Executor, names []string) []core.Target {
	targets := make([]core.Target, len(names))
	for i, name := range names {
		targets[i] = executor.Resolve(name, false)
	}
	return targets
}

func parseLevel(s string) core.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return core.Silent
	case "quiet":
		return core.Quiet
	case "loud":
		return core.Loud
	case "chatty":
		return core.Chatty
	case "diag":
		return core.Diag
	default:
		return core.Normal
	}
}

// exampleRules is a minimal worked example of the programmatic add_rule
// API: a project wires its own rules this way instead of through any kind
// of script file. It builds "<name>.out" from "<name>.in" by copying
// bytes across, and a "main" phony that demands every *.out sibling of
// *.in in the project root.
func exampleRules() *core.RuleSet {
	matcher := fsutil.NewMatcher()
	rules := core.NewRuleSet(matcher)

	rules.Add(recipe.FilePattern("*.out", func(c *recipe.Context) error {
		in := strings.TrimSuffix(c.Target.Name(), ".out") + ".in"
		if err := c.NeedFiles(in); err != nil {
			return err
		}
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		return os.WriteFile(c.Target.Name(), data, 0644)
	}))

	rules.Add(recipe.Phony("main", func(c *recipe.Context) error {
		ins, err := c.GetFiles(core.FilesetSpec{Includes: []string{"*.in"}})
		if err != nil {
			return err
		}
		outs := make([]string, len(ins))
		for i, in := range ins {
			outs[i] = strings.TrimSuffix(in, ".in") + ".out"
		}
		if err := c.Need(outs...); err != nil {
			return err
		}
		c.AlwaysRerun()
		return nil
	}))

	return rules
}
