// Package xconfig reads the optional .xakerc file and merges it under a
// programmatically-built core.Configuration. Flags always win: this loader
// only ever fills in values the caller left at their zero value.
package xconfig

import (
	"os"
	"path/filepath"

	"github.com/please-build/gcfg"

	"github.com/xake-build/xake/src/cli/logging"
	"github.com/xake-build/xake/src/core"
)

// FileName is the name of the project-local config file, read from the
// project root.
const FileName = ".xakerc"

var log = logging.Log

type fileConfig struct {
	Build struct {
		Threads int
		Root    string
	}
	Log struct {
		Level string
	}
	Vars map[string]string `gcfg:"vars"`
}

// Load reads <root>/.xakerc, if present, and merges it into cfg: Threads,
// Vars and ConLogLevel are only set from the file when the caller left them
// at their zero value, so command-line flags always take precedence. A
// missing file is not an error; any other parse failure is logged as a
// warning and the programmatic cfg is returned unchanged.
func Load(root string, cfg core.Configuration) core.Configuration {
	path := filepath.Join(root, FileName)

	var fc fileConfig
	fc.Vars = map[string]string{}
	err := gcfg.ReadFileInto(&fc, path)
	if err != nil && os.IsNotExist(err) {
		return cfg
	} else if gcfg.FatalOnly(err) != nil {
		log.Warning("ignoring malformed %s: %s", path, gcfg.FatalOnly(err))
		return cfg
	}

	if cfg.Threads == 0 && fc.Build.Threads != 0 {
		cfg.Threads = fc.Build.Threads
	}
	if cfg.ProjectRoot == "" && fc.Build.Root != "" {
		cfg.ProjectRoot = fc.Build.Root
	}
	if cfg.ConLogLevel == 0 && fc.Log.Level != "" {
		if level, ok := parseLevel(fc.Log.Level); ok {
			cfg.ConLogLevel = level
		}
	}
	if len(fc.Vars) > 0 {
		if cfg.Vars == nil {
			cfg.Vars = map[string]string{}
		}
		for k, v := range fc.Vars {
			if _, overridden := cfg.Vars[k]; !overridden {
				cfg.Vars[k] = v
			}
		}
	}
	return cfg
}

func parseLevel(s string) (core.LogLevel, bool) {
	switch s {
	case "silent":
		return core.Silent, true
	case "quiet":
		return core.Quiet, true
	case "normal":
		return core.Normal, true
	case "loud":
		return core.Loud, true
	case "chatty":
		return core.Chatty, true
	case "diag":
		return core.Diag, true
	default:
		return core.Normal, false
	}
}
