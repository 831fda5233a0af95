// Package cli wires up the engine's logging sinks: a console backend and
// an optional file backend, each filtering independently by level.
//
// This is deliberately a thin slice of what a full interactive CLI would
// carry (please, for comparison, also layers an interactive in-place
// progress display over this) — rich terminal UI is out of this engine's
// scope; only the two sinks SPEC_FULL.md's Configuration names are wired.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/op/go-logging.v1"

	"github.com/xake-build/xake/src/cli/logging"
	"github.com/xake-build/xake/src/core"
)

// InitLogging configures the console sink at the given level. Call this
// once, before any other package logs anything.
func InitLogging(level core.LogLevel) {
	setBackend(toLibLevel(level))
}

// InitFileLogging additionally configures a file sink at its own level.
// Per Configuration's contract, callers only invoke this when both
// FileLog and FileLogLevel are meaningful (level != Silent).
func InitFileLogging(consoleLevel core.LogLevel, logFile string, fileLevel core.LogLevel) error {
	if err := os.MkdirAll(filepath.Dir(logFile), 0775); err != nil {
		return fmt.Errorf("creating log file directory: %w", err)
	}
	file, err := os.Create(logFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	backend := logging.NewLogBackend(file, "", 0)
	fileBackend := logging.NewBackendFormatter(backend, formatter(false))
	leveled := logging.AddModuleLevel(fileBackend)
	leveled.SetLevel(toLibLevel(fileLevel), "")
	logging.SetBackend(consoleLeveled(toLibLevel(consoleLevel)), leveled)
	return nil
}

func setBackend(level logging.Level) {
	logging.SetBackend(consoleLeveled(level))
}

func consoleLeveled(level logging.Level) logging.LeveledBackend {
	backend := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), formatter(isTerminal(os.Stderr)))
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(level, "")
	return leveled
}

func formatter(coloured bool) logging.Formatter {
	format := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if coloured {
		format = "%{color}" + format + "%{color:reset}"
	}
	return logging.MustStringFormatter(format)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && (info.Mode()&os.ModeCharDevice) != 0
}

// toLibLevel maps the engine's ranked LogLevel onto go-logging's levels.
// Silent is approximated by setting CRITICAL (go-logging has no true off
// switch short of not registering a backend at all).
func toLibLevel(level core.LogLevel) logging.Level {
	switch level {
	case core.Silent:
		return logging.CRITICAL
	case core.Quiet:
		return logging.ERROR
	case core.Normal:
		return logging.WARNING
	case core.Loud:
		return logging.NOTICE
	case core.Chatty:
		return logging.INFO
	case core.Diag:
		return logging.DEBUG
	default:
		return logging.WARNING
	}
}
