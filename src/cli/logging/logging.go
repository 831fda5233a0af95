// Package logging contains the singleton logger used globally across the
// engine. It deliberately has little else since it's a dependency
// everywhere; module-specific loggers (build, worker, ...) wrap this with
// their own prefixed MustGetLogger calls if they want one.
package logging

import (
	"gopkg.in/op/go-logging.v1"
)

// Log is the singleton logger instance. We never vary levels per-module
// and don't log module names, so one logger for the whole process avoids
// any risk of races setting them up independently.
var Log = logging.MustGetLogger("xake")

// Level re-exports the underlying library type.
type Level = logging.Level

// Re-exports of the levels the underlying library supports. The engine's
// own core.LogLevel (Silent..Diag) maps onto these in package cli.
const (
	CRITICAL = logging.CRITICAL
	ERROR    = logging.ERROR
	WARNING  = logging.WARNING
	NOTICE   = logging.NOTICE
	INFO     = logging.INFO
	DEBUG    = logging.DEBUG
)
