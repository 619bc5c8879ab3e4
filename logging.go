package highs

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// logging: the leveled, printf-style log helper used throughout the package,
// backed by an injectable zerolog logger so that callers control where (and
// whether) pipeline commentary is emitted.

// Message levels accepted by log. Output is produced only for levels at or
// below the configured logLevel.
const (
	pNONE = iota // logging disabled
	pERR         // errors only
	pWARN        // warnings and errors
	pINFO        // informational pipeline progress
	pVERB        // verbose detail
)

// Package logging state. The zero default writes warnings and errors to
// stderr in console form; SetLogger and SetLogLevel override it.
var logLevel = pWARN
var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

//==============================================================================

// SetLogger injects the zerolog logger that receives all package output.
// Pass zerolog.Nop() to silence the package entirely.
func SetLogger(lg zerolog.Logger) {
	logger = lg
}

//==============================================================================

// SetLogLevel sets the maximum message level that will be emitted: 0 = none,
// 1 = errors, 2 = warnings, 3 = info, 4 = verbose. Values outside that range
// are clamped.
func SetLogLevel(level int) {
	if level < pNONE {
		level = pNONE
	}
	if level > pVERB {
		level = pVERB
	}
	logLevel = level
}

//==============================================================================

// log emits a printf-style message at the given level, honouring the
// configured package log level.
func log(level int, format string, args ...interface{}) {
	if level > logLevel || level == pNONE {
		return
	}
	msg := fmt.Sprintf(format, args...)
	switch level {
	case pERR:
		logger.Error().Msg(msg)
	case pWARN:
		logger.Warn().Msg(msg)
	case pINFO:
		logger.Info().Msg(msg)
	default:
		logger.Debug().Msg(msg)
	}
}
