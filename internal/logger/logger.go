// Package logger hands out the process-wide zerolog logger for the bank
// simulator. Every package grabs the same instance, so the level pinned by
// the binaries (or disabled by the tests) applies everywhere at once.
package logger

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	Log  zerolog.Logger
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Sub-second timestamps matter here: door dwell and travel delays in a
// simulation run are tens of milliseconds apart.
func newConsoleLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = timeFormat
	writer := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: timeFormat,
	}
	return zerolog.New(writer).With().Timestamp().Logger()
}

// GetLoggerConfigured pins the global level and returns the shared logger.
// The first accessor wins: call this from main (or with zerolog.Disabled
// from tests) before any package calls GetLogger.
func GetLoggerConfigured(level zerolog.Level) *zerolog.Logger {
	once.Do(func() {
		Log = newConsoleLogger()
		zerolog.SetGlobalLevel(level)
	})
	return &Log
}

// GetLogger returns the shared logger, building it on first use.
func GetLogger() *zerolog.Logger {
	once.Do(func() {
		Log = newConsoleLogger()
	})
	return &Log
}
