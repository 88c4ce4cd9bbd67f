package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var std zerolog.Logger

// Init initializes the printf-style global logger with sane defaults.
// Call InitStructured afterwards to switch output format per environment.
func Init() {
	std = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Info logs a formatted info message
func Info(format string, args ...interface{}) {
	std.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a formatted warning message
func Warn(format string, args ...interface{}) {
	std.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs a formatted error message
func Error(format string, args ...interface{}) {
	std.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs a formatted debug message
func Debug(format string, args ...interface{}) {
	std.Debug().Msg(fmt.Sprintf(format, args...))
}

// Fatal logs a formatted message and exits
func Fatal(format string, args ...interface{}) {
	std.Fatal().Msg(fmt.Sprintf(format, args...))
}
