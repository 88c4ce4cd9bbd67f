package logger

import "fmt"

// ComponentLogger adapts the global zerolog logger to the printf-style
// interface the plugin framework expects, tagging entries with a component field
type ComponentLogger struct {
	component string
}

// ForComponent returns a component-scoped logger
func ForComponent(component string) *ComponentLogger {
	return &ComponentLogger{component: component}
}

// Debug logs a formatted debug message
func (l *ComponentLogger) Debug(msg string, args ...interface{}) {
	zlog.Debug().Str("component", l.component).Msg(fmt.Sprintf(msg, args...))
}

// Info logs a formatted info message
func (l *ComponentLogger) Info(msg string, args ...interface{}) {
	zlog.Info().Str("component", l.component).Msg(fmt.Sprintf(msg, args...))
}

// Warn logs a formatted warning message
func (l *ComponentLogger) Warn(msg string, args ...interface{}) {
	zlog.Warn().Str("component", l.component).Msg(fmt.Sprintf(msg, args...))
}

// Error logs a formatted error message
func (l *ComponentLogger) Error(msg string, args ...interface{}) {
	zlog.Error().Str("component", l.component).Msg(fmt.Sprintf(msg, args...))
}
