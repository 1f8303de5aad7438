// Package logging defines the leveled logger contract used by the batch
// runner and CLI, plus a no-op implementation and module-scoped helpers.
package logging

import (
	"context"
	"maps"
	"strings"
)

// Logger is the leveled, structured logger used outside the conversion
// engine. Args are alternating key/value pairs.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger is implemented by loggers that can carry structured fields.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// Provider hands out named loggers.
type Provider interface {
	GetLogger(name string) Logger
}

const (
	rootModule     = "dokumd"
	BatchModule    = "dokumd.batch"
	ManifestModule = "dokumd.manifest"
)

// ModuleLogger returns a logger scoped to module, tagged with a "module"
// field. A nil provider yields a no-op logger.
func ModuleLogger(provider Provider, module string) Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{"module": module})
}

// WithFields attaches fields when the logger supports them. The map is
// copied so callers may reuse it.
func WithFields(logger Logger, fields map[string]any) Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// NoOp returns a logger that drops every entry.
func NoOp() Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) Logger {
	return n
}
