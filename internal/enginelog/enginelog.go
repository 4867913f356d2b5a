// Package enginelog provides the structured logger shared by the four
// engine packages (corobus, shell, userfs, chat).
//
// Every engine accepts a *Logger as an optional configuration field; a nil
// Logger is valid and produces no output, so packages never require a
// logger to function.
package enginelog

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the concrete logger type used across the engines.
type Logger = logiface.Logger[*stumpy.Event]

// New builds a Logger writing newline-delimited JSON to w.
func New(w io.Writer) *Logger {
	return stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(w)))
}

// Default returns a Logger writing to os.Stderr at the informational level.
func Default() *Logger {
	return New(os.Stderr)
}

// Debug logs a debug-level message with fields if l is non-nil; it is a
// no-op otherwise, so callers never need a nil check of their own.
func Debug(l *Logger, msg string, fields ...Field) {
	if l == nil {
		return
	}
	emit(l.Debug(), msg, fields)
}

// Info logs an informational-level message with fields if l is non-nil.
func Info(l *Logger, msg string, fields ...Field) {
	if l == nil {
		return
	}
	emit(l.Info(), msg, fields)
}

// Warn logs a warning-level message with fields if l is non-nil.
func Warn(l *Logger, msg string, fields ...Field) {
	if l == nil {
		return
	}
	emit(l.Warning(), msg, fields)
}

// Error logs an error-level message with fields if l is non-nil.
func Error(l *Logger, msg string, err error, fields ...Field) {
	if l == nil {
		return
	}
	b := l.Err()
	if err != nil {
		b = b.Err(err)
	}
	emit(b, msg, fields)
}

func emit(b *logiface.Builder[*stumpy.Event], msg string, fields []Field) {
	for _, f := range fields {
		f(b)
	}
	b.Log(msg)
}

// Field applies one structured field to a builder; see Str, Int.
type Field func(b *logiface.Builder[*stumpy.Event])

// Str adds a string field.
func Str(key, val string) Field {
	return func(b *logiface.Builder[*stumpy.Event]) { b.Str(key, val) }
}

// Int adds an integer field.
func Int(key string, val int) Field {
	return func(b *logiface.Builder[*stumpy.Event]) { b.Int(key, val) }
}
