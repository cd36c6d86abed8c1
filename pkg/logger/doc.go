// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package, writing JSON in production and text
// elsewhere, and can mirror records into a size-rotated log file.
package logger
