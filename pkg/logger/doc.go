// Package logger is a thin factory over log/slog with environment presets.
//
// Production defaults to JSON at info level for log aggregation; development
// switches to human-readable text at debug level. Static attributes such as
// service name are attached at construction so every record carries them.
package logger
