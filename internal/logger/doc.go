// Package logger builds the zap loggers used across the service.
// It parses textual log levels from configuration and selects between
// JSON output for production and console output for local development.
package logger
