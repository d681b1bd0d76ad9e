package caseload

import (
	"log/slog"

	"github.com/legalops/caseload/internal/logging"
)

// NewSlogLogger returns a Logger backed by the given slog.Logger.
func NewSlogLogger(logger *slog.Logger) Logger {
	return logging.NewSlog(logger)
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return logging.NewNop()
}
