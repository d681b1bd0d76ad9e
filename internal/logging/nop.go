package logging

import "github.com/legalops/caseload/types"

// NopLogger implements a no-op logger that discards all messages.
//
// Used as the default so components never need nil checks.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (l *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (l *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (l *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (l *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message without exiting.
//
// Unlike real loggers, the no-op Fatal does not terminate the process; a
// silent logger should never decide process lifecycle.
func (l *NopLogger) Fatal(_ string, _ ...any) {}
