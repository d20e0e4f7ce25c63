package core

import (
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Level   string
	Message string
	Fields  map[string]any
}

// RecordingLogger captures log calls so tests can assert on them. Not safe
// for concurrent use.
type RecordingLogger struct {
	Records []LogRecord
}

// NewRecordingLogger creates an empty recording logger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) record(level, message string, fields map[string]any) {
	l.Records = append(l.Records, LogRecord{Level: level, Message: message, Fields: fields})
}

// Debug records a debug call.
func (l *RecordingLogger) Debug(message string, fields map[string]any) {
	l.record("debug", message, fields)
}

// Info records an info call.
func (l *RecordingLogger) Info(message string, fields map[string]any) {
	l.record("info", message, fields)
}

// Warn records a warn call.
func (l *RecordingLogger) Warn(message string, fields map[string]any) {
	l.record("warn", message, fields)
}

// Error records an error call.
func (l *RecordingLogger) Error(message string, fields map[string]any) {
	l.record("error", message, fields)
}

// Flush is a no-op.
func (l *RecordingLogger) Flush() error {
	return nil
}

// Messages returns the messages recorded at the given level.
func (l *RecordingLogger) Messages(level string) []string {
	var out []string
	for _, r := range l.Records {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}
	return out
}

var _ coreport.Logger = (*RecordingLogger)(nil)
