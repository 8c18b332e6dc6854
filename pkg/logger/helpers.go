package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogStage logs the completion of one pipeline stage
func LogStage(l Logger, stage string, records int, elapsed time.Duration) {
	l.DebugWithFields("Stage completed", map[string]interface{}{
		"stage":    stage,
		"records":  records,
		"duration": elapsed,
	})
}

// LogRejection logs a record dropped by normalization
func LogRejection(l Logger, index int, id, reason, detail string) {
	fields := map[string]interface{}{
		"index":  index,
		"reason": reason,
	}
	if id != "" {
		fields["post_id"] = id
	}
	if detail != "" {
		fields["detail"] = detail
	}
	l.WarnWithFields("Record rejected", fields)
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	l = l.WithField("component", component)
	if len(config) > 0 {
		l = l.WithFields(config)
	}
	l.Info("Component started")
}

// LogMetrics logs performance metrics
func LogMetrics(l Logger, operation string, metrics map[string]interface{}) {
	fields := map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}
	for k, v := range metrics {
		fields[k] = v
	}
	l.InfoWithFields("Performance metrics", fields)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
