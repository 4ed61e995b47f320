package audit

import "go.uber.org/zap"

// LogWriter is the fallback Writer used when no ClickHouse DSN is
// configured. It never blocks and never drops: zap's own core handles
// backpressure.
type LogWriter struct {
	logger *zap.Logger
}

// NewLogWriter creates a LogWriter that logs every event at info level.
func NewLogWriter(logger *zap.Logger) *LogWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogWriter{logger: logger}
}

func (w *LogWriter) Write(event *Event) {
	w.logger.Info("audit_event",
		zap.String("id", event.ID.String()),
		zap.String("tool_id", event.ToolID),
		zap.String("project_id", event.ProjectID),
		zap.String("stage", event.Stage),
		zap.String("decision", event.Decision),
		zap.String("denial_reason", event.DenialReason),
		zap.String("detail", event.Detail),
		zap.Int("exit_code", event.ExitCode),
		zap.Float64("duration_ms", event.DurationMs),
	)
}

func (w *LogWriter) Close() {}
