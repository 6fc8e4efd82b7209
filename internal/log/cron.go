package log

import "log/slog"

// CronLogger adapts a slog.Logger to the robfig/cron Logger interface.
type CronLogger struct {
	l *slog.Logger
}

func NewCronLogger(l *slog.Logger) CronLogger {
	if l == nil {
		l = slog.Default()
	}
	return CronLogger{l: l.With(FieldComponent, ComponentCron)}
}

// Info is demoted to debug: cron reports every wake-up.
func (c CronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append([]any{FieldError, err}, keysAndValues...)...)
}
