package logger

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// Context возвращает контекст с логгером, который достаётся через FromContext.
// Логгер переживает context.WithoutCancel, поэтому фоновая загрузка пишет
// в лог с reqID запроса, который её запустил.
func Context(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return log
	}
	return slog.Default()
}
