package logger

import (
	"io"
	"log/slog"
	"os"

	"recfetch/internal/config"
)

// SetupDefault настраивает slog по умолчанию: JSON в stdout, или текст, если cfg.Plaintext.
func SetupDefault(cfg config.Logger) {
	slog.SetDefault(New(os.Stdout, cfg))
}

func New(w io.Writer, cfg config.Logger) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Plaintext {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
