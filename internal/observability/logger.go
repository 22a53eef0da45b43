package observability

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/wxpipe/humidity-etl/internal/config"
)

// NewLogger builds the process logger from config. Text format uses tint
// for readable development output; the default is JSON for aggregation.
func NewLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatText {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.LogLevel,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h)
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h)
}
