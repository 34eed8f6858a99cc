package config

import (
	"io"
	"log/slog"
)

// SetupLog configures a global slog logger writing to w whose level follows
// LOG_LEVEL changes. Progress output for humans goes elsewhere; this is for
// diagnostics and warnings.
func SetupLog(cfg *Config, w io.Writer) {
	var lv slog.LevelVar
	cfg.OnLogLevelChange(func(level slog.Level) { lv.Set(level) })
	opts := &slog.HandlerOptions{Level: &lv}
	var h slog.Handler
	if cfg.GetLogFormat() == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}
