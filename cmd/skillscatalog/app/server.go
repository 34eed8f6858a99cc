package app

import (
	"context"
	"log/slog"

	"skillscatalog.shikanime.studio/internal/config"
	skillshttp "skillscatalog.shikanime.studio/internal/skills/http"
)

// Serve runs the scrape trigger on addr until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, addr string) error {
	srv, err := skillshttp.NewServerForConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srv.Close(); cerr != nil {
			slog.Warn("Error during shutdown", "error", cerr)
		}
	}()
	if cfg.GetCronSecret() == "" {
		slog.Warn("CRON_SECRET not set; /api/scrape is unauthenticated")
	}
	err = srv.ListenAndServe(ctx, addr)
	slog.Info("Server stopped")
	return err
}
