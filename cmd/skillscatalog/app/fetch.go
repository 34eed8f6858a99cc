package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"skillscatalog.shikanime.studio/internal/config"
	"skillscatalog.shikanime.studio/internal/skills"
	"skillscatalog.shikanime.studio/internal/translate"
)

// Fetch runs the pipeline once, printing progress and the category tally to out.
func Fetch(ctx context.Context, cfg *config.Config, out io.Writer) error {
	fmt.Fprintln(out, "Claude Skills Data Fetcher with Auto-Translation")
	fmt.Fprintln(out, "==================================================")
	method, err := translate.ParseMethod(cfg.GetTranslationMethod())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Translation Method: %s\n", method)
	if method == translate.MethodOpenAI {
		status := "Not Set"
		if cfg.GetOpenAIAPIKey() != "" {
			status = "Set"
		}
		fmt.Fprintf(out, "OpenAI API Key: %s\n", status)
	}
	fmt.Fprintf(out, "Discovery Strategy: %s\n\n", cfg.GetDiscoveryStrategy())

	c, err := skills.NewForConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			slog.Warn("Error during shutdown", "error", cerr)
		}
	}()

	_, err = c.Refresh(ctx, out)
	return err
}
