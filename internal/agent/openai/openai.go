package openai

import (
	"log/slog"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"skillscatalog.shikanime.studio/internal/config"
)

// NewClientForConfig returns an OpenAI client, or nil when OPENAI_API_KEY is
// unset. Retries are disabled; a failed call falls back to the source text.
func NewClientForConfig(cfg *config.Config) *sdk.Client {
	if cfg.GetOpenAIAPIKey() == "" {
		return nil
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.GetOpenAIAPIKey()),
		option.WithMaxRetries(0),
	}
	if u := cfg.GetOpenAIBaseURL(); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	c := sdk.NewClient(opts...)
	slog.Debug("openai client configured", "base_url", cfg.GetOpenAIBaseURL())
	return &c
}
