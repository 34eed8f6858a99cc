package translate

import (
	"log/slog"

	"skillscatalog.shikanime.studio/internal/agent"
	"skillscatalog.shikanime.studio/internal/config"
)

// NewForConfig builds the Translator selected by TRANSLATION_METHOD.
func NewForConfig(cfg *config.Config) (Translator, Method, error) {
	m, err := ParseMethod(cfg.GetTranslationMethod())
	if err != nil {
		return nil, "", err
	}
	switch m {
	case MethodOpenAI:
		if cfg.GetOpenAIAPIKey() == "" {
			slog.Warn("OPENAI_API_KEY not set; texts will be left untranslated")
		}
		return NewFallback(agent.NewTranslatorForConfig(cfg)), m, nil
	case MethodGoogle:
		return NewFallback(NewGoogle()), m, nil
	default:
		return Noop{}, m, nil
	}
}
