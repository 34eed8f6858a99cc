package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
	"skillscatalog.shikanime.studio/internal/agent/openai"
	"skillscatalog.shikanime.studio/internal/config"
)

// ErrMissingAPIKey is returned by Translator when no API key is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY not set")

const (
	SystemPrompt = "あなたは技術文書の翻訳を専門とする翻訳者です。英語のテキストを自然な日本語に翻訳してください。"
	UserPrompt   = "以下の英語テキストを日本語に翻訳してください：\n\n"
	Temperature  = 0.3
)

// Translator translates English text to Japanese with a chat completion.
type Translator struct {
	c     *sdk.Client
	model string
}

// NewTranslatorForConfig constructs a Translator with the configured OpenAI client and model.
func NewTranslatorForConfig(cfg *config.Config) *Translator {
	return NewTranslatorWithOpenAI(cfg, openai.NewClientForConfig(cfg))
}

// NewTranslatorWithOpenAI constructs a Translator using the provided client.
// A nil client makes every call fail with ErrMissingAPIKey.
func NewTranslatorWithOpenAI(cfg *config.Config, c *sdk.Client) *Translator {
	t := &Translator{c: c, model: cfg.GetTranslationModel()}
	slog.Debug("translator configured", "model", t.model, "client", c != nil)
	return t
}

func (t *Translator) Name() string { return "openai" }

// TranslateText returns the trimmed content of the first choice.
func (t *Translator) TranslateText(ctx context.Context, text string) (string, error) {
	if t.c == nil {
		return "", ErrMissingAPIKey
	}
	slog.DebugContext(ctx, "translation request", "model", t.model, "text_len", len(text))
	res, err := t.c.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model: shared.ChatModel(t.model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(SystemPrompt),
			sdk.UserMessage(UserPrompt + text),
		},
		Temperature: sdk.Float(Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(res.Choices[0].Message.Content), nil
}
