// Package translate turns English catalog text into Japanese through a
// pluggable backend. Translation never fails from the caller's point of view:
// any backend error or empty answer falls back to the source text.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Method selects a translation backend.
type Method string

const (
	MethodNone   Method = "none"
	MethodGoogle Method = "google"
	MethodOpenAI Method = "openai"
)

// DefaultMethod is used when TRANSLATION_METHOD is unset.
const DefaultMethod = MethodGoogle

// DefaultDelay is slept after every successful backend call.
const DefaultDelay = 500 * time.Millisecond

// ParseMethod maps a configuration value to a Method. "googletrans" is
// accepted as an alias of google.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultMethod, nil
	case "none", "off", "disabled":
		return MethodNone, nil
	case "google", "googletrans":
		return MethodGoogle, nil
	case "openai":
		return MethodOpenAI, nil
	default:
		return "", fmt.Errorf("unknown translation method %q (want none, google or openai)", s)
	}
}

// Translator translates one text field.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Backend performs a single translation request and may fail.
type Backend interface {
	Name() string
	TranslateText(ctx context.Context, text string) (string, error)
}

// Noop returns its input unchanged.
type Noop struct{}

func (Noop) Translate(_ context.Context, text string) string { return text }

// Fallback adapts a Backend into a Translator. Results are cached for the
// lifetime of the value, keyed by lowercased source text.
type Fallback struct {
	b     Backend
	delay time.Duration
	cache map[string]string
}

// FallbackOptions configures a Fallback.
type FallbackOptions struct {
	delay time.Duration
}

// FallbackOption applies a configuration to FallbackOptions.
type FallbackOption func(*FallbackOptions)

// WithDelay overrides the post-call delay.
func WithDelay(d time.Duration) FallbackOption {
	return func(o *FallbackOptions) { o.delay = d }
}

// NewFallback wraps b.
func NewFallback(b Backend, opts ...FallbackOption) *Fallback {
	o := FallbackOptions{delay: DefaultDelay}
	for _, opt := range opts {
		opt(&o)
	}
	return &Fallback{b: b, delay: o.delay, cache: make(map[string]string)}
}

// Translate returns the translation of text, or text itself on empty input,
// backend failure or an empty answer.
func (f *Fallback) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	key := strings.ToLower(text)
	if v, ok := f.cache[key]; ok {
		return v
	}
	out, err := f.b.TranslateText(ctx, text)
	if err != nil {
		slog.WarnContext(ctx, "Translation failed", "backend", f.b.Name(), "error", err)
		return text
	}
	out = strings.TrimSpace(out)
	if out == "" {
		slog.WarnContext(ctx, "Translation returned empty text", "backend", f.b.Name())
		return text
	}
	f.cache[key] = out
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	return out
}
