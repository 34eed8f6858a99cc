package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// GoogleEndpoint is the public web translation endpoint.
const GoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// Google calls the public Google Translate endpoint with fixed source and
// target languages.
type Google struct {
	client   *http.Client
	endpoint string
	source   string
	target   string
}

// GoogleOptions configures Google.
type GoogleOptions struct {
	client   *http.Client
	endpoint string
}

// GoogleOption applies a configuration to GoogleOptions.
type GoogleOption func(*GoogleOptions)

// WithGoogleEndpoint overrides GoogleEndpoint.
func WithGoogleEndpoint(endpoint string) GoogleOption {
	return func(o *GoogleOptions) { o.endpoint = endpoint }
}

// WithGoogleHTTPClient replaces the HTTP client.
func WithGoogleHTTPClient(c *http.Client) GoogleOption {
	return func(o *GoogleOptions) { o.client = c }
}

// NewGoogle returns an English to Japanese Google backend.
func NewGoogle(opts ...GoogleOption) *Google {
	o := GoogleOptions{endpoint: GoogleEndpoint}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Google{client: o.client, endpoint: o.endpoint, source: "en", target: "ja"}
}

func (g *Google) Name() string { return string(MethodGoogle) }

// TranslateText concatenates the translated sentences of the response, whose
// first element is a list of [translated, original, ...] segments.
func (g *Google) TranslateText(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", g.source)
	q.Set("tl", g.target)
	q.Set("dt", "t")
	q.Set("q", text)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google translate request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read google translate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google translate returned HTTP %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("google translate returned invalid JSON")
	}
	var b strings.Builder
	gjson.GetBytes(body, "0").ForEach(func(_, segment gjson.Result) bool {
		b.WriteString(segment.Get("0").String())
		return true
	})
	return b.String(), nil
}
