package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v75/github"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// UserAgent identifies this tool to the GitHub API.
const UserAgent = "skillsmp-jp-fetcher"

const (
	// DefaultContributors is reported when the contributors listing carries
	// no pagination metadata.
	DefaultContributors = 1
	// DefaultOpenPullRequests is reported when the pulls listing carries no
	// pagination metadata.
	DefaultOpenPullRequests = 0
	// SearchPageSize is the number of code search hits requested at once.
	SearchPageSize = 100
)

// NewGitHubLimiter returns a rate limiter tuned for authenticated or unauthenticated GitHub API usage.
// The whole hourly quota is available as burst.
func NewGitHubLimiter(authenticated bool) *rate.Limiter {
	if authenticated {
		slog.Debug("Created authenticated GitHub rate limiter", "rate", "5000 requests/hour", "burst", 5000)
		return rate.NewLimiter(rate.Every(time.Hour/5000), 5000)
	}
	slog.Debug("Created unauthenticated GitHub rate limiter", "rate", "60 requests/hour", "burst", 60)
	return rate.NewLimiter(rate.Every(time.Hour/60), 60)
}

// Client wraps the GitHub API client with rate limiting and error classification.
type Client struct {
	c *github.Client
	l *rate.Limiter
}

// GitHubClientOptions configures the GitHub client.
type GitHubClientOptions struct {
	token   string
	limiter *rate.Limiter
	baseURL *url.URL
	http    *http.Client
}

// GitHubClientOption applies a configuration to GitHubClientOptions.
type GitHubClientOption func(*GitHubClientOptions)

// WithToken sets the personal access token for authenticated requests.
func WithToken(token string) GitHubClientOption {
	return func(o *GitHubClientOptions) { o.token = token }
}

// WithLimiter sets the rate limiter used for API calls.
func WithLimiter(l *rate.Limiter) GitHubClientOption {
	return func(o *GitHubClientOptions) { o.limiter = l }
}

// WithBaseURL points the client at another API root. The URL must end with a slash.
func WithBaseURL(u *url.URL) GitHubClientOption {
	return func(o *GitHubClientOptions) { o.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) GitHubClientOption {
	return func(o *GitHubClientOptions) { o.http = c }
}

// NewClient constructs a GitHub Client with the given options.
func NewClient(opts ...GitHubClientOption) *Client {
	var o GitHubClientOptions
	for _, opt := range opts {
		opt(&o)
	}
	hc := o.http
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	c := github.NewClient(hc)
	if o.token != "" {
		slog.Info("Using authenticated GitHub client")
		c = c.WithAuthToken(o.token)
	} else {
		slog.Warn("Using unauthenticated GitHub client (rate limited)")
	}
	c.UserAgent = UserAgent
	if o.baseURL != nil {
		c.BaseURL = o.baseURL
	}
	return &Client{c: c, l: o.limiter}
}

func (c *Client) wait(ctx context.Context) error {
	if c.l == nil {
		return nil
	}
	if err := c.l.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return nil
}

// GetRepository returns the metadata of owner/repo.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	r, _, err := c.c.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, classify(err, "get repository %s/%s", owner, repo)
	}
	return r, nil
}

// ListContents lists the entries of a directory. An empty path lists the repository root.
func (c *Client) ListContents(ctx context.Context, owner, repo, path string) ([]*github.RepositoryContent, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	_, dir, _, err := c.c.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, classify(err, "list contents of %s/%s/%s", owner, repo, path)
	}
	return dir, nil
}

// GetFile retrieves and decodes a file. With allowNotFound a missing file yields
// (nil, nil) instead of ErrNotFound. Content that cannot be decoded is reported
// as ErrMalformedContent.
func (c *Client) GetFile(ctx context.Context, owner, repo, path string, allowNotFound bool) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	file, _, _, err := c.c.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		err = classify(err, "get file %s/%s/%s", owner, repo, path)
		if allowNotFound && errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("%w: %s/%s/%s is a directory", ErrMalformedContent, owner, repo, path)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s/%s: %v", ErrMalformedContent, owner, repo, path, err)
	}
	return []byte(content), nil
}

// SearchCode runs a code search and returns the first page of hits.
func (c *Client) SearchCode(ctx context.Context, query string) ([]*github.CodeResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, _, err := c.c.Search.Code(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: SearchPageSize},
	})
	if err != nil {
		return nil, classify(err, "search code %q", query)
	}
	return res.CodeResults, nil
}

// LatestCommitDate returns the date of the newest commit touching path.
func (c *Client) LatestCommitDate(ctx context.Context, owner, repo, path string) (time.Time, error) {
	if err := c.wait(ctx); err != nil {
		return time.Time{}, err
	}
	commits, _, err := c.c.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		Path:        path,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return time.Time{}, classify(err, "list commits of %s/%s/%s", owner, repo, path)
	}
	if len(commits) == 0 {
		return time.Time{}, fmt.Errorf("%w: no commits for %s/%s/%s", ErrNotFound, owner, repo, path)
	}
	commit := commits[0].GetCommit()
	if d := commit.GetCommitter().GetDate(); !d.IsZero() {
		return d.Time, nil
	}
	return commit.GetAuthor().GetDate().Time, nil
}

// CountContributors approximates the contributor count by the last page number
// of a one-per-page listing. Without pagination metadata it returns DefaultContributors.
func (c *Client) CountContributors(ctx context.Context, owner, repo string) (int, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	_, resp, err := c.c.Repositories.ListContributors(ctx, owner, repo, &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, classify(err, "list contributors of %s/%s", owner, repo)
	}
	return lastPageOr(resp, DefaultContributors), nil
}

// CountOpenPullRequests approximates the open pull request count the same way
// as CountContributors. Without pagination metadata it returns DefaultOpenPullRequests.
func (c *Client) CountOpenPullRequests(ctx context.Context, owner, repo string) (int, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	_, resp, err := c.c.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, classify(err, "list pull requests of %s/%s", owner, repo)
	}
	return lastPageOr(resp, DefaultOpenPullRequests), nil
}

// RateLimits reports the core quota; used by the serve health check.
func (c *Client) RateLimits(ctx context.Context) (*github.Rate, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	limits, _, err := c.c.RateLimit.Get(ctx)
	if err != nil {
		return nil, classify(err, "get rate limits")
	}
	return limits.GetCore(), nil
}

func lastPageOr(resp *github.Response, def int) int {
	if resp == nil || resp.LastPage == 0 {
		return def
	}
	return resp.LastPage
}
