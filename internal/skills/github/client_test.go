package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	return NewClient(WithBaseURL(u), WithHTTPClient(srv.Client()))
}

func TestGetFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/contents/pdf/SKILL.md", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		content := base64.StdEncoding.EncodeToString([]byte("---\nname: pdf\n---\n"))
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","name":"SKILL.md","path":"pdf/SKILL.md","content":%q}`, content)
	})
	mux.HandleFunc("GET /repos/o/r/contents/bad/SKILL.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"file","encoding":"base64","name":"SKILL.md","path":"bad/SKILL.md","content":"%%%"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	got, err := c.GetFile(ctx, "o", "r", "pdf/SKILL.md", false)
	require.NoError(t, err)
	assert.Equal(t, "---\nname: pdf\n---\n", string(got))

	got, err = c.GetFile(ctx, "o", "r", "missing/SKILL.md", true)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = c.GetFile(ctx, "o", "r", "missing/SKILL.md", false)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetFile(ctx, "o", "r", "bad/SKILL.md", true)
	assert.ErrorIs(t, err, ErrMalformedContent)
}

func TestGetRepository_RateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
	})
	c := newTestClient(t, mux)

	_, err := c.GetRepository(context.Background(), "o", "r")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestListContents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/contents/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"type":"dir","name":"pdf","path":"pdf"},{"type":"file","name":"README.md","path":"README.md"}]`)
	})
	c := newTestClient(t, mux)

	entries, err := c.ListContents(context.Background(), "o", "r", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "dir", entries[0].GetType())
	assert.Equal(t, "pdf", entries[0].GetName())
}

func TestLatestCommitDate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pdf", r.URL.Query().Get("path"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[{"sha":"abc","commit":{"committer":{"date":"2025-09-15T08:00:00Z"}}}]`)
	})
	c := newTestClient(t, mux)

	got, err := c.LatestCommitDate(context.Background(), "o", "r", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-15", got.Format(time.DateOnly))
}

func TestCountsFromPagination(t *testing.T) {
	tests := []struct {
		name             string
		link             bool
		wantContributors int
		wantPulls        int
	}{
		{name: "last page present", link: true, wantContributors: 42, wantPulls: 7},
		{name: "no pagination header", link: false, wantContributors: DefaultContributors, wantPulls: DefaultOpenPullRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /repos/o/r/contributors", func(w http.ResponseWriter, r *http.Request) {
				if tt.link {
					w.Header().Set("Link", `<https://api.github.com/repositories/1/contributors?per_page=1&page=2>; rel="next", <https://api.github.com/repositories/1/contributors?per_page=1&page=42>; rel="last"`)
				}
				fmt.Fprint(w, `[{"login":"someone","contributions":3}]`)
			})
			mux.HandleFunc("GET /repos/o/r/pulls", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "open", r.URL.Query().Get("state"))
				if tt.link {
					w.Header().Set("Link", `<https://api.github.com/repositories/1/pulls?state=open&per_page=1&page=7>; rel="last"`)
				}
				fmt.Fprint(w, `[]`)
			})
			c := newTestClient(t, mux)
			ctx := context.Background()

			contributors, err := c.CountContributors(ctx, "o", "r")
			require.NoError(t, err)
			assert.Equal(t, tt.wantContributors, contributors)

			pulls, err := c.CountOpenPullRequests(ctx, "o", "r")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPulls, pulls)
		})
	}
}

func TestSearchCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/code", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "filename:SKILL.md", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"total_count":1,"items":[{"name":"SKILL.md","path":"a/SKILL.md","repository":{"full_name":"o/r","name":"r","owner":{"login":"o"}}}]}`)
	})
	c := newTestClient(t, mux)

	hits, err := c.SearchCode(context.Background(), "filename:SKILL.md")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "o/r", hits[0].GetRepository().GetFullName())
	assert.Equal(t, "a/SKILL.md", hits[0].GetPath())
}

func TestNewGitHubLimiter(t *testing.T) {
	assert.Equal(t, 5000, NewGitHubLimiter(true).Burst())
	assert.Equal(t, 60, NewGitHubLimiter(false).Burst())
}

func TestRateLimits_UsesLimiter(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rate_limit", func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"resources":{"core":{"limit":60,"remaining":59,"reset":1700000000}}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)

	open := NewClient(WithBaseURL(u), WithHTTPClient(srv.Client()), WithLimiter(rate.NewLimiter(rate.Inf, 1)))
	core, err := open.RateLimits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 59, core.Remaining)
	assert.Equal(t, 1, calls)

	exhausted := NewClient(WithBaseURL(u), WithHTTPClient(srv.Client()), WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 0)))
	_, err = exhausted.RateLimits(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
