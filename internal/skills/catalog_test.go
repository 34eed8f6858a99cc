package skills

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
	"skillscatalog.shikanime.studio/internal/config"
	"skillscatalog.shikanime.studio/internal/database"
)

func newTestConfig(t *testing.T, apiURL string) (*config.Config, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "data", "skills.json")
	t.Setenv("GITHUB_API_URL", apiURL)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
	t.Setenv("TRANSLATION_METHOD", "none")
	t.Setenv("OUTPUT_PATH", out)
	t.Setenv("DSN", "")
	t.Setenv("PGHOST", "")
	t.Setenv("PGDATABASE", "")
	return config.New(), out
}

func TestCatalogRefresh(t *testing.T) {
	srv, _ := newFakeGitHub(t, newSkillsMux())
	cfg, out := newTestConfig(t, srv.URL)

	c, err := NewForConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()
	assert.Nil(t, c.Database())

	var progress bytes.Buffer
	records, err := c.Refresh(context.Background(), &progress)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category": "Web & アプリ開発"`)
	assert.Contains(t, progress.String(), "Successfully saved 2 skills")
	assert.Contains(t, progress.String(), "Categories:")
}

func TestCatalogRefresh_RateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/anthropics/skills", serveRateLimited)
	srv, _ := newFakeGitHub(t, mux)
	cfg, out := newTestConfig(t, srv.URL)

	c, err := NewForConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	var progress bytes.Buffer
	_, err = c.Refresh(context.Background(), &progress)
	require.Error(t, err)
	assert.Contains(t, progress.String(), "Rate limit exceeded. Set GITHUB_TOKEN environment variable.")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no file is written on a fatal error")
}

func TestCatalogPipeline_InvalidStrategy(t *testing.T) {
	cfg, _ := newTestConfig(t, "http://127.0.0.1:1")
	cfg.Set("DISCOVERY_STRATEGY", "crawl")
	c := New(cfg, nil, nil)

	_, err := c.Pipeline(nil)
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	records := []Record{
		{
			ID:             "anthropics-pdf",
			Name:           "PDF",
			NameEn:         "pdf",
			Category:       "テスト",
			CategoryEn:     "Testing",
			Author:         "anthropics",
			Stars:          3,
			UpdatedAt:      "2025-10-01",
			Tags:           []string{"a"},
			InstallCommand: ptr.To("npx pdf"),
			GitHub:         &Statistics{Contributors: ptr.To(1), OpenPullRequests: ptr.To(0)},
		},
		{ID: "anthropics-xlsx", UpdatedAt: "2025-10-02", Tags: []string{SentinelTag}},
	}
	rows, err := Rows(records)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), rows[0].UpdatedAt)
	assert.JSONEq(t, `{
		"stars": null, "forks": null, "watchers": null, "openIssues": null,
		"openPullRequests": 0, "contributors": 1, "language": null, "license": null,
		"size": null, "createdAt": null, "pushedAt": null
	}`, string(rows[0].GitHub))
	assert.Nil(t, rows[1].GitHub)

	back, err := FromRows(rows)
	require.NoError(t, err)
	assert.Equal(t, records, back)

	_, err = Rows([]Record{{ID: "x", UpdatedAt: "yesterday"}})
	assert.Error(t, err)

	_, err = FromRows([]database.Skill{{ID: "x", GitHub: []byte("{")}})
	assert.Error(t, err)
}

func TestCatalogList_FromFile(t *testing.T) {
	cfg, out := newTestConfig(t, "http://127.0.0.1:1")
	require.NoError(t, WriteFile(out, []Record{
		{ID: "a", Category: "テスト", UpdatedAt: "2025-10-01", Tags: []string{"x"}},
		{ID: "b", Category: "データベース", UpdatedAt: "2025-10-01", Tags: []string{"y"}},
		{ID: "c", Category: "テスト", UpdatedAt: "2025-10-01", Tags: []string{"z"}},
	}))
	c := New(cfg, nil, nil)

	all, err := c.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := c.List(context.Background(), "テスト", 1)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a", filtered[0].ID)
}
