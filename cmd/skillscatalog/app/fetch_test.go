package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skillscatalog.shikanime.studio/internal/config"
)

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/skills", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"skills","full_name":"acme/skills","owner":{"login":"acme"},"html_url":"https://github.com/acme/skills","stargazers_count":9}`)
	})
	mux.HandleFunc("GET /repos/acme/skills/contents/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"type":"dir","name":"db_tools","path":"db_tools"}]`)
	})
	mux.HandleFunc("GET /repos/acme/skills/contents/db_tools/SKILL.md", func(w http.ResponseWriter, r *http.Request) {
		content := base64.StdEncoding.EncodeToString([]byte("---\nname: DB tools\ncategory: Database\n---\n"))
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","content":%q}`, content)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "skills.json")
	t.Setenv("GITHUB_API_URL", srv.URL)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
	t.Setenv("DSN", "")
	t.Setenv("PGHOST", "")
	t.Setenv("PGDATABASE", "")
	cfg := config.New()
	cfg.Set("SOURCE_REPO", "acme/skills")
	cfg.Set("OUTPUT_PATH", out)
	cfg.Set("TRANSLATION_METHOD", "none")

	var progress bytes.Buffer
	require.NoError(t, Fetch(context.Background(), cfg, &progress))
	assert.Contains(t, progress.String(), "Translation Method: none")
	assert.Contains(t, progress.String(), "  ✓ DB tools (データベース)")
	assert.Contains(t, progress.String(), "  データベース: 1")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "acme-db-tools"`)
}

func TestFetch_InvalidTranslationMethod(t *testing.T) {
	cfg := config.New()
	cfg.Set("TRANSLATION_METHOD", "babelfish")
	assert.Error(t, Fetch(context.Background(), cfg, &bytes.Buffer{}))
}

func TestNewMigrator_NoDatabase(t *testing.T) {
	t.Setenv("DSN", "")
	t.Setenv("PGHOST", "")
	t.Setenv("PGDATABASE", "")
	_, err := NewMigrator(context.Background(), config.New())
	assert.Error(t, err)
}
