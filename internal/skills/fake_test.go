package skills

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"skillscatalog.shikanime.studio/internal/skills/github"
)

const skillsRepoJSON = `{
	"name": "skills",
	"full_name": "anthropics/skills",
	"owner": {"login": "anthropics"},
	"html_url": "https://github.com/anthropics/skills",
	"default_branch": "main",
	"stargazers_count": 1200,
	"forks_count": 80,
	"subscribers_count": 30,
	"open_issues_count": 5,
	"language": "Python",
	"size": 512,
	"license": {"name": "Apache License 2.0"},
	"created_at": "2025-01-01T00:00:00Z",
	"pushed_at": "2025-10-01T12:00:00Z"
}`

func repoJSON(owner, name string, stars int) string {
	return fmt.Sprintf(
		`{"name":%q,"full_name":"%s/%s","owner":{"login":%q},"html_url":"https://github.com/%s/%s","default_branch":"main","stargazers_count":%d}`,
		name, owner, name, owner, owner, name, stars,
	)
}

// serveFile answers a contents request for a single file.
func serveFile(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","content":%q}`,
			base64.StdEncoding.EncodeToString([]byte(content)))
	}
}

func serveJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func serveRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-RateLimit-Limit", "60")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
	w.WriteHeader(http.StatusForbidden)
	fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
}

func newFakeGitHub(t *testing.T, mux *http.ServeMux) (*httptest.Server, *github.Client) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	return srv, github.NewClient(github.WithBaseURL(u), github.WithHTTPClient(srv.Client()))
}

// newSkillsMux serves anthropics/skills with three skill directories, a
// hidden directory and a plain file at the root.
func newSkillsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/anthropics/skills", serveJSON(skillsRepoJSON))
	mux.HandleFunc("GET /repos/anthropics/skills/contents/{$}", serveJSON(`[
		{"type":"dir","name":"pdf","path":"pdf"},
		{"type":"dir","name":"web_artifacts","path":"web_artifacts"},
		{"type":"dir","name":"broken","path":"broken"},
		{"type":"dir","name":".github","path":".github"},
		{"type":"file","name":"README.md","path":"README.md"}
	]`))
	mux.HandleFunc("GET /repos/anthropics/skills/contents/pdf/SKILL.md", serveFile(
		"---\nname: pdf\ndescription: Extract text and tables from PDF files\ncategory: Documents & Content\ntags: a, b, c, d, e, f\n---\n\n# PDF\n",
	))
	mux.HandleFunc("GET /repos/anthropics/skills/contents/web_artifacts/SKILL.md", serveFile(
		"---\nname: \"web-artifacts\"\ncategory: Web & App Development\ninstall_command: npx skills add web-artifacts\n---\n\nBuild rich HTML artifacts.\n",
	))
	mux.HandleFunc("GET /repos/anthropics/skills/contents/broken/SKILL.md", serveFile(
		"---\ndescription: no name here\n---\n",
	))
	return mux
}
