package skills

import (
	"path"
	"strings"

	gh "github.com/google/go-github/v75/github"
)

// Candidate is one discovered skill location awaiting its descriptor.
type Candidate struct {
	Repository *gh.Repository
	// Path is the directory holding the descriptor, relative to the
	// repository root. Empty means the root itself.
	Path  string
	Owner string
	Stars int
}

func newCandidate(repo *gh.Repository, dir string) Candidate {
	return Candidate{
		Repository: repo,
		Path:       dir,
		Owner:      repo.GetOwner().GetLogin(),
		Stars:      repo.GetStargazersCount(),
	}
}

// Name returns the skill directory name, or the repository name for a
// descriptor at the repository root.
func (c Candidate) Name() string {
	if c.Path == "" {
		return c.Repository.GetName()
	}
	return path.Base(c.Path)
}

// Repo returns the repository name without its owner.
func (c Candidate) Repo() string { return c.Repository.GetName() }

// GitHubURL links to the skill directory on the default branch.
func (c Candidate) GitHubURL() string {
	u := strings.TrimSuffix(c.Repository.GetHTMLURL(), "/")
	if c.Path == "" {
		return u
	}
	branch := c.Repository.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}
	return u + "/tree/" + branch + "/" + c.Path
}

// Descriptor holds the flat key/value metadata of a skill.
type Descriptor map[string]string

// Get returns the value of key, or def when the key is absent or blank.
func (d Descriptor) Get(key, def string) string {
	if v := strings.TrimSpace(d[key]); v != "" {
		return v
	}
	return def
}

// Statistics carries repository signals. A nil field was not fetched or
// could not be fetched; it never means zero.
type Statistics struct {
	Stars            *int    `json:"stars"`
	Forks            *int    `json:"forks"`
	Watchers         *int    `json:"watchers"`
	OpenIssues       *int    `json:"openIssues"`
	OpenPullRequests *int    `json:"openPullRequests"`
	Contributors     *int    `json:"contributors"`
	Language         *string `json:"language"`
	License          *string `json:"license"`
	Size             *int    `json:"size"`
	CreatedAt        *string `json:"createdAt"`
	PushedAt         *string `json:"pushedAt"`
}

// Record is the published shape of one skill.
type Record struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	NameEn         string      `json:"nameEn"`
	Description    string      `json:"description"`
	DescriptionEn  string      `json:"descriptionEn"`
	Category       string      `json:"category"`
	CategoryEn     string      `json:"categoryEn"`
	Author         string      `json:"author"`
	Stars          int         `json:"stars"`
	Downloads      *int        `json:"downloads"`
	UpdatedAt      string      `json:"updatedAt"`
	Tags           []string    `json:"tags"`
	GitHubURL      string      `json:"githubUrl"`
	InstallCommand *string     `json:"installCommand"`
	GitHub         *Statistics `json:"github"`
}
