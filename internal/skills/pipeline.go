package skills

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	gh "github.com/google/go-github/v75/github"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"k8s.io/utils/ptr"
	"skillscatalog.shikanime.studio/internal/encoding"
	"skillscatalog.shikanime.studio/internal/skills/github"
	"skillscatalog.shikanime.studio/internal/translate"
)

// Strategy selects how candidates are discovered.
type Strategy string

const (
	// StrategyDirectory lists the top-level directories of one repository.
	StrategyDirectory Strategy = "directory"
	// StrategySearch searches code for the marker filename.
	StrategySearch Strategy = "search"
)

// ParseStrategy validates a strategy name. Empty means StrategyDirectory.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyDirectory:
		return StrategyDirectory, nil
	case StrategySearch:
		return StrategySearch, nil
	default:
		return "", fmt.Errorf("unknown discovery strategy %q (want directory or search)", s)
	}
}

// Source is the subset of the GitHub API the pipeline reads from.
type Source interface {
	GetRepository(ctx context.Context, owner, repo string) (*gh.Repository, error)
	ListContents(ctx context.Context, owner, repo, path string) ([]*gh.RepositoryContent, error)
	GetFile(ctx context.Context, owner, repo, path string, allowNotFound bool) ([]byte, error)
	SearchCode(ctx context.Context, query string) ([]*gh.CodeResult, error)
	LatestCommitDate(ctx context.Context, owner, repo, path string) (time.Time, error)
	CountContributors(ctx context.Context, owner, repo string) (int, error)
	CountOpenPullRequests(ctx context.Context, owner, repo string) (int, error)
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	strategy         Strategy
	sourceRepo       string
	marker           string
	limit            int
	fetchStats       bool
	fetchCommitDates bool
	out              io.Writer
	now              func() time.Time
}

// PipelineOption applies a configuration to PipelineOptions.
type PipelineOption func(*PipelineOptions)

// WithStrategy selects the discovery strategy.
func WithStrategy(s Strategy) PipelineOption {
	return func(o *PipelineOptions) { o.strategy = s }
}

// WithSourceRepo sets the owner/repo listed by StrategyDirectory.
func WithSourceRepo(fullName string) PipelineOption {
	return func(o *PipelineOptions) { o.sourceRepo = fullName }
}

// WithMarker sets the descriptor filename. A .json extension selects the
// manifest format.
func WithMarker(name string) PipelineOption {
	return func(o *PipelineOptions) { o.marker = name }
}

// WithLimit caps the number of candidates processed.
func WithLimit(n int) PipelineOption {
	return func(o *PipelineOptions) { o.limit = n }
}

// WithStatistics enables repository statistics.
func WithStatistics(enabled bool) PipelineOption {
	return func(o *PipelineOptions) { o.fetchStats = enabled }
}

// WithCommitDates enables the per-skill last commit lookup.
func WithCommitDates(enabled bool) PipelineOption {
	return func(o *PipelineOptions) { o.fetchCommitDates = enabled }
}

// WithProgress sets where human readable progress is written.
func WithProgress(w io.Writer) PipelineOption {
	return func(o *PipelineOptions) { o.out = w }
}

// WithClock overrides the clock used for the last-resort updatedAt.
func WithClock(now func() time.Time) PipelineOption {
	return func(o *PipelineOptions) { o.now = now }
}

// Pipeline turns discovered skill locations into records, one at a time.
type Pipeline struct {
	src   Source
	tr    translate.Translator
	opts  PipelineOptions
	stats map[string]*Statistics
}

// NewPipeline returns a Pipeline reading from src. A nil tr disables translation.
func NewPipeline(src Source, tr translate.Translator, opts ...PipelineOption) *Pipeline {
	o := PipelineOptions{
		strategy:   StrategyDirectory,
		sourceRepo: "anthropics/skills",
		marker:     "SKILL.md",
		limit:      50,
		out:        io.Discard,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if tr == nil {
		tr = translate.Noop{}
	}
	return &Pipeline{src: src, tr: tr, opts: o, stats: make(map[string]*Statistics)}
}

func (p *Pipeline) printf(format string, args ...any) {
	fmt.Fprintf(p.opts.out, format, args...)
}

// Run discovers candidates and builds a record for every candidate whose
// descriptor carries a name. It returns early only on fatal GitHub errors.
func (p *Pipeline) Run(ctx context.Context) ([]Record, error) {
	tracer := otel.Tracer("skillscatalog/skills")
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()

	candidates, err := p.Discover(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	records := make([]Record, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for i, c := range candidates {
		p.printf("Processing [%d/%d]: %s\n", i+1, len(candidates), c.Name())
		d, err := p.FetchDescriptor(ctx, c)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if d.Get("name", "") == "" {
			p.printf("  ✗ No valid %s found\n", p.opts.marker)
			continue
		}
		id := RecordID(c.Owner, c.Name())
		if seen[id] {
			slog.WarnContext(ctx, "Skipping skill with duplicate id", "id", id, "repository", c.Repository.GetFullName(), "path", c.Path)
			p.printf("  ✗ Duplicate id %s\n", id)
			continue
		}
		seen[id] = true
		var stats *Statistics
		if p.opts.fetchStats {
			stats = p.Statistics(ctx, c)
		}
		r := BuildRecord(ctx, c, d, stats, p.UpdatedAt(ctx, c), p.tr)
		records = append(records, r)
		p.printf("  ✓ %s (%s)\n", r.Name, r.Category)
	}
	span.SetAttributes(attribute.Int("records_len", len(records)))
	return records, nil
}

// Discover lists candidates with the configured strategy, capped at the limit.
func (p *Pipeline) Discover(ctx context.Context) ([]Candidate, error) {
	tracer := otel.Tracer("skillscatalog/skills")
	ctx, span := tracer.Start(ctx, "Pipeline.Discover")
	span.SetAttributes(attribute.String("strategy", string(p.opts.strategy)))
	defer span.End()

	var (
		candidates []Candidate
		err        error
	)
	switch p.opts.strategy {
	case StrategySearch:
		candidates, err = p.discoverBySearch(ctx)
	default:
		candidates, err = p.discoverByDirectory(ctx)
	}
	if err != nil {
		return nil, err
	}
	if p.opts.limit > 0 && len(candidates) > p.opts.limit {
		candidates = candidates[:p.opts.limit]
	}
	span.SetAttributes(attribute.Int("candidates_len", len(candidates)))
	return candidates, nil
}

func (p *Pipeline) discoverByDirectory(ctx context.Context) ([]Candidate, error) {
	owner, name, err := ParseRepository(p.opts.sourceRepo)
	if err != nil {
		return nil, err
	}
	p.printf("Fetching %s/%s repository...\n", owner, name)
	repo, err := p.src.GetRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	p.printf("Repository: %s\nStars: %d\n\n", repo.GetFullName(), repo.GetStargazersCount())

	entries, err := p.src.ListContents(ctx, owner, name, "")
	if err != nil {
		return nil, err
	}
	var candidates []Candidate
	for _, e := range entries {
		if e.GetType() != "dir" || strings.HasPrefix(e.GetName(), ".") {
			continue
		}
		candidates = append(candidates, newCandidate(repo, e.GetName()))
	}
	p.printf("Found %d potential skill directories\n\n", len(candidates))
	return candidates, nil
}

func (p *Pipeline) discoverBySearch(ctx context.Context) ([]Candidate, error) {
	query := "filename:" + p.opts.marker
	p.printf("Searching code for %s...\n", query)
	hits, err := p.src.SearchCode(ctx, query)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(hits))
	var candidates []Candidate
	for _, hit := range hits {
		if p.opts.limit > 0 && len(candidates) >= p.opts.limit {
			break
		}
		r := hit.GetRepository()
		full := r.GetFullName()
		if full == "" || seen[full] {
			continue
		}
		seen[full] = true
		owner, name, _ := strings.Cut(full, "/")
		repo, err := p.src.GetRepository(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		dir := path.Dir(hit.GetPath())
		if dir == "." {
			dir = ""
		}
		candidates = append(candidates, newCandidate(repo, dir))
	}
	p.printf("Found %d repositories containing %s\n\n", len(candidates), p.opts.marker)
	return candidates, nil
}

// FetchDescriptor reads and parses the marker file of c. A missing or
// undecodable file yields an empty descriptor; only fatal GitHub errors are
// returned.
//
// Front-matter without a description takes the first paragraph of the
// Markdown body instead. Earlier versions of the fetcher left descriptionEn
// empty in that case, so those records differ from their output.
func (p *Pipeline) FetchDescriptor(ctx context.Context, c Candidate) (Descriptor, error) {
	tracer := otel.Tracer("skillscatalog/skills")
	ctx, span := tracer.Start(ctx, "Pipeline.FetchDescriptor")
	span.SetAttributes(
		attribute.String("repository", c.Repository.GetFullName()),
		attribute.String("path", c.Path),
	)
	defer span.End()

	file := path.Join(c.Path, p.opts.marker)
	content, err := p.src.GetFile(ctx, c.Owner, c.Repo(), file, true)
	if errors.Is(err, github.ErrMalformedContent) {
		slog.WarnContext(ctx, "Could not decode descriptor", "file", file, "error", err)
		return Descriptor{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if content == nil {
		slog.WarnContext(ctx, "Descriptor not found", "repository", c.Repository.GetFullName(), "file", file)
		return Descriptor{}, nil
	}

	if strings.EqualFold(path.Ext(p.opts.marker), ".json") {
		d, err := encoding.UnmarshalManifest(content)
		if err != nil {
			slog.WarnContext(ctx, "Could not parse manifest", "file", file, "error", err)
			return Descriptor{}, nil
		}
		return d, nil
	}

	d, body, err := encoding.UnmarshalFrontMatter(content)
	if err != nil {
		slog.WarnContext(ctx, "Could not parse front-matter", "file", file, "error", err)
		return Descriptor{}, nil
	}
	if d["description"] == "" {
		if summary, err := encoding.Summary(body); err == nil && summary != "" {
			d["description"] = summary
		}
	}
	return d, nil
}

// Statistics returns the repository signals of c, fetched once per
// repository for the lifetime of the pipeline.
func (p *Pipeline) Statistics(ctx context.Context, c Candidate) *Statistics {
	key := c.Repository.GetFullName()
	if s, ok := p.stats[key]; ok {
		return s
	}
	repo := c.Repository
	s := &Statistics{
		Stars:      repo.StargazersCount,
		Forks:      repo.ForksCount,
		Watchers:   repo.SubscribersCount,
		OpenIssues: repo.OpenIssuesCount,
		Language:   repo.Language,
		Size:       repo.Size,
	}
	if s.Watchers == nil {
		s.Watchers = repo.WatchersCount
	}
	if l := repo.GetLicense(); l != nil && l.Name != nil {
		s.License = l.Name
	}
	if t := repo.GetCreatedAt(); !t.IsZero() {
		s.CreatedAt = ptr.To(t.UTC().Format(time.RFC3339))
	}
	if t := repo.GetPushedAt(); !t.IsZero() {
		s.PushedAt = ptr.To(t.UTC().Format(time.RFC3339))
	}

	if n, err := p.src.CountContributors(ctx, c.Owner, c.Repo()); err != nil {
		slog.WarnContext(ctx, "Could not count contributors", "repository", key, "error", err)
	} else {
		s.Contributors = ptr.To(n)
	}
	if n, err := p.src.CountOpenPullRequests(ctx, c.Owner, c.Repo()); err != nil {
		slog.WarnContext(ctx, "Could not count open pull requests", "repository", key, "error", err)
	} else {
		s.OpenPullRequests = ptr.To(n)
	}
	p.stats[key] = s
	return s
}

// UpdatedAt resolves the record date: last commit touching the skill when
// enabled, then the repository push date, then today.
func (p *Pipeline) UpdatedAt(ctx context.Context, c Candidate) string {
	if p.opts.fetchCommitDates {
		t, err := p.src.LatestCommitDate(ctx, c.Owner, c.Repo(), c.Path)
		if err == nil && !t.IsZero() {
			return t.UTC().Format(time.DateOnly)
		}
		if err != nil {
			slog.WarnContext(ctx, "Could not fetch commit date", "repository", c.Repository.GetFullName(), "path", c.Path, "error", err)
		}
	}
	if t := c.Repository.GetPushedAt(); !t.IsZero() {
		return t.UTC().Format(time.DateOnly)
	}
	return p.opts.now().Format(time.DateOnly)
}
