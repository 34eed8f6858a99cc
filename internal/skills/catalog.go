package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"skillscatalog.shikanime.studio/internal/config"
	"skillscatalog.shikanime.studio/internal/database"
	"skillscatalog.shikanime.studio/internal/skills/github"
	"skillscatalog.shikanime.studio/internal/translate"
)

// Catalog aggregates the clients needed to refresh the skills catalog.
type Catalog struct {
	cfg  *config.Config
	gh   *github.Client
	tr   translate.Translator
	db   *database.Database
	opts CatalogOptions
}

// CatalogOptions holds configuration for initializing a Catalog.
type CatalogOptions struct {
	github   []github.GitHubClientOption
	pipeline []PipelineOption
}

// CatalogOption applies a configuration to CatalogOptions.
type CatalogOption func(*CatalogOptions)

// WithGitHubOptions forwards GitHub client options into the Catalog configuration.
func WithGitHubOptions(opts ...github.GitHubClientOption) CatalogOption {
	return func(o *CatalogOptions) { o.github = append(o.github, opts...) }
}

// WithPipelineOptions appends options applied after the configured ones.
func WithPipelineOptions(opts ...PipelineOption) CatalogOption {
	return func(o *CatalogOptions) { o.pipeline = append(o.pipeline, opts...) }
}

// NewForConfig wires the GitHub client, the translator and, when configured,
// the PostgreSQL sink.
func NewForConfig(ctx context.Context, cfg *config.Config, opts ...CatalogOption) (*Catalog, error) {
	token := cfg.GetGitHubToken()
	base := []CatalogOption{
		WithGitHubOptions(
			github.WithToken(token),
			github.WithLimiter(github.NewGitHubLimiter(token != "")),
		),
	}
	if raw := cfg.GetGitHubBaseURL(); raw != "" {
		u, err := url.Parse(strings.TrimSuffix(raw, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GITHUB_API_URL: %w", err)
		}
		base = append(base, WithGitHubOptions(github.WithBaseURL(u)))
	}
	tr, _, err := translate.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	var db *database.Database
	if cfg.DatabaseEnabled() {
		if db, err = database.NewForConfig(ctx, cfg); err != nil {
			return nil, err
		}
	}
	return New(cfg, tr, db, append(base, opts...)...), nil
}

// New constructs a Catalog. db may be nil to only write the JSON file.
func New(cfg *config.Config, tr translate.Translator, db *database.Database, opts ...CatalogOption) *Catalog {
	var o CatalogOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Catalog{
		cfg:  cfg,
		gh:   github.NewClient(o.github...),
		tr:   tr,
		db:   db,
		opts: o,
	}
}

// Database returns the configured sink, or nil.
func (c *Catalog) Database() *database.Database { return c.db }

// Pipeline builds a pipeline from the current configuration. Settings are
// read on every call so flag overrides and reloads apply.
func (c *Catalog) Pipeline(out io.Writer) (*Pipeline, error) {
	strategy, err := ParseStrategy(c.cfg.GetDiscoveryStrategy())
	if err != nil {
		return nil, err
	}
	opts := []PipelineOption{
		WithStrategy(strategy),
		WithSourceRepo(c.cfg.GetSourceRepo()),
		WithMarker(c.cfg.GetSearchMarker()),
		WithLimit(c.cfg.GetLimit()),
		WithStatistics(c.cfg.GetFetchStats()),
		WithCommitDates(c.cfg.GetFetchCommitDates()),
		WithProgress(out),
	}
	return NewPipeline(c.gh, c.tr, append(opts, c.opts.pipeline...)...), nil
}

// Refresh runs the pipeline once, overwrites the output file and mirrors the
// records into the database when one is configured.
func (c *Catalog) Refresh(ctx context.Context, out io.Writer) ([]Record, error) {
	p, err := c.Pipeline(out)
	if err != nil {
		return nil, err
	}
	records, err := p.Run(ctx)
	if err != nil {
		if errors.Is(err, github.ErrRateLimited) {
			fmt.Fprintln(out, github.RateLimitHint)
		}
		return nil, err
	}
	if len(records) == 0 {
		slog.WarnContext(ctx, "No skills collected; check discovery settings and GitHub access")
	}

	path := c.cfg.GetOutputPath()
	if err := WriteFile(path, records); err != nil {
		return nil, err
	}
	if c.db != nil {
		rows, err := Rows(records)
		if err != nil {
			return nil, err
		}
		if err := c.db.ReplaceSkills(ctx, rows); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Skills stored in database", "count", len(rows))
	}
	PrintSummary(out, path, records)
	return records, nil
}

// List returns published records, optionally restricted to one localized
// category. The database is preferred; without one the output file is read.
func (c *Catalog) List(ctx context.Context, category string, limit int) ([]Record, error) {
	if c.db != nil {
		rows, err := c.db.ListSkills(ctx, database.ListSkillsArgs{Category: category, Limit: limit})
		if err != nil {
			return nil, err
		}
		return FromRows(rows)
	}
	records, err := ReadFile(c.cfg.GetOutputPath())
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if category != "" && r.Category != category {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Ping verifies that GitHub and the optional database are reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	if _, err := c.gh.RateLimits(ctx); err != nil {
		return fmt.Errorf("github ping failed: %w", err)
	}
	if c.db != nil {
		if err := c.db.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
	}
	return nil
}

func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Rows converts records to database rows.
func Rows(records []Record) ([]database.Skill, error) {
	rows := make([]database.Skill, 0, len(records))
	for _, r := range records {
		day, err := time.Parse(time.DateOnly, r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("record %s: invalid updatedAt %q: %w", r.ID, r.UpdatedAt, err)
		}
		var stats []byte
		if r.GitHub != nil {
			if stats, err = json.Marshal(r.GitHub); err != nil {
				return nil, fmt.Errorf("record %s: encode statistics: %w", r.ID, err)
			}
		}
		rows = append(rows, database.Skill{
			ID:             r.ID,
			Name:           r.Name,
			NameEn:         r.NameEn,
			Description:    r.Description,
			DescriptionEn:  r.DescriptionEn,
			Category:       r.Category,
			CategoryEn:     r.CategoryEn,
			Author:         r.Author,
			Stars:          r.Stars,
			Downloads:      r.Downloads,
			UpdatedAt:      day,
			Tags:           r.Tags,
			GitHubURL:      r.GitHubURL,
			InstallCommand: r.InstallCommand,
			GitHub:         stats,
		})
	}
	return rows, nil
}

// FromRows converts stored rows back into records.
func FromRows(rows []database.Skill) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for _, s := range rows {
		r := Record{
			ID:             s.ID,
			Name:           s.Name,
			NameEn:         s.NameEn,
			Description:    s.Description,
			DescriptionEn:  s.DescriptionEn,
			Category:       s.Category,
			CategoryEn:     s.CategoryEn,
			Author:         s.Author,
			Stars:          s.Stars,
			Downloads:      s.Downloads,
			UpdatedAt:      s.UpdatedAt.Format(time.DateOnly),
			Tags:           s.Tags,
			GitHubURL:      s.GitHubURL,
			InstallCommand: s.InstallCommand,
		}
		if len(s.GitHub) > 0 {
			r.GitHub = &Statistics{}
			if err := json.Unmarshal(s.GitHub, r.GitHub); err != nil {
				return nil, fmt.Errorf("skill %s: decode statistics: %w", s.ID, err)
			}
		}
		records = append(records, r)
	}
	return records, nil
}
