package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"skillscatalog.shikanime.studio/internal/config"
	dbpgx "skillscatalog.shikanime.studio/internal/database/pgx"
)

// Skill is one row of the skills table. GitHub holds the statistics
// object as raw JSON, or nil for SQL NULL.
type Skill struct {
	ID             string
	Name           string
	NameEn         string
	Description    string
	DescriptionEn  string
	Category       string
	CategoryEn     string
	Author         string
	Stars          int
	Downloads      *int
	UpdatedAt      time.Time
	Tags           []string
	GitHubURL      string
	InstallCommand *string
	GitHub         []byte
}

type Database struct {
	pg *pgxpool.Pool
}

// NewForConfig constructs a Database using the provided config.
func NewForConfig(ctx context.Context, cfg *config.Config) (*Database, error) {
	pg, err := dbpgx.NewClientForConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(pg), nil
}

// NewClient constructs a Database using the provided pgx pool.
func NewClient(pg *pgxpool.Pool) *Database { return &Database{pg: pg} }

// Ping verifies the provided database connection is available
func (db *Database) Ping(ctx context.Context) error {
	tracer := otel.Tracer("skillscatalog/database")
	ctx, span := tracer.Start(ctx, "Database.Ping")
	defer span.End()
	if db.pg == nil {
		return fmt.Errorf("database connection not available")
	}
	return db.pg.Ping(ctx)
}

func (db *Database) Close() error {
	if db.pg == nil {
		return nil
	}
	db.pg.Close()
	return nil
}

// ReplaceSkills swaps the whole table content for skills inside one
// transaction, keeping their order in the position column.
func (db *Database) ReplaceSkills(ctx context.Context, skills []Skill) error {
	tracer := otel.Tracer("skillscatalog/database")
	ctx, span := tracer.Start(ctx, "Database.ReplaceSkills")
	span.SetAttributes(attribute.Int("skills_len", len(skills)))
	defer span.End()
	if db.pg == nil {
		return fmt.Errorf("database connection not available")
	}

	tx, err := db.pg.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, DeleteSkillsQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete skills failed: %w", err)
	}
	slog.DebugContext(ctx, "previous skills deleted", "count", tag.RowsAffected())

	if len(skills) > 0 {
		b := &pgx.Batch{}
		for i, s := range skills {
			b.Queue(
				InsertSkillQuery,
				s.ID, i, s.Name, s.NameEn, s.Description, s.DescriptionEn,
				s.Category, s.CategoryEn, s.Author, s.Stars, s.Downloads, s.UpdatedAt,
				s.Tags, s.GitHubURL, s.InstallCommand, s.GitHub,
			)
		}
		slog.DebugContext(ctx, "insert skills queued", "count", len(skills))
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("insert skills failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// ListSkills returns stored skills in their published order.
func (db *Database) ListSkills(ctx context.Context, args ListSkillsArgs) ([]Skill, error) {
	tracer := otel.Tracer("skillscatalog/database")
	ctx, span := tracer.Start(ctx, "Database.ListSkills")
	span.SetAttributes(attribute.String("category", args.Category), attribute.Int("limit", args.Limit))
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	query, qargs, err := RenderListSkillsQuery(args)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "list skills query", "sql", query, "args_len", len(qargs))
	rows, err := db.pg.Query(ctx, query, qargs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list skills query failed: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Skill])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}
