package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		t.Skip("TEST_DSN not set")
	}
	ctx := context.Background()
	pg, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	mg, err := NewMigrator(pg)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	db := NewClient(pg)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReplaceSkills(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	day := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)

	first := []Skill{
		{ID: "o-a", Name: "A", NameEn: "A", Category: "テスト", CategoryEn: "Testing", Author: "o", UpdatedAt: day, Tags: []string{"skill"}},
		{ID: "o-b", Name: "B", NameEn: "B", Category: "開発者ツール", CategoryEn: "Developer Tools", Author: "o", UpdatedAt: day, Tags: []string{"go"}},
	}
	require.NoError(t, db.ReplaceSkills(ctx, first))

	second := []Skill{
		{
			ID: "o-c", Name: "C", NameEn: "C", Category: "テスト", CategoryEn: "Testing", Author: "o",
			UpdatedAt: day, Tags: []string{"a", "b"}, InstallCommand: ptr.To("npx c"),
			GitHub: []byte(`{"contributors":1,"openPullRequests":0}`),
		},
	}
	require.NoError(t, db.ReplaceSkills(ctx, second))

	got, err := db.ListSkills(ctx, ListSkillsArgs{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "o-c", got[0].ID)
	assert.Equal(t, []string{"a", "b"}, got[0].Tags)
	assert.Equal(t, "npx c", *got[0].InstallCommand)
	assert.JSONEq(t, `{"contributors":1,"openPullRequests":0}`, string(got[0].GitHub))

	filtered, err := db.ListSkills(ctx, ListSkillsArgs{Category: "開発者ツール"})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}
