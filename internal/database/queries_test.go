package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderListSkillsQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     ListSkillsArgs
		contains []string
		absent   []string
		wantArgs []any
	}{
		{
			name:   "no filter",
			args:   ListSkillsArgs{},
			absent: []string{"WHERE", "LIMIT"},
		},
		{
			name:     "category and limit",
			args:     ListSkillsArgs{Category: "テスト", Limit: 10},
			contains: []string{"WHERE category = $1", "LIMIT $2", "ORDER BY position"},
			wantArgs: []any{"テスト", 10},
		},
		{
			name:     "limit only",
			args:     ListSkillsArgs{Limit: 3},
			contains: []string{"LIMIT $1"},
			absent:   []string{"WHERE"},
			wantArgs: []any{3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := RenderListSkillsQuery(tt.args)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, query, s)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestInsertSkillQueryPlaceholders(t *testing.T) {
	assert.Contains(t, InsertSkillQuery, "$16")
	assert.NotContains(t, InsertSkillQuery, "$17")
}
