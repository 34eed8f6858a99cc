package database

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

type ListSkillsArgs struct {
	Category string
	Limit    int
}

var DeleteSkillsQuery = "DELETE FROM skills"

var InsertSkillQuery = strings.Join([]string{
	"INSERT INTO skills (id, position, name, name_en, description, description_en,",
	"category, category_en, author, stars, downloads, updated_at, tags, github_url,",
	"install_command, github)",
	"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)",
	"ON CONFLICT (id)",
	"DO UPDATE SET position = EXCLUDED.position, name = EXCLUDED.name, name_en = EXCLUDED.name_en,",
	"description = EXCLUDED.description, description_en = EXCLUDED.description_en,",
	"category = EXCLUDED.category, category_en = EXCLUDED.category_en, author = EXCLUDED.author,",
	"stars = EXCLUDED.stars, downloads = EXCLUDED.downloads, updated_at = EXCLUDED.updated_at,",
	"tags = EXCLUDED.tags, github_url = EXCLUDED.github_url,",
	"install_command = EXCLUDED.install_command, github = EXCLUDED.github, fetched_at = NOW()",
}, " ")

var listSkillsQueryTmpl = template.Must(
	template.New("listSkills").Parse(strings.Join([]string{
		"SELECT id, name, name_en, description, description_en, category, category_en,",
		"author, stars, downloads, updated_at, tags, github_url, install_command, github",
		"FROM skills",
		"{{if .CategoryPlaceholder}} WHERE category = {{.CategoryPlaceholder}}{{end}}",
		"ORDER BY position",
		"{{if .LimitPlaceholder}} LIMIT {{.LimitPlaceholder}}{{end}}",
	}, " ")),
)

// RenderListSkillsQuery builds SQL and args for listing skills, optionally
// filtered by localized category and limited.
func RenderListSkillsQuery(args ListSkillsArgs) (string, []any, error) {
	var (
		qargs               []any
		categoryPlaceholder string
		limitPlaceholder    string
	)
	if args.Category != "" {
		qargs = append(qargs, args.Category)
		categoryPlaceholder = fmt.Sprintf("$%d", len(qargs))
	}
	if args.Limit > 0 {
		qargs = append(qargs, args.Limit)
		limitPlaceholder = fmt.Sprintf("$%d", len(qargs))
	}
	var buf bytes.Buffer
	if err := listSkillsQueryTmpl.Execute(&buf, map[string]any{
		"CategoryPlaceholder": categoryPlaceholder,
		"LimitPlaceholder":    limitPlaceholder,
	}); err != nil {
		return "", nil, err
	}
	return buf.String(), qargs, nil
}
