package skills

import (
	"context"
	"strings"

	"k8s.io/utils/ptr"
	"skillscatalog.shikanime.studio/internal/translate"
)

const (
	// SentinelTag stands in for a descriptor without tags.
	SentinelTag = "skill"
	// MaxTags caps the tag list of a record.
	MaxTags = 5
)

// RecordID derives the stable identifier of a skill.
func RecordID(owner, name string) string {
	return strings.ReplaceAll(strings.ToLower(owner+"-"+name), "_", "-")
}

// ParseTags splits a comma separated list, dropping blank entries, and keeps
// at most MaxTags. The result is never empty.
func ParseTags(s string) []string {
	tags := make([]string, 0, MaxTags)
	for t := range strings.SplitSeq(s, ",") {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	if len(tags) == 0 {
		return []string{SentinelTag}
	}
	return tags
}

// BuildRecord assembles the record of one candidate. stats may be nil when
// statistics were not requested; updatedAt must already be a YYYY-MM-DD date.
func BuildRecord(
	ctx context.Context,
	c Candidate,
	d Descriptor,
	stats *Statistics,
	updatedAt string,
	tr translate.Translator,
) Record {
	nameEn := d.Get("name", c.Name())
	descriptionEn := d.Get("description", "")
	categoryEn := d.Get("category", DefaultCategory)

	r := Record{
		ID:            RecordID(c.Owner, c.Name()),
		Name:          tr.Translate(ctx, nameEn),
		NameEn:        nameEn,
		Description:   tr.Translate(ctx, descriptionEn),
		DescriptionEn: descriptionEn,
		Category:      LocalizeCategory(categoryEn),
		CategoryEn:    categoryEn,
		Author:        c.Owner,
		Stars:         c.Stars,
		UpdatedAt:     updatedAt,
		Tags:          ParseTags(d["tags"]),
		GitHubURL:     c.GitHubURL(),
		GitHub:        stats,
	}
	if cmd := d.Get("install_command", ""); cmd != "" {
		r.InstallCommand = ptr.To(cmd)
	}
	return r
}
