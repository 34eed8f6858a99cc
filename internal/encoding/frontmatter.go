// Package encoding decodes skill descriptors: the front-matter block at the
// top of a SKILL.md file and JSON manifests.
package encoding

import (
	"errors"
	"strings"
)

// Delimiter opens and closes a front-matter block.
const Delimiter = "---"

// ErrNoFrontMatter is returned when the document does not start with a
// delimiter line or the block is never closed.
var ErrNoFrontMatter = errors.New("front-matter not found")

// UnmarshalFrontMatter extracts the key/value pairs of the leading
// front-matter block and returns the remaining body.
//
// Parsing is naive: each line is split on its first colon, the
// key and value are trimmed, and surrounding quote characters are stripped
// from the value. Lines without a colon are dropped. There is no escaping,
// nesting or multi-line value support, so `a: b: c` yields key "a" with
// value "b: c" and a YAML list spread over several lines is lost.
func UnmarshalFrontMatter(in []byte) (map[string]string, []byte, error) {
	lines := strings.Split(string(in), "\n")
	if strings.TrimRight(lines[0], "\r") != Delimiter {
		return nil, nil, ErrNoFrontMatter
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == Delimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, nil, ErrNoFrontMatter
	}

	fields := make(map[string]string, end-1)
	for _, line := range lines[1:end] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields[key] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return fields, []byte(strings.Join(lines[end+1:], "\n")), nil
}
