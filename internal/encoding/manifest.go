package encoding

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidManifest is returned for documents that are not a JSON object.
var ErrInvalidManifest = errors.New("manifest is not a JSON object")

// UnmarshalManifest flattens the top level of a JSON manifest into string
// values. Strings are kept, numbers and booleans keep their literal text,
// arrays of scalars are joined with ", " so a tags array reads the same as a
// front-matter tags line. Nulls and nested objects are skipped.
func UnmarshalManifest(in []byte) (map[string]string, error) {
	if !gjson.ValidBytes(in) {
		return nil, ErrInvalidManifest
	}
	doc := gjson.ParseBytes(in)
	if !doc.IsObject() {
		return nil, ErrInvalidManifest
	}
	fields := make(map[string]string)
	doc.ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.IsArray():
			var parts []string
			for _, item := range value.Array() {
				if item.IsObject() || item.IsArray() || item.Type == gjson.Null {
					continue
				}
				parts = append(parts, item.String())
			}
			fields[key.String()] = strings.Join(parts, ", ")
		case value.Type == gjson.String:
			fields[key.String()] = value.String()
		case value.Type == gjson.Number, value.Type == gjson.True, value.Type == gjson.False:
			fields[key.String()] = value.Raw
		}
		return true
	})
	return fields, nil
}
