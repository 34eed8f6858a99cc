package skills

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Encode writes records as an indented JSON array. Non-ASCII and HTML
// characters are written as is.
func Encode(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteFile replaces the file at path with the encoded records, creating
// parent directories as needed. The records are written to a temporary file
// in the same directory and renamed over path, so readers never observe a
// partial file.
func WriteFile(path string, records []Record) error {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// CategoryCount is one line of the category tally.
type CategoryCount struct {
	Category string
	Count    int
}

// Tally counts records per localized category, sorted by category.
func Tally(records []Record) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// PrintSummary writes the save confirmation followed by the category tally.
func PrintSummary(w io.Writer, path string, records []Record) {
	fmt.Fprintf(w, "\n✓ Successfully saved %d skills to %s\n", len(records), path)
	fmt.Fprintln(w, "\nCategories:")
	for _, c := range Tally(records) {
		fmt.Fprintf(w, "  %s: %d\n", c.Category, c.Count)
	}
}

// ReadFile decodes a file previously written by WriteFile.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}
