package seedfile

import (
	"strings"
	"testing"

	"touchgrass/internal/core/normalize"
)

func TestReadArray(t *testing.T) {
	in := `  [
		{"title": "Jazz Night", "date": "2026-09-01"},
		{"title": "Open Mic", "date": "2026-09-02"}
	]`
	b, err := Read(strings.NewReader(in), "", normalize.ShapeListing)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if b.Source != Source {
		t.Fatalf("source = %q, want %q", b.Source, Source)
	}
	if b.SourceType != normalize.ShapeListing {
		t.Fatalf("source type = %q", b.SourceType)
	}
	if len(b.RawEvents) != 2 {
		t.Fatalf("events = %d, want 2", len(b.RawEvents))
	}
}

func TestReadNDJSONSkipsMalformed(t *testing.T) {
	in := strings.Join([]string{
		`{"title": "Jazz Night"}`,
		``,
		`{not json at all`,
		`{"title": "Open Mic"}`,
	}, "\n")
	b, err := Read(strings.NewReader(in), "crawler", normalize.ShapeCrawler)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if b.Source != "crawler" {
		t.Fatalf("source = %q", b.Source)
	}
	if len(b.RawEvents) != 2 {
		t.Fatalf("events = %d, want 2 (malformed and blank lines skipped)", len(b.RawEvents))
	}
}

func TestReadMalformedArrayErrors(t *testing.T) {
	if _, err := Read(strings.NewReader(`[{"title": "x"},`), "", normalize.ShapeListing); err == nil {
		t.Fatal("want error for truncated array")
	}
}

func TestReadEmpty(t *testing.T) {
	b, err := Read(strings.NewReader("   \n  "), "", normalize.ShapeListing)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(b.RawEvents) != 0 {
		t.Fatalf("events = %d, want 0", len(b.RawEvents))
	}
}
