package mcp

import (
	"testing"
	"time"

	"github.com/brandkit/knowledge-server/internal/search"
)

// TestParseDate verifies that malformed date filters are dropped rather than
// rejected.
func TestParseDate(t *testing.T) {
	got := parseDate("2026-01-15T10:30:00Z")
	if got == nil {
		t.Fatal("Expected a parsed time for a valid RFC3339 value")
	}
	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseDate = %v, want %v", got, want)
	}

	for _, malformed := range []string{"", "yesterday", "2026-01-15", "15/01/2026"} {
		if parseDate(malformed) != nil {
			t.Errorf("parseDate(%q) should be treated as absent", malformed)
		}
	}
}

func TestToSourceTypes(t *testing.T) {
	got := toSourceTypes([]string{"chats", "documents"})
	if len(got) != 2 {
		t.Fatalf("Expected 2 source types, got %d", len(got))
	}
	if got[0] != search.SourceChats || got[1] != search.SourceDocuments {
		t.Errorf("Unexpected conversion: %v", got)
	}

	if len(toSourceTypes(nil)) != 0 {
		t.Error("Nil input should convert to an empty slice")
	}
}
