package stats

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Keyword", "Volume"}
	rows := [][]string{
		{"fitness", "1200"},
		{"日本", "5"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Keyword  Volume" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "fitness    1200" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "日本"+strings.Repeat(" ", 10)+"5" {
		t.Fatalf("unexpected wide row line: %q", lines[2])
	}
}

func TestTruncateCell(t *testing.T) {
	if got := truncateCell("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	got := truncateCell("abcdefghij", 5)
	if runewidth.StringWidth(got) > 5 || !strings.HasPrefix(got, "abc") {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
