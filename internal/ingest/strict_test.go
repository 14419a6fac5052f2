package ingest

import (
	"errors"
	"strings"
	"testing"
)

func strictHeader(sep string) string {
	return strings.Join(StrictColumns, sep)
}

func strictRow(sep string, keyword, appID, volume, difficulty, chance string) string {
	values := map[string]string{
		"App Name":        "Stride",
		"App ID":          appID,
		"Store":           "apple",
		"Device":          "iphone",
		"Country Code":    "US",
		"Language Code":   "en",
		"Keyword":         keyword,
		"Starred":         "yes",
		"Volume":          volume,
		"Difficulty":      difficulty,
		"Maximum Reach":   "5000",
		"Branded":         "false",
		"KEI":             "12",
		"Chance":          chance,
		"Relevancy Score": "130",
	}
	cells := make([]string, len(StrictColumns))
	for i, name := range StrictColumns {
		cells[i] = values[name]
	}
	return strings.Join(cells, sep)
}

func TestParseStrictValid(t *testing.T) {
	input := strings.Join([]string{
		strictHeader(","),
		strictRow(",", "step counter", "id1", "800", "140", "abc"),
		strictRow(",", "walk app", "id1", "oops", "-5", "55"),
	}, "\n")
	ds, err := ParseStrict(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds.Keywords) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(ds.Keywords))
	}
	first, second := ds.Keywords[0], ds.Keywords[1]
	if first.Volume.Value != 800 || first.Difficulty.Value != 100 {
		t.Fatalf("expected clamped difficulty, got %+v", first)
	}
	if !first.Chance.Valid || first.Chance.Value != 0 {
		t.Fatalf("invalid chance should default to 0, got %+v", first.Chance)
	}
	if first.Relevancy.Value != 100 {
		t.Fatalf("expected relevancy score clamped to 100, got %v", first.Relevancy.Value)
	}
	if !second.Volume.Valid || second.Volume.Value != 0 || second.Difficulty.Value != 0 {
		t.Fatalf("expected defaults for invalid numbers, got %+v", second)
	}
	if !first.Starred || first.Branded {
		t.Fatalf("unexpected booleans: %+v", first)
	}
	if ds.App.AppName != "Stride" || ds.App.AppID != "id1" || ds.App.Store != "apple" {
		t.Fatalf("unexpected app details: %+v", ds.App)
	}
	if raw, ok := first.ExtraValue("country code"); !ok || raw != "US" {
		t.Fatalf("expected country code extension, got %q", raw)
	}
	if ds.Schema != string(ModeStrict) {
		t.Fatalf("unexpected schema %q", ds.Schema)
	}
}

func TestParseStrictTabSeparated(t *testing.T) {
	input := strictHeader("\t") + "\n" + strictRow("\t", "sleep sounds", "id9", "1,500", "20", "40") + "\n"
	ds, err := ParseStrict(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ds.Keywords[0].Volume.Value != 1500 {
		t.Fatalf("unexpected volume %v", ds.Keywords[0].Volume.Value)
	}
}

func TestParseStrictHeaderMismatch(t *testing.T) {
	header := strings.Join(append(StrictColumns[1:], "Extra"), ",")
	_, err := ParseStrict(strings.NewReader(header+"\nx\n"), Options{})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != "App Name" {
		t.Fatalf("unexpected missing columns: %v", schemaErr.Missing)
	}
	if len(schemaErr.Unexpected) != 1 || schemaErr.Unexpected[0] != "Extra" {
		t.Fatalf("unexpected columns: %v", schemaErr.Unexpected)
	}
	msg := err.Error()
	if !strings.Contains(msg, "missing columns: App Name") || !strings.Contains(msg, "unexpected columns: Extra") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestParseStrictRowErrorsCollected(t *testing.T) {
	input := strings.Join([]string{
		strictHeader(","),
		"too,few,columns",
		strictRow(",", "", "id1", "10", "10", "10"),
		strictRow(",", "good", "id1", "10", "10", "10"),
	}, "\n")
	ds, err := ParseStrict(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds.Keywords) != 1 {
		t.Fatalf("expected 1 keyword, got %d", len(ds.Keywords))
	}
	if len(ds.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", ds.Issues)
	}
	if ds.Issues[0].Line != 2 || !strings.Contains(ds.Issues[0].Message, "expected 20 columns, got 3") {
		t.Fatalf("unexpected first issue: %+v", ds.Issues[0])
	}
	if !strings.Contains(ds.Issues[1].Message, "missing value for Keyword") {
		t.Fatalf("unexpected second issue: %+v", ds.Issues[1])
	}
}

func TestParseStrictAllRowsFail(t *testing.T) {
	input := strings.Join([]string{
		strictHeader(","),
		"a,b",
		strictRow(",", "kw", "", "1", "1", "1"),
	}, "\n")
	_, err := ParseStrict(strings.NewReader(input), Options{})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if !schemaErr.AllRowsFailed || len(schemaErr.Rows) != 2 {
		t.Fatalf("unexpected schema error: %+v", schemaErr)
	}
	if !errors.Is(err, ErrNoDataRows) {
		t.Fatalf("expected error to match ErrNoDataRows")
	}
	if !strings.Contains(err.Error(), "missing value for App ID") {
		t.Fatalf("expected aggregated row listing, got %s", err.Error())
	}
}

func TestParseStrictHeaderOnly(t *testing.T) {
	_, err := ParseStrict(strings.NewReader(strictHeader(",")+"\n"), Options{})
	if !errors.Is(err, ErrNoDataRows) {
		t.Fatalf("expected ErrNoDataRows, got %v", err)
	}
}

func TestParseDispatchesByMode(t *testing.T) {
	input := "keyword\nalpha\n"
	if _, err := Parse(strings.NewReader(input), ModeStrict, Options{}); err == nil {
		t.Fatalf("expected strict parser to reject a flexible file")
	}
	if _, err := Parse(strings.NewReader(input), ModeFlexible, Options{}); err != nil {
		t.Fatalf("flexible parse: %v", err)
	}
}
