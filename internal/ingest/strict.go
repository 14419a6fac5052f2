package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/asolens/internal/model"
)

// StrictColumns is the column set the strict schema requires, in export order.
var StrictColumns = []string{
	"App Name",
	"App ID",
	"Store",
	"Device",
	"Country Code",
	"Language Code",
	"Main App ID",
	"Main App Name",
	"Keyword",
	"Keyword List",
	"Starred",
	"Volume",
	"Difficulty",
	"Maximum Reach",
	"Branded",
	"Branded App ID",
	"Branded App Name",
	"KEI",
	"Chance",
	"Relevancy Score",
}

// strictCanonical maps strict columns onto canonical fields. Columns not
// listed here are kept as extension fields.
var strictCanonical = map[string]string{
	"App Name":        FieldAppName,
	"App ID":          FieldAppID,
	"Store":           FieldStore,
	"Keyword":         FieldKeyword,
	"Starred":         FieldStarred,
	"Volume":          FieldVolume,
	"Difficulty":      FieldDifficulty,
	"Maximum Reach":   FieldMaximumReach,
	"Branded":         FieldBranded,
	"KEI":             FieldKEI,
	"Chance":          FieldChance,
	"Relevancy Score": FieldRelevancy,
}

// strictRequiredValues must be non-blank for a row to be accepted.
var strictRequiredValues = []string{"Keyword", "App ID"}

// ParseStrict parses the fixed keyword export format. Header mismatches are
// fatal; row failures are collected and only fatal when every row fails.
func ParseStrict(r io.Reader, opts Options) (model.ParsedDataset, error) {
	rows, err := readRows(r)
	if err != nil {
		return model.ParsedDataset{}, err
	}
	header := rows[0].cells
	columns, schemaErr := matchStrictHeader(header)
	if schemaErr != nil {
		return model.ParsedDataset{}, schemaErr
	}
	if len(rows) == 1 {
		return model.ParsedDataset{}, ErrNoDataRows
	}

	ds := newDataset(ModeStrict, opts)
	available := map[string]struct{}{}
	for _, name := range StrictColumns {
		canonical := strictFieldName(name)
		ds.AvailableFields = append(ds.AvailableFields, canonical)
		available[canonical] = struct{}{}
	}
	for _, field := range recordFields {
		if _, ok := available[field]; !ok {
			ds.MissingFields = append(ds.MissingFields, field)
		}
	}

	var rowErrs []RowError
	seen := map[string]struct{}{}
	for _, rw := range rows[1:] {
		if len(rw.cells) != len(header) {
			rowErrs = append(rowErrs, RowError{
				Line:    rw.line,
				Message: fmt.Sprintf("expected %d columns, got %d", len(header), len(rw.cells)),
			})
			continue
		}
		if missing := missingRequired(rw.cells, columns); len(missing) > 0 {
			rowErrs = append(rowErrs, RowError{
				Line:    rw.line,
				Message: "missing value for " + strings.Join(missing, ", "),
			})
			continue
		}
		keyword := cell(rw.cells, columns["Keyword"])
		if _, dup := seen[keyword]; dup {
			continue
		}
		seen[keyword] = struct{}{}

		rec := model.KeywordRecord{Keyword: keyword}
		app := model.AppDetails{}
		for _, name := range StrictColumns {
			canonical := strictFieldName(name)
			if canonical == FieldKeyword {
				continue
			}
			raw := cell(rw.cells, columns[name])
			if c, ok := coercions[canonical]; ok {
				c.applyStrict(&rec, raw)
				continue
			}
			if setAppField(&app, canonical, raw) {
				continue
			}
			if raw != "" {
				rec.Extra = append(rec.Extra, extraField(canonical, raw))
			}
		}
		if len(ds.Keywords) == 0 {
			ds.App = app
		}
		backfill(&rec, opts.Backfill)
		ds.Keywords = append(ds.Keywords, rec)
	}

	if len(ds.Keywords) == 0 {
		return model.ParsedDataset{}, &SchemaError{Rows: rowErrs, AllRowsFailed: true}
	}
	for _, rowErr := range rowErrs {
		ds.Issues = append(ds.Issues, model.RowIssue{Line: rowErr.Line, Message: rowErr.Message})
	}
	return ds, nil
}

// matchStrictHeader locates every strict column, ignoring case and surrounding space.
func matchStrictHeader(header []string) (map[string]int, *SchemaError) {
	expected := make(map[string]string, len(StrictColumns))
	for _, name := range StrictColumns {
		expected[strings.ToLower(name)] = name
	}
	columns := map[string]int{}
	var unexpected []string
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		name, ok := expected[key]
		if !ok {
			unexpected = append(unexpected, strings.TrimSpace(h))
			continue
		}
		if _, dup := columns[name]; dup {
			unexpected = append(unexpected, strings.TrimSpace(h)+" (duplicate)")
			continue
		}
		columns[name] = i
	}
	var missing []string
	for _, name := range StrictColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		return nil, &SchemaError{Missing: missing, Unexpected: unexpected}
	}
	return columns, nil
}

func missingRequired(cells []string, columns map[string]int) []string {
	var missing []string
	for _, name := range strictRequiredValues {
		if cell(cells, columns[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func strictFieldName(column string) string {
	if canonical, ok := strictCanonical[column]; ok {
		return canonical
	}
	return strings.ToLower(column)
}
