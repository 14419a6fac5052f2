package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput is returned when the input has no rows at all.
	ErrEmptyInput = errors.New("input is empty")
	// ErrNoDataRows is returned when a header is present but no usable row follows it.
	ErrNoDataRows = errors.New("no data rows found below the header")
	// ErrMissingKeywordColumn is returned when no header maps to the keyword field.
	ErrMissingKeywordColumn = errors.New("no keyword column found (expected one of: keyword, term, search term, query)")
)

// RowError describes a rejected data row.
type RowError struct {
	Line    int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// SchemaError aggregates header mismatches and row failures of the strict schema.
type SchemaError struct {
	Missing       []string
	Unexpected    []string
	Rows          []RowError
	AllRowsFailed bool
}

func (e *SchemaError) Error() string {
	lines := []string{"csv does not match the expected schema"}
	if len(e.Missing) > 0 {
		lines = append(lines, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		lines = append(lines, "unexpected columns: "+strings.Join(e.Unexpected, ", "))
	}
	if e.AllRowsFailed {
		lines = append(lines, fmt.Sprintf("all %d rows failed validation:", len(e.Rows)))
	}
	for _, row := range e.Rows {
		lines = append(lines, "  "+row.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap lets callers match a schema error where every row failed against ErrNoDataRows.
func (e *SchemaError) Unwrap() error {
	if e.AllRowsFailed {
		return ErrNoDataRows
	}
	return nil
}
