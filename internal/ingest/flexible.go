package ingest

import (
	"io"

	"github.com/verte-zerg/asolens/internal/model"
)

// ParseFlexible parses any CSV that has a recognizable keyword column.
// Rows with a blank or already seen keyword are skipped; the first occurrence wins.
func ParseFlexible(r io.Reader, opts Options) (model.ParsedDataset, error) {
	rows, err := readRows(r)
	if err != nil {
		return model.ParsedDataset{}, err
	}
	mapping, err := Normalize(rows[0].cells)
	if err != nil {
		return model.ParsedDataset{}, err
	}
	if len(rows) == 1 {
		return model.ParsedDataset{}, ErrNoDataRows
	}

	ds := newDataset(ModeFlexible, opts)
	ds.AvailableFields = mapping.Available
	ds.MissingFields = mapping.Missing

	keywordCol := mapping.Columns[FieldKeyword]
	seen := map[string]struct{}{}
	for _, rw := range rows[1:] {
		keyword := cell(rw.cells, keywordCol)
		if keyword == "" {
			continue
		}
		if _, dup := seen[keyword]; dup {
			continue
		}
		seen[keyword] = struct{}{}

		rec := model.KeywordRecord{Keyword: keyword}
		for _, canonical := range mapping.Order {
			if canonical == FieldKeyword {
				continue
			}
			raw := cell(rw.cells, mapping.Columns[canonical])
			if raw == "" {
				continue
			}
			if c, ok := coercions[canonical]; ok {
				c.applyFlexible(&rec, raw)
				continue
			}
			if setAppField(&ds.App, canonical, raw) {
				continue
			}
			rec.Extra = append(rec.Extra, extraField(canonical, raw))
		}
		backfill(&rec, opts.Backfill)
		ds.Keywords = append(ds.Keywords, rec)
	}
	if len(ds.Keywords) == 0 {
		return model.ParsedDataset{}, ErrNoDataRows
	}
	return ds, nil
}
