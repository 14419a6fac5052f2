package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/asolens/internal/generator"
	"github.com/verte-zerg/asolens/internal/model"
)

// Mode selects the parser strategy.
type Mode string

const (
	// ModeFlexible infers the schema from whatever headers are present.
	ModeFlexible Mode = "flexible"
	// ModeStrict requires the fixed keyword export column set.
	ModeStrict Mode = "strict"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFlexible:
		return ModeFlexible, nil
	case ModeStrict:
		return ModeStrict, nil
	}
	return "", fmt.Errorf("unknown schema mode %q (use flexible or strict)", s)
}

// Options configures a parse.
type Options struct {
	// Source names the input, usually a file path.
	Source string
	// Backfill, when set, supplies stand-in values for missing rank, volume and difficulty.
	Backfill generator.Backfiller
}

// Parse reads a dataset with the selected strategy.
func Parse(r io.Reader, mode Mode, opts Options) (model.ParsedDataset, error) {
	switch mode {
	case ModeStrict:
		return ParseStrict(r, opts)
	case ModeFlexible, "":
		return ParseFlexible(r, opts)
	}
	return model.ParsedDataset{}, fmt.Errorf("unknown schema mode %q", mode)
}

// ParseFile opens path and parses it.
func ParseFile(path string, mode Mode, opts Options) (model.ParsedDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.ParsedDataset{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	if opts.Source == "" {
		opts.Source = path
	}
	return Parse(file, mode, opts)
}

// HasCSVExtension reports whether path looks like a CSV file.
func HasCSVExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func newDataset(schema Mode, opts Options) model.ParsedDataset {
	return model.ParsedDataset{
		ID:     uuid.NewString(),
		Source: opts.Source,
		Schema: string(schema),
	}
}

func backfill(rec *model.KeywordRecord, b generator.Backfiller) {
	if b == nil {
		return
	}
	if !rec.CurrentRank.Valid {
		rec.CurrentRank = model.Some(b.Rank())
		rec.Backfilled = append(rec.Backfilled, FieldCurrentRank)
	}
	if !rec.Volume.Valid {
		rec.Volume = model.Some(b.Volume())
		rec.Backfilled = append(rec.Backfilled, FieldVolume)
	}
	if !rec.Difficulty.Valid {
		rec.Difficulty = model.Some(b.Difficulty())
		rec.Backfilled = append(rec.Backfilled, FieldDifficulty)
	}
}
