package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/verte-zerg/asolens/internal/model"
)

func TestWriteCSVSortsByScore(t *testing.T) {
	ds := model.ParsedDataset{Keywords: []model.KeywordRecord{
		{Keyword: "pedometer", Volume: model.Some(100), Difficulty: model.Some(20)},
		{Keyword: "step counter", Volume: model.Some(2500), Difficulty: model.Some(40), CurrentRank: model.Some(8)},
		{Keyword: "walk", Difficulty: model.Some(5), Backfilled: []string{"currentRank"}},
	}}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	for i, name := range Columns {
		if rows[0][i] != name {
			t.Fatalf("unexpected header %v", rows[0])
		}
	}
	if rows[1][0] != "step counter" || rows[1][1] != "2500" || rows[1][3] != "8" {
		t.Fatalf("expected highest score first, got %v", rows[1])
	}
	if rows[3][0] != "walk" || rows[3][1] != "" || rows[3][7] != "currentRank" {
		t.Fatalf("expected absent volume to be blank, got %v", rows[3])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, model.ParsedDataset{}); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}
