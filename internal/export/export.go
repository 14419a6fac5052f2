// Package export writes scored keyword tables.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/verte-zerg/asolens/internal/model"
	"github.com/verte-zerg/asolens/internal/stats"
)

// ErrNothingToExport is returned for a dataset without keywords.
var ErrNothingToExport = errors.New("dataset has no keywords to export")

// Columns is the header of the exported CSV.
var Columns = []string{"Keyword", "Volume", "Difficulty", "Rank", "Score", "Opportunity", "Bucket", "Backfilled"}

// Frame builds a dataframe of the keywords sorted by score, highest first.
// Absent metrics are left blank.
func Frame(ds model.ParsedDataset) (dataframe.DataFrame, error) {
	n := len(ds.Keywords)
	if n == 0 {
		return dataframe.DataFrame{}, ErrNothingToExport
	}
	keywords := make([]string, n)
	volumes := make([]string, n)
	difficulties := make([]string, n)
	ranks := make([]string, n)
	scores := make([]float64, n)
	opportunities := make([]float64, n)
	buckets := make([]string, n)
	backfilled := make([]string, n)
	for i, r := range ds.Keywords {
		keywords[i] = r.Keyword
		volumes[i] = cell(r.Volume)
		difficulties[i] = cell(r.Difficulty)
		ranks[i] = cell(r.CurrentRank)
		scores[i] = stats.KeywordScore(r)
		opportunities[i] = stats.OpportunityScore(r)
		buckets[i] = stats.Bucket(opportunities[i])
		backfilled[i] = strings.Join(r.Backfilled, ";")
	}
	df := dataframe.New(
		series.New(keywords, series.String, Columns[0]),
		series.New(volumes, series.String, Columns[1]),
		series.New(difficulties, series.String, Columns[2]),
		series.New(ranks, series.String, Columns[3]),
		series.New(scores, series.Float, Columns[4]),
		series.New(opportunities, series.Float, Columns[5]),
		series.New(buckets, series.String, Columns[6]),
		series.New(backfilled, series.String, Columns[7]),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build frame: %w", df.Err)
	}
	df = df.Arrange(dataframe.RevSort("Score"))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("sort frame: %w", df.Err)
	}
	return df, nil
}

// WriteCSV writes the scored keyword table of ds to w.
func WriteCSV(w io.Writer, ds model.ParsedDataset) error {
	df, err := Frame(ds)
	if err != nil {
		return err
	}
	return df.WriteCSV(w)
}

func cell(m model.Metric) string {
	if !m.Valid {
		return ""
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}
