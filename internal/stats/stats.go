package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/asolens/internal/model"
)

const keywordCellWidth = 36

// Summary describes a dataset at a glance.
type Summary struct {
	Keywords          int      `json:"keywords"`
	Ranked            int      `json:"ranked"`
	TopTen            int      `json:"topTen"`
	TotalVolume       float64  `json:"totalVolume"`
	AverageVolume     float64  `json:"averageVolume"`
	AverageDifficulty float64  `json:"averageDifficulty"`
	Backfilled        int      `json:"backfilled"`
	Missing           []string `json:"missing"`
	Issues            int      `json:"issues"`
}

// Summarize counts keywords and averages the metrics that are present.
func Summarize(ds model.ParsedDataset) Summary {
	s := Summary{Keywords: len(ds.Keywords), Missing: ds.MissingFields, Issues: len(ds.Issues)}
	if s.Missing == nil {
		s.Missing = []string{}
	}
	var volumes, difficulties int
	var difficultySum float64
	for _, r := range ds.Keywords {
		if r.CurrentRank.Valid {
			s.Ranked++
			if r.CurrentRank.Value <= 10 {
				s.TopTen++
			}
		}
		if r.Volume.Valid {
			volumes++
			s.TotalVolume += r.Volume.Value
		}
		if r.Difficulty.Valid {
			difficulties++
			difficultySum += r.Difficulty.Value
		}
		if len(r.Backfilled) > 0 {
			s.Backfilled++
		}
	}
	if volumes > 0 {
		s.AverageVolume = s.TotalVolume / float64(volumes)
	}
	if difficulties > 0 {
		s.AverageDifficulty = difficultySum / float64(difficulties)
	}
	return s
}

// FormatMetric prints a metric or N/A when it is absent.
func FormatMetric(m model.Metric, decimals int) string {
	if !m.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", decimals, m.Value)
}

// RenderSummary prints the dataset overview and bucket counts.
func RenderSummary(w io.Writer, ds model.ParsedDataset, report Report) error {
	s := report.Summary
	var b strings.Builder
	b.WriteString("Summary\n")
	if ds.App.AppName != "" || ds.App.AppID != "" {
		fmt.Fprintf(&b, "App: %s %s\n", ds.App.AppName, ds.App.AppID)
	}
	fmt.Fprintf(&b, "Keywords: %d (ranked %d, top 10: %d)\n", s.Keywords, s.Ranked, s.TopTen)
	fmt.Fprintf(&b, "Total volume: %.0f\n", s.TotalVolume)
	fmt.Fprintf(&b, "Avg volume: %.1f\n", s.AverageVolume)
	fmt.Fprintf(&b, "Avg difficulty: %.1f\n", s.AverageDifficulty)
	fmt.Fprintf(&b, "Opportunities: high %d, medium %d, low %d, none %d\n",
		report.Buckets.High, report.Buckets.Medium, report.Buckets.Low, report.Buckets.None)
	if s.Backfilled > 0 {
		fmt.Fprintf(&b, "Backfilled: %d keywords\n", s.Backfilled)
	}
	if len(s.Missing) > 0 {
		fmt.Fprintf(&b, "Missing fields: %s\n", strings.Join(s.Missing, ", "))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderScored prints a table of scored keywords.
func RenderScored(w io.Writer, title string, items []ScoredKeyword) error {
	records := make([]model.KeywordRecord, len(items))
	scores := make([]float64, len(items))
	for i, item := range items {
		records[i] = item.Keyword
		scores[i] = item.Score
	}
	return renderKeywords(w, title, records, scores)
}

// RenderRecords prints a table of keywords with their opportunity buckets.
func RenderRecords(w io.Writer, title string, records []model.KeywordRecord) error {
	return renderKeywords(w, title, records, nil)
}

func renderKeywords(w io.Writer, title string, records []model.KeywordRecord, scores []float64) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprint(w, "No keywords.\n\n")
		return err
	}
	headers := []string{"Keyword", "Volume", "Difficulty", "Rank", "Opportunity"}
	if scores != nil {
		headers = append(headers, "Score")
	}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		row := []string{
			truncateCell(r.Keyword, keywordCellWidth),
			FormatMetric(r.Volume, 0),
			FormatMetric(r.Difficulty, 0),
			FormatMetric(r.CurrentRank, 0),
			Bucket(OpportunityScore(r)),
		}
		if scores != nil {
			row = append(row, fmt.Sprintf("%.1f", scores[i]))
		}
		rows = append(rows, row)
	}
	numeric := map[int]bool{1: true, 2: true, 3: true, 5: true}
	for _, line := range formatTable(headers, rows, numeric) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderThemes prints each theme with its member keywords.
func RenderThemes(w io.Writer, themes []Theme) error {
	var b strings.Builder
	b.WriteString("Themes\n")
	if len(themes) == 0 {
		b.WriteString("No themes.\n")
	}
	for _, theme := range themes {
		fmt.Fprintf(&b, "%s (%d): %s\n", theme.Name, len(theme.Keywords), strings.Join(theme.Keywords, ", "))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderReport prints every section of a report.
func RenderReport(w io.Writer, ds model.ParsedDataset, report Report) error {
	if err := RenderSummary(w, ds, report); err != nil {
		return err
	}
	if err := RenderScored(w, "Recommended Keywords", report.Recommended); err != nil {
		return err
	}
	if err := RenderRecords(w, "Low Competition", report.LowCompetition); err != nil {
		return err
	}
	if err := RenderRecords(w, "Underperforming", report.Underperforming); err != nil {
		return err
	}
	return RenderThemes(w, report.Themes)
}

// RenderProjection prints a projection table followed by a rank/installs chart.
func RenderProjection(w io.Writer, result model.ProjectionResult, width int, forceColor bool) error {
	if _, err := fmt.Fprintf(w, "Projection: %s (rank %.0f, installs %.0f/month)\n",
		result.Keyword, result.StartRank, result.CurrentInstalls); err != nil {
		return err
	}
	headers := []string{"Months", "Rank", "Installs", "Gain"}
	rows := make([][]string, 0, len(result.Points))
	ranks := []float64{result.StartRank}
	installs := []float64{result.CurrentInstalls}
	for _, p := range result.Points {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Months),
			fmt.Sprintf("%.1f", p.Rank),
			fmt.Sprintf("%.0f", p.Installs),
			fmt.Sprintf("%+.0f", p.InstallGain),
		})
		ranks = append(ranks, p.Rank)
		installs = append(installs, p.Installs)
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if len(result.Points) < 2 {
		return nil
	}
	return PlotSeries(w, "", []Series{
		{Name: "Rank", Values: ranks, Invert: true},
		{Name: "Installs", Values: installs},
	}, width, 0, forceColor)
}

// RenderOptions prints metadata candidates.
func RenderOptions(w io.Writer, options []model.MetadataOption) error {
	var b strings.Builder
	for i, opt := range options {
		fmt.Fprintf(&b, "Option %d\n", i+1)
		fmt.Fprintf(&b, "  Title:    %s\n", opt.Title)
		fmt.Fprintf(&b, "  Subtitle: %s\n", opt.Subtitle)
		fmt.Fprintf(&b, "  Keywords: %s\n\n", strings.Join(opt.Keywords, ","))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
