package dashboard

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/asolens/internal/model"
	"github.com/verte-zerg/asolens/internal/projection"
	"github.com/verte-zerg/asolens/internal/stats"
)

const (
	numericColWidth  = 11
	minKeywordColumn = 16
)

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	f := m.cfg.Filter
	query := f.Query
	if query == "" {
		query = "any"
	}
	minVolume := "any"
	if f.MinVolume > 0 {
		minVolume = formatOptional(f.MinVolume)
	}
	maxDifficulty := "any"
	if f.MaxDifficulty > 0 {
		maxDifficulty = formatOptional(f.MaxDifficulty)
	}
	limit := "all"
	if f.Limit > 0 {
		limit = fmt.Sprintf("%d", f.Limit)
	}
	source := m.dataset.Source
	if source == "" {
		source = "-"
	}
	summary := fmt.Sprintf("Dataset: %s  Filter: contains=%s  volume>=%s  difficulty<=%s  limit=%s",
		source, query, minVolume, maxDifficulty, limit)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Filter: /  Quit: q"
	switch m.activeTab {
	case tabKeywords:
		help = "Nav: left/right  Select: up/down  Project: enter  Filter: /  Quit: q"
	case tabMetadata:
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Next option: o  Filter: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Keyword filter (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabKeywords {
		if len(m.keywords) == 0 {
			return fitLines("No keywords match the filter.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.kwTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func renderOverview(ds model.ParsedDataset, report stats.Report, width int) string {
	if len(ds.Keywords) == 0 {
		return "No keywords loaded."
	}
	s := report.Summary
	cards := []string{
		metricCard("Keywords", fmt.Sprintf("%d", s.Keywords)),
		metricCard("Ranked", fmt.Sprintf("%d", s.Ranked)),
		metricCard("Top 10", fmt.Sprintf("%d", s.TopTen)),
		metricCard("Avg Volume", fmt.Sprintf("%.1f", s.AverageVolume)),
		metricCard("Avg Difficulty", fmt.Sprintf("%.1f", s.AverageDifficulty)),
		metricCard("High Opportunity", fmt.Sprintf("%d", report.Buckets.High)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	var buf bytes.Buffer
	if len(s.Missing) > 0 {
		fmt.Fprintf(&buf, "Missing fields: %s\n", strings.Join(s.Missing, ", "))
	}
	for _, issue := range ds.Issues {
		fmt.Fprintf(&buf, "Warning: line %d: %s\n", issue.Line, issue.Message)
	}
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	if err := stats.RenderThemes(&buf, report.Themes); err != nil {
		return fmt.Sprintf("Failed to render themes: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderOpportunities(report stats.Report) string {
	var buf bytes.Buffer
	if err := stats.RenderScored(&buf, "Recommended Keywords", report.Recommended); err != nil {
		return fmt.Sprintf("Failed to render keywords: %v", err)
	}
	if err := stats.RenderScored(&buf, "Top Opportunities", report.Opportunities); err != nil {
		return fmt.Sprintf("Failed to render keywords: %v", err)
	}
	if err := stats.RenderRecords(&buf, "Low Competition", report.LowCompetition); err != nil {
		return fmt.Sprintf("Failed to render keywords: %v", err)
	}
	if err := stats.RenderRecords(&buf, "Underperforming", report.Underperforming); err != nil {
		return fmt.Sprintf("Failed to render keywords: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderProjection(r model.KeywordRecord, horizons []int, width int) string {
	var buf bytes.Buffer
	result := projection.Project(projection.InputFrom(r), horizons)
	if err := stats.RenderProjection(&buf, result, stats.ChartWidthFor(width), true); err != nil {
		return fmt.Sprintf("Failed to render projection: %v", err)
	}
	buf.WriteString("Ranking growth (install impact)\n")
	for _, p := range projection.ProjectGrowth(r, horizons, time.Now().Month(), 1) {
		fmt.Fprintf(&buf, "  %2d months: rank %.0f, +%.0f installs\n", p.Months, p.TargetRank, p.ExtraInstalls)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderMetadata(records []model.KeywordRecord, options []model.MetadataOption, index int, cfg Config) string {
	if len(options) == 0 {
		return "No metadata options. Load keywords first."
	}
	var buf bytes.Buffer
	if err := stats.RenderOptions(&buf, options); err != nil {
		return fmt.Sprintf("Failed to render options: %v", err)
	}
	fmt.Fprintf(&buf, "Option %d projection\n", index+1)
	projected := projection.ProjectOption(records, options[index], cfg.Boosts, cfg.Horizons)
	if len(projected) == 0 {
		buf.WriteString("No dataset keywords used by this option.\n")
	}
	var total float64
	for _, p := range projected {
		last := p.Result.StartRank
		gain := 0.0
		if n := len(p.Result.Points); n > 0 {
			last = p.Result.Points[n-1].Rank
			gain = p.Result.Points[n-1].InstallGain
		}
		total += gain
		fmt.Fprintf(&buf, "  %-9s %s: rank %.0f -> %.1f, +%.0f installs/month\n",
			p.Placement, truncateLine(p.Result.Keyword, 32), p.Result.StartRank, last, gain)
	}
	if len(projected) > 0 {
		fmt.Fprintf(&buf, "Total gain: +%.0f installs/month\n", total)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func keywordColumns(width int) []table.Column {
	keyword := maxInt(minKeywordColumn, width-4*numericColWidth-6)
	return []table.Column{
		{Title: "Keyword", Width: keyword},
		{Title: "Volume", Width: numericColWidth},
		{Title: "Difficulty", Width: numericColWidth},
		{Title: "Rank", Width: numericColWidth},
		{Title: "Opportunity", Width: numericColWidth},
	}
}

func keywordRows(records []model.KeywordRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.Keyword,
			stats.FormatMetric(r.Volume, 0),
			stats.FormatMetric(r.Difficulty, 0),
			stats.FormatMetric(r.CurrentRank, 0),
			stats.Bucket(stats.OpportunityScore(r)),
		})
	}
	return rows
}

func buildKeywordTable(records []model.KeywordRecord, width, height int) table.Model {
	t := table.New(
		table.WithColumns(keywordColumns(width)),
		table.WithRows(keywordRows(records)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
