// Package dashboard provides the Bubble Tea keyword insight interface.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/asolens/internal/model"
	"github.com/verte-zerg/asolens/internal/projection"
	"github.com/verte-zerg/asolens/internal/recommend"
	"github.com/verte-zerg/asolens/internal/stats"
	"github.com/verte-zerg/asolens/internal/store"
)

const (
	tabOverview = iota
	tabKeywords
	tabOpportunities
	tabProjections
	tabMetadata
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3A9AC8"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Config holds the dashboard settings.
type Config struct {
	Top      int
	Horizons []int
	Boosts   model.BoostConfig
	// Filter is applied to the keyword table on start.
	Filter model.KeywordFilter
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	store *store.Store
	cfg   Config

	dataset  model.ParsedDataset
	report   stats.Report
	keywords []model.KeywordRecord
	options  []model.MetadataOption
	errMsg   string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	kwTable   table.Model

	selected    string
	optionIndex int

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a dashboard over the dataset held by st.
func NewModel(st *store.Store, cfg Config) *Model {
	if len(cfg.Horizons) == 0 {
		cfg.Horizons = projection.DefaultHorizons
	}
	if cfg.Boosts == (model.BoostConfig{}) {
		cfg.Boosts = projection.DefaultBoosts
	}
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Keywords", "Opportunities", "Projections", "Metadata"},
	}
	m.initInputs()
	m.initViewports()
	m.kwTable = buildKeywordTable(nil, 80, 10)
	m.load()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "o":
			if m.activeTab == tabMetadata && len(m.options) > 0 {
				m.optionIndex = (m.optionIndex + 1) % len(m.options)
				m.renderTabContents()
			}
			return m, nil
		case "enter":
			if m.activeTab == tabKeywords {
				if row := m.kwTable.SelectedRow(); len(row) > 0 {
					m.selectKeyword(row[0])
					m.activeTab = tabProjections
					m.kwTable.Blur()
					return m, tea.ClearScreen
				}
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabKeywords {
				m.kwTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabKeywords {
				m.kwTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabKeywords {
				var cmd tea.Cmd
				m.kwTable, cmd = m.kwTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Selected returns the keyword shown on the projections tab.
func (m *Model) Selected() string {
	return m.selected
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Contains: "),
		newFilterInput("Min volume: "),
		newFilterInput("Max difficulty: "),
		newFilterInput("Limit: "),
	}
	m.setInputsFromFilter()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromFilter() {
	f := m.cfg.Filter
	m.filterInputs[0].SetValue(f.Query)
	m.filterInputs[1].SetValue(formatOptional(f.MinVolume))
	m.filterInputs[2].SetValue(formatOptional(f.MaxDifficulty))
	if f.Limit > 0 {
		m.filterInputs[3].SetValue(strconv.Itoa(f.Limit))
	} else {
		m.filterInputs[3].SetValue("")
	}
}

func formatOptional(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.kwTable.SetColumns(keywordColumns(m.width))
	m.kwTable.SetWidth(m.width)
	m.kwTable.SetHeight(maxInt(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabKeywords {
		m.kwTable.Focus()
	} else {
		m.kwTable.Blur()
	}
}

// load reads the dataset and rebuilds every derived view.
func (m *Model) load() {
	ctx := context.Background()
	ds, err := m.store.Dataset(ctx)
	if err != nil {
		m.errMsg = err.Error()
		m.renderTabContents()
		return
	}
	m.dataset = ds
	m.report = stats.BuildReport(ds, m.cfg.Top)
	m.options = recommend.Compose(ds.Keywords)
	if m.optionIndex >= len(m.options) {
		m.optionIndex = 0
	}
	if m.selected == "" && len(m.report.Recommended) > 0 {
		m.selected = m.report.Recommended[0].Keyword.Keyword
	}
	m.errMsg = ""
	m.refreshKeywords()
}

func (m *Model) refreshKeywords() {
	keywords, err := m.store.Keywords(context.Background(), m.cfg.Filter)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.keywords = keywords
	m.kwTable.SetRows(keywordRows(keywords))
	m.kwTable.GotoTop()
	m.renderTabContents()
}

func (m *Model) selectKeyword(keyword string) {
	m.selected = keyword
	m.renderTabContents()
}

func (m *Model) record(keyword string) (model.KeywordRecord, bool) {
	for _, r := range m.dataset.Keywords {
		if r.Keyword == keyword {
			return r, true
		}
	}
	return model.KeywordRecord{}, false
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load dataset.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.dataset, m.report, width))
	m.viewports[tabOpportunities].SetContent(renderOpportunities(m.report))
	r, ok := m.record(m.selected)
	if ok {
		m.viewports[tabProjections].SetContent(renderProjection(r, m.cfg.Horizons, width))
	} else {
		m.viewports[tabProjections].SetContent("No keyword selected. Pick one on the Keywords tab.")
	}
	m.viewports[tabMetadata].SetContent(renderMetadata(m.dataset.Keywords, m.options, m.optionIndex, m.cfg))
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromFilter()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshKeywords()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	query := strings.TrimSpace(m.filterInputs[0].Value())
	minVolume, err := parseNonNegative(m.filterInputs[1].Value())
	if err != nil {
		return fmt.Errorf("invalid min volume (use 0 or a positive number)")
	}
	maxDifficulty, err := parseNonNegative(m.filterInputs[2].Value())
	if err != nil {
		return fmt.Errorf("invalid max difficulty (use 0 or a positive number)")
	}
	limit := 0
	if raw := strings.TrimSpace(m.filterInputs[3].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid limit (use 0 or positive integer)")
		}
		limit = parsed
	}
	m.cfg.Filter = model.KeywordFilter{
		Query:         query,
		MinVolume:     minVolume,
		MaxDifficulty: maxDifficulty,
		RankedOnly:    m.cfg.Filter.RankedOnly,
		Limit:         limit,
	}
	return nil
}

func parseNonNegative(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}
