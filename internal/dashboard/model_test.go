package dashboard

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/asolens/internal/model"
	"github.com/verte-zerg/asolens/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	st, err := store.Open()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ds := model.ParsedDataset{
		ID:     "ds",
		Source: "keywords.csv",
		Schema: "flexible",
		Keywords: []model.KeywordRecord{
			{Keyword: "sleep sounds", Volume: model.Some(900), Difficulty: model.Some(30), CurrentRank: model.Some(40)},
			{Keyword: "white noise", Volume: model.Some(700), Difficulty: model.Some(60), CurrentRank: model.Some(8)},
			{Keyword: "rain sounds", Volume: model.Some(500), Difficulty: model.Some(20)},
			{Keyword: "walking tracker", Volume: model.Some(100), Difficulty: model.Some(10), CurrentRank: model.Some(70)},
		},
	}
	if err := st.Replace(context.Background(), ds); err != nil {
		t.Fatalf("replace: %v", err)
	}
	m := NewModel(st, Config{Top: 3})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewShowsTabsAndSummary(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	for _, want := range []string{"Overview", "Keywords", "Opportunities", "Projections", "Metadata", "keywords.csv"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
}

func TestTabNavigationWraps(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabMetadata {
		t.Fatalf("expected wrap to metadata, got %d", m.activeTab)
	}
	m.Update(key("l"))
	if m.activeTab != tabOverview {
		t.Fatalf("expected wrap to overview, got %d", m.activeTab)
	}
}

func TestEnterProjectsSelectedKeyword(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("l"))
	if m.activeTab != tabKeywords {
		t.Fatalf("expected keywords tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.activeTab != tabProjections {
		t.Fatalf("expected projections tab, got %d", m.activeTab)
	}
	if m.Selected() != "white noise" {
		t.Fatalf("expected white noise selected, got %q", m.Selected())
	}
	if !strings.Contains(m.View(), "Projection: white noise") {
		t.Fatalf("projection not rendered:\n%s", m.View())
	}
}

func TestFilterQueriesStore(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("/"))
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(key("sounds"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(key("600"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("filter should close, error %q", m.filterError)
	}
	if len(m.keywords) != 1 || m.keywords[0].Keyword != "sleep sounds" {
		t.Fatalf("unexpected filtered keywords: %+v", m.keywords)
	}
}

func TestFilterRejectsInvalidNumbers(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(key("lots"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || !strings.Contains(m.filterError, "min volume") {
		t.Fatalf("expected min volume error, got mode=%v err=%q", m.filterMode, m.filterError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode || len(m.keywords) != 4 {
		t.Fatalf("escape should keep the previous filter, got %d keywords", len(m.keywords))
	}
}

func TestMetadataOptionCycles(t *testing.T) {
	m := newTestModel(t)
	if len(m.options) != 3 {
		t.Fatalf("expected three options, got %d", len(m.options))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(key("o"))
	if m.optionIndex != 1 {
		t.Fatalf("expected option 2, got %d", m.optionIndex+1)
	}
	if !strings.Contains(m.viewports[tabMetadata].View(), "Option 1") {
		t.Fatalf("metadata view missing options")
	}
}

func TestEmptyStoreShowsError(t *testing.T) {
	st, err := store.Open()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	m := NewModel(st, Config{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.View(), "no dataset loaded") {
		t.Fatalf("expected error in footer:\n%s", m.View())
	}
}
