package recommend

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/asolens/internal/model"
)

func record(keyword string, volume, difficulty float64) model.KeywordRecord {
	return model.KeywordRecord{Keyword: keyword, Volume: model.Some(volume), Difficulty: model.Some(difficulty)}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore(t *testing.T) {
	r := record("sleep", 100, 20)
	r.CurrentRank = model.Some(10)
	if got := Score(r, SlotTitle); !near(got, 93) {
		t.Fatalf("title score: got %v", got)
	}
	if got := Score(r, SlotSubtitle); !near(got, 94) {
		t.Fatalf("subtitle score: got %v", got)
	}
	if got := Score(r, SlotKeywords); !near(got, 90) {
		t.Fatalf("keyword field score: got %v", got)
	}
	empty := model.KeywordRecord{Keyword: "x"}
	if !near(Score(empty, SlotTitle), 15) || !near(Score(empty, SlotSubtitle), 15) || !near(Score(empty, SlotKeywords), 25) {
		t.Fatalf("unexpected default scores")
	}
	r.CurrentRank = model.Some(400)
	if got := Score(r, SlotTitle); !near(got, 84) {
		t.Fatalf("rank beyond 100 should be capped, got %v", got)
	}
}

func TestRankIsStable(t *testing.T) {
	records := []model.KeywordRecord{record("a", 10, 50), record("b", 500, 50), record("c", 10, 50)}
	ranked := Rank(records, SlotSubtitle)
	if got := KeywordsOf(ranked); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	if records[0].Keyword != "a" {
		t.Fatalf("input should not be reordered")
	}
}

func TestCompose(t *testing.T) {
	records := []model.KeywordRecord{
		record("sleep sounds", 900, 30),
		record("white noise", 500, 20),
		record("rain sounds", 100, 10),
	}
	options := Compose(records)
	if len(options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(options))
	}
	if options[0].Title != "Sleep Sounds - White Noise" {
		t.Fatalf("unexpected first title %q", options[0].Title)
	}
	if options[0].Subtitle != "Track your rain sounds" {
		t.Fatalf("unexpected first subtitle %q", options[0].Subtitle)
	}
	for _, opt := range options {
		assertLimits(t, opt)
	}
	if again := Compose(records); !reflect.DeepEqual(options, again) {
		t.Fatalf("compose should be deterministic")
	}
}

func TestComposeSmallInputs(t *testing.T) {
	if got := Compose(nil); len(got) != 0 {
		t.Fatalf("expected no options, got %v", got)
	}
	options := Compose([]model.KeywordRecord{{Keyword: "meditation"}})
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(options))
	}
	if options[0].Title != "Meditation" || options[1].Title != "Meditation Pro" {
		t.Fatalf("unexpected titles: %q, %q", options[0].Title, options[1].Title)
	}
	if options[0].Subtitle != "Track your meditation" {
		t.Fatalf("unexpected subtitle %q", options[0].Subtitle)
	}
}

func TestComposeKeywordField(t *testing.T) {
	var records []model.KeywordRecord
	for i := 0; i < 40; i++ {
		records = append(records, record(fmt.Sprintf("keyword number %02d", i), 100, 50))
	}
	options := Compose(records)
	if len(options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(options))
	}
	for _, opt := range options {
		assertLimits(t, opt)
	}
	field := options[0].Keywords
	if len(field) != 5 || field[0] != "keyword number 04" {
		t.Fatalf("unexpected keyword field: %v", field)
	}
}

func TestKeywordFieldSkipsOversized(t *testing.T) {
	records := []model.KeywordRecord{
		{Keyword: strings.Repeat("x", 120)},
		{Keyword: "rain, thunder"},
		{Keyword: "Used"},
	}
	got := KeywordField(records, map[string]bool{"used": true})
	if !reflect.DeepEqual(got, []string{"rain thunder"}) {
		t.Fatalf("unexpected keyword field: %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Ocean Waves and Forest Rain & Birdsong", 30); got != "Ocean Waves and Forest Rain" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("Schlafgeräusche für Kinder", 30); got != "Schlafgeräusche für Kinder" {
		t.Fatalf("short strings should be kept, got %q", got)
	}
	if got := Truncate("ééééé", 3); got != "ééé" {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
}

func TestDedupKeywords(t *testing.T) {
	got := DedupKeywords([]string{" Sleep ", "sleep", "", "Rain  Sounds", "rain sounds"})
	if !reflect.DeepEqual(got, []string{"Sleep", "Rain  Sounds"}) {
		t.Fatalf("unexpected dedup result: %v", got)
	}
}

func TestGenerate(t *testing.T) {
	known := []model.KeywordRecord{record("white noise", 5000, 10)}
	resp := Generate(Request{Keywords: []string{"baby sleep", "White Noise", "white noise", "lullaby"}}, known)
	if len(resp.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(resp.Options))
	}
	if !strings.HasPrefix(resp.Options[0].Title, "White Noise") {
		t.Fatalf("known metrics should lead the title, got %q", resp.Options[0].Title)
	}
	for _, opt := range resp.Options {
		assertLimits(t, opt)
	}
	if empty := Generate(Request{}, nil); len(empty.Options) != 0 {
		t.Fatalf("expected no options, got %v", empty.Options)
	}
}

func assertLimits(t *testing.T, opt model.MetadataOption) {
	t.Helper()
	if n := utf8.RuneCountInString(opt.Title); n > MaxTitleLen {
		t.Fatalf("title too long (%d): %q", n, opt.Title)
	}
	if n := utf8.RuneCountInString(opt.Subtitle); n > MaxSubtitleLen {
		t.Fatalf("subtitle too long (%d): %q", n, opt.Subtitle)
	}
	if n := utf8.RuneCountInString(strings.Join(opt.Keywords, ",")); n > MaxKeywordFieldLen {
		t.Fatalf("keyword field too long (%d): %v", n, opt.Keywords)
	}
}
