package recommend

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/asolens/internal/model"
)

const (
	// MaxTitleLen and MaxSubtitleLen are store limits in characters.
	MaxTitleLen    = 30
	MaxSubtitleLen = 30
	// MaxKeywordFieldLen is the store limit for the comma-separated keyword field.
	MaxKeywordFieldLen = 100

	keywordFieldBudget = 97
	maxOptions         = 3
)

var titlePatterns = []func(a, b string) string{
	func(a, b string) string {
		if b == "" {
			return a
		}
		return a + " - " + b
	},
	func(a, b string) string {
		if b == "" {
			return a + " Pro"
		}
		return a + ": " + b
	},
	func(a, b string) string {
		if b == "" {
			return a + " App"
		}
		return a + " & " + b
	},
}

var subtitlePatterns = []func(a, b string) string{
	func(a, b string) string {
		if b == "" {
			return "Track your " + a
		}
		return a + " and " + b
	},
	func(a, b string) string {
		if b == "" {
			return "Your daily " + a + " companion"
		}
		return "Your daily " + a + " with " + b
	},
	func(a, b string) string {
		if b == "" {
			return "Simple " + a + " every day"
		}
		return "Simple " + a + " for " + b
	},
}

// Compose builds metadata options from the records. Option i uses title and
// subtitle pattern i and rotates through the slot rankings, so the output is
// deterministic. Three options are built when at least three keywords exist,
// two otherwise, none for an empty input.
func Compose(records []model.KeywordRecord) []model.MetadataOption {
	records = uniqueRecords(records)
	if len(records) == 0 {
		return []model.MetadataOption{}
	}
	count := 2
	if len(records) >= maxOptions {
		count = maxOptions
	}
	titles := Rank(records, SlotTitle)
	subtitles := Rank(records, SlotSubtitle)
	fields := Rank(records, SlotKeywords)

	options := make([]model.MetadataOption, 0, count)
	for i := 0; i < count; i++ {
		used := map[string]bool{}
		ta, tb := pickPair(titles, i, used)
		sa, sb := pickPair(subtitles, i, used)
		if sa == "" {
			sa = ta
		}
		option := model.MetadataOption{
			Title:    Truncate(titleCase(titlePatterns[i%len(titlePatterns)](ta, tb)), MaxTitleLen),
			Subtitle: Truncate(sentenceCase(subtitlePatterns[i%len(subtitlePatterns)](sa, sb)), MaxSubtitleLen),
		}
		option.Keywords = KeywordField(fields, used)
		options = append(options, option)
	}
	return options
}

// pickPair takes up to two unused keywords starting at offset and marks
// them used.
func pickPair(ranked []model.KeywordRecord, offset int, used map[string]bool) (string, string) {
	var picked []string
	for i := 0; i < len(ranked) && len(picked) < 2; i++ {
		kw := ranked[(offset+i)%len(ranked)].Keyword
		key := normalizeKey(kw)
		if used[key] {
			continue
		}
		used[key] = true
		picked = append(picked, kw)
	}
	switch len(picked) {
	case 0:
		return "", ""
	case 1:
		return picked[0], ""
	default:
		return picked[0], picked[1]
	}
}

// KeywordField greedily adds keywords, skipping any in exclude, while the
// comma-joined length stays within 97 characters. Keywords that do not fit
// are skipped so shorter ones later in the ranking can still be placed.
func KeywordField(ranked []model.KeywordRecord, exclude map[string]bool) []string {
	out := []string{}
	length := 0
	for _, r := range ranked {
		kw := strings.Join(strings.Fields(strings.ReplaceAll(r.Keyword, ",", " ")), " ")
		if kw == "" || exclude[normalizeKey(kw)] {
			continue
		}
		next := utf8.RuneCountInString(kw)
		if length > 0 {
			next += length + 1
		}
		if next > keywordFieldBudget {
			continue
		}
		out = append(out, kw)
		length = next
	}
	return out
}

// Truncate cuts s to at most limit characters, dropping dangling separators.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit]), " :&,-")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func sentenceCase(s string) string {
	return capitalize(strings.TrimSpace(s))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func uniqueRecords(records []model.KeywordRecord) []model.KeywordRecord {
	seen := map[string]bool{}
	out := make([]model.KeywordRecord, 0, len(records))
	for _, r := range records {
		key := normalizeKey(r.Keyword)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func normalizeKey(keyword string) string {
	return strings.ToLower(strings.Join(strings.Fields(keyword), " "))
}
