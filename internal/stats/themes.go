package stats

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/asolens/internal/model"
)

// OtherTheme collects keywords that match no theme.
const OtherTheme = "other"

// Theme groups keywords sharing a frequent token.
type Theme struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Themes groups keywords by tokens longer than three characters that occur
// in at least two keywords. A keyword joins every theme it contains as a
// case-insensitive substring; keywords joining none land in OtherTheme.
func Themes(records []model.KeywordRecord) []Theme {
	if len(records) == 0 {
		return []Theme{}
	}
	lowered := make([]string, len(records))
	counts := map[string]int{}
	for i, r := range records {
		lowered[i] = strings.ToLower(r.Keyword)
		seen := map[string]struct{}{}
		for _, tok := range strings.Fields(lowered[i]) {
			if utf8.RuneCountInString(tok) <= 3 {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			counts[tok]++
		}
	}

	var themes []Theme
	for tok, n := range counts {
		if n < 2 {
			continue
		}
		theme := Theme{Name: tok}
		for i, r := range records {
			if strings.Contains(lowered[i], tok) {
				theme.Keywords = append(theme.Keywords, r.Keyword)
			}
		}
		if len(theme.Keywords) >= 2 {
			themes = append(themes, theme)
		}
	}
	sort.Slice(themes, func(i, j int) bool {
		if len(themes[i].Keywords) == len(themes[j].Keywords) {
			return themes[i].Name < themes[j].Name
		}
		return len(themes[i].Keywords) > len(themes[j].Keywords)
	})

	grouped := map[string]struct{}{}
	for _, theme := range themes {
		for _, kw := range theme.Keywords {
			grouped[kw] = struct{}{}
		}
	}
	other := Theme{Name: OtherTheme}
	for _, r := range records {
		if _, ok := grouped[r.Keyword]; !ok {
			other.Keywords = append(other.Keywords, r.Keyword)
		}
	}
	if len(other.Keywords) > 0 {
		themes = append(themes, other)
	}
	if themes == nil {
		return []Theme{}
	}
	return themes
}
