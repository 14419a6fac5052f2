package recommend

import (
	"strings"

	"github.com/verte-zerg/asolens/internal/model"
)

// Request is the input of the metadata generator.
type Request struct {
	Keywords        []string `json:"keywords"`
	CurrentInstalls *float64 `json:"currentInstalls,omitempty"`
}

// Response lists generated metadata options.
type Response struct {
	Options []model.MetadataOption `json:"options"`
}

// DedupKeywords trims keywords and drops blanks and case-insensitive
// duplicates, keeping the first spelling.
func DedupKeywords(keywords []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		key := normalizeKey(kw)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// Generate composes options for the requested keywords. Metrics are taken
// from known when a keyword matches one of its records; other keywords are
// scored with defaults and keep request order.
func Generate(req Request, known []model.KeywordRecord) Response {
	byKey := make(map[string]model.KeywordRecord, len(known))
	for _, r := range known {
		key := normalizeKey(r.Keyword)
		if _, ok := byKey[key]; !ok {
			byKey[key] = r
		}
	}
	keywords := DedupKeywords(req.Keywords)
	records := make([]model.KeywordRecord, 0, len(keywords))
	for _, kw := range keywords {
		r, ok := byKey[normalizeKey(kw)]
		if !ok {
			r = model.KeywordRecord{Keyword: kw}
		}
		records = append(records, r)
	}
	return Response{Options: Compose(records)}
}

// KeywordsOf lists the keywords of records in order.
func KeywordsOf(records []model.KeywordRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Keyword
	}
	return out
}
