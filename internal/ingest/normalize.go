// Package ingest turns keyword CSV exports into parsed datasets.
package ingest

import (
	"sort"
	"strings"
)

// Canonical field names.
const (
	FieldKeyword         = "keyword"
	FieldVolume          = "volume"
	FieldDifficulty      = "difficulty"
	FieldCurrentRank     = "currentRank"
	FieldRelevancy       = "relevancy"
	FieldTraffic         = "traffic"
	FieldMaximumReach    = "maximumReach"
	FieldCPC             = "cpc"
	FieldCompetition     = "competition"
	FieldChance          = "chance"
	FieldKEI             = "kei"
	FieldStarred         = "starred"
	FieldBranded         = "branded"
	FieldAppName         = "appName"
	FieldAppID           = "appId"
	FieldStore           = "store"
	FieldCategory        = "category"
	FieldCurrentInstalls = "currentInstalls"
)

// recordFields lists the canonical keyword fields reported as missing when absent.
var recordFields = []string{
	FieldKeyword,
	FieldVolume,
	FieldDifficulty,
	FieldCurrentRank,
	FieldRelevancy,
	FieldTraffic,
	FieldMaximumReach,
	FieldCPC,
	FieldCompetition,
}

// synonyms maps normalized header text to canonical field names.
// "traffic" and "competition" resolve to volume and difficulty first and fall
// back to their own canonical fields when those are already taken.
var synonyms = map[string]string{
	"keyword":            FieldKeyword,
	"keywords":           FieldKeyword,
	"term":               FieldKeyword,
	"search term":        FieldKeyword,
	"query":              FieldKeyword,
	"keyword phrase":     FieldKeyword,
	"volume":             FieldVolume,
	"search volume":      FieldVolume,
	"monthly searches":   FieldVolume,
	"traffic":            FieldVolume,
	"searches":           FieldVolume,
	"difficulty":         FieldDifficulty,
	"keyword difficulty": FieldDifficulty,
	"competition":        FieldDifficulty,
	"kd":                 FieldDifficulty,
	"rank":               FieldCurrentRank,
	"current rank":       FieldCurrentRank,
	"currentrank":        FieldCurrentRank,
	"position":           FieldCurrentRank,
	"rankings":           FieldCurrentRank,
	"ranking":            FieldCurrentRank,
	"reach":              FieldMaximumReach,
	"maximum reach":      FieldMaximumReach,
	"maximumreach":       FieldMaximumReach,
	"max reach":          FieldMaximumReach,
	"potential reach":    FieldMaximumReach,
	"relevancy":          FieldRelevancy,
	"relevance":          FieldRelevancy,
	"relevancy score":    FieldRelevancy,
	"cpc":                FieldCPC,
	"cost per click":     FieldCPC,
	"chance":             FieldChance,
	"kei":                FieldKEI,
	"starred":            FieldStarred,
	"favorite":           FieldStarred,
	"branded":            FieldBranded,
	"brand":              FieldBranded,
	"app name":           FieldAppName,
	"appname":            FieldAppName,
	"app":                FieldAppName,
	"app id":             FieldAppID,
	"appid":              FieldAppID,
	"bundle id":          FieldAppID,
	"store":              FieldStore,
	"category":           FieldCategory,
	"installs":           FieldCurrentInstalls,
	"current installs":   FieldCurrentInstalls,
	"currentinstalls":    FieldCurrentInstalls,
	"downloads":          FieldCurrentInstalls,
}

// Mapping relates canonical field names to CSV columns.
type Mapping struct {
	// Fields maps canonical name to the original header text.
	Fields map[string]string
	// Columns maps canonical name to the column index.
	Columns map[string]int
	// Order lists canonical names in column order.
	Order []string
	// Available lists every mapped canonical name in column order.
	Available []string
	// Missing lists canonical keyword fields that no header mapped to.
	Missing []string
}

// Has reports whether the canonical field was mapped.
func (m Mapping) Has(canonical string) bool {
	_, ok := m.Columns[canonical]
	return ok
}

// Normalize maps header strings to canonical field names.
func Normalize(headers []string) (Mapping, error) {
	m := Mapping{
		Fields:  map[string]string{},
		Columns: map[string]int{},
	}
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = headerKey(h)
	}
	claim := func(canonical string, idx int) bool {
		if _, taken := m.Columns[canonical]; taken {
			return false
		}
		m.Columns[canonical] = idx
		m.Fields[canonical] = headers[idx]
		return true
	}
	claimed := make([]bool, len(headers))

	// Exact canonical spellings win over synonyms.
	for i, key := range keys {
		if canonical, ok := synonyms[key]; ok && key == strings.ToLower(canonical) {
			claimed[i] = claim(canonical, i)
		}
	}
	for i, key := range keys {
		if claimed[i] || key == "" {
			continue
		}
		if canonical, ok := synonyms[key]; ok {
			claimed[i] = claim(canonical, i)
		}
	}
	for i, key := range keys {
		if claimed[i] || key == "" {
			continue
		}
		claimed[i] = claim(ownCanonical(key), i)
	}

	if !m.Has(FieldKeyword) {
		return Mapping{}, ErrMissingKeywordColumn
	}

	m.Order = make([]string, 0, len(m.Columns))
	for canonical := range m.Columns {
		m.Order = append(m.Order, canonical)
	}
	sort.Slice(m.Order, func(i, j int) bool {
		return m.Columns[m.Order[i]] < m.Columns[m.Order[j]]
	})
	m.Available = append([]string(nil), m.Order...)
	for _, field := range recordFields {
		if !m.Has(field) {
			m.Missing = append(m.Missing, field)
		}
	}
	return m, nil
}

// ownCanonical returns the canonical name a header keeps when no synonym applies.
func ownCanonical(key string) string {
	switch key {
	case "traffic":
		return FieldTraffic
	case "competition":
		return FieldCompetition
	}
	return key
}

func headerKey(header string) string {
	h := strings.TrimPrefix(header, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}
