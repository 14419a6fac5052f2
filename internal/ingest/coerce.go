package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/asolens/internal/model"
)

type fieldKind int

const (
	kindNumber fieldKind = iota
	kindBool
)

// coercion describes how a canonical keyword field is read from a cell.
type coercion struct {
	kind   fieldKind
	metric func(*model.KeywordRecord) *model.Metric
	flag   func(*model.KeywordRecord) *bool
	// bounded fields are clamped to [0, 100] by the strict schema.
	bounded bool
}

var coercions = map[string]coercion{
	FieldVolume:       {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.Volume }},
	FieldDifficulty:   {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.Difficulty }, bounded: true},
	FieldCurrentRank:  {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.CurrentRank }},
	FieldRelevancy:    {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.Relevancy }, bounded: true},
	FieldTraffic:      {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.Traffic }},
	FieldMaximumReach: {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.MaximumReach }},
	FieldCPC:          {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.CPC }},
	FieldCompetition:  {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.Competition }},
	FieldChance:       {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.Chance }, bounded: true},
	FieldKEI:          {kind: kindNumber, metric: func(r *model.KeywordRecord) *model.Metric { return &r.KEI }},
	FieldStarred:      {kind: kindBool, flag: func(r *model.KeywordRecord) *bool { return &r.Starred }},
	FieldBranded:      {kind: kindBool, flag: func(r *model.KeywordRecord) *bool { return &r.Branded }},
}

// applyFlexible sets a field from a non-blank cell. Unparseable numbers stay absent.
func (c coercion) applyFlexible(rec *model.KeywordRecord, raw string) {
	switch c.kind {
	case kindNumber:
		if v, ok := ParseNumber(raw); ok {
			*c.metric(rec) = model.Some(v)
		}
	case kindBool:
		*c.flag(rec) = ParseBool(raw)
	}
}

// applyStrict sets a field from any cell. Unparseable numbers become 0.
func (c coercion) applyStrict(rec *model.KeywordRecord, raw string) {
	switch c.kind {
	case kindNumber:
		v, ok := ParseNumber(raw)
		if !ok {
			v = 0
		}
		if c.bounded {
			v = clamp(v, 0, 100)
		}
		*c.metric(rec) = model.Some(v)
	case kindBool:
		*c.flag(rec) = ParseBool(raw)
	}
}

var numberNoise = strings.NewReplacer(
	",", "",
	"$", "",
	"%", "",
	"€", "",
	"£", "",
	"¥", "",
	" ", "",
	"\u00a0", "",
)

// ParseNumber strips thousands separators, currency and percent symbols and
// parses the remainder as a finite float.
func ParseNumber(raw string) (float64, bool) {
	s := numberNoise.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseBool reports whether the value is "true", "yes" or "1", ignoring case.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// setAppField records an app-level value. The first non-blank value wins.
func setAppField(app *model.AppDetails, canonical, raw string) bool {
	switch canonical {
	case FieldAppName:
		if app.AppName == "" {
			app.AppName = raw
		}
	case FieldAppID:
		if app.AppID == "" {
			app.AppID = raw
		}
	case FieldStore:
		if app.Store == "" {
			app.Store = raw
		}
	case FieldCategory:
		if app.Category == "" {
			app.Category = raw
		}
	case FieldCurrentInstalls:
		if !app.CurrentInstalls.Valid {
			if v, ok := ParseNumber(raw); ok {
				app.CurrentInstalls = model.Some(v)
			}
		}
	default:
		return false
	}
	return true
}

func extraField(canonical, raw string) model.ExtraField {
	f := model.ExtraField{Name: canonical, Raw: raw}
	if v, ok := ParseNumber(raw); ok {
		f.Number = model.Some(v)
	}
	return f
}
