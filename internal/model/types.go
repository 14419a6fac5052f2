// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"math"
)

// Metric is an optional numeric value. The zero value is absent.
type Metric struct {
	Value float64
	Valid bool
}

// Some returns a present metric. Non-finite values are treated as absent.
func Some(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Valid: true}
}

// Or returns the value when present and fallback otherwise.
func (m Metric) Or(fallback float64) float64 {
	if !m.Valid {
		return fallback
	}
	return m.Value
}

// MarshalJSON encodes absent metrics as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON decodes a number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*m = Metric{}
		return nil
	}
	*m = Some(*v)
	return nil
}

// ExtraField keeps an unrecognized CSV column for a record.
type ExtraField struct {
	Name   string `json:"name"`
	Raw    string `json:"raw"`
	Number Metric `json:"number"`
}

// KeywordRecord is one unique keyword row of a dataset.
type KeywordRecord struct {
	Keyword      string `json:"keyword"`
	Volume       Metric `json:"volume"`
	Difficulty   Metric `json:"difficulty"`
	CurrentRank  Metric `json:"currentRank"`
	Relevancy    Metric `json:"relevancy"`
	Traffic      Metric `json:"traffic"`
	MaximumReach Metric `json:"maximumReach"`
	CPC          Metric `json:"cpc"`
	Competition  Metric `json:"competition"`
	Chance       Metric `json:"chance"`
	KEI          Metric `json:"kei"`
	Starred      bool   `json:"starred"`
	Branded      bool   `json:"branded"`

	// Extra holds unrecognized columns in header order.
	Extra []ExtraField `json:"extra,omitempty"`
	// Backfilled lists canonical fields synthesized by a backfill generator.
	Backfilled []string `json:"backfilled,omitempty"`
}

// ExtraValue returns the raw value of an extension column.
func (r KeywordRecord) ExtraValue(name string) (string, bool) {
	for _, f := range r.Extra {
		if f.Name == name {
			return f.Raw, true
		}
	}
	return "", false
}

// AppDetails describes the app a dataset belongs to. All fields are optional.
type AppDetails struct {
	AppName         string `json:"appName,omitempty"`
	AppID           string `json:"appId,omitempty"`
	Store           string `json:"store,omitempty"`
	Category        string `json:"category,omitempty"`
	CurrentInstalls Metric `json:"currentInstalls"`
}

// RowIssue describes a rejected row in the strict schema.
type RowIssue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ParsedDataset is the result of parsing one uploaded file.
type ParsedDataset struct {
	ID              string          `json:"id"`
	Source          string          `json:"source,omitempty"`
	Schema          string          `json:"schema"`
	App             AppDetails      `json:"app"`
	Keywords        []KeywordRecord `json:"keywords"`
	MissingFields   []string        `json:"missingFields"`
	AvailableFields []string        `json:"availableFields"`
	Issues          []RowIssue      `json:"issues,omitempty"`
}

// ProjectionPoint is the projected state after a number of months.
type ProjectionPoint struct {
	Months      int     `json:"months"`
	Rank        float64 `json:"rank"`
	Installs    float64 `json:"installs"`
	InstallGain float64 `json:"installGain"`
}

// ProjectionResult holds projections for one keyword, ordered by horizon.
type ProjectionResult struct {
	Keyword         string            `json:"keyword"`
	StartRank       float64           `json:"startRank"`
	CurrentInstalls float64           `json:"currentInstalls"`
	Points          []ProjectionPoint `json:"points"`
}

// MetadataOption is one candidate title/subtitle/keyword-field combination.
type MetadataOption struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Keywords []string `json:"keywords"`
}

// AnalyzeConfig defines parsing and reporting options.
type AnalyzeConfig struct {
	Strict   bool
	Backfill bool
	Seed     int64
	Top      int
	Horizons []int
}

// BoostConfig defines metadata boosts per placement slot.
type BoostConfig struct {
	Title    float64
	Subtitle float64
	Keywords float64
}

// KeywordFilter narrows the keyword list shown to the user.
type KeywordFilter struct {
	Query         string
	MinVolume     float64
	MaxDifficulty float64
	RankedOnly    bool
	Limit         int
}
