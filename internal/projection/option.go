package projection

import (
	"strings"

	"github.com/verte-zerg/asolens/internal/model"
)

// DefaultBoosts are the rank-improvement multipliers per metadata slot.
var DefaultBoosts = model.BoostConfig{Title: 1.5, Subtitle: 1.25, Keywords: 1.1}

// Placement names the metadata slot a keyword lands in.
type Placement string

const (
	PlacementTitle    Placement = "title"
	PlacementSubtitle Placement = "subtitle"
	PlacementKeywords Placement = "keywords"
)

// OptionProjection is the projection of one keyword within a metadata option.
type OptionProjection struct {
	Placement Placement              `json:"placement"`
	Result    model.ProjectionResult `json:"result"`
}

// PlacementOf reports where a keyword appears in an option. Title wins over
// subtitle, subtitle over the keyword field.
func PlacementOf(keyword string, option model.MetadataOption) (Placement, bool) {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return "", false
	}
	switch {
	case strings.Contains(strings.ToLower(option.Title), needle):
		return PlacementTitle, true
	case strings.Contains(strings.ToLower(option.Subtitle), needle):
		return PlacementSubtitle, true
	}
	for _, kw := range option.Keywords {
		if strings.EqualFold(strings.TrimSpace(kw), needle) {
			return PlacementKeywords, true
		}
	}
	return "", false
}

// ProjectOption projects every dataset keyword used by an option, boosted by
// its slot. Keywords the option does not use are left out.
func ProjectOption(records []model.KeywordRecord, option model.MetadataOption, boosts model.BoostConfig, horizons []int) []OptionProjection {
	out := []OptionProjection{}
	for _, r := range records {
		placement, ok := PlacementOf(r.Keyword, option)
		if !ok {
			continue
		}
		in := InputFrom(r)
		in.Boost = boostFor(boosts, placement)
		out = append(out, OptionProjection{Placement: placement, Result: Project(in, horizons)})
	}
	return out
}

func boostFor(boosts model.BoostConfig, placement Placement) float64 {
	switch placement {
	case PlacementTitle:
		return boosts.Title
	case PlacementSubtitle:
		return boosts.Subtitle
	default:
		return boosts.Keywords
	}
}
