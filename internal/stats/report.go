package stats

import "github.com/verte-zerg/asolens/internal/model"

// Report contains precomputed insights for one dataset snapshot.
type Report struct {
	Summary         Summary               `json:"summary"`
	Recommended     []ScoredKeyword       `json:"recommended"`
	Opportunities   []ScoredKeyword       `json:"opportunities"`
	LowCompetition  []model.KeywordRecord `json:"lowCompetition"`
	Underperforming []model.KeywordRecord `json:"underperforming"`
	Themes          []Theme               `json:"themes"`
	Buckets         BucketCounts          `json:"buckets"`
}

// BuildReport runs every aggregation over the dataset. top caps the
// recommended and opportunity lists; top <= 0 keeps all keywords.
func BuildReport(ds model.ParsedDataset, top int) Report {
	return Report{
		Summary:         Summarize(ds),
		Recommended:     TopByScore(ds.Keywords, top),
		Opportunities:   TopByOpportunity(ds.Keywords, top),
		LowCompetition:  LowCompetition(ds.Keywords),
		Underperforming: Underperforming(ds.Keywords),
		Themes:          Themes(ds.Keywords),
		Buckets:         CountBuckets(ds.Keywords),
	}
}
