// Package selection unifies the four record shapes into one tagged detail
// view and drives the panel state machine: closed, open, and a pinned
// affordance that only delays dismiss-on-outside-click.
package selection

import (
	"github.com/venturesonar/venturesonar/internal/domain/record"
)

// ScoreDirection types how a primary score reads.
type ScoreDirection string

const (
	HigherIsWorse  ScoreDirection = "higher_is_worse"  // threat scores
	HigherIsBetter ScoreDirection = "higher_is_better" // match scores
)

// Score is a direction-typed primary score.
type Score struct {
	Value     float64        `json:"value"`
	Direction ScoreDirection `json:"direction"`
}

// MarketStats is the derived analysis context shown only for demographic
// selections, when available.
type MarketStats struct {
	MarketCapUSD    float64             `json:"market_cap_usd"`
	ResilienceScore int                 `json:"resilience_score"`
	TrendSeries     []record.TrendPoint `json:"trend_series,omitempty"`
	Keywords        []string            `json:"keywords,omitempty"`
}

// PinView is the normalized detail-panel content for any record variant.
// Category discriminates which optional fields are populated.
type PinView struct {
	Category    record.Category `json:"category"`
	DisplayName string          `json:"display_name"`
	Location    string          `json:"location,omitempty"`
	Links       []string        `json:"links,omitempty"`
	Score       *Score          `json:"score,omitempty"`
	DateFounded string          `json:"date_founded,omitempty"`

	// Section breakdown: angle/gaps for competitors, thesis/portfolio for
	// investors, background/expertise for cofounders.
	Explanation *record.Explanation `json:"explanation,omitempty"`

	// Demographics only.
	Weight      float64      `json:"weight,omitempty"`
	Description string       `json:"description,omitempty"`
	TargetFit   string       `json:"target_fit,omitempty"`
	Market      *MarketStats `json:"market,omitempty"`
}

// CompetitorView normalizes a competitor record.
func CompetitorView(rec record.Competitor) PinView {
	return PinView{
		Category:    record.CategoryCompetitors,
		DisplayName: rec.DisplayName(),
		Location:    rec.Location,
		Links:       rec.Links,
		Score:       &Score{Value: float64(rec.ThreatScore), Direction: HigherIsWorse},
		DateFounded: rec.DateFounded,
		Explanation: rec.Explanation,
	}
}

// InvestorView normalizes an investor record.
func InvestorView(rec record.Investor) PinView {
	return PinView{
		Category:    record.CategoryInvestors,
		DisplayName: rec.DisplayName(),
		Location:    rec.Location,
		Links:       rec.Links,
		Score:       &Score{Value: float64(rec.MatchScore), Direction: HigherIsBetter},
		Explanation: rec.Explanation,
	}
}

// CofounderView normalizes a cofounder record.
func CofounderView(rec record.Cofounder) PinView {
	return PinView{
		Category:    record.CategoryCofounders,
		DisplayName: rec.DisplayName(),
		Location:    rec.Location,
		Links:       rec.Links,
		Score:       &Score{Value: float64(rec.MatchScore), Direction: HigherIsBetter},
		Explanation: rec.Explanation,
	}
}

// DemographicView normalizes a demographic point.  market may be nil; the
// rest of the view renders regardless.
func DemographicView(point record.DemographicPoint, market *record.MarketAnalysis) PinView {
	view := PinView{
		Category:    record.CategoryDemographics,
		DisplayName: point.PanelName(),
		Weight:      point.Weight,
		Description: point.Description,
		TargetFit:   point.TargetFit,
	}
	if market != nil {
		view.Market = &MarketStats{
			MarketCapUSD:    market.MarketCapUSD,
			ResilienceScore: market.ResilienceScore,
			TrendSeries:     market.TrendSeries,
			Keywords:        market.Keywords,
		}
	}
	return view
}
