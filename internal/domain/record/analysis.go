package record

import "encoding/json"

// MarketAnalysis is the comprehensive market context attached to a run once
// the demographics step succeeds.  It backs the derived statistics shown for
// demographic selections; its absence never blocks the detail panel.
type MarketAnalysis struct {
	// Keywords are the industry search terms the analysis was built from.
	Keywords []string `json:"queries_analyzed"`

	// TrendSeries is a short bi-annual interest series (typically ten
	// points) derived from search-trend data.
	TrendSeries []TrendPoint `json:"google_trends"`

	// ResilienceScore is a bounded 1–10 rating of how resistant the market
	// is to AI displacement: 1 means high displacement risk, 10 means
	// AI-resilient.
	ResilienceScore int `json:"how_AI_proof_it_is"`

	// MarketCapUSD is the total-addressable-market estimate in US dollars.
	MarketCapUSD float64 `json:"market_cap_estimation"`
}

// TrendPoint is one period of the market interest series.
type TrendPoint struct {
	Period string  `json:"period"` // "YYYY-MM"
	Value  float64 `json:"value"`
}

// UnmarshalJSON accepts both the canonical {"period": "2024-06", "value": 78}
// form and the upstream single-key form {"2024-06": 78}.
func (p *TrendPoint) UnmarshalJSON(data []byte) error {
	var canonical struct {
		Period string   `json:"period"`
		Value  *float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &canonical); err == nil && canonical.Period != "" && canonical.Value != nil {
		p.Period = canonical.Period
		p.Value = *canonical.Value
		return nil
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// The upstream form has exactly one key; with more than one, take the
	// smallest period for determinism.
	for period, value := range raw {
		if p.Period == "" || period < p.Period {
			p.Period = period
			p.Value = value
		}
	}
	return nil
}

// Normalize clamps the resilience score into 1–10 and drops negative market
// cap estimates.
func (m *MarketAnalysis) Normalize() {
	if m.ResilienceScore < 1 {
		m.ResilienceScore = 1
	}
	if m.ResilienceScore > 10 {
		m.ResilienceScore = 10
	}
	if m.MarketCapUSD < 0 {
		m.MarketCapUSD = 0
	}
}
