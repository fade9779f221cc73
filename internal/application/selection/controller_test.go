package selection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturesonar/venturesonar/internal/domain/record"
)

func competitorFixture() record.Competitor {
	return record.Competitor{
		CompanyName: "LexMachina",
		Location:    "Menlo Park, CA",
		Links:       []string{"https://lexmachina.example"},
		ThreatScore: 8,
	}
}

func TestController_StartsClosed(t *testing.T) {
	c := NewController(nil)
	state := c.Current()
	assert.Equal(t, PanelClosed, state.Panel)
	assert.Nil(t, state.Selection)
	assert.False(t, state.Pinned)
}

func TestSelect_OpensPanel(t *testing.T) {
	c := NewController(nil)
	state := c.Select(CompetitorView(competitorFixture()))

	assert.Equal(t, PanelOpen, state.Panel)
	require.NotNil(t, state.Selection)
	assert.Equal(t, record.CategoryCompetitors, state.Selection.Category)
	assert.Equal(t, "LexMachina", state.Selection.DisplayName)
	require.NotNil(t, state.Selection.Score)
	assert.Equal(t, 8.0, state.Selection.Score.Value)
	assert.Equal(t, HigherIsWorse, state.Selection.Score.Direction)
}

func TestSelect_AtomicReplace(t *testing.T) {
	c := NewController(nil)
	c.Select(CompetitorView(competitorFixture()))

	state := c.Select(InvestorView(record.Investor{Name: "Ada Chen", Firm: "Foundry", MatchScore: 9}))

	// The returned state is already Open(B); no transitional empty state.
	assert.Equal(t, PanelOpen, state.Panel)
	assert.Equal(t, "Ada Chen (Foundry)", state.Selection.DisplayName)
	assert.Equal(t, HigherIsBetter, state.Selection.Score.Direction)

	current := c.Current()
	assert.Equal(t, "Ada Chen (Foundry)", current.Selection.DisplayName)
}

func TestSelect_ReplacingResetsPin(t *testing.T) {
	c := NewController(nil)
	c.Select(CompetitorView(competitorFixture()))
	c.Pin()

	state := c.Select(CofounderView(record.Cofounder{Name: "Sam Ortiz", MatchScore: 7}))
	assert.False(t, state.Pinned)
}

func TestClear_AlwaysCloses(t *testing.T) {
	c := NewController(nil)

	c.Select(CompetitorView(competitorFixture()))
	state := c.Clear()
	assert.Equal(t, PanelClosed, state.Panel)
	assert.Nil(t, state.Selection)

	// Pinned does not resist an explicit close.
	c.Select(CompetitorView(competitorFixture()))
	c.Pin()
	state = c.Clear()
	assert.Equal(t, PanelClosed, state.Panel)
	assert.Nil(t, state.Selection)
}

func TestPin_OnlyWhenOpen(t *testing.T) {
	c := NewController(nil)
	state := c.Pin()
	assert.Equal(t, PanelClosed, state.Panel)
	assert.False(t, state.Pinned)

	c.Select(CompetitorView(competitorFixture()))
	state = c.Pin()
	assert.True(t, state.Pinned)

	state = c.Unpin()
	assert.False(t, state.Pinned)
	assert.Equal(t, PanelOpen, state.Panel)
}

func TestDismissOutsideClick_RespectsPin(t *testing.T) {
	c := NewController(nil)
	c.Select(CompetitorView(competitorFixture()))
	c.Pin()

	state := c.DismissOutsideClick()
	assert.Equal(t, PanelOpen, state.Panel, "pinned selection survives outside clicks")

	c.Unpin()
	state = c.DismissOutsideClick()
	assert.Equal(t, PanelClosed, state.Panel)
}

func TestDemographicView_MarketOptional(t *testing.T) {
	point := record.DemographicPoint{
		Name:        "Holborn",
		DisplayName: "Holborn, Camden",
		Weight:      5,
		TargetFit:   "high",
	}

	// Without analysis context the rest of the view still renders.
	view := DemographicView(point, nil)
	assert.Equal(t, record.CategoryDemographics, view.Category)
	assert.Equal(t, "Holborn, Camden", view.DisplayName)
	assert.Equal(t, 5.0, view.Weight)
	assert.Nil(t, view.Market)
	assert.Nil(t, view.Score)

	market := &record.MarketAnalysis{
		Keywords:        []string{"ai legal assistant market size"},
		ResilienceScore: 7,
		MarketCapUSD:    4.2e9,
	}
	view = DemographicView(point, market)
	require.NotNil(t, view.Market)
	assert.Equal(t, 7, view.Market.ResilienceScore)
	assert.Equal(t, 4.2e9, view.Market.MarketCapUSD)
}

func TestCompetitorView_CarriesExplanation(t *testing.T) {
	rec := competitorFixture()
	rec.Explanation = &record.Explanation{
		Sections: []record.ExplanationSection{
			{Title: "angle", Bullets: []string{"contract review automation"}},
		},
	}
	view := CompetitorView(rec)
	require.NotNil(t, view.Explanation)
	assert.Equal(t, "angle", view.Explanation.Sections[0].Title)
}

func TestInvestorView_CarriesExplanation(t *testing.T) {
	rec := record.Investor{
		Name:       "Ada Chen",
		Firm:       "Foundry",
		MatchScore: 9,
		Explanation: &record.Explanation{
			Sections: []record.ExplanationSection{
				{Title: "thesis", Bullets: []string{"vertical AI for regulated work"}},
				{Title: "portfolio", Bullets: []string{"two adjacent legal-tech bets"}},
			},
		},
	}
	view := InvestorView(rec)
	require.NotNil(t, view.Explanation)
	assert.Equal(t, "thesis", view.Explanation.Sections[0].Title)
	assert.Equal(t, "portfolio", view.Explanation.Sections[1].Title)
}

func TestCofounderView_CarriesExplanation(t *testing.T) {
	rec := record.Cofounder{
		Name:       "Sam Ortiz",
		MatchScore: 7,
		Explanation: &record.Explanation{
			Sections: []record.ExplanationSection{
				{Title: "background", Bullets: []string{"ex-counsel turned PM"}},
			},
		},
	}
	view := CofounderView(rec)
	require.NotNil(t, view.Explanation)
	assert.Equal(t, "background", view.Explanation.Sections[0].Title)
}

func TestController_SnapshotIsolation(t *testing.T) {
	c := NewController(nil)
	c.Select(CompetitorView(competitorFixture()))

	state := c.Current()
	state.Selection.DisplayName = "mutated"
	assert.Equal(t, "LexMachina", c.Current().Selection.DisplayName)
}

func TestController_ConcurrentSelects(t *testing.T) {
	c := NewController(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Select(CompetitorView(competitorFixture()))
			c.DismissOutsideClick()
		}()
	}
	wg.Wait()

	state := c.Current()
	if state.Panel == PanelOpen {
		assert.NotNil(t, state.Selection)
	} else {
		assert.Nil(t, state.Selection)
	}
}
