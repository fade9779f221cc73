package geomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturesonar/venturesonar/internal/application/acquisition"
	"github.com/venturesonar/venturesonar/internal/domain/record"
)

type fakeHandle struct {
	ops []LayerOp
}

func (f *fakeHandle) Apply(op LayerOp) error {
	f.ops = append(f.ops, op)
	return nil
}

func testSnapshot() acquisition.Snapshot {
	return acquisition.Snapshot{
		RunID: "run-1",
		Demographics: []record.DemographicPoint{
			{Name: "Holborn", Coordinates: record.Coordinates{Latitude: 51.52, Longitude: -0.12}, Weight: 4},
		},
		Competitors: []record.Competitor{
			{CompanyName: "LexMachina", Coordinates: &record.Coordinates{Latitude: 37.45, Longitude: -122.18}, ThreatScore: 8},
			{CompanyName: "Stealth Legal AI", ThreatScore: 5}, // no coordinates
		},
		Investors: []record.Investor{
			{Name: "Ada Chen", Firm: "Foundry", Coordinates: &record.Coordinates{Latitude: 40.71, Longitude: -74.0}, MatchScore: 9},
		},
	}
}

func TestBuildPins_ExcludesMissingCoordinates(t *testing.T) {
	resolver := NewResolver(0.012, 0.3, 1)
	snap := testSnapshot()

	pins := BuildPins(snap, Visibility{}, resolver)

	// Two competitors in the payload, one pin rendered.
	assert.Len(t, snap.Competitors, 2)
	var competitorPins []RenderedPin
	for _, p := range pins {
		if p.Category == record.CategoryCompetitors {
			competitorPins = append(competitorPins, p)
		}
	}
	require.Len(t, competitorPins, 1)
	assert.Equal(t, "LexMachina", competitorPins[0].Name)
	assert.Equal(t, 0, competitorPins[0].Index)
}

func TestBuildPins_VisibilityToggles(t *testing.T) {
	resolver := NewResolver(0.012, 0.3, 1)
	pins := BuildPins(testSnapshot(), Visibility{HideCompetitors: true}, resolver)

	for _, p := range pins {
		assert.NotEqual(t, record.CategoryCompetitors, p.Category)
	}
	require.Len(t, pins, 1)
	assert.Equal(t, record.CategoryInvestors, pins[0].Category)
	assert.Equal(t, "Ada Chen (Foundry)", pins[0].Name)
}

func TestSurface_InitialRenderBuildsEverything(t *testing.T) {
	handle := &fakeHandle{}
	s := NewSurface(handle, NewResolver(0.012, 0.3, 1), nil)

	ops := s.Render(testSnapshot(), Visibility{})

	kinds := make(map[OpKind]int)
	for _, op := range ops {
		kinds[op.Kind]++
	}
	assert.Equal(t, 3, kinds[OpSetPins], "one pin op per marker category")
	assert.Equal(t, 1, kinds[OpSetHeatmap])
	assert.Equal(t, len(ops), len(handle.ops))
}

func TestSurface_NoOpsWhenNothingChanged(t *testing.T) {
	s := NewSurface(&fakeHandle{}, NewResolver(0.012, 0.3, 1), nil)
	snap := testSnapshot()

	s.Render(snap, Visibility{})
	ops := s.Render(snap, Visibility{})
	assert.Empty(t, ops)
}

func TestSurface_OnlyChangedLayerRebuilt(t *testing.T) {
	s := NewSurface(&fakeHandle{}, NewResolver(0.012, 0.3, 1), nil)
	snap := testSnapshot()
	s.Render(snap, Visibility{})

	next := snap
	next.Investors = append([]record.Investor(nil), snap.Investors...)
	next.Investors = append(next.Investors, record.Investor{
		Name: "Sam Ortiz", Firm: "Kite Capital",
		Coordinates: &record.Coordinates{Latitude: 34.05, Longitude: -118.24},
	})

	ops := s.Render(next, Visibility{})
	require.Len(t, ops, 1)
	assert.Equal(t, OpSetPins, ops[0].Kind)
	assert.Equal(t, record.CategoryInvestors, ops[0].Category)
	assert.Len(t, ops[0].Pins, 2)
}

func TestSurface_HidingCategoryClearsPins(t *testing.T) {
	s := NewSurface(&fakeHandle{}, NewResolver(0.012, 0.3, 1), nil)
	snap := testSnapshot()
	s.Render(snap, Visibility{})

	ops := s.Render(snap, Visibility{HideInvestors: true})
	require.Len(t, ops, 1)
	assert.Equal(t, OpClearPins, ops[0].Kind)
	assert.Equal(t, record.CategoryInvestors, ops[0].Category)
}

func TestSurface_EmptyDemographicsHidesHeatmap(t *testing.T) {
	s := NewSurface(&fakeHandle{}, NewResolver(0.012, 0.3, 1), nil)
	snap := testSnapshot()
	s.Render(snap, Visibility{})

	next := snap
	next.Demographics = nil
	ops := s.Render(next, Visibility{})
	require.Len(t, ops, 1)
	assert.Equal(t, OpHideHeatmap, ops[0].Kind)
}

func TestSurface_ResetForcesFullRebuild(t *testing.T) {
	s := NewSurface(&fakeHandle{}, NewResolver(0.012, 0.3, 1), nil)
	snap := testSnapshot()
	s.Render(snap, Visibility{})
	s.Reset()

	ops := s.Render(snap, Visibility{})
	assert.Len(t, ops, 4) // three pin layers and the heatmap
}
