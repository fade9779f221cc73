package geomap

import "github.com/venturesonar/venturesonar/internal/domain/record"

// Stop is one point of a monotonic interpolation curve.
type Stop struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// HeatmapLayerSpec is a declarative density-surface definition.  The
// rendering layer evaluates the curves against the raw point set; the
// aggregator never buckets points itself.
type HeatmapLayerSpec struct {
	Visible bool `json:"visible"`

	// WeightStops maps record weight (1..5) to a density contribution,
	// monotonically non-decreasing.
	WeightStops []Stop `json:"weight_stops"`

	// IntensityStops and RadiusStops are keyed by zoom level, growing with
	// zoom so the surface reads at world scale without saturating up close.
	IntensityStops []Stop `json:"intensity_stops"`
	RadiusStops    []Stop `json:"radius_stops"`

	// OpacityStops is keyed by zoom level and non-increasing, fading the
	// density cue out once individual points become distinguishable.
	OpacityStops []Stop `json:"opacity_stops"`

	Points []record.DemographicPoint `json:"points"`
}

// BuildHeatmapLayer derives the layer spec for a demographic point set.
// Deterministic: the same point set always yields the same spec.  An empty
// set yields a hidden layer.
func BuildHeatmapLayer(points []record.DemographicPoint) HeatmapLayerSpec {
	if len(points) == 0 {
		return HeatmapLayerSpec{Visible: false}
	}
	return HeatmapLayerSpec{
		Visible: true,
		WeightStops: []Stop{
			{Input: record.MinWeight, Output: 0.2},
			{Input: 3, Output: 0.6},
			{Input: record.MaxWeight, Output: 1.0},
		},
		IntensityStops: []Stop{
			{Input: 0, Output: 1},
			{Input: 9, Output: 3},
		},
		RadiusStops: []Stop{
			{Input: 0, Output: 2},
			{Input: 9, Output: 20},
		},
		OpacityStops: []Stop{
			{Input: 0, Output: 0.9},
			{Input: 7, Output: 0.9},
			{Input: 14, Output: 0.4},
		},
		Points: points,
	}
}

// WeightContribution evaluates the weight curve for a record weight, linearly
// interpolating between stops and clamping outside the domain.
func (s HeatmapLayerSpec) WeightContribution(weight float64) float64 {
	return evalStops(s.WeightStops, weight)
}

// OpacityAt evaluates the opacity curve at a zoom level.
func (s HeatmapLayerSpec) OpacityAt(zoom float64) float64 {
	return evalStops(s.OpacityStops, zoom)
}

func evalStops(stops []Stop, in float64) float64 {
	if len(stops) == 0 {
		return 0
	}
	if in <= stops[0].Input {
		return stops[0].Output
	}
	last := stops[len(stops)-1]
	if in >= last.Input {
		return last.Output
	}
	for i := 1; i < len(stops); i++ {
		if in <= stops[i].Input {
			lo, hi := stops[i-1], stops[i]
			t := (in - lo.Input) / (hi.Input - lo.Input)
			return lo.Output + t*(hi.Output-lo.Output)
		}
	}
	return last.Output
}
