// Package geomap derives the spatial rendering surface from acquisition
// state: collision-resolved marker pins, a declarative heatmap layer, and a
// diffable layer-operation stream for the live map handle.
package geomap

import (
	"math/rand"
	"sync"

	"github.com/venturesonar/venturesonar/internal/domain/record"
)

// biasDirection is a unit-less directional vector applied per category so
// records of different categories sharing a coordinate fan out instead of
// stacking.  Investors and demographics render at the true coordinate.
var biasDirection = map[record.Category][2]float64{
	record.CategoryDemographics: {0, 0},
	record.CategoryCompetitors:  {1, 1},  // north-east
	record.CategoryCofounders:   {-1, 1}, // north-west
	record.CategoryInvestors:    {0, 0},
}

// Resolver applies the category bias plus a small symmetric jitter that
// separates same-category duplicates at the same point.
type Resolver struct {
	biasDegrees    float64
	jitterFraction float64

	mu   sync.Mutex
	rand *rand.Rand
}

// NewResolver builds a Resolver.  biasDegrees is the offset magnitude per
// axis; jitterFraction bounds the random component relative to the bias.
func NewResolver(biasDegrees, jitterFraction float64, seed int64) *Resolver {
	return &Resolver{
		biasDegrees:    biasDegrees,
		jitterFraction: jitterFraction,
		rand:           rand.New(rand.NewSource(seed)),
	}
}

// Bias returns the deterministic offset component for a category, in degrees
// (latitude, longitude).
func (r *Resolver) Bias(cat record.Category) (dLat, dLon float64) {
	dir := biasDirection[cat]
	return dir[1] * r.biasDegrees, dir[0] * r.biasDegrees
}

// Offset returns a display coordinate for a record at (lat, lon): the
// category bias plus jitter.  Best-effort declutter, not exact packing.
func (r *Resolver) Offset(lat, lon float64, cat record.Category) (outLat, outLon float64) {
	dLat, dLon := r.Bias(cat)

	r.mu.Lock()
	jLat := (r.rand.Float64()*2 - 1) * r.jitterFraction * r.biasDegrees
	jLon := (r.rand.Float64()*2 - 1) * r.jitterFraction * r.biasDegrees
	r.mu.Unlock()

	return lat + dLat + jLat, lon + dLon + jLon
}
