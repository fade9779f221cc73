package geomap

import (
	"github.com/venturesonar/venturesonar/internal/application/acquisition"
	"github.com/venturesonar/venturesonar/internal/domain/record"
)

// RenderedPin is a record placed at a collision-resolved display coordinate.
// Ephemeral: recomputed whenever the owning category's data or visibility
// changes, never stored.
type RenderedPin struct {
	Category  record.Category `json:"category"`
	Index     int             `json:"index"` // position in the category's payload slice
	Name      string          `json:"name"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
}

// Visibility toggles marker layers per category.  The zero value shows
// everything.
type Visibility struct {
	HideCompetitors bool
	HideCofounders  bool
	HideInvestors   bool
}

// BuildPins derives the marker set for a snapshot.  Records without
// coordinates stay in the snapshot's raw payload but never produce a pin.
func BuildPins(snap acquisition.Snapshot, vis Visibility, resolver *Resolver) []RenderedPin {
	pins := make([]RenderedPin, 0,
		len(snap.Competitors)+len(snap.Cofounders)+len(snap.Investors))

	if !vis.HideCompetitors {
		for i, rec := range snap.Competitors {
			if rec.Coordinates == nil {
				continue
			}
			lat, lon := resolver.Offset(rec.Coordinates.Latitude, rec.Coordinates.Longitude, record.CategoryCompetitors)
			pins = append(pins, RenderedPin{
				Category:  record.CategoryCompetitors,
				Index:     i,
				Name:      rec.DisplayName(),
				Latitude:  lat,
				Longitude: lon,
			})
		}
	}
	if !vis.HideCofounders {
		for i, rec := range snap.Cofounders {
			if rec.Coordinates == nil {
				continue
			}
			lat, lon := resolver.Offset(rec.Coordinates.Latitude, rec.Coordinates.Longitude, record.CategoryCofounders)
			pins = append(pins, RenderedPin{
				Category:  record.CategoryCofounders,
				Index:     i,
				Name:      rec.DisplayName(),
				Latitude:  lat,
				Longitude: lon,
			})
		}
	}
	if !vis.HideInvestors {
		for i, rec := range snap.Investors {
			if rec.Coordinates == nil {
				continue
			}
			lat, lon := resolver.Offset(rec.Coordinates.Latitude, rec.Coordinates.Longitude, record.CategoryInvestors)
			pins = append(pins, RenderedPin{
				Category:  record.CategoryInvestors,
				Index:     i,
				Name:      rec.DisplayName(),
				Latitude:  lat,
				Longitude: lon,
			})
		}
	}
	return pins
}
