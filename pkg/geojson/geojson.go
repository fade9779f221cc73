// Package geojson defines the GeoJSON subset spoken by the audience-map
// analysis endpoint: point FeatureCollections whose properties carry the
// demographic weighting used for heatmap rendering.
package geojson

import "time"

// Geometry types supported by the audience-map feed.
const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"
)

// FeatureCollection is the top-level payload of the audience-map endpoint.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Metadata carries feed-level context produced by the analysis service.
type Metadata struct {
	TotalLocations int       `json:"total_locations"`
	GeneratedAt    time.Time `json:"generated_at,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Feature is a single geographic feature with point geometry and demographic
// properties.
type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Geometry holds the feature geometry.  Coordinates follow the GeoJSON
// convention: [longitude, latitude] in WGS84 degrees.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Properties are the demographic attributes attached to each audience point.
// Weight is the 1–5 relevance score that drives heatmap contribution.
type Properties struct {
	Name        string  `json:"name"`
	AreaCode    string  `json:"area_code,omitempty"`
	Borough     string  `json:"borough,omitempty"`
	Country     string  `json:"country,omitempty"`
	Description string  `json:"description,omitempty"`
	TargetFit   string  `json:"target_fit,omitempty"`
	Weight      float64 `json:"weight"`
	DisplayName string  `json:"display_name,omitempty"`
}

// NewFeatureCollection returns an empty collection with the correct type tag.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: TypeFeatureCollection, Features: []Feature{}}
}

// IsPoint reports whether the feature has a well-formed point geometry.
func (f Feature) IsPoint() bool {
	return f.Geometry.Type == TypePoint && len(f.Geometry.Coordinates) >= 2
}

// Lon returns the longitude of a point feature.  Call IsPoint first.
func (f Feature) Lon() float64 { return f.Geometry.Coordinates[0] }

// Lat returns the latitude of a point feature.  Call IsPoint first.
func (f Feature) Lat() float64 { return f.Geometry.Coordinates[1] }
