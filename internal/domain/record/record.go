// Package record defines the four source-record variants returned by the
// analysis endpoints, the coordinate value object they share, and the
// conversions that normalise upstream payload quirks (unclamped scores,
// missing coordinates) into domain invariants.
package record

import (
	"encoding/json"
	"strings"

	"github.com/venturesonar/venturesonar/pkg/geojson"
)

// Score bounds enforced at decode time.  The upstream prompts ask for these
// ranges but the analysis service does not guarantee them.
const (
	MinScore  = 0
	MaxScore  = 10
	MinWeight = 1.0
	MaxWeight = 5.0
)

// Coordinates is a WGS84 (latitude, longitude) pair.  A nil *Coordinates on
// a record means the analysis service could not geocode the location; such
// records are excluded from spatial rendering but retained in raw payloads.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the pair lies inside WGS84 range.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Explanation groups the free-text bullet sections attached to a record.
// Section names differ per category (angle / what_they_cover / gaps for
// competitors, background / expertise / why_match for cofounders, thesis /
// portfolio / stage_fit for investors); the detail panel renders them
// generically in declaration order.
type Explanation struct {
	Sections []ExplanationSection
}

// ExplanationSection is one titled bullet group.
type ExplanationSection struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// UnmarshalJSON accepts the upstream object form
// {"angle": ["..."], "gaps": ["..."]} and preserves a stable section order:
// known section names first in their conventional order, unknown names after,
// sorted by first appearance being unavailable in Go maps, alphabetically.
func (e *Explanation) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Sections = sectionsFromMap(raw)
	return nil
}

// MarshalJSON emits the upstream object form.
func (e Explanation) MarshalJSON() ([]byte, error) {
	raw := make(map[string][]string, len(e.Sections))
	for _, s := range e.Sections {
		raw[s.Title] = s.Bullets
	}
	return json.Marshal(raw)
}

// knownSectionOrder fixes the render order for the section names the
// analysis prompts produce.
var knownSectionOrder = []string{
	"angle", "what_they_cover", "gaps",
	"background", "expertise", "why_match",
	"thesis", "portfolio", "stage_fit",
}

func sectionsFromMap(raw map[string][]string) []ExplanationSection {
	if len(raw) == 0 {
		return nil
	}
	sections := make([]ExplanationSection, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, name := range knownSectionOrder {
		if bullets, ok := raw[name]; ok {
			sections = append(sections, ExplanationSection{Title: name, Bullets: bullets})
			seen[name] = true
		}
	}
	// Unknown sections go last, alphabetically for determinism.
	rest := make([]string, 0, len(raw))
	for name := range raw {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sortStrings(rest)
	for _, name := range rest {
		sections = append(sections, ExplanationSection{Title: name, Bullets: raw[name]})
	}
	return sections
}

// sortStrings is insertion sort; section counts are tiny.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// Competitor is a competing company in the submitted idea's space.
type Competitor struct {
	CompanyName string       `json:"company_name"`
	Location    string       `json:"location"`
	Links       []string     `json:"links"`
	DateFounded string       `json:"date_founded"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	ThreatScore int          `json:"threat_score"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

// Investor is a seed-stage investor or firm partner.
type Investor struct {
	Name        string       `json:"name"`
	Firm        string       `json:"firm"`
	Location    string       `json:"location"`
	Links       []string     `json:"links"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	MatchScore  int          `json:"match_score"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

// Cofounder is a potential cofounder candidate.
type Cofounder struct {
	Name        string       `json:"name"`
	Location    string       `json:"location"`
	Links       []string     `json:"links"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	MatchScore  int          `json:"match_score"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

// DemographicPoint is one audience location with a 1–5 relevance weight.
// Unlike the other variants its coordinates are mandatory: the audience-map
// pipeline only emits geocoded features.
type DemographicPoint struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
	Weight      float64     `json:"weight"`
	Description string      `json:"description,omitempty"`
	TargetFit   string      `json:"target_fit,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
}

// ClampScore normalises an upstream score into the 0–10 domain.
func ClampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// ClampWeight normalises an upstream weight into the 1–5 domain.
func ClampWeight(v float64) float64 {
	if v < MinWeight {
		return MinWeight
	}
	if v > MaxWeight {
		return MaxWeight
	}
	return v
}

// Normalize clamps the threat score and drops out-of-range coordinates.
func (c *Competitor) Normalize() {
	c.ThreatScore = ClampScore(c.ThreatScore)
	c.Coordinates = dropInvalid(c.Coordinates)
}

// Normalize clamps the match score and drops out-of-range coordinates.
func (i *Investor) Normalize() {
	i.MatchScore = ClampScore(i.MatchScore)
	i.Coordinates = dropInvalid(i.Coordinates)
}

// Normalize clamps the match score and drops out-of-range coordinates.
func (c *Cofounder) Normalize() {
	c.MatchScore = ClampScore(c.MatchScore)
	c.Coordinates = dropInvalid(c.Coordinates)
}

func dropInvalid(c *Coordinates) *Coordinates {
	if c == nil || !c.Valid() {
		return nil
	}
	return c
}

// DisplayName returns the competitor's panel title.
func (c Competitor) DisplayName() string { return c.CompanyName }

// DisplayName returns the investor's panel title, "Name (Firm)" when both
// are present.
func (i Investor) DisplayName() string {
	if i.Firm != "" && i.Name != "" {
		return i.Name + " (" + i.Firm + ")"
	}
	if i.Name == "" {
		return i.Firm
	}
	return i.Name
}

// DisplayName returns the cofounder's panel title.
func (c Cofounder) DisplayName() string { return c.Name }

// PanelName returns the demographic point's panel title, preferring the
// geocoder's display name over the raw analysis name.
func (d DemographicPoint) PanelName() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// DemographicPointsFrom converts an audience-map FeatureCollection into
// domain records.  Features without point geometry or with out-of-range
// coordinates are skipped; weights are clamped into 1–5.
func DemographicPointsFrom(fc *geojson.FeatureCollection) []DemographicPoint {
	if fc == nil {
		return nil
	}
	points := make([]DemographicPoint, 0, len(fc.Features))
	for _, f := range fc.Features {
		if !f.IsPoint() {
			continue
		}
		coords := Coordinates{Latitude: f.Lat(), Longitude: f.Lon()}
		if !coords.Valid() {
			continue
		}
		name := strings.TrimSpace(f.Properties.Name)
		if name == "" {
			name = strings.TrimSpace(f.Properties.DisplayName)
		}
		points = append(points, DemographicPoint{
			Name:        name,
			Coordinates: coords,
			Weight:      ClampWeight(f.Properties.Weight),
			Description: f.Properties.Description,
			TargetFit:   f.Properties.TargetFit,
			DisplayName: f.Properties.DisplayName,
		})
	}
	return points
}
