package record

import "github.com/venturesonar/venturesonar/pkg/errors"

// Category identifies one of the four analysis feeds.  The declaration order
// of the constants is the acquisition order: demographics first, investors
// last.
type Category string

const (
	CategoryDemographics Category = "demographics"
	CategoryCompetitors  Category = "competitors"
	CategoryCofounders   Category = "cofounders"
	CategoryInvestors    Category = "investors"
)

// AllCategories returns the four categories in acquisition order.  The
// orchestrator iterates this slice; do not reorder.
func AllCategories() []Category {
	return []Category{
		CategoryDemographics,
		CategoryCompetitors,
		CategoryCofounders,
		CategoryInvestors,
	}
}

// String returns the wire representation.
func (c Category) String() string { return string(c) }

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDemographics, CategoryCompetitors, CategoryCofounders, CategoryInvestors:
		return true
	}
	return false
}

// ParseCategory converts a wire string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", errors.NewValidation("unknown category %q", s)
	}
	return c, nil
}
