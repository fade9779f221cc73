package acquisition

import (
	"time"

	"github.com/venturesonar/venturesonar/internal/domain/record"
)

// Status is the lifecycle of one category within a run.
type Status string

const (
	StatusPending Status = "pending"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// CategoryState tracks one category's acquisition progress.
type CategoryState struct {
	Status    Status    `json:"status"`
	LastError string    `json:"last_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Snapshot is a point-in-time copy of the acquisition state.  Payloads are
// category-keyed; a failed category leaves its payload empty while the others
// fill in around it.
type Snapshot struct {
	RunID      string                            `json:"run_id"`
	Idea       string                            `json:"idea"`
	StartedAt  time.Time                         `json:"started_at"`
	Categories map[record.Category]CategoryState `json:"categories"`

	Demographics []record.DemographicPoint `json:"demographics,omitempty"`
	Competitors  []record.Competitor       `json:"competitors,omitempty"`
	Cofounders   []record.Cofounder        `json:"cofounders,omitempty"`
	Investors    []record.Investor         `json:"investors,omitempty"`

	// Raw result counts from the upstream, including records excluded from
	// rendering for missing coordinates.
	TotalFound map[record.Category]int `json:"total_found,omitempty"`

	// Market analysis context for demographic selections.  Optional; its
	// absence never blocks the rest of the snapshot.
	Market *record.MarketAnalysis `json:"market,omitempty"`
}

// Done reports whether every category has left the loading/pending states.
func (s Snapshot) Done() bool {
	if len(s.Categories) == 0 {
		return false
	}
	for _, cat := range record.AllCategories() {
		st := s.Categories[cat].Status
		if st != StatusSuccess && st != StatusError {
			return false
		}
	}
	return true
}

func newSnapshot(runID, idea string, now time.Time) Snapshot {
	categories := make(map[record.Category]CategoryState, 4)
	for _, cat := range record.AllCategories() {
		categories[cat] = CategoryState{Status: StatusPending}
	}
	return Snapshot{
		RunID:      runID,
		Idea:       idea,
		StartedAt:  now,
		Categories: categories,
		TotalFound: make(map[record.Category]int, 4),
	}
}

// clone deep-copies the snapshot so readers never share mutable state with
// the orchestrator.
func (s Snapshot) clone() Snapshot {
	out := s
	out.Categories = make(map[record.Category]CategoryState, len(s.Categories))
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	out.TotalFound = make(map[record.Category]int, len(s.TotalFound))
	for k, v := range s.TotalFound {
		out.TotalFound[k] = v
	}
	out.Demographics = append([]record.DemographicPoint(nil), s.Demographics...)
	out.Competitors = append([]record.Competitor(nil), s.Competitors...)
	out.Cofounders = append([]record.Cofounder(nil), s.Cofounders...)
	out.Investors = append([]record.Investor(nil), s.Investors...)
	if s.Market != nil {
		market := *s.Market
		out.Market = &market
	}
	return out
}

// Notice is a transient, auto-expiring user-facing alert raised when one
// category fails.
type Notice struct {
	ID        string          `json:"id"`
	Category  record.Category `json:"category"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}
