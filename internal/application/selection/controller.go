package selection

import (
	"sync"

	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/logging"
)

// PanelState is the detail panel's position in its state machine.
type PanelState string

const (
	PanelClosed PanelState = "closed"
	PanelOpen   PanelState = "open"
)

// State is a snapshot of the panel.  Pinned is a UI affordance that delays
// dismiss-on-outside-click; it never changes the selection identity.
type State struct {
	Panel     PanelState `json:"panel"`
	Pinned    bool       `json:"pinned"`
	Selection *PinView   `json:"selection,omitempty"`
}

// Controller owns the single active selection.  All transitions are atomic:
// a reader never observes an open panel without a selection, or a stale
// selection after a replace.
type Controller struct {
	mu     sync.Mutex
	state  State
	logger logging.Logger
}

// NewController starts closed.
func NewController(log logging.Logger) *Controller {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Controller{
		state:  State{Panel: PanelClosed},
		logger: log,
	}
}

// Select opens the panel on view, replacing any current selection in one
// transition.  Re-selecting resets the pinned affordance.
func (c *Controller) Select(view PinView) State {
	c.mu.Lock()
	c.state = State{Panel: PanelOpen, Selection: &view}
	out := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("selection opened",
		logging.String("category", string(view.Category)),
		logging.String("name", view.DisplayName),
	)
	return out
}

// Clear closes the panel regardless of the pinned affordance.
func (c *Controller) Clear() State {
	c.mu.Lock()
	c.state = State{Panel: PanelClosed}
	out := c.snapshotLocked()
	c.mu.Unlock()
	return out
}

// Pin marks the open selection so outside clicks stop dismissing it.
// No-op when closed.
func (c *Controller) Pin() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Panel == PanelOpen {
		c.state.Pinned = true
	}
	return c.snapshotLocked()
}

// Unpin removes the pin affordance without closing.
func (c *Controller) Unpin() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Pinned = false
	return c.snapshotLocked()
}

// DismissOutsideClick closes the panel unless it is pinned.  Escape and
// explicit close go through Clear, which always closes.
func (c *Controller) DismissOutsideClick() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Panel == PanelOpen && !c.state.Pinned {
		c.state = State{Panel: PanelClosed}
	}
	return c.snapshotLocked()
}

// Current returns the panel state.
func (c *Controller) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	out := c.state
	if c.state.Selection != nil {
		view := *c.state.Selection
		out.Selection = &view
	}
	return out
}
