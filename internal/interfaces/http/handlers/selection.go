package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturesonar/venturesonar/internal/application/acquisition"
	"github.com/venturesonar/venturesonar/internal/application/selection"
	"github.com/venturesonar/venturesonar/internal/domain/record"
	"github.com/venturesonar/venturesonar/pkg/errors"
)

// SelectionHandler drives the detail-panel state machine over HTTP.
type SelectionHandler struct {
	orch *acquisition.Orchestrator
	ctrl *selection.Controller
}

func NewSelectionHandler(orch *acquisition.Orchestrator, ctrl *selection.Controller) *SelectionHandler {
	return &SelectionHandler{orch: orch, ctrl: ctrl}
}

// RegisterRoutes mounts the selection endpoints on the given group.
func (h *SelectionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/selection", h.Current)
	rg.POST("/selection", h.Select)
	rg.DELETE("/selection", h.Clear)
	rg.POST("/selection/pin", h.Pin)
	rg.DELETE("/selection/pin", h.Unpin)
	rg.POST("/selection/dismiss", h.Dismiss)
}

// SelectRequest identifies a record by category and its index within the
// current snapshot's payload for that category.
type SelectRequest struct {
	Category string `json:"category"`
	Index    int    `json:"index"`
}

// Current handles GET /selection.
func (h *SelectionHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Current())
}

// Select handles POST /selection. Selecting while the panel is already open
// replaces its contents atomically and resets any pin.
func (h *SelectionHandler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, "request body must be JSON with category and index fields")
		return
	}

	cat, err := record.ParseCategory(req.Category)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.resolveView(cat, req.Index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ctrl.Select(view))
}

// Clear handles DELETE /selection and closes the panel even when pinned.
func (h *SelectionHandler) Clear(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Clear())
}

// Pin handles POST /selection/pin. Pinning requires an open panel.
func (h *SelectionHandler) Pin(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Pin())
}

// Unpin handles DELETE /selection/pin.
func (h *SelectionHandler) Unpin(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Unpin())
}

// Dismiss handles POST /selection/dismiss, the outside-click path: it closes
// the panel unless it is pinned.
func (h *SelectionHandler) Dismiss(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.DismissOutsideClick())
}

// resolveView looks the record up in the current snapshot and normalizes it
// into the panel view for its category.
func (h *SelectionHandler) resolveView(cat record.Category, index int) (selection.PinView, error) {
	if index < 0 {
		return selection.PinView{}, errors.NewValidation("index must not be negative")
	}

	snap := h.orch.Snapshot()
	switch cat {
	case record.CategoryDemographics:
		if index >= len(snap.Demographics) {
			return selection.PinView{}, errors.NewNotFound("no demographic point at index %d", index)
		}
		return selection.DemographicView(snap.Demographics[index], snap.Market), nil
	case record.CategoryCompetitors:
		if index >= len(snap.Competitors) {
			return selection.PinView{}, errors.NewNotFound("no competitor at index %d", index)
		}
		return selection.CompetitorView(snap.Competitors[index]), nil
	case record.CategoryCofounders:
		if index >= len(snap.Cofounders) {
			return selection.PinView{}, errors.NewNotFound("no cofounder at index %d", index)
		}
		return selection.CofounderView(snap.Cofounders[index]), nil
	case record.CategoryInvestors:
		if index >= len(snap.Investors) {
			return selection.PinView{}, errors.NewNotFound("no investor at index %d", index)
		}
		return selection.InvestorView(snap.Investors[index]), nil
	default:
		return selection.PinView{}, errors.NewValidation("unknown category %q", cat)
	}
}
