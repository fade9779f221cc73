package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturesonar/venturesonar/internal/application/acquisition"
)

// RunHandler starts acquisition runs and reports their progress.
type RunHandler struct {
	orch *acquisition.Orchestrator
}

func NewRunHandler(orch *acquisition.Orchestrator) *RunHandler {
	return &RunHandler{orch: orch}
}

// RegisterRoutes mounts the run endpoints on the given group.
func (h *RunHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/runs", h.Submit)
	rg.GET("/runs/current", h.Current)
}

// SubmitRequest is the body for POST /runs.
type SubmitRequest struct {
	Idea string `json:"idea"`
}

// SubmitResponse acknowledges an accepted run.
type SubmitResponse struct {
	RunID string `json:"run_id"`
}

// Submit handles POST /runs. Submitting while a run is in flight supersedes
// it; the previous run is cancelled and its late results discarded.
func (h *RunHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, "request body must be JSON with an idea field")
		return
	}

	runID, err := h.orch.Submit(c.Request.Context(), req.Idea)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, SubmitResponse{RunID: runID})
}

// Current handles GET /runs/current and returns the live snapshot, including
// per-category status and any payloads fetched so far.
func (h *RunHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Snapshot())
}
