package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/venturesonar/venturesonar/internal/application/acquisition"
	"github.com/venturesonar/venturesonar/internal/application/geomap"
)

// MapHandler derives marker and heatmap layers from the current snapshot.
type MapHandler struct {
	orch     *acquisition.Orchestrator
	resolver *geomap.Resolver
}

func NewMapHandler(orch *acquisition.Orchestrator, resolver *geomap.Resolver) *MapHandler {
	return &MapHandler{orch: orch, resolver: resolver}
}

// RegisterRoutes mounts the map endpoints on the given group.
func (h *MapHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/map/pins", h.Pins)
	rg.GET("/map/heatmap", h.Heatmap)
}

// PinsResponse carries the collision-resolved marker set.
type PinsResponse struct {
	RunID string               `json:"run_id"`
	Pins  []geomap.RenderedPin `json:"pins"`
}

func boolQuery(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(name, "false"))
	return err == nil && v
}

// Pins handles GET /map/pins. Visibility toggles arrive as boolean query
// parameters: hide_competitors, hide_cofounders, hide_investors.
func (h *MapHandler) Pins(c *gin.Context) {
	vis := geomap.Visibility{
		HideCompetitors: boolQuery(c, "hide_competitors"),
		HideCofounders:  boolQuery(c, "hide_cofounders"),
		HideInvestors:   boolQuery(c, "hide_investors"),
	}
	snap := h.orch.Snapshot()
	c.JSON(http.StatusOK, PinsResponse{
		RunID: snap.RunID,
		Pins:  geomap.BuildPins(snap, vis, h.resolver),
	})
}

// Heatmap handles GET /map/heatmap and returns the demographic layer spec,
// hidden when no demographic points are loaded.
func (h *MapHandler) Heatmap(c *gin.Context) {
	snap := h.orch.Snapshot()
	c.JSON(http.StatusOK, geomap.BuildHeatmapLayer(snap.Demographics))
}
