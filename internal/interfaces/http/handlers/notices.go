package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturesonar/venturesonar/internal/application/acquisition"
)

// NoticeHandler serves the transient per-category failure alerts.
type NoticeHandler struct {
	orch *acquisition.Orchestrator
}

func NewNoticeHandler(orch *acquisition.Orchestrator) *NoticeHandler {
	return &NoticeHandler{orch: orch}
}

// RegisterRoutes mounts the notice endpoints on the given group.
func (h *NoticeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notices", h.List)
}

// NoticesResponse wraps the live, unexpired notices.
type NoticesResponse struct {
	Notices []acquisition.Notice `json:"notices"`
}

// List handles GET /notices. Expired notices are pruned before responding,
// so callers only ever see alerts still within their display window.
func (h *NoticeHandler) List(c *gin.Context) {
	notices := h.orch.Notices()
	if notices == nil {
		notices = []acquisition.Notice{}
	}
	c.JSON(http.StatusOK, NoticesResponse{Notices: notices})
}
