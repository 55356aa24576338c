package job

import (
	"net/http"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/httpapi"
	"taskforge-controlplane/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	admin := middleware.RequireRole(auth.RoleOrgAdmin)
	api.POST("/cron/run", admin, h.run)
	api.GET("/jobs", admin, h.list)
}

// run executes the daily chain in the request.
func (h *Handler) run(c *gin.Context) {
	report, err := h.svc.RunDaily(c.Request.Context())
	if err != nil {
		httpapi.Fail(c, errutil.Internal("failed to run jobs", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All jobs executed successfully",
		"report":  report,
	})
}

func (h *Handler) list(c *gin.Context) {
	page, ok := httpapi.Page(c)
	if !ok {
		return
	}
	jobs, err := h.svc.ListJobs(c.Request.Context(), c.Query("name"), page)
	if err != nil {
		httpapi.Fail(c, errutil.Internal("failed to list jobs", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
