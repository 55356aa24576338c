package audit

import (
	"net/http"

	"taskforge-controlplane/pkg/auth"
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
	api.GET("/audit-logs", middleware.RequireRole(auth.RoleOrgAdmin), h.list)
}

func (h *Handler) list(c *gin.Context) {
	var f ListFilter
	if !httpapi.BindQuery(c, &f) {
		return
	}
	f.Pagination = f.Pagination.Normalize()
	logs, info, err := h.svc.ListAuditLogs(c.Request.Context(), f)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auditLogs": logs, "page": info})
}
