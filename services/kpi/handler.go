package kpi

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
	api.GET("/kpi-report", middleware.RequireRole(auth.RoleOrgAdmin, auth.RoleProjectManager), h.report)
	api.GET("/kpi-metrics", middleware.RequireRole(auth.RoleOrgAdmin), h.metrics)
	api.GET("/leaderboard", h.leaderboard)
}

// report is limited to the caller's own organization.
func (h *Handler) report(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	report, err := h.svc.GenerateKPIReport(c.Request.Context(), actor.OrganizationID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

func (h *Handler) metrics(c *gin.Context) {
	page, ok := httpapi.Page(c)
	if !ok {
		return
	}
	rows, info, err := h.svc.ListKPIMetrics(c.Request.Context(), c.Query("metricName"), page)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": rows, "page": info})
}

func (h *Handler) leaderboard(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	board, err := h.svc.GenerateLeaderboard(c.Request.Context(), LeaderboardFilter{OrganizationID: actor.OrganizationID})
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": board})
}
