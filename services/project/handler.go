package project

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
	managers := middleware.RequireRole(auth.RoleOrgAdmin, auth.RoleProjectManager)

	api.POST("/projects", managers, h.createProject)
	api.GET("/projects", h.listProjects)
	api.GET("/projects/:id", h.getProject)

	api.POST("/workflows", managers, h.createWorkflow)
	api.GET("/workflows", h.listWorkflows)
	api.GET("/workflows/:id", h.getWorkflow)
}

func (h *Handler) createProject(c *gin.Context) {
	var req CreateProjectRequest
	if !httpapi.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.Actor(c)
	p, err := h.svc.CreateProject(c.Request.Context(), actor, req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "project": p})
}

func (h *Handler) listProjects(c *gin.Context) {
	page, ok := httpapi.Page(c)
	if !ok {
		return
	}
	actor, _ := middleware.Actor(c)
	projects, info, err := h.svc.ListProjects(c.Request.Context(), actor.OrganizationID, page)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "page": info})
}

func (h *Handler) getProject(c *gin.Context) {
	p, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) createWorkflow(c *gin.Context) {
	var req CreateWorkflowRequest
	if !httpapi.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.Actor(c)
	wf, err := h.svc.CreateWorkflow(c.Request.Context(), actor, req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "workflow": wf})
}

func (h *Handler) listWorkflows(c *gin.Context) {
	wfs, err := h.svc.ListWorkflows(c.Request.Context(), c.Query("projectId"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflows": wfs})
}

func (h *Handler) getWorkflow(c *gin.Context) {
	wf, err := h.svc.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}
