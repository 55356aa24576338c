package task

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
	api.POST("/tasks", middleware.RequireRole(auth.RoleProjectManager, auth.RoleOrgAdmin), h.create)
	api.GET("/tasks", h.list)
	api.GET("/tasks/mine", h.mine)
	api.GET("/tasks/:id", h.get)
	api.PATCH("/tasks/:id", h.update)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateTaskRequest
	if !httpapi.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.Actor(c)
	t, err := h.svc.CreateTask(c.Request.Context(), actor, req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "task": t})
}

func (h *Handler) list(c *gin.Context) {
	var f Filter
	if !httpapi.BindQuery(c, &f) {
		return
	}
	page, ok := httpapi.Page(c)
	if !ok {
		return
	}
	actor, _ := middleware.Actor(c)
	tasks, info, err := h.svc.ListTasks(c.Request.Context(), actor.OrganizationID, f, page)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "page": info})
}

func (h *Handler) mine(c *gin.Context) {
	page, ok := httpapi.Page(c)
	if !ok {
		return
	}
	actor, _ := middleware.Actor(c)
	tasks, info, err := h.svc.ListUserTasks(c.Request.Context(), actor.UserID, page)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "page": info})
}

func (h *Handler) get(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	t, err := h.svc.GetOrganizationTask(c.Request.Context(), actor.OrganizationID, c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateTaskRequest
	if !httpapi.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.Actor(c)
	t, err := h.svc.UpdateTaskStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": t})
}
