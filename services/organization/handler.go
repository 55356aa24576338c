package organization

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
	admin := middleware.RequireRole(auth.RoleOrgAdmin)

	api.POST("/orgs", admin, h.createOrganization)
	api.GET("/orgs", h.listOrganizations)
	api.GET("/orgs/:id", h.getOrganization)

	api.POST("/users", admin, h.createUser)
	api.GET("/users", h.listUsers)
	api.GET("/users/:id", h.getUser)
}

func (h *Handler) createOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if !httpapi.BindJSON(c, &req) {
		return
	}
	org, err := h.svc.CreateOrganization(c.Request.Context(), req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "organization": org})
}

func (h *Handler) listOrganizations(c *gin.Context) {
	page, ok := httpapi.Page(c)
	if !ok {
		return
	}
	orgs, info, err := h.svc.ListOrganizations(c.Request.Context(), page)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs, "page": info})
}

func (h *Handler) getOrganization(c *gin.Context) {
	org, err := h.svc.GetOrganization(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *Handler) createUser(c *gin.Context) {
	var req CreateUserRequest
	if !httpapi.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.Actor(c)
	user, err := h.svc.CreateUser(c.Request.Context(), actor, req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

func (h *Handler) listUsers(c *gin.Context) {
	page, ok := httpapi.Page(c)
	if !ok {
		return
	}
	actor, _ := middleware.Actor(c)
	users, info, err := h.svc.ListUsers(c.Request.Context(), actor.OrganizationID, page)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "page": info})
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
