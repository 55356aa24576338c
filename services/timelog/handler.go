package timelog

import (
	"io"
	"net/http"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/httpapi"
	"taskforge-controlplane/pkg/middleware"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/time-logs", h.create)
	api.GET("/time-logs/weekly", h.weekly)
	api.GET("/time-logs/combined-weekly", h.combinedWeekly)
	api.POST("/external-logs", middleware.RequireRole(auth.RoleProjectManager, auth.RoleOrgAdmin), h.ingest)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateTimeLogRequest
	if !httpapi.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.Actor(c)
	log, err := h.svc.CreateTimeLog(c.Request.Context(), actor, req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "timeLog": log})
}

func (h *Handler) filter(c *gin.Context) (Filter, bool) {
	var f Filter
	if !httpapi.BindQuery(c, &f) {
		return f, false
	}
	actor, _ := middleware.Actor(c)
	f.OrganizationID = actor.OrganizationID
	return f, true
}

func (h *Handler) weekly(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	weeks, err := h.svc.ComputeWeeklyRollup(c.Request.Context(), f)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

func (h *Handler) combinedWeekly(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	rollup, err := h.svc.ComputeCombinedWeeklyRollup(c.Request.Context(), f)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rollup)
}

// ingest accepts either a multipart "file" field or a raw text/csv body.
func (h *Handler) ingest(c *gin.Context) {
	upload, err := readUpload(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	actor, _ := middleware.Actor(c)
	result, err := h.svc.IngestExternalLogBatch(c.Request.Context(), actor, upload)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func readUpload(c *gin.Context) (ExternalLogUpload, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return ExternalLogUpload{}, errutil.ValidationFailed("cannot open upload", err)
		}
		defer f.Close()
		content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			return ExternalLogUpload{}, errutil.ValidationFailed("cannot read upload", err)
		}
		return ExternalLogUpload{FileName: fh.Filename, Content: content}, nil
	}

	content, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes))
	if err != nil {
		return ExternalLogUpload{}, errutil.ValidationFailed("cannot read body", err)
	}
	return ExternalLogUpload{FileName: c.DefaultQuery("fileName", "upload.csv"), Content: content}, nil
}
