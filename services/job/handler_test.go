package job

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/middleware"
)

func TestListJobsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t, &fakeSteps{})
	_, err := svc.RunDaily(context.Background())
	require.NoError(t, err)

	v := auth.NewVerifier("test-secret", "")
	r := gin.New()
	r.Use(middleware.Error())
	NewHandler(svc).RegisterRoutes(r.Group("/", middleware.Auth(v)))

	token, err := v.Sign(auth.Actor{UserID: "admin", Role: auth.RoleOrgAdmin, OrganizationID: "org-1"}, time.Hour)
	require.NoError(t, err)

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("/jobs?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Jobs []Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Jobs, 2)

	require.Equal(t, http.StatusBadRequest, get("/jobs?limit=ten").Code)
}
