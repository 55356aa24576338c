package httpapi

import (
	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/errutil"

	"github.com/gin-gonic/gin"
)

// BindJSON decodes the body into v. On failure it records a validation error
// for the error middleware and returns false.
func BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid request body", err))
		return false
	}
	return true
}

func BindQuery(c *gin.Context, v any) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid query parameters", err))
		return false
	}
	return true
}

func Page(c *gin.Context) (pagination.Pagination, bool) {
	var p pagination.Pagination
	if !BindQuery(c, &p) {
		return p, false
	}
	return p.Normalize(), true
}

// Fail records err for the error middleware.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
