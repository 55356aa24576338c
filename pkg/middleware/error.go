package middleware

import (
	"errors"
	"net/http"

	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type jsonError interface {
	JSON() interface{}
}

// Error renders the last error attached with c.Error. Errors carrying a
// CoreStatus keep their code; anything else is reported as internal.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var se errutil.StatusError
		if errors.As(last.Err, &se) {
			var body interface{} = gin.H{"error": gin.H{"code": se.Status(), "message": se.Error()}}
			var je jsonError
			if errors.As(last.Err, &je) {
				body = je.JSON()
			}
			c.JSON(se.Status().HTTPStatus(), body)
			return
		}

		logger.FromContext(c.Request.Context()).Error("unhandled request error",
			zap.String("path", c.FullPath()),
			zap.Error(last.Err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": errutil.StatusInternal, "message": "internal server error"},
		})
	}
}
