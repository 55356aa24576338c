package middleware

import (
	"strings"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/errutil"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Auth verifies the bearer token and stores the resulting Actor on both the
// gin context and the request context.
func Auth(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abort(c, errutil.Unauthorized("missing or invalid authorization header", nil))
			return
		}

		actor, err := v.Verify(token)
		if err != nil {
			abort(c, errutil.Unauthorized("invalid token", err))
			return
		}

		c.Set(actorKey, actor)
		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			abort(c, errutil.Unauthorized("no authenticated actor", nil))
			return
		}
		if !actor.HasRole(roles...) {
			abort(c, errutil.Forbidden("role not permitted for this resource", nil))
			return
		}
		c.Next()
	}
}

func Actor(c *gin.Context) (auth.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return auth.Actor{}, false
	}
	a, ok := v.(auth.Actor)
	return a, ok
}

func abort(c *gin.Context, err error) {
	var body interface{} = gin.H{"error": gin.H{"code": errutil.StatusOf(err), "message": err.Error()}}
	if je, ok := err.(jsonError); ok {
		body = je.JSON()
	}
	c.AbortWithStatusJSON(errutil.StatusOf(err).HTTPStatus(), body)
}
