package middleware

import (
	"fmt"
	"io"
	"ixadmin/internal/logging"
	"ixadmin/internal/response"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into the 500 envelope. The stack is included in the
// body only when exposeStack is set, which main does in development.
func Recovery(exposeStack bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		stack := string(debug.Stack())
		logging.Error().
			Str("panic", fmt.Sprint(recovered)).
			Str("path", c.Request.URL.Path).
			Str("request_id", GetRequestID(c)).
			Str("stack", stack).
			Msg("[HTTP] Panic recovered")

		env := response.Envelope{Success: false, Error: "Internal server error"}
		if exposeStack {
			env.Error = fmt.Sprint(recovered)
			env.Stack = stack
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, env)
	})
}

// NoRoute answers unknown routes with the 404 envelope.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.NotFound(c, fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path))
	}
}
