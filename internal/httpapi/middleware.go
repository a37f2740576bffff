package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"classifieds/internal/auth"
	"classifieds/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestIDMiddleware tags every request with an id, reusing a client-supplied one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// accessLogMiddleware logs one line per request.
func accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infof("%s %s %d %s ip=%s rid=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.ClientIP(), requestID(c))
	}
}

// recoveryMiddleware turns a panic into a 500 for this request only.
func recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Errorf("panic on %s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, requestID(c), recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	})
}

// sessionMiddleware resolves the session cookie into the request context. Requests
// without a usable session continue anonymously; handlers that need a caller reject them.
func sessionMiddleware(gate *auth.Gate, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		u, err := gate.Authenticate(c.Request.Context(), token)
		if err == nil {
			c.Request = c.Request.WithContext(auth.WithCaller(c.Request.Context(), u))
		}
		c.Next()
	}
}
