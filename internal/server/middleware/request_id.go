package middleware

import (
	"github.com/gin-gonic/gin"

	"cogniverse/internal/pkg/ctxutil"
	"cogniverse/internal/pkg/id"
)

const (
	// RequestIDHeader 请求标识 header
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// RequestID 透传或生成请求标识
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = id.New()
		}
		c.Set(requestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
