package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	httputil "cogniverse/internal/pkg/http"
)

// Recovery 把 handler 中的 panic 转换为 50001 错误响应
// 客户端已断开 (http.ErrAbortHandler) 或响应已开始写出时只中止请求
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				c.Abort()
				return
			}

			log.Error().
				Interface("panic", rec).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString(requestIDKey)).
				Str("session_id", c.GetString(sessionIDKey)).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			httputil.Fail(c, http.StatusInternalServerError, 50001, "Internal server error")
		}()
		c.Next()
	}
}
