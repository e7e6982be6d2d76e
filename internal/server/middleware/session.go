package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"cogniverse/internal/pkg/ctxutil"
	"cogniverse/internal/pkg/id"
	"cogniverse/internal/pkg/jwt"
	sessionrepo "cogniverse/internal/repository/session"
)

const (
	// SessionHeader 请求与响应中携带会话令牌的 header
	SessionHeader = "X-Session-Token"
	// SessionCookie 携带会话令牌的 cookie
	SessionCookie = "cogniverse_session"

	sessionIDKey = "session_id"
)

// Session 会话识别中间件
// 令牌缺失或无效时签发新会话，并通过 header 与 cookie 返回
func Session(jwtUtil *jwt.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}

		var sessionID string
		if token != "" {
			claims, err := jwtUtil.ValidateToken(token)
			if err == nil && sessionrepo.ValidateID(claims.SessionID) == nil {
				sessionID = claims.SessionID
			} else {
				log.Debug().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("discarding session token")
				token = ""
			}
		}

		if sessionID == "" {
			sessionID = id.New()
			issued, err := jwtUtil.GenerateToken(sessionID)
			if err != nil {
				log.Error().Err(err).Msg("failed to issue session token")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    50002,
					"message": "Failed to create session",
				})
				return
			}
			token = issued
			log.Info().Str("session_id", sessionID).Msg("issued new session")
		}

		c.Header(SessionHeader, token)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, int(jwtUtil.GetExpiration().Seconds()), "/", "", false, true)

		c.Set(sessionIDKey, sessionID)
		c.Request = c.Request.WithContext(ctxutil.WithSessionID(c.Request.Context(), sessionID))
		c.Next()
	}
}

// SessionID 读取当前请求的会话标识
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
