package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"cogniverse/internal/pkg/fileproc"
	httputil "cogniverse/internal/pkg/http"
	sessionrepo "cogniverse/internal/repository/session"
	"cogniverse/internal/server/middleware"
	"cogniverse/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// SuccessResponse 成功响应类型别名
type SuccessResponse = httputil.SuccessResponse

// InvalidRequest 请求体或参数无法解析
func InvalidRequest(c *gin.Context, err error) {
	httputil.Fail(c, http.StatusBadRequest, 40001, "Invalid request body", err.Error())
}

// WithSession 在当前请求的会话锁内执行 fn，加载失败时直接写入错误响应
func WithSession(c *gin.Context, sessions *service.SessionService, fn func(sess *service.Session)) {
	sessionID := middleware.SessionID(c)
	err := sessions.WithSession(c.Request.Context(), sessionID, func(sess *service.Session) error {
		fn(sess)
		return nil
	})
	if err != nil {
		WriteError(c, err)
	}
}

// WriteError 把服务层错误映射为 HTTP 状态码与 5 位错误码
func WriteError(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, 50001, "Internal server error"

	switch {
	case errors.Is(err, sessionrepo.ErrInvalidSessionID):
		status, code, message = http.StatusBadRequest, 40002, "Invalid session"
	case errors.Is(err, service.ErrEmptyMessage):
		status, code, message = http.StatusBadRequest, 40003, "Message must not be empty"
	case errors.Is(err, service.ErrUnsupportedExportFormat):
		status, code, message = http.StatusBadRequest, 40004, "Unsupported export format"
	case errors.Is(err, service.ErrNotAnImage):
		status, code, message = http.StatusBadRequest, 40006, "File is not an image"
	case errors.Is(err, service.ErrUnsupportedAnalysis):
		status, code, message = http.StatusBadRequest, 40007, "Unsupported analysis type"
	case errors.Is(err, service.ErrNoUploadedFiles):
		status, code, message = http.StatusBadRequest, 40008, "No uploaded files"
	case errors.Is(err, service.ErrConversationNotFound):
		status, code, message = http.StatusNotFound, 40401, "Conversation not found"
	case errors.Is(err, service.ErrNoConversation):
		status, code, message = http.StatusNotFound, 40402, "No conversation available"
	case errors.Is(err, service.ErrFileTooLarge):
		status, code, message = http.StatusRequestEntityTooLarge, 41301, "File too large"
	case errors.Is(err, fileproc.ErrFileProcessing):
		status, code, message = http.StatusUnprocessableEntity, 42201, "File processing failed"
	case errors.Is(err, service.ErrMessageNotSaved):
		status, code, message = http.StatusInternalServerError, 50003, "Message could not be saved"
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Str("session_id", middleware.SessionID(c)).Msg("request failed")
	}
	httputil.Fail(c, status, code, message, err.Error())
}
