package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cogniverse/internal/handler/common"
	httputil "cogniverse/internal/pkg/http"
	sessionrepo "cogniverse/internal/repository/session"
	"cogniverse/internal/server/middleware"
	"cogniverse/internal/service"
)

// ErrorResponse 错误响应类型别名
type ErrorResponse = common.ErrorResponse

// Handler 会话与偏好处理器
type Handler struct {
	sessions *service.SessionService
	validate func(model string) bool
}

// NewHandler 创建会话处理器，validate 用于校验偏好中的模型名
func NewHandler(sessions *service.SessionService, validate func(model string) bool) *Handler {
	return &Handler{sessions: sessions, validate: validate}
}

// PreferencesRequest 偏好修改请求，未给出的字段保持不变
type PreferencesRequest struct {
	Model          *string  `json:"model"`
	Temperature    *float64 `json:"temperature" binding:"omitempty,min=0,max=2"`
	MaxTokens      *int     `json:"max_tokens" binding:"omitempty,min=1"`
	ShowTimestamps *bool    `json:"show_timestamps"`
	AutoSave       *bool    `json:"auto_save"`
}

// SessionData 会话概况
type SessionData struct {
	SessionID   string                  `json:"session_id"`
	Preferences sessionrepo.Preferences `json:"preferences"`
}

// GetPreferences 获取偏好
// @Summary      获取偏好
// @Tags         会话
// @Produce      json
// @Success      200  {object}  common.SuccessResponse{data=SessionData}
// @Router       /api/v1/preferences [get]
func (h *Handler) GetPreferences(c *gin.Context) {
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		httputil.Success(c, http.StatusOK, "ok", SessionData{SessionID: sess.ID(), Preferences: sess.Preferences()})
	})
}

// UpdatePreferences 修改偏好
// @Summary      修改偏好
// @Tags         会话
// @Accept       json
// @Produce      json
// @Param        request  body      PreferencesRequest  true  "偏好"
// @Success      200      {object}  common.SuccessResponse{data=SessionData}
// @Failure      400      {object}  ErrorResponse
// @Router       /api/v1/preferences [put]
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.InvalidRequest(c, err)
		return
	}
	if req.Model != nil && h.validate != nil && !h.validate(*req.Model) {
		httputil.Fail(c, http.StatusBadRequest, 40009, "Unknown model", *req.Model)
		return
	}

	common.WithSession(c, h.sessions, func(sess *service.Session) {
		prefs, err := sess.UpdatePreferences(c.Request.Context(), func(p *sessionrepo.Preferences) {
			if req.Model != nil {
				p.Model = *req.Model
			}
			if req.Temperature != nil {
				p.Temperature = *req.Temperature
			}
			if req.MaxTokens != nil {
				p.MaxTokens = *req.MaxTokens
			}
			if req.ShowTimestamps != nil {
				p.ShowTimestamps = *req.ShowTimestamps
			}
			if req.AutoSave != nil {
				p.AutoSave = *req.AutoSave
			}
		})
		if err != nil {
			common.WriteError(c, err)
			return
		}
		httputil.Success(c, http.StatusOK, "preferences updated", SessionData{SessionID: sess.ID(), Preferences: prefs})
	})
}

// Reset 重置会话
// @Summary      重置会话
// @Description  删除当前会话的全部对话、文件与偏好
// @Tags         会话
// @Produce      json
// @Success      200  {object}  common.SuccessResponse
// @Router       /api/v1/session/reset [post]
func (h *Handler) Reset(c *gin.Context) {
	if err := h.sessions.Reset(c.Request.Context(), middleware.SessionID(c)); err != nil {
		common.WriteError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, "session reset", nil)
}
