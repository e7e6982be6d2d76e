package conversation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cogniverse/internal/handler/common"
	httputil "cogniverse/internal/pkg/http"
	"cogniverse/internal/service"
)

// List 获取对话列表
// @Summary      获取对话列表
// @Description  返回当前会话的全部对话摘要，最近更新的在前
// @Tags         对话管理
// @Produce      json
// @Success      200  {object}  common.SuccessResponse{data=ListData}
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/conversations [get]
func (h *Handler) List(c *gin.Context) {
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		convs := sess.Conversations.ListConversations()
		httputil.Success(c, http.StatusOK, "ok", ListData{
			Conversations: convs,
			Total:         len(convs),
			CurrentID:     sess.Conversations.CurrentConversationID(),
		})
	})
}

// Create 创建对话
// @Summary      创建对话
// @Description  创建新对话并设为当前对话，标题为空时使用默认标题
// @Tags         对话管理
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  false  "对话标题"
// @Success      201      {object}  common.SuccessResponse{data=conversation.Summary}
// @Failure      400      {object}  ErrorResponse
// @Router       /api/v1/conversations [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.InvalidRequest(c, err)
			return
		}
	}

	common.WithSession(c, h.sessions, func(sess *service.Session) {
		ctx := c.Request.Context()
		id := sess.Conversations.CreateNewConversation(ctx, req.Title)
		conv, _ := sess.Conversations.Conversation(id)
		httputil.Success(c, http.StatusCreated, "conversation created", conv.Summary())
	})
}

// Current 获取当前对话
// @Summary      获取当前对话
// @Description  返回当前对话及其消息，没有当前对话时自动创建
// @Tags         对话管理
// @Produce      json
// @Success      200  {object}  common.SuccessResponse{data=ConversationDetail}
// @Router       /api/v1/conversations/current [get]
func (h *Handler) Current(c *gin.Context) {
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		ctx := c.Request.Context()
		conv := sess.Conversations.GetCurrentConversation(ctx)
		httputil.Success(c, http.StatusOK, "ok", ConversationDetail{
			Summary:  conv.Summary(),
			Messages: sess.Conversations.GetConversationHistory(ctx, conv.ID),
		})
	})
}

// Get 获取对话详情
// @Summary      获取对话详情
// @Tags         对话管理
// @Produce      json
// @Param        id   path      string  true  "对话ID"
// @Success      200  {object}  common.SuccessResponse{data=ConversationDetail}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/conversations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		conv, ok := sess.Conversations.Conversation(id)
		if !ok {
			common.WriteError(c, service.ErrConversationNotFound)
			return
		}
		httputil.Success(c, http.StatusOK, "ok", ConversationDetail{
			Summary:  conv.Summary(),
			Messages: sess.Conversations.GetConversationHistory(c.Request.Context(), id),
		})
	})
}
