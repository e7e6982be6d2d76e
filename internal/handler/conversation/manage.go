package conversation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cogniverse/internal/handler/common"
	httputil "cogniverse/internal/pkg/http"
	"cogniverse/internal/service"
)

// Select 切换当前对话
// @Summary      切换当前对话
// @Tags         对话管理
// @Produce      json
// @Param        id   path      string  true  "对话ID"
// @Success      200  {object}  common.SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/conversations/{id}/select [post]
func (h *Handler) Select(c *gin.Context) {
	id := c.Param("id")
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		if err := sess.Conversations.SelectConversation(c.Request.Context(), id); err != nil {
			common.WriteError(c, err)
			return
		}
		httputil.Success(c, http.StatusOK, "conversation selected", gin.H{"current_conversation_id": id})
	})
}

// Delete 删除对话
// @Summary      删除对话
// @Tags         对话管理
// @Produce      json
// @Param        id   path      string  true  "对话ID"
// @Success      200  {object}  common.SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/conversations/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		if err := sess.Conversations.DeleteConversation(c.Request.Context(), id); err != nil {
			common.WriteError(c, err)
			return
		}
		httputil.Success(c, http.StatusOK, "conversation deleted", nil)
	})
}

// Clear 删除全部对话
// @Summary      删除全部对话
// @Tags         对话管理
// @Produce      json
// @Success      200  {object}  common.SuccessResponse
// @Router       /api/v1/conversations [delete]
func (h *Handler) Clear(c *gin.Context) {
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		if err := sess.Conversations.ClearConversations(c.Request.Context()); err != nil {
			common.WriteError(c, err)
			return
		}
		httputil.Success(c, http.StatusOK, "conversations cleared", nil)
	})
}

// Rename 修改对话标题
// @Summary      修改对话标题
// @Tags         对话管理
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "对话ID"
// @Param        request  body      RenameRequest  true  "新标题"
// @Success      200      {object}  common.SuccessResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /api/v1/conversations/{id} [patch]
func (h *Handler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.InvalidRequest(c, err)
		return
	}
	h.update(c, "conversation renamed", func(sess *service.Session, id string) error {
		return sess.Conversations.RenameConversation(c.Request.Context(), id, req.Title)
	})
}

// Favorite 设置或取消收藏
// @Summary      设置收藏
// @Description  收藏的对话不会被清理
// @Tags         对话管理
// @Accept       json
// @Produce      json
// @Param        id       path      string           true  "对话ID"
// @Param        request  body      FavoriteRequest  true  "是否收藏"
// @Success      200      {object}  common.SuccessResponse
// @Router       /api/v1/conversations/{id}/favorite [put]
func (h *Handler) Favorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.InvalidRequest(c, err)
		return
	}
	h.update(c, "favorite updated", func(sess *service.Session, id string) error {
		return sess.Conversations.SetFavorite(c.Request.Context(), id, req.Favorite)
	})
}

// AddTag 添加标签
// @Summary      添加标签
// @Tags         对话管理
// @Accept       json
// @Produce      json
// @Param        id       path      string      true  "对话ID"
// @Param        request  body      TagRequest  true  "标签"
// @Success      200      {object}  common.SuccessResponse
// @Router       /api/v1/conversations/{id}/tags [post]
func (h *Handler) AddTag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.InvalidRequest(c, err)
		return
	}
	h.update(c, "tag added", func(sess *service.Session, id string) error {
		return sess.Conversations.AddTag(c.Request.Context(), id, req.Tag)
	})
}

// RemoveTag 删除标签
// @Summary      删除标签
// @Tags         对话管理
// @Produce      json
// @Param        id   path      string  true  "对话ID"
// @Param        tag  path      string  true  "标签"
// @Success      200  {object}  common.SuccessResponse
// @Router       /api/v1/conversations/{id}/tags/{tag} [delete]
func (h *Handler) RemoveTag(c *gin.Context) {
	tag := c.Param("tag")
	h.update(c, "tag removed", func(sess *service.Session, id string) error {
		return sess.Conversations.RemoveTag(c.Request.Context(), id, tag)
	})
}

// update 修改单个对话后返回最新摘要
func (h *Handler) update(c *gin.Context, message string, fn func(sess *service.Session, id string) error) {
	id := c.Param("id")
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		if err := fn(sess, id); err != nil {
			common.WriteError(c, err)
			return
		}
		conv, _ := sess.Conversations.Conversation(id)
		httputil.Success(c, http.StatusOK, message, conv.Summary())
	})
}
