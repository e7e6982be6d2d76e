package conversation

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cogniverse/internal/handler/common"
	httputil "cogniverse/internal/pkg/http"
	"cogniverse/internal/service"
)

// History 获取对话消息
// @Summary      获取对话消息
// @Description  id 为 current 时取当前对话；limit 大于 0 时只返回最后 limit 条
// @Tags         对话管理
// @Produce      json
// @Param        id     path      string  true   "对话ID或current"
// @Param        limit  query     int     false  "最近消息条数"
// @Success      200    {object}  common.SuccessResponse{data=[]service.MessageView}
// @Router       /api/v1/conversations/{id}/messages [get]
func (h *Handler) History(c *gin.Context) {
	id := resolveID(c.Param("id"))
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.Fail(c, http.StatusBadRequest, 40001, "Invalid limit", raw)
			return
		}
		limit = n
	}

	common.WithSession(c, h.sessions, func(sess *service.Session) {
		ctx := c.Request.Context()
		var messages []service.MessageView
		if id == "" && limit > 0 {
			messages = sess.Conversations.GetRecentHistory(ctx, limit)
		} else {
			messages = sess.Conversations.GetConversationHistory(ctx, id)
			if limit > 0 && len(messages) > limit {
				messages = messages[len(messages)-limit:]
			}
		}
		httputil.Success(c, http.StatusOK, "ok", messages)
	})
}

// Search 搜索全部对话
// @Summary      搜索对话
// @Description  大小写不敏感的子串匹配，每个对话最多返回 3 条命中消息
// @Tags         对话管理
// @Produce      json
// @Param        q    query     string  false  "关键词"
// @Success      200  {object}  common.SuccessResponse{data=[]service.SearchResult}
// @Router       /api/v1/conversations/search [get]
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		httputil.Success(c, http.StatusOK, "ok", sess.Conversations.SearchConversations(query))
	})
}

// Stats 对话统计
// @Summary      对话统计
// @Tags         对话管理
// @Produce      json
// @Success      200  {object}  common.SuccessResponse{data=service.Stats}
// @Router       /api/v1/conversations/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		httputil.Success(c, http.StatusOK, "ok", sess.Conversations.GetConversationStats())
	})
}

// Cleanup 清理旧对话
// @Summary      清理旧对话
// @Description  删除超过 days 天未更新且未收藏的对话
// @Tags         对话管理
// @Accept       json
// @Produce      json
// @Param        request  body      CleanupRequest  true  "天数"
// @Success      200      {object}  common.SuccessResponse
// @Router       /api/v1/conversations/cleanup [post]
func (h *Handler) Cleanup(c *gin.Context) {
	var req CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.InvalidRequest(c, err)
		return
	}
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		removed, err := sess.Conversations.CleanupOldConversations(c.Request.Context(), req.Days)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		httputil.Success(c, http.StatusOK, "cleanup finished", gin.H{"removed": removed})
	})
}
