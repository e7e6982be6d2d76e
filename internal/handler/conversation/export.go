package conversation

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cogniverse/internal/handler/common"
	"cogniverse/internal/service"
)

// Export 导出对话
// @Summary      导出对话
// @Description  以附件形式下载 json、csv 或 txt 格式的对话
// @Tags         对话管理
// @Produce      json
// @Produce      text/csv
// @Produce      plain
// @Param        id      path      string  true   "对话ID或current"
// @Param        format  query     string  false  "json|csv|txt"  default(json)
// @Success      200     {file}    file
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /api/v1/conversations/{id}/export [get]
func (h *Handler) Export(c *gin.Context) {
	id := resolveID(c.Param("id"))
	format := c.DefaultQuery("format", string(service.ExportJSON))

	common.WithSession(c, h.sessions, func(sess *service.Session) {
		data, err := sess.Conversations.ExportConversation(c.Request.Context(), id, format)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		f, _ := service.ParseExportFormat(format)

		name := fmt.Sprintf("conversation_%s.%s", time.Now().Format("20060102_150405"), f)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
		c.Data(http.StatusOK, f.ContentType(), data)
	})
}
