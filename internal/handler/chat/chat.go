package chat

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"cogniverse/internal/ai"
	"cogniverse/internal/handler/common"
	httputil "cogniverse/internal/pkg/http"
	"cogniverse/internal/service"
)

// ChatRequest 对话请求
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	Model   string `json:"model"`
}

// AnalyzeDocumentsRequest 文档分析请求
type AnalyzeDocumentsRequest struct {
	Question string `json:"question" binding:"required"`
	Model    string `json:"model"`
}

// Chat 对话接口
// @Summary      发送消息
// @Description  结合最近历史与已上传文件生成回复，并把一问一答写入当前对话
// @Tags         对话
// @Accept       json
// @Produce      json
// @Param        request  body      ChatRequest  true  "消息"
// @Success      200      {object}  common.SuccessResponse{data=service.ChatResult}
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/v1/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.InvalidRequest(c, err)
		return
	}

	common.WithSession(c, h.sessions, func(sess *service.Session) {
		res, err := h.chat.Chat(c.Request.Context(), sess, req.Message, req.Model)
		if err != nil {
			if errors.Is(err, service.ErrMessageNotSaved) && res != nil {
				// 回复已生成但未保存
				c.JSON(http.StatusInternalServerError, common.ErrorResponse{
					Code:    50003,
					Message: "Message could not be saved",
					Detail:  res.Reply,
				})
				return
			}
			common.WriteError(c, err)
			return
		}
		httputil.Success(c, http.StatusOK, "ok", res)
	})
}

// AnalyzeDocuments 针对已上传文件提问
// @Summary      文档分析
// @Description  只使用已上传文件作为上下文，结果不写入对话
// @Tags         对话
// @Accept       json
// @Produce      json
// @Param        request  body      AnalyzeDocumentsRequest  true  "问题"
// @Success      200      {object}  common.SuccessResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /api/v1/documents/analyze [post]
func (h *Handler) AnalyzeDocuments(c *gin.Context) {
	var req AnalyzeDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.InvalidRequest(c, err)
		return
	}

	common.WithSession(c, h.sessions, func(sess *service.Session) {
		answer, err := h.chat.AnalyzeDocuments(c.Request.Context(), sess, req.Question, req.Model)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		httputil.Success(c, http.StatusOK, "ok", gin.H{"answer": answer})
	})
}

// AnalyzeImage 图片分析
// @Summary      图片分析
// @Description  analysis 可选 describe、ocr、objects、custom；custom 需要 question
// @Tags         对话
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "图片"
// @Param        analysis  formData  string  false  "分析方式"  default(describe)
// @Param        question  formData  string  false  "自定义问题"
// @Success      200       {object}  common.SuccessResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      413       {object}  ErrorResponse
// @Router       /api/v1/images/analyze [post]
func (h *Handler) AnalyzeImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		httputil.Fail(c, http.StatusBadRequest, 40005, "Invalid file", err.Error())
		return
	}
	if err := h.chat.CheckSize(file.Filename, file.Size); err != nil {
		common.WriteError(c, err)
		return
	}
	f, err := file.Open()
	if err != nil {
		httputil.Fail(c, http.StatusBadRequest, 40005, "Failed to open file", err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		httputil.Fail(c, http.StatusBadRequest, 40005, "Failed to read file", err.Error())
		return
	}

	kind := service.ImageAnalysis(c.DefaultPostForm("analysis", string(service.AnalysisDescribe)))
	analysis, err := h.chat.AnalyzeImage(c.Request.Context(), file.Filename, data, kind, c.PostForm("question"))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, "ok", gin.H{"file_name": file.Filename, "analysis": analysis})
}

// ModelsData 可选模型
type ModelsData struct {
	Default string         `json:"default"`
	Models  []ai.ModelInfo `json:"models"`
}

// Models 可选模型列表
// @Summary      模型列表
// @Tags         对话
// @Produce      json
// @Success      200  {object}  common.SuccessResponse{data=ModelsData}
// @Router       /api/v1/models [get]
func (h *Handler) Models(c *gin.Context) {
	names := h.models.AvailableModels()
	infos := make([]ai.ModelInfo, 0, len(names))
	for _, name := range names {
		if info, ok := h.models.ModelInfo(name); ok {
			infos = append(infos, info)
		}
	}
	httputil.Success(c, http.StatusOK, "ok", ModelsData{Default: h.models.DefaultModel(), Models: infos})
}
