package file

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cogniverse/internal/handler/common"
	"cogniverse/internal/pkg/fileproc"
	httputil "cogniverse/internal/pkg/http"
	sessionrepo "cogniverse/internal/repository/session"
	"cogniverse/internal/service"
)

// FileInfo 已上传文件的概要，不含全文
type FileInfo struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	MediaType  string         `json:"media_type"`
	Type       string         `json:"type"`
	Size       int64          `json:"size"`
	SizeHuman  string         `json:"size_human"`
	Preview    string         `json:"preview"`
	Metadata   map[string]any `json:"metadata"`
	Statistics map[string]any `json:"statistics"`
	ArchiveURL string         `json:"archive_url,omitempty"`
	UploadedAt string         `json:"uploaded_at"`
}

func toFileInfo(f *sessionrepo.UploadedFile) FileInfo {
	return FileInfo{
		ID:         f.ID,
		Name:       f.Name,
		MediaType:  f.MediaType,
		Type:       f.Type,
		Size:       f.Size,
		SizeHuman:  fileproc.HumanSize(f.Size),
		Preview:    f.Preview,
		Metadata:   f.Metadata,
		Statistics: f.Statistics,
		ArchiveURL: f.ArchiveURL,
		UploadedAt: f.UploadedAt.Format(time.RFC3339),
	}
}

// Upload 上传文件
// @Summary      上传文件
// @Description  通过 multipart/form-data 上传文件，服务端提取内容并加入会话，后续对话会引用它
// @Tags         文件
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "上传的文件"
// @Success      201   {object}  common.SuccessResponse{data=FileInfo}
// @Failure      400   {object}  ErrorResponse
// @Failure      413   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/v1/files [post]
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		httputil.Fail(c, http.StatusBadRequest, 40005, "Invalid file", err.Error())
		return
	}

	// 读取之前先校验大小
	if err := h.files.CheckSize(file.Filename, file.Size); err != nil {
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

	up := fileproc.Upload{
		Name:      file.Filename,
		MediaType: file.Header.Get("Content-Type"),
		Data:      data,
	}
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		uploaded, err := h.files.Upload(c.Request.Context(), sess, up)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		httputil.Success(c, http.StatusCreated, "file uploaded", toFileInfo(uploaded))
	})
}

// List 已上传文件
// @Summary      已上传文件
// @Tags         文件
// @Produce      json
// @Success      200  {object}  common.SuccessResponse{data=[]FileInfo}
// @Router       /api/v1/files [get]
func (h *Handler) List(c *gin.Context) {
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		files := sess.UploadedFiles()
		infos := make([]FileInfo, 0, len(files))
		for i := range files {
			infos = append(infos, toFileInfo(&files[i]))
		}
		httputil.Success(c, http.StatusOK, "ok", infos)
	})
}

// Clear 清空已上传文件
// @Summary      清空已上传文件
// @Tags         文件
// @Produce      json
// @Success      200  {object}  common.SuccessResponse
// @Router       /api/v1/files [delete]
func (h *Handler) Clear(c *gin.Context) {
	common.WithSession(c, h.sessions, func(sess *service.Session) {
		if err := h.files.ClearFiles(c.Request.Context(), sess); err != nil {
			common.WriteError(c, err)
			return
		}
		httputil.Success(c, http.StatusOK, "files cleared", nil)
	})
}

// FormatsData 支持的格式与能力
type FormatsData struct {
	Formats      map[string][]string `json:"formats"`
	Capabilities map[string]string   `json:"capabilities"`
	OCRAvailable bool                `json:"ocr_available"`
	MaxFileSize  int64               `json:"max_file_size"`
	MaxFileHuman string              `json:"max_file_size_human"`
}

// Formats 支持的格式
// @Summary      支持的格式
// @Tags         文件
// @Produce      json
// @Success      200  {object}  common.SuccessResponse{data=FormatsData}
// @Router       /api/v1/files/formats [get]
func (h *Handler) Formats(c *gin.Context) {
	httputil.Success(c, http.StatusOK, "ok", FormatsData{
		Formats:      h.files.SupportedFormats(),
		Capabilities: h.files.Capabilities(),
		OCRAvailable: h.files.OCRAvailable(),
		MaxFileSize:  h.files.MaxFileSize(),
		MaxFileHuman: fileproc.HumanSize(h.files.MaxFileSize()),
	})
}
