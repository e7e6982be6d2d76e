package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"cogniverse/internal/ai"
	"cogniverse/internal/model/conversation"
	sessionrepo "cogniverse/internal/repository/session"
)

const chatHistoryMessages = 10

// Responder LLM 网关能力
type Responder interface {
	Generate(ctx context.Context, prompt, modelName string, gctx *ai.GenerateContext) string
	AnalyzeImage(ctx context.Context, data []byte, mediaType, prompt string) string
	ResolveModel(name string) string
}

// ImageAnalysis 预设的图片分析方式
type ImageAnalysis string

const (
	AnalysisDescribe ImageAnalysis = "describe"
	AnalysisOCR      ImageAnalysis = "ocr"
	AnalysisObjects  ImageAnalysis = "objects"
	AnalysisCustom   ImageAnalysis = "custom"
)

var analysisPrompts = map[ImageAnalysis]string{
	AnalysisDescribe: "Describe this image in detail.",
	AnalysisOCR:      "Extract and transcribe all text visible in this image.",
	AnalysisObjects:  "Identify and list the objects in this image.",
}

// ChatResult 一次对话往返的结果
type ChatResult struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	Model          string `json:"model"`
	Saved          bool   `json:"saved"`
}

// ChatService 对话服务 - 业务逻辑层
// 职责: 组装历史与文件上下文，调用 LLM 网关，保存一问一答
type ChatService struct {
	responder Responder
	files     *FileService
}

// NewChatService 创建对话服务
func NewChatService(responder Responder, files *FileService) *ChatService {
	return &ChatService{responder: responder, files: files}
}

// Chat 处理对话请求
// 业务流程: 1. 取当前对话与上下文 -> 2. 调用网关 -> 3. 保存消息
func (s *ChatService) Chat(ctx context.Context, sess *Session, message, modelName string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	prefs := sess.Preferences()
	if modelName == "" {
		modelName = prefs.Model
	}

	conv := sess.Conversations.GetCurrentConversation(ctx)
	if conv == nil {
		return nil, ErrNoConversation
	}
	logger := log.With().Str("session_id", sess.ID()).Str("conversation_id", conv.ID).Logger()

	// 1. 上下文
	gctx := &ai.GenerateContext{
		History:     messagesOf(conv.RecentMessages(chatHistoryMessages)),
		Files:       fileContexts(sess.UploadedFiles()),
		Preferences: ai.Preferences{Temperature: prefs.Temperature, MaxTokens: prefs.MaxTokens},
	}

	// 2. 网关，记录实际应答的模型
	reply := s.responder.Generate(ctx, message, modelName, gctx)
	used := s.responder.ResolveModel(modelName)

	// 3. 保存
	result := &ChatResult{ConversationID: conv.ID, Reply: reply, Model: used}
	if !sess.Conversations.AddMessage(ctx, message, reply, used) {
		logger.Error().Msg("chat exchange was not saved")
		return result, ErrMessageNotSaved
	}
	result.Saved = true
	return result, nil
}

// AnalyzeDocuments 针对已上传文件提问，不写入对话
func (s *ChatService) AnalyzeDocuments(ctx context.Context, sess *Session, question, modelName string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyMessage
	}
	files := sess.UploadedFiles()
	if len(files) == 0 {
		return "", ErrNoUploadedFiles
	}
	prefs := sess.Preferences()
	if modelName == "" {
		modelName = prefs.Model
	}
	gctx := &ai.GenerateContext{
		Files:       fileContexts(files),
		Preferences: ai.Preferences{Temperature: prefs.Temperature, MaxTokens: prefs.MaxTokens},
	}
	return s.responder.Generate(ctx, question, modelName, gctx), nil
}

// CheckSize 读取图片内容之前的大小校验
func (s *ChatService) CheckSize(name string, size int64) error {
	if s.files == nil {
		return nil
	}
	return s.files.CheckSize(name, size)
}

// AnalyzeImage 多模态分析图片，custom 方式使用调用方的问题
func (s *ChatService) AnalyzeImage(ctx context.Context, name string, data []byte, kind ImageAnalysis, question string) (string, error) {
	if err := s.CheckSize(name, int64(len(data))); err != nil {
		return "", err
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, mt.String())
	}

	prompt, err := analysisPrompt(kind, question)
	if err != nil {
		return "", err
	}
	log.Info().Str("file_name", name).Str("analysis", string(kind)).Msg("analyzing image")
	return s.responder.AnalyzeImage(ctx, data, mt.String(), prompt), nil
}

func analysisPrompt(kind ImageAnalysis, question string) (string, error) {
	if kind == "" {
		kind = AnalysisDescribe
	}
	if kind == AnalysisCustom {
		if strings.TrimSpace(question) == "" {
			return "", ErrEmptyMessage
		}
		return question, nil
	}
	prompt, ok := analysisPrompts[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAnalysis, kind)
	}
	return prompt, nil
}

func messagesOf(msgs []*conversation.Message) []conversation.Message {
	out := make([]conversation.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, *m)
	}
	return out
}

func fileContexts(files []sessionrepo.UploadedFile) []ai.FileContext {
	out := make([]ai.FileContext, 0, len(files))
	for _, f := range files {
		out = append(out, ai.FileContext{Name: f.Name, MediaType: f.MediaType, Type: f.Type, Content: f.Content})
	}
	return out
}
