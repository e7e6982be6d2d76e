package ai

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"cogniverse/internal/model/conversation"
)

const (
	historyPrefix = "Previous conversation context: "

	defaultHistoryMessages = 6
	defaultContextFiles    = 3
	historySnippetRunes    = 100
)

const systemInstruction = `You are an intelligent AI assistant in CogniVerse, designed to be helpful, accurate, and engaging. You excel at:

- Providing clear, well-structured explanations
- Analyzing documents and extracting key insights
- Helping with creative writing and problem-solving
- Writing and explaining code in multiple programming languages
- Answering questions across diverse domains

Always strive to be informative while maintaining a friendly, professional tone.
When analyzing files or images, provide detailed observations and actionable insights.`

// FileContext 作为上下文附带的已处理文件
type FileContext struct {
	Name      string
	MediaType string
	Type      string
	Content   string
}

// Preferences 生成参数偏好
type Preferences struct {
	Temperature float64
	MaxTokens   int
}

// GenerateContext 对话历史、已上传文件与偏好
type GenerateContext struct {
	History     []conversation.Message
	Files       []FileContext
	Preferences Preferences
}

// summarizeHistory 取最近 limit 条消息，每条截取前 100 个字符
func summarizeHistory(history []conversation.Message, limit int) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	parts := make([]string, 0, len(history))
	for _, m := range history {
		role := "Assistant"
		if m.Role == conversation.RoleUser {
			role = "User"
		}
		parts = append(parts, fmt.Sprintf("%s: %s...", role, firstRunes(m.Content, historySnippetRunes)))
	}
	return strings.Join(parts, " | ")
}

// fileParts 最近 limit 个文件，图片只给出名称
func fileParts(files []FileContext, limit int) []string {
	if len(files) > limit {
		files = files[len(files)-limit:]
	}
	parts := make([]string, 0, len(files))
	for _, f := range files {
		name := f.Name
		if name == "" {
			name = "Unknown file"
		}
		switch {
		case strings.HasPrefix(f.MediaType, "image/"):
			parts = append(parts, fmt.Sprintf("\n[Image file: %s]\n", name))
		case strings.TrimSpace(f.Content) != "":
			parts = append(parts, fmt.Sprintf("\n[File: %s]\n%s\n", name, f.Content))
		default:
			parts = append(parts, fmt.Sprintf("\n[File: %s - %s]\n", name, f.MediaType))
		}
	}
	return parts
}

// buildMessages 系统指令 + 历史摘要、文件上下文与用户输入
func buildMessages(prompt string, gctx *GenerateContext, historyLimit, fileLimit int) []*schema.Message {
	var parts []string
	if gctx != nil {
		if summary := summarizeHistory(gctx.History, historyLimit); summary != "" {
			parts = append(parts, historyPrefix+summary+"\n\n")
		}
		parts = append(parts, fileParts(gctx.Files, fileLimit)...)
	}
	parts = append(parts, prompt)

	return []*schema.Message{
		schema.SystemMessage(systemInstruction),
		schema.UserMessage(strings.Join(parts, "")),
	}
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func dataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
