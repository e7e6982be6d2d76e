package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"cogniverse/internal/ai/component"
	"cogniverse/internal/config"
)

// ErrEmptyResponse 模型返回了空内容
var ErrEmptyResponse = errors.New("empty response received")

// GenerateOptions 单次调用的采样参数，零值表示使用模型默认值
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Generator 模型调用能力
type Generator interface {
	Generate(ctx context.Context, modelName string, messages []*schema.Message, opts GenerateOptions) (string, error)
}

// NewGenerator 根据配置创建 Generator，未配置 API key 时使用 mock 模式
func NewGenerator(ctx context.Context, cfg *config.AIConfig) (Generator, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("AI API key not configured, using mock mode")
		return MockGenerator{}, nil
	}

	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	log.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("chat model initialized")
	return NewChatModelGenerator(chatModel), nil
}

// ChatModelGenerator 基于 eino ChatModel 的 Generator
type ChatModelGenerator struct {
	chatModel model.BaseChatModel
}

// NewChatModelGenerator 包装 eino ChatModel
func NewChatModelGenerator(chatModel model.BaseChatModel) *ChatModelGenerator {
	return &ChatModelGenerator{chatModel: chatModel}
}

// Generate 调用模型，空响应视为失败
func (g *ChatModelGenerator) Generate(ctx context.Context, modelName string, messages []*schema.Message, opts GenerateOptions) (string, error) {
	var options []model.Option
	if modelName != "" {
		options = append(options, model.WithModel(modelName))
	}
	if opts.Temperature > 0 {
		options = append(options, model.WithTemperature(float32(opts.Temperature)))
	}
	if opts.MaxTokens > 0 {
		options = append(options, model.WithMaxTokens(opts.MaxTokens))
	}

	resp, err := g.chatModel.Generate(ctx, messages, options...)
	if err != nil {
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}

	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		log.Debug().
			Str("model", modelName).
			Int("prompt_tokens", resp.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", resp.ResponseMeta.Usage.CompletionTokens).
			Msg("chat model usage")
	}
	return resp.Content, nil
}

// MockGenerator 没有模型凭据时的本地回显
type MockGenerator struct{}

// Generate 返回描述性的模拟响应
func (MockGenerator) Generate(ctx context.Context, modelName string, messages []*schema.Message, opts GenerateOptions) (string, error) {
	var last *schema.Message
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == schema.User {
			last = messages[i]
			break
		}
	}

	content := "Hello! This is a mock response from " + modelName + ". "
	if last != nil {
		if text := firstRunes(lastLine(messageText(last)), 120); text != "" {
			content += "You said: \"" + text + "\". "
		}
		if strings.Contains(messageText(last), historyPrefix) {
			content += "I can see you have conversation history. "
		}
	}
	content += "Configure ai.api_key to talk to a real model."
	return content, nil
}

// messageText 取出消息中的全部文本
func messageText(m *schema.Message) string {
	if len(m.MultiContent) == 0 {
		return m.Content
	}
	var parts []string
	for _, p := range m.MultiContent {
		if p.Type == schema.ChatMessagePartTypeText {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
