package component

import (
	"context"
	"fmt"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"cogniverse/internal/config"
)

// GeminiOpenAIBaseURL Gemini 的 OpenAI 兼容入口
const GeminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// NewChatModel 创建 ChatModel
// 支持多种 Provider: gemini (默认), openai, azure, ark
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.ChatModel, error) {
	switch cfg.Provider {
	case "gemini", "":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = GeminiOpenAIBaseURL
		}
		return newOpenAICompatible(ctx, cfg, baseURL, false)
	case "openai":
		return newOpenAICompatible(ctx, cfg, cfg.BaseURL, false)
	case "azure":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("azure provider requires ai.base_url")
		}
		return newOpenAICompatible(ctx, cfg, cfg.BaseURL, true)
	case "ark":
		return newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// newOpenAICompatible 创建 OpenAI 协议的 ChatModel（Gemini / OpenAI / Azure）
func newOpenAICompatible(ctx context.Context, cfg *config.AIConfig, baseURL string, byAzure bool) (model.ChatModel, error) {
	modelCfg := &openai.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
		ByAzure: byAzure,
	}

	temp, maxTokens, topP := samplingOptions(cfg.Options)
	modelCfg.Temperature = temp
	modelCfg.MaxTokens = maxTokens
	modelCfg.TopP = topP

	return openai.NewChatModel(ctx, modelCfg)
}

// newArkChatModel 创建 Ark ChatModel（使用 eino-ext 模块）
func newArkChatModel(ctx context.Context, cfg *config.AIConfig) (model.ChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}

	modelCfg := &arkext.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}

	temp, maxTokens, topP := samplingOptions(cfg.Options)
	modelCfg.Temperature = temp
	modelCfg.MaxTokens = maxTokens
	modelCfg.TopP = topP

	return arkext.NewChatModel(ctx, modelCfg)
}

// samplingOptions 未配置（<=0）的参数保持 nil，交给服务端默认值
func samplingOptions(opts config.AIOptionsConfig) (*float32, *int, *float32) {
	var (
		temp      *float32
		maxTokens *int
		topP      *float32
	)
	if opts.Temperature > 0 {
		v := float32(opts.Temperature)
		temp = &v
	}
	if opts.MaxTokens > 0 {
		v := opts.MaxTokens
		maxTokens = &v
	}
	if opts.TopP > 0 {
		v := float32(opts.TopP)
		topP = &v
	}
	return temp, maxTokens, topP
}
