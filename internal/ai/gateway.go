package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cloudwego/eino/schema"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"cogniverse/internal/config"
)

const (
	emptyPromptReply = "I'd be happy to help! Please provide a question or message."
	apologyPrefix    = "I apologize, but I encountered an error while processing your request: "

	defaultImagePrompt = "Describe this image"
)

// Gateway LLM 网关
// 职责: 响应缓存、请求限流、失败重试，失败时返回面向用户的提示而不是错误
type Gateway struct {
	gen          Generator
	cfg          config.GatewayConfig
	defaultModel string
	models       Catalog
	cache        *responseCache
	limiter      *rate.Limiter
}

// GatewayOption 网关可选项
type GatewayOption func(*Gateway)

// WithCatalog 替换模型目录，空目录忽略
func WithCatalog(models Catalog) GatewayOption {
	return func(g *Gateway) {
		if len(models) > 0 {
			g.models = models
		}
	}
}

// NewGateway 创建 LLM 网关，默认使用 Gemini 模型目录
func NewGateway(gen Generator, cfg config.GatewayConfig, defaultModel string, opts ...GatewayOption) *Gateway {
	g := &Gateway{gen: gen, models: geminiModels}
	for _, opt := range opts {
		opt(g)
	}

	if _, ok := g.models.Lookup(defaultModel); !ok {
		fallback := g.models[0].Name
		if defaultModel != "" {
			log.Warn().Str("model", defaultModel).Str("fallback", fallback).Msg("configured default model not found")
		}
		defaultModel = fallback
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.HistoryMessages <= 0 {
		cfg.HistoryMessages = defaultHistoryMessages
	}
	if cfg.ContextFiles <= 0 {
		cfg.ContextFiles = defaultContextFiles
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	g.cfg = cfg
	g.defaultModel = defaultModel
	g.cache = newResponseCache(cfg.CacheTTL, cfg.CacheMaxEntries, cfg.CacheEvictCount)
	g.limiter = rate.NewLimiter(limit, 1)
	return g
}

// Generate 生成回复，任何失败都转换为致歉文本
func (g *Gateway) Generate(ctx context.Context, prompt, modelName string, gctx *GenerateContext) string {
	if strings.TrimSpace(prompt) == "" {
		return emptyPromptReply
	}

	logger := log.With().Str("model", modelName).Logger()

	key := cacheKey(prompt, modelName, gctx)
	if cached, ok := g.cache.get(key); ok {
		logger.Info().Msg("returning cached response")
		return cached
	}

	if err := g.limiter.Wait(ctx); err != nil {
		logger.Error().Err(err).Msg("rate limiter wait failed")
		return apologyPrefix + err.Error()
	}

	messages := buildMessages(prompt, gctx, g.cfg.HistoryMessages, g.cfg.ContextFiles)
	resolved := g.ResolveModel(modelName)

	var opts GenerateOptions
	if gctx != nil {
		opts = GenerateOptions{Temperature: gctx.Preferences.Temperature, MaxTokens: gctx.Preferences.MaxTokens}
	}

	text, err := g.generateWithRetry(ctx, resolved, messages, opts)
	if err != nil {
		logger.Error().Err(err).Msg("error generating response")
		return apologyPrefix + err.Error()
	}

	g.cache.set(key, text)
	logger.Info().Str("resolved_model", resolved).Int("length", len(text)).Msg("generated response")
	return text
}

// generateWithRetry 指数退避重试，首次等待 RetryBaseDelay
func (g *Gateway) generateWithRetry(ctx context.Context, modelName string, messages []*schema.Message, opts GenerateOptions) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.RetryBaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0

	attempt := 0
	operation := func() (string, error) {
		attempt++
		return g.gen.Generate(ctx, modelName, messages, opts)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(g.cfg.MaxRetries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("generation attempt failed")
		}),
	)
}

// ResolveModel 实际用于调用的模型名，空或未知模型回退到默认模型
func (g *Gateway) ResolveModel(name string) string {
	if name == "" {
		return g.defaultModel
	}
	if _, ok := g.models.Lookup(name); !ok {
		log.Warn().Str("model", name).Str("fallback", g.defaultModel).Msg("model not found, using default")
		return g.defaultModel
	}
	return name
}

// AnalyzeImage 多模态分析图片
func (g *Gateway) AnalyzeImage(ctx context.Context, data []byte, mediaType, prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultImagePrompt
	}
	if mediaType == "" || !strings.HasPrefix(mediaType, "image/") {
		mediaType = mimetype.Detect(data).String()
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Sprintf("Error analyzing image: %v", err)
	}

	msg := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: prompt},
			{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL:      dataURL(mediaType, data),
					MIMEType: mediaType,
				},
			},
		},
	}
	messages := []*schema.Message{schema.SystemMessage(systemInstruction), msg}

	text, err := g.gen.Generate(ctx, g.visionModel(), messages, GenerateOptions{})
	if err != nil {
		if errors.Is(err, ErrEmptyResponse) {
			return "Unable to analyze image"
		}
		log.Error().Err(err).Msg("error analyzing image")
		return fmt.Sprintf("Error analyzing image: %v", err)
	}
	return text
}

// visionModel 默认模型不支持图片时选第一个支持的模型
func (g *Gateway) visionModel() string {
	if m, ok := g.models.Lookup(g.defaultModel); ok && m.SupportsVision {
		return m.Name
	}
	for _, m := range g.models {
		if m.SupportsVision {
			return m.Name
		}
	}
	return g.defaultModel
}

// ModelInfo 查询模型能力，未知模型返回 false
func (g *Gateway) ModelInfo(name string) (ModelInfo, bool) {
	return g.models.Lookup(name)
}

// AvailableModels 可选模型名称
func (g *Gateway) AvailableModels() []string {
	return g.models.Names()
}

// DefaultModel 当前默认模型
func (g *Gateway) DefaultModel() string {
	return g.defaultModel
}

// ClearCache 清空响应缓存
func (g *Gateway) ClearCache() {
	g.cache.flush()
	log.Info().Msg("response cache cleared")
}

// CacheSize 当前缓存条目数
func (g *Gateway) CacheSize() int {
	return g.cache.len()
}
