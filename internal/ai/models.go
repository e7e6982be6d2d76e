package ai

import "strings"

// DefaultModel 未指定或指定了未知模型时使用
const DefaultModel = "gemini-2.0-flash-exp"

// ModelInfo 模型能力描述
type ModelInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	Description    string `json:"description"`
	MaxTokens      int    `json:"max_tokens"`
	SupportsVision bool   `json:"supports_vision"`
	SupportsFiles  bool   `json:"supports_files"`
}

// Catalog 当前 provider 可用的模型，第一个为兜底默认模型
type Catalog []ModelInfo

var geminiModels = Catalog{
	{
		Name:           "gemini-2.0-flash-exp",
		DisplayName:    "Gemini 2.0 Flash (Experimental)",
		Description:    "Latest experimental model with enhanced reasoning",
		MaxTokens:      8192,
		SupportsVision: true,
		SupportsFiles:  true,
	},
	{
		Name:           "gemini-1.5-pro",
		DisplayName:    "Gemini 1.5 Pro",
		Description:    "Most capable model for complex tasks",
		MaxTokens:      2048000,
		SupportsVision: true,
		SupportsFiles:  true,
	},
	{
		Name:           "gemini-1.5-flash",
		DisplayName:    "Gemini 1.5 Flash",
		Description:    "Fast and efficient for everyday tasks",
		MaxTokens:      1048576,
		SupportsVision: true,
		SupportsFiles:  true,
	},
}

var openaiModels = Catalog{
	{
		Name:           "gpt-4o",
		DisplayName:    "GPT-4o",
		Description:    "Flagship multimodal model",
		MaxTokens:      128000,
		SupportsVision: true,
		SupportsFiles:  true,
	},
	{
		Name:           "gpt-4o-mini",
		DisplayName:    "GPT-4o mini",
		Description:    "Small and fast multimodal model",
		MaxTokens:      128000,
		SupportsVision: true,
		SupportsFiles:  true,
	},
}

// ProviderCatalog 按 provider 构建模型目录
// 配置的模型排在最前; azure 部署名和 ark 接入点不在内置列表里，只能靠配置的模型
func ProviderCatalog(provider, configured string) Catalog {
	var builtin Catalog
	switch strings.ToLower(provider) {
	case "", "gemini":
		builtin = geminiModels
	case "openai":
		builtin = openaiModels
	}

	out := make(Catalog, 0, len(builtin)+1)
	if configured != "" {
		if m, ok := builtin.Lookup(configured); ok {
			out = append(out, m)
		} else {
			out = append(out, ModelInfo{
				Name:          configured,
				DisplayName:   configured,
				Description:   "Configured " + provider + " model",
				SupportsFiles: true,
			})
		}
	}
	for _, m := range builtin {
		if m.Name != configured {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return geminiModels
	}
	return out
}

// Lookup 按名称查找模型
func (c Catalog) Lookup(name string) (ModelInfo, bool) {
	for _, m := range c {
		if m.Name == name {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// Names 模型名称列表
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, m := range c {
		names = append(names, m.Name)
	}
	return names
}
