package sqlgen

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"querychat/internal/config"
)

const maxTokens = 300

// NewChatModel builds the eino chat model for provider. modelName
// overrides the provider's configured model when set.
func NewChatModel(ctx context.Context, provider, modelName string, providers map[string]config.ProviderConfig) (model.BaseChatModel, error) {
	provCfg, ok := providers[provider]
	if !ok {
		return nil, fmt.Errorf("provider %s not configured", provider)
	}
	if modelName == "" {
		modelName = provCfg.Model
	}
	if modelName == "" {
		return nil, fmt.Errorf("provider %s: model must be configured", provider)
	}
	if provCfg.APIKey == "" {
		return nil, fmt.Errorf("provider %s: api key must be configured", provider)
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch provider {
	case "openai":
		temperature := float32(0)
		tokens := maxTokens
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     provCfg.BaseURL,
			Model:       modelName,
			APIKey:      provCfg.APIKey,
			Temperature: &temperature,
			MaxTokens:   &tokens,
		})
	case "gemini":
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  provCfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelName,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    provCfg.APIKey,
			Model:     modelName,
			BaseURL:   baseURLPtr,
			MaxTokens: maxTokens,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", provider, err)
	}
	return chatModel, nil
}
