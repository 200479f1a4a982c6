package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LangChainClient implements Client for the providers reached through langchaingo
// (Anthropic and Ollama). Models are created lazily, one per model name.
type LangChainClient struct {
	config *Config
	apiKey string

	mu     sync.Mutex
	models map[string]llms.Model
}

// NewLangChainClient creates a client for ProviderAnthropic or ProviderOllama
func NewLangChainClient(config *Config, apiKey string) (*LangChainClient, error) {
	switch config.Provider {
	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key is required")
		}
	case ProviderOllama:
	default:
		return nil, fmt.Errorf("provider %q is not served by langchaingo", config.Provider)
	}

	return &LangChainClient{
		config: config,
		apiKey: apiKey,
		models: make(map[string]llms.Model),
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *LangChainClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, llms.WithTemperature(c.config.temperature()))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return text, nil
}

// GenerateJSON generates JSON content using the specified model tier
func (c *LangChainClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}

	opts := []llms.CallOption{llms.WithTemperature(c.config.temperature())}
	if c.config.Provider == ProviderOllama {
		opts = append(opts, llms.WithJSONMode())
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return CleanJSONBlock(text), nil
}

func (c *LangChainClient) model(tier ModelTier) (llms.Model, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if model, ok := c.models[modelName]; ok {
		return model, nil
	}

	var (
		model llms.Model
		err   error
	)
	switch c.config.Provider {
	case ProviderAnthropic:
		model, err = anthropic.New(
			anthropic.WithToken(c.apiKey),
			anthropic.WithModel(modelName),
		)
	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(modelName)}
		if c.config.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(c.config.BaseURL))
		}
		model, err = ollama.New(opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", c.config.Provider, err)
	}

	c.models[modelName] = model
	return model, nil
}

// GetModel returns the model name for a tier
func (c *LangChainClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases cached models
func (c *LangChainClient) Close() error {
	c.mu.Lock()
	c.models = make(map[string]llms.Model)
	c.mu.Unlock()
	return nil
}
