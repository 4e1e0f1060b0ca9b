package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainProvider completes chats through any langchaingo model
type LangChainProvider struct {
	name     string
	llm      llms.Model
	settings Settings
}

// NewLangChainProvider wraps an already configured langchaingo model
func NewLangChainProvider(name string, llm llms.Model, settings Settings) *LangChainProvider {
	return &LangChainProvider{name: name, llm: llm, settings: settings}
}

// NewOpenAIProvider talks to the OpenAI API, or to any OpenAI-compatible
// endpoint when baseURL is set.
func NewOpenAIProvider(apiKey, baseURL string, settings Settings) (*LangChainProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
	}
	opts := []openai.Option{openai.WithToken(apiKey)}
	if settings.Model != "" {
		opts = append(opts, openai.WithModel(settings.Model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI model: %w", err)
	}
	return NewLangChainProvider(ProviderOpenAI, llm, settings), nil
}

func (p *LangChainProvider) Name() string { return p.name }

// Complete implements the Provider interface
func (p *LangChainProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, len(messages))
	for i, msg := range messages {
		var msgType llms.ChatMessageType
		switch msg.Role {
		case RoleSystem:
			msgType = llms.ChatMessageTypeSystem
		case RoleAssistant:
			msgType = llms.ChatMessageTypeAI
		default:
			msgType = llms.ChatMessageTypeHuman
		}
		content[i] = llms.TextParts(msgType, msg.Content)
	}

	opts := []llms.CallOption{llms.WithTemperature(p.settings.Temperature)}
	if p.settings.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.settings.MaxTokens))
	}
	if p.settings.Model != "" {
		opts = append(opts, llms.WithModel(p.settings.Model))
	}

	response, err := p.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if response == nil || len(response.Choices) == 0 || response.Choices[0].Content == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	return response.Choices[0].Content, nil
}
