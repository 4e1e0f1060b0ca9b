package providers

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// GitHubModelsBaseURL is the OpenAI-compatible GitHub Models endpoint
const GitHubModelsBaseURL = "https://models.inference.ai.azure.com"

// NewGitHubModelsProvider creates a provider backed by GitHub Models. The
// free tier serves gpt-4o-mini, gpt-4o and a few open models.
func NewGitHubModelsProvider(token, baseURL string, settings Settings) (*LangChainProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is required for GitHub Models")
	}
	if baseURL == "" {
		baseURL = GitHubModelsBaseURL
	}
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
	}
	if settings.Model != "" {
		opts = append(opts, openai.WithModel(settings.Model))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}
	return NewLangChainProvider(ProviderGitHubModels, client, settings), nil
}
