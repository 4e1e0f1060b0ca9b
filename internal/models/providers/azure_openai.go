package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// AzureOpenAIProvider implements the Provider interface for Azure OpenAI
type AzureOpenAIProvider struct {
	client         *azopenai.Client
	deploymentName string
	temperature    float32
	maxTokens      int32
}

// NewAzureOpenAIProvider creates a new Azure OpenAI provider
func NewAzureOpenAIProvider(endpoint, apiKey, deploymentName string, settings Settings) (*AzureOpenAIProvider, error) {
	if endpoint == "" || apiKey == "" || deploymentName == "" {
		return nil, fmt.Errorf("Azure OpenAI configuration missing: ensure AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY, and AZURE_OPENAI_DEPLOYMENT_NAME are set")
	}

	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}

	maxTokens := int32(settings.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &AzureOpenAIProvider{
		client:         client,
		deploymentName: deploymentName,
		temperature:    float32(settings.Temperature),
		maxTokens:      maxTokens,
	}, nil
}

func (p *AzureOpenAIProvider) Name() string { return ProviderAzureOpenAI }

// Complete implements the Provider interface. System and assistant turns are
// folded into user turns with a role prefix.
func (p *AzureOpenAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	chatMessages := make([]azopenai.ChatRequestMessageClassification, 0, len(messages))
	for _, msg := range messages {
		content := msg.Content
		if msg.Role != RoleUser {
			content = "[" + strings.ToUpper(msg.Role) + "]\n" + content
		}
		chatMessages = append(chatMessages, &azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(content),
		})
	}

	resp, err := p.client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		Messages:       chatMessages,
		MaxTokens:      to.Ptr(p.maxTokens),
		Temperature:    to.Ptr(p.temperature),
		DeploymentName: to.Ptr(p.deploymentName),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("Azure OpenAI completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("azure_openai: %w", ErrEmptyResponse)
	}
	return *resp.Choices[0].Message.Content, nil
}
