package providers

import (
	"fmt"
	"sort"
	"sync"

	"menuperf/internal/config"
)

const (
	ProviderOpenAI       = "openai"
	ProviderGitHubModels = "github_models"
	ProviderAzureOpenAI  = "azure_openai"
)

// Factory builds a provider from its configuration
type Factory func(cfg config.LLMConfig) (Provider, error)

// ModelRegistry maps provider names to factories and caches built providers
type ModelRegistry struct {
	mu        sync.Mutex
	factories map[string]Factory
	instances map[string]Provider
}

// NewModelRegistry creates a registry with the built-in providers
func NewModelRegistry() *ModelRegistry {
	r := &ModelRegistry{
		factories: make(map[string]Factory),
		instances: make(map[string]Provider),
	}
	r.Register(ProviderOpenAI, func(cfg config.LLMConfig) (Provider, error) {
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, settingsFrom(cfg))
	})
	r.Register(ProviderGitHubModels, func(cfg config.LLMConfig) (Provider, error) {
		return NewGitHubModelsProvider(cfg.APIKey, cfg.BaseURL, settingsFrom(cfg))
	})
	r.Register(ProviderAzureOpenAI, func(cfg config.LLMConfig) (Provider, error) {
		return NewAzureOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Deployment, settingsFrom(cfg))
	})
	return r
}

// Register adds or replaces a provider factory
func (r *ModelRegistry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	delete(r.instances, name)
}

// Names returns the registered provider names
func (r *ModelRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the provider configured by cfg. It returns nil and no error
// when cfg names no provider, which disables generation.
func (r *ModelRegistry) Get(cfg config.LLMConfig) (Provider, error) {
	if cfg.Provider == "" {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.instances[cfg.Provider]; ok {
		return p, nil
	}
	f, ok := r.factories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	p, err := f(cfg)
	if err != nil {
		return nil, err
	}
	r.instances[cfg.Provider] = p
	return p, nil
}

func settingsFrom(cfg config.LLMConfig) Settings {
	return Settings{Model: cfg.Model, Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}
}
