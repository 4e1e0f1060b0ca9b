package advisory

import (
	"context"
	"fmt"

	"menuperf/internal/logger"
	"menuperf/internal/models/providers"
)

// Generator asks a text-generation provider for advice on a batch of items
type Generator struct {
	provider providers.Provider
	log      *logger.Logger
}

// NewGenerator returns nil when provider is nil, which callers treat as
// generation being disabled.
func NewGenerator(provider providers.Provider, log *logger.Logger) *Generator {
	if provider == nil {
		return nil
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{provider: provider, log: log}
}

// Generate makes one completion call for all items and returns the advice
// keyed by menu item id. Ids the model invents are dropped.
func (g *Generator) Generate(ctx context.Context, items []Item) (map[string]string, error) {
	if len(items) == 0 {
		return map[string]string{}, nil
	}

	reply, err := g.provider.Complete(ctx, []providers.Message{
		{Role: providers.RoleSystem, Content: SystemInstruction},
		{Role: providers.RoleUser, Content: BuildPrompt(items)},
	})
	if err != nil {
		return nil, fmt.Errorf("generate advice: %w", err)
	}

	parsed, err := ParseRecommendations(reply)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.MenuItemID] = true
	}
	out := make(map[string]string, len(items))
	for id, text := range parsed {
		if known[id] {
			out[id] = text
		}
	}
	g.log.Debug("advice generated", "provider", g.provider.Name(), "requested", len(items), "received", len(out))
	return out, nil
}
