package advisory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"menuperf/internal/classification"
)

// Item is one classified menu item sent for advice
type Item struct {
	classification.Result
	Description string
}

// SystemInstruction frames the batch request
const SystemInstruction = `You are the analytics engine of a restaurant management application. ` +
	`Your advice combines menu descriptions, food cost and real point-of-sale sales. ` +
	`For EACH item id provided, write exactly ONE highly specific recommendation of at most two short sentences, ` +
	`based on the item's menu engineering category (star, anchor, drift, rock). ` +
	`Focus on menu engineering: price, visibility, ingredients, wording. ` +
	`Reply ONLY with a JSON object of the form {"<id>": "<recommendation>"} and nothing else.`

// ErrNoJSON is returned when a response carries no JSON object
var ErrNoJSON = errors.New("no json object in response")

// BuildPrompt lists every item with the figures the model needs
func BuildPrompt(items []Item) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("---\n")
		}
		desc := it.Description
		if desc == "" {
			desc = "N/A"
		}
		fmt.Fprintf(&b, "ID: %s\n", it.MenuItemID)
		fmt.Fprintf(&b, "Dish: %s\n", it.MenuItemName)
		fmt.Fprintf(&b, "Menu description: %s\n", desc)
		fmt.Fprintf(&b, "Price: %.2f\n", it.SellingPrice)
		fmt.Fprintf(&b, "Margin: %.1f%%\n", it.MarginPercent)
		fmt.Fprintf(&b, "Weekly orders (POS): %d\n", it.WeeklyOrders)
		fmt.Fprintf(&b, "Category: %s\n", it.Category)
		fmt.Fprintf(&b, "Weekly profit: %.2f\n", it.WeeklyProfit)
	}
	return b.String()
}

// ParseRecommendations extracts the id → advice object from a model reply.
// Markdown code fences are tolerated. Entries that are not non-empty strings
// are dropped.
func ParseRecommendations(text string) (map[string]string, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, ErrNoJSON
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("parse recommendations: %w", err)
	}
	out := make(map[string]string, len(raw))
	for id, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out[id] = s
		}
	}
	return out, nil
}

func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		// skip the language tag line
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.Contains(rest[:nl], "{") {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		text = rest
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}
