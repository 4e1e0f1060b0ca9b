// Package reconcile maps normalized POS sale lines onto a restaurant's menu
// items and persists the canonical weekly sales.
package reconcile

import (
	"strings"
	"unicode"

	"menuperf/internal/models"
	"menuperf/internal/pos"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Method tells how an item's quantity was matched
type Method string

const (
	MethodExact Method = "exact"
	MethodFuzzy Method = "fuzzy"
)

// ItemSales is the aggregated quantity matched to one menu item
type ItemSales struct {
	MenuItemID string
	Name       string
	Quantity   int
	Method     Method
}

// Normalize lowercases s, strips diacritics and trims surrounding space.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Match aggregates lines per menu item. Items with an external id take the
// sum of lines carrying exactly that id. Items still at zero fall back to
// name containment in either direction on normalized names; a single line
// may feed several items. Only items with a positive total are returned, in
// menu order.
func Match(items []models.MenuItem, lines []pos.SaleLine) []ItemSales {
	byID := make(map[string]int)
	normalized := make([]string, len(lines))
	for i, l := range lines {
		if l.ExternalItemID != "" {
			byID[l.ExternalItemID] += l.Quantity
		}
		normalized[i] = Normalize(l.ExternalItemName)
	}

	var out []ItemSales
	for _, item := range items {
		qty, method := 0, MethodExact
		if item.HasExternalID() {
			qty = byID[item.ExternalID]
		}
		if qty == 0 {
			qty, method = fuzzyQuantity(Normalize(item.Name), lines, normalized), MethodFuzzy
		}
		if qty <= 0 {
			continue
		}
		out = append(out, ItemSales{MenuItemID: item.ID, Name: item.Name, Quantity: qty, Method: method})
	}
	return out
}

func fuzzyQuantity(name string, lines []pos.SaleLine, normalized []string) int {
	if name == "" {
		return 0
	}
	total := 0
	for i, lineName := range normalized {
		// an empty name is contained in every string
		if lineName == "" {
			continue
		}
		if strings.Contains(lineName, name) || strings.Contains(name, lineName) {
			total += lines[i].Quantity
		}
	}
	return total
}
