package reconcile

import (
	"testing"

	"menuperf/internal/models"
	"menuperf/internal/pos"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "creme brulee", Normalize("  Crème Brûlée "))
	assert.Equal(t, "saumon frais atlantique 2kg", Normalize("SAUMON FRAIS ATLANTIQUE 2KG"))
	assert.Equal(t, "", Normalize("   "))
}

func TestMatchFuzzyAcrossCaseAndDiacritics(t *testing.T) {
	items := []models.MenuItem{{ID: "m1", Name: "Saumon frais"}}
	lines := []pos.SaleLine{
		{ExternalItemName: "SAUMON FRAIS ATLANTIQUE 2KG", Quantity: 3},
		{ExternalItemName: "saumon fraîs", Quantity: 2},
		{ExternalItemName: "Frites", Quantity: 9},
	}

	got := Match(items, lines)
	assert.Equal(t, []ItemSales{{MenuItemID: "m1", Name: "Saumon frais", Quantity: 5, Method: MethodFuzzy}}, got)
}

func TestMatchExactIDTakesPriority(t *testing.T) {
	items := []models.MenuItem{{ID: "m1", Name: "Burger", ExternalID: "SQ-1"}}
	lines := []pos.SaleLine{
		{ExternalItemID: "SQ-1", ExternalItemName: "Cheeseburger", Quantity: 2},
		{ExternalItemID: "SQ-1", ExternalItemName: "Cheeseburger", Quantity: 1},
		{ExternalItemName: "Burger", Quantity: 40},
	}

	got := Match(items, lines)
	assert.Equal(t, []ItemSales{{MenuItemID: "m1", Name: "Burger", Quantity: 3, Method: MethodExact}}, got)
}

func TestMatchFallsBackWhenExternalIDHasNoSales(t *testing.T) {
	items := []models.MenuItem{{ID: "m1", Name: "Burger", ExternalID: "SQ-404"}}
	lines := []pos.SaleLine{{ExternalItemID: "SQ-1", ExternalItemName: "burger", Quantity: 4}}

	got := Match(items, lines)
	assert.Equal(t, []ItemSales{{MenuItemID: "m1", Name: "Burger", Quantity: 4, Method: MethodFuzzy}}, got)
}

func TestMatchOneLineFeedsSeveralItems(t *testing.T) {
	items := []models.MenuItem{
		{ID: "m1", Name: "Tarte"},
		{ID: "m2", Name: "Tarte Tatin"},
	}
	lines := []pos.SaleLine{{ExternalItemName: "Tarte Tatin", Quantity: 2}}

	got := Match(items, lines)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, 2, got[1].Quantity)
}

func TestMatchSkipsEmptyNamesAndNonPositiveTotals(t *testing.T) {
	items := []models.MenuItem{
		{ID: "m1", Name: "Soupe"},
		{ID: "m2", Name: ""},
		{ID: "m3", Name: "Salade"},
	}
	lines := []pos.SaleLine{
		{ExternalItemName: "", Quantity: 10},
		{ExternalItemName: "  ", Quantity: 10},
		{ExternalItemName: "Salade", Quantity: 2},
		{ExternalItemName: "Salade", Quantity: -2},
	}

	assert.Empty(t, Match(items, lines))
	assert.Empty(t, Match(nil, lines))
	assert.Empty(t, Match(items, nil))
}
