package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeIngredientsRoundTrip(t *testing.T) {
	r := &Recipe{MenuItemID: "tartare"}
	require.NoError(t, r.SetIngredients([]RecipeIngredient{
		{IngredientID: "saumon", Quantity: 0.15, Unit: "kg"},
		{IngredientID: "avocat", Quantity: 0.5},
	}))

	stored := &Recipe{MenuItemID: "tartare", IngredientsJSON: r.IngredientsJSON}
	got, err := stored.GetIngredients()
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "saumon", got[0].IngredientID)
	assert.InDelta(t, 0.15, got[0].Quantity, 1e-9)
}

func TestRecipeGetIngredientsEmpty(t *testing.T) {
	got, err := (&Recipe{}).GetIngredients()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecipeGetIngredientsInvalidJSON(t *testing.T) {
	_, err := (&Recipe{MenuItemID: "x", IngredientsJSON: "{"}).GetIngredients()
	assert.Error(t, err)
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("phare").Valid())
}
