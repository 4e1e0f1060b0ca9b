package models

import (
	"encoding/json"
	"fmt"
)

// Ingredient is a purchasable ingredient with its current unit cost
type Ingredient struct {
	ID           string `gorm:"primary_key"`
	RestaurantID string `gorm:"index"`
	Name         string
	UnitCost     float64
	Unit         string // kg, L, unit...
}

// TableName sets the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}

// Recipe links a menu item to the ingredients it consumes. The menu item id
// is the primary key, so an item has at most one recipe.
type Recipe struct {
	MenuItemID      string `gorm:"primary_key"`
	RestaurantID    string `gorm:"index"`
	IngredientsJSON string `gorm:"type:text"`
	// Transient field (ignored by GORM)
	Ingredients []RecipeIngredient `gorm:"-"`
}

// TableName sets the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient is one line of a recipe
type RecipeIngredient struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit,omitempty"`
}

// GetIngredients returns the deserialized ingredients
func (r *Recipe) GetIngredients() ([]RecipeIngredient, error) {
	if len(r.Ingredients) > 0 {
		return r.Ingredients, nil
	}
	var ingredients []RecipeIngredient
	if r.IngredientsJSON == "" {
		return ingredients, nil
	}
	if err := json.Unmarshal([]byte(r.IngredientsJSON), &ingredients); err != nil {
		return nil, fmt.Errorf("decode recipe %s ingredients: %w", r.MenuItemID, err)
	}
	r.Ingredients = ingredients
	return ingredients, nil
}

// SetIngredients serializes the ingredients for storage
func (r *Recipe) SetIngredients(ingredients []RecipeIngredient) error {
	data, err := json.Marshal(ingredients)
	if err != nil {
		return err
	}
	r.IngredientsJSON = string(data)
	r.Ingredients = ingredients
	return nil
}
