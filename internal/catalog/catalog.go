// Package catalog reads the restaurant data the engine consumes but does not
// own: menu items, recipes, ingredients and POS integrations.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"menuperf/internal/models"

	"github.com/jinzhu/gorm"
)

// ErrIntegrationNotFound is returned when a restaurant has no active
// integration for a provider.
var ErrIntegrationNotFound = errors.New("integration not found")

// Store reads catalog tables through gorm
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// MenuItems returns every menu item of a restaurant in creation order
func (s *Store) MenuItems(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var items []models.MenuItem
	err := s.db.Where("restaurant_id = ?", restaurantID).Order("created_at, id").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	return items, nil
}

// Recipes returns the restaurant's recipes keyed by menu item id
func (s *Store) Recipes(ctx context.Context, restaurantID string) (map[string]*models.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []models.Recipe
	if err := s.db.Where("restaurant_id = ?", restaurantID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	recipes := make(map[string]*models.Recipe, len(rows))
	for i := range rows {
		recipes[rows[i].MenuItemID] = &rows[i]
	}
	return recipes, nil
}

func (s *Store) Ingredients(ctx context.Context, restaurantID string) ([]models.Ingredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ingredients []models.Ingredient
	if err := s.db.Where("restaurant_id = ?", restaurantID).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	return ingredients, nil
}

// Integration returns the active integration for one provider
func (s *Store) Integration(ctx context.Context, restaurantID, provider string) (*models.Integration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var in models.Integration
	err := s.db.Where("restaurant_id = ? AND provider = ? AND is_active = ?", restaurantID, strings.ToLower(provider), true).
		First(&in).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		return nil, fmt.Errorf("%w: %s", ErrIntegrationNotFound, provider)
	case err != nil:
		return nil, fmt.Errorf("load integration %s: %w", provider, err)
	}
	return &in, nil
}

// ActiveIntegrations returns every active integration of a restaurant
func (s *Store) ActiveIntegrations(ctx context.Context, restaurantID string) ([]models.Integration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []models.Integration
	err := s.db.Where("restaurant_id = ? AND is_active = ?", restaurantID, true).Order("provider").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load integrations: %w", err)
	}
	return rows, nil
}
