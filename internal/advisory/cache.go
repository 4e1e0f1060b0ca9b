// Package advisory produces the short menu-engineering advice shown next to
// each classified item, and caches it per restaurant and item.
package advisory

import (
	"context"
	"fmt"
	"time"

	"menuperf/internal/classification"
	"menuperf/internal/models"

	"github.com/jinzhu/gorm"
)

// DefaultMaxStale is how long cached advice stays valid for an unchanged category
const DefaultMaxStale = 7 * 24 * time.Hour

// Snapshot is the cached advice of one restaurant, keyed by menu item id
type Snapshot map[string]models.Recommendation

// NeedsRefresh reports whether advice must be regenerated: nothing cached,
// the item changed quadrant, or the entry is older than maxStale.
func NeedsRefresh(category models.Category, entry models.Recommendation, cached bool, now time.Time, maxStale time.Duration) bool {
	if !cached || entry.Category != category {
		return true
	}
	return now.Sub(entry.CalculatedAt) > maxStale
}

// ItemsNeedingRefresh keeps the results whose cached advice is missing,
// stale, or written for another category.
func ItemsNeedingRefresh(results []classification.Result, snapshot Snapshot, now time.Time, maxStale time.Duration) []classification.Result {
	var out []classification.Result
	for _, r := range results {
		entry, ok := snapshot[r.MenuItemID]
		if NeedsRefresh(r.Category, entry, ok, now, maxStale) {
			out = append(out, r)
		}
	}
	return out
}

// Store persists advice in the menu_recommendations table
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Snapshot loads every cached entry of a restaurant
func (s *Store) Snapshot(ctx context.Context, restaurantID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []models.Recommendation
	if err := s.db.Where("restaurant_id = ?", restaurantID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}
	snap := make(Snapshot, len(rows))
	for _, row := range rows {
		snap[row.MenuItemID] = row
	}
	return snap, nil
}

const upsertSQL = `INSERT INTO menu_recommendations (restaurant_id, menu_item_id, recommendation, category, calculated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (restaurant_id, menu_item_id) DO UPDATE SET
	recommendation = excluded.recommendation,
	category = excluded.category,
	calculated_at = excluded.calculated_at`

// Upsert writes or fully overwrites the advice for one item in a single
// statement.
func (s *Store) Upsert(ctx context.Context, restaurantID, menuItemID, text string, category models.Category, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Exec(upsertSQL, restaurantID, menuItemID, text, string(category), now.UTC()).Error
	if err != nil {
		return fmt.Errorf("upsert recommendation %s: %w", menuItemID, err)
	}
	return nil
}
