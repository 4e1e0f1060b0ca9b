package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"menuperf/internal/database"
	"menuperf/internal/logger"
	"menuperf/internal/models"
	"menuperf/internal/pos"

	"github.com/jinzhu/gorm"
)

// Reconciler matches sale lines to menu items and replaces the stored weekly
// sales for the matched items. Writes for one restaurant never interleave.
type Reconciler struct {
	db    *gorm.DB
	log   *logger.Logger
	locks keyedMutex
	now   func() time.Time
}

// New creates a reconciler writing to db
func New(db *gorm.DB, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{db: db, log: log, now: time.Now}
}

// Reconcile matches lines against items and persists the result. The delete
// of the previous rows and the insert of the new ones share a transaction,
// so readers see either the old or the new set.
func (r *Reconciler) Reconcile(ctx context.Context, restaurantID, provider string, items []models.MenuItem, lines []pos.SaleLine) ([]models.SalesRecord, error) {
	matched := Match(items, lines)
	if len(matched) == 0 {
		r.log.Info("no menu items matched", "restaurant_id", restaurantID, "provider", provider, "lines", len(lines))
		return []models.SalesRecord{}, nil
	}

	now := r.now().UTC()
	records := make([]models.SalesRecord, len(matched))
	ids := make([]string, len(matched))
	fuzzy := 0
	for i, m := range matched {
		records[i] = models.SalesRecord{
			RestaurantID:       restaurantID,
			MenuItemID:         m.MenuItemID,
			QuantitySoldWeekly: m.Quantity,
			Provider:           provider,
			RecordedAt:         now,
		}
		ids[i] = m.MenuItemID
		if m.Method == MethodFuzzy {
			fuzzy++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := r.locks.Lock(restaurantID)
	defer unlock()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if database.IsPostgres(tx) {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", restaurantID).Error; err != nil {
				return fmt.Errorf("lock restaurant sales: %w", err)
			}
		}
		err := tx.Where("restaurant_id = ? AND menu_item_id IN (?)", restaurantID, ids).
			Delete(&models.SalesRecord{}).Error
		if err != nil {
			return fmt.Errorf("delete previous sales: %w", err)
		}
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return fmt.Errorf("insert sales for %s: %w", records[i].MenuItemID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("sales reconciled",
		"restaurant_id", restaurantID,
		"provider", provider,
		"lines", len(lines),
		"matched_items", len(records),
		"fuzzy_matches", fuzzy,
	)
	return records, nil
}

// WeeklySales returns the stored weekly quantity per menu item id
func (r *Reconciler) WeeklySales(ctx context.Context, restaurantID string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []models.SalesRecord
	if err := r.db.Where("restaurant_id = ?", restaurantID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load weekly sales: %w", err)
	}
	sales := make(map[string]int, len(rows))
	for _, row := range rows {
		sales[row.MenuItemID] = row.QuantitySoldWeekly
	}
	return sales, nil
}

// keyedMutex hands out one mutex per key and frees it when unused
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
