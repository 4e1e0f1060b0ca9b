// Package menuengine wires catalog, sales, classification and advice into the
// menu engineering read path and the POS sync path.
package menuengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"menuperf/internal/advisory"
	"menuperf/internal/catalog"
	"menuperf/internal/classification"
	"menuperf/internal/foodcost"
	"menuperf/internal/logger"
	"menuperf/internal/models"
	"menuperf/internal/monitoring"
	"menuperf/internal/pos"
)

// ErrIntegrationNotFound is returned when a restaurant has no active
// integration for the requested provider.
var ErrIntegrationNotFound = catalog.ErrIntegrationNotFound

// Catalog reads the restaurant data owned by other parts of the product
type Catalog interface {
	MenuItems(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	Recipes(ctx context.Context, restaurantID string) (map[string]*models.Recipe, error)
	Ingredients(ctx context.Context, restaurantID string) ([]models.Ingredient, error)
	Integration(ctx context.Context, restaurantID, provider string) (*models.Integration, error)
	ActiveIntegrations(ctx context.Context, restaurantID string) ([]models.Integration, error)
}

// SalesStore reconciles and serves canonical weekly sales
type SalesStore interface {
	Reconcile(ctx context.Context, restaurantID, provider string, items []models.MenuItem, lines []pos.SaleLine) ([]models.SalesRecord, error)
	WeeklySales(ctx context.Context, restaurantID string) (map[string]int, error)
}

// RecommendationStore is the advice cache
type RecommendationStore interface {
	Snapshot(ctx context.Context, restaurantID string) (advisory.Snapshot, error)
	Upsert(ctx context.Context, restaurantID, menuItemID, text string, category models.Category, now time.Time) error
}

// Advisor generates advice for a batch of items
type Advisor interface {
	Generate(ctx context.Context, items []advisory.Item) (map[string]string, error)
}

// Deps are the collaborators of Engine and SyncService. Advisor may be nil.
type Deps struct {
	Catalog Catalog
	Sales   SalesStore
	Cache   RecommendationStore
	Advisor Advisor
	Monitor *monitoring.Monitor
	Logger  *logger.Logger
}

// Item is a classified menu item with its advice
type Item struct {
	classification.Result
	Recommendation string `json:"recommendation"`
}

// Report is the menu engineering response
type Report struct {
	Items          []Item                  `json:"items"`
	MedianMargin   float64                 `json:"medianMargin"`
	MedianOrders   int                     `json:"medianOrders"`
	CategoryCounts map[models.Category]int `json:"categoryCounts"`
}

// Engine serves menu engineering and food cost reports
type Engine struct {
	deps     Deps
	timeout  time.Duration
	maxStale time.Duration
	now      func() time.Time

	// background generation outlives the request that started it
	background sync.WaitGroup
}

// NewEngine creates the read path. timeout bounds one generation call and
// maxStale is the cache age limit.
func NewEngine(deps Deps, timeout, maxStale time.Duration) *Engine {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxStale <= 0 {
		maxStale = advisory.DefaultMaxStale
	}
	return &Engine{deps: deps, timeout: timeout, maxStale: maxStale, now: time.Now}
}

// Wait blocks until background generation and write-back have finished
func (e *Engine) Wait() {
	e.background.Wait()
}

func (e *Engine) costs(ctx context.Context, restaurantID string) ([]models.MenuItem, []foodcost.Result, error) {
	items, err := e.deps.Catalog.MenuItems(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}
	recipes, err := e.deps.Catalog.Recipes(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}
	ingredients, err := e.deps.Catalog.Ingredients(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}

	results, skipped := foodcost.NewCalculator(ingredients).CostAll(items, recipes)
	if len(skipped) > 0 {
		e.deps.Logger.Warn("recipes with unreadable ingredients skipped", "restaurant_id", restaurantID, "menu_item_ids", skipped)
	}
	return items, results, nil
}

// FoodCost returns every costed item with its status band
func (e *Engine) FoodCost(ctx context.Context, restaurantID string) (foodcost.Summary, error) {
	_, results, err := e.costs(ctx, restaurantID)
	if err != nil {
		return foodcost.Summary{}, fmt.Errorf("food cost: %w", err)
	}
	return foodcost.Summarize(results), nil
}

// MenuEngineering classifies the restaurant's menu and attaches advice to
// every item. Advice comes from the cache, a fresh generation, or a per
// category fallback; a failed generation never fails the report.
func (e *Engine) MenuEngineering(ctx context.Context, restaurantID string) (*Report, error) {
	start := time.Now()
	defer func() { e.deps.Monitor.ObserveReport(time.Since(start)) }()

	items, costs, err := e.costs(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("menu engineering: %w", err)
	}
	sales, err := e.deps.Sales.WeeklySales(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("menu engineering: %w", err)
	}

	classified := classification.Classify(costs, sales)

	snapshot, err := e.deps.Cache.Snapshot(ctx, restaurantID)
	if err != nil {
		e.deps.Logger.Warn("recommendation cache unavailable", "restaurant_id", restaurantID, "error", err)
		snapshot = advisory.Snapshot{}
	}

	now := e.now()
	refresh := advisory.ItemsNeedingRefresh(classified.Items, snapshot, now, e.maxStale)
	e.deps.Monitor.RecordCache(len(classified.Items)-len(refresh), len(refresh))

	generated := e.generate(ctx, restaurantID, describe(refresh, items), now)

	report := &Report{
		Items:          make([]Item, len(classified.Items)),
		MedianMargin:   classified.MedianMargin,
		MedianOrders:   classified.MedianOrders,
		CategoryCounts: classified.CategoryCounts,
	}
	for i, r := range classified.Items {
		report.Items[i] = Item{Result: r, Recommendation: pickRecommendation(r, generated, snapshot)}
	}
	return report, nil
}

func pickRecommendation(r classification.Result, generated map[string]string, snapshot advisory.Snapshot) string {
	if text, ok := generated[r.MenuItemID]; ok {
		return text
	}
	if entry, ok := snapshot[r.MenuItemID]; ok && entry.Category == r.Category && entry.Recommendation != "" {
		return entry.Recommendation
	}
	return advisory.Fallback(r.Category)
}

func describe(results []classification.Result, items []models.MenuItem) []advisory.Item {
	descriptions := make(map[string]string, len(items))
	for _, it := range items {
		descriptions[it.ID] = it.Description
	}
	out := make([]advisory.Item, len(results))
	for i, r := range results {
		out[i] = advisory.Item{Result: r, Description: descriptions[r.MenuItemID]}
	}
	return out
}

// generate runs one generation call on a context detached from the request,
// writes the advice back, and returns what was generated. If the request
// ends first the caller gets nothing and the write-back still happens.
func (e *Engine) generate(ctx context.Context, restaurantID string, items []advisory.Item, now time.Time) map[string]string {
	if len(items) == 0 {
		return nil
	}
	if e.deps.Advisor == nil {
		e.deps.Monitor.RecordGeneration(monitoring.GenerationDisabled)
		return nil
	}

	done := make(chan map[string]string, 1)
	e.background.Add(1)
	go func() {
		defer e.background.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()

		generated, err := e.deps.Advisor.Generate(bg, items)
		if err != nil {
			result := monitoring.GenerationError
			if errors.Is(err, context.DeadlineExceeded) {
				result = monitoring.GenerationTimeout
			}
			e.deps.Monitor.RecordGeneration(result)
			e.deps.Logger.Warn("advice generation failed, using fallback", "restaurant_id", restaurantID, "items", len(items), "error", err)
			done <- nil
			return
		}
		e.deps.Monitor.RecordGeneration(monitoring.GenerationSuccess)

		categories := make(map[string]models.Category, len(items))
		for _, it := range items {
			categories[it.MenuItemID] = it.Category
		}
		for id, text := range generated {
			if err := e.deps.Cache.Upsert(bg, restaurantID, id, text, categories[id], now); err != nil {
				e.deps.Logger.Error("advice write-back failed", "restaurant_id", restaurantID, "menu_item_id", id, "error", err)
			}
		}
		done <- generated
	}()

	select {
	case generated := <-done:
		return generated
	case <-ctx.Done():
		e.deps.Logger.Info("request ended before advice generation finished", "restaurant_id", restaurantID)
		return nil
	}
}
