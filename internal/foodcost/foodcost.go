// Package foodcost computes ingredient cost and margin for menu items.
package foodcost

import (
	"math"

	"menuperf/internal/models"
)

// Status is a margin health band
type Status string

const (
	StatusHealthy  Status = "healthy"  // margin >= 70%
	StatusWarning  Status = "warning"  // 60% <= margin < 70%
	StatusCritical Status = "critical" // margin < 60%
)

// Result is the cost breakdown for one menu item. Amounts are rounded to
// cents and MarginPercent to one decimal.
type Result struct {
	MenuItemID     string  `json:"menuItemId"`
	MenuItemName   string  `json:"menuItemName"`
	SellingPrice   float64 `json:"sellingPrice"`
	IngredientCost float64 `json:"ingredientCost"`
	MarginPercent  float64 `json:"marginPercent"`
	MarginAmount   float64 `json:"marginAmount"`
	Status         Status  `json:"status"`
}

// Catalog indexes ingredients by id
type Catalog map[string]models.Ingredient

// NewCatalog builds a catalog from a list of ingredients
func NewCatalog(ingredients []models.Ingredient) Catalog {
	c := make(Catalog, len(ingredients))
	for _, ing := range ingredients {
		c[ing.ID] = ing
	}
	return c
}

// Cost prices one recipe at sellingPrice. Ingredients missing from the
// catalog contribute nothing. ok is false when sellingPrice is not positive.
func Cost(item models.MenuItem, recipe []models.RecipeIngredient, catalog Catalog) (Result, bool) {
	if item.Price <= 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
		return Result{}, false
	}

	var cost float64
	for _, ri := range recipe {
		ing, ok := catalog[ri.IngredientID]
		if !ok {
			continue
		}
		cost += ing.UnitCost * ri.Quantity
	}

	margin := item.Price - cost
	pct := margin / item.Price * 100
	return Result{
		MenuItemID:     item.ID,
		MenuItemName:   item.Name,
		SellingPrice:   item.Price,
		IngredientCost: Round(cost, 2),
		MarginPercent:  Round(pct, 1),
		MarginAmount:   Round(margin, 2),
		Status:         Band(pct),
	}, true
}

// Band maps a margin percentage to its status
func Band(marginPercent float64) Status {
	switch {
	case marginPercent < 60:
		return StatusCritical
	case marginPercent < 70:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Calculator costs a restaurant's whole catalog
type Calculator struct {
	catalog Catalog
}

func NewCalculator(ingredients []models.Ingredient) *Calculator {
	return &Calculator{catalog: NewCatalog(ingredients)}
}

// CostAll prices every item that has a recipe and a positive price, in item
// order. Recipes whose ingredient JSON cannot be decoded are skipped and
// reported through skipped.
func (c *Calculator) CostAll(items []models.MenuItem, recipes map[string]*models.Recipe) (results []Result, skipped []string) {
	results = make([]Result, 0, len(items))
	for _, item := range items {
		recipe, ok := recipes[item.ID]
		if !ok || recipe == nil {
			continue
		}
		ingredients, err := recipe.GetIngredients()
		if err != nil {
			skipped = append(skipped, item.ID)
			continue
		}
		if r, ok := Cost(item, ingredients, c.catalog); ok {
			results = append(results, r)
		}
	}
	return results, skipped
}

// Summary aggregates a food-cost report
type Summary struct {
	Items            []Result       `json:"items"`
	AverageMargin    float64        `json:"averageMargin"`
	StatusCounts     map[Status]int `json:"statusCounts"`
	TotalIngredients float64        `json:"totalIngredientCost"`
}

// Summarize computes the average margin and the count per status band
func Summarize(results []Result) Summary {
	s := Summary{
		Items:        results,
		StatusCounts: map[Status]int{StatusHealthy: 0, StatusWarning: 0, StatusCritical: 0},
	}
	if s.Items == nil {
		s.Items = []Result{}
	}
	var total float64
	for _, r := range results {
		total += r.MarginPercent
		s.TotalIngredients += r.IngredientCost
		s.StatusCounts[r.Status]++
	}
	if len(results) > 0 {
		s.AverageMargin = Round(total/float64(len(results)), 1)
	}
	s.TotalIngredients = Round(s.TotalIngredients, 2)
	return s
}
