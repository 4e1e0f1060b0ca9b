// Package classification places menu items in the popularity/profitability
// matrix using median thresholds computed from the items themselves.
package classification

import (
	"sort"

	"menuperf/internal/foodcost"
	"menuperf/internal/models"
)

// Result is one classified menu item
type Result struct {
	MenuItemID    string          `json:"menuItemId"`
	MenuItemName  string          `json:"menuItemName"`
	Category      models.Category `json:"category"`
	WeeklyOrders  int             `json:"weeklyOrders"`
	SellingPrice  float64         `json:"sellingPrice"`
	MarginPercent float64         `json:"marginPercent"`
	MarginAmount  float64         `json:"marginAmount"`
	WeeklyProfit  float64         `json:"weeklyProfit"`
}

// Report is the classified menu, highest weekly profit first
type Report struct {
	Items          []Result                `json:"items"`
	MedianMargin   float64                 `json:"medianMargin"`
	MedianOrders   int                     `json:"medianOrders"`
	CategoryCounts map[models.Category]int `json:"categoryCounts"`
}

// Classify assigns every costed item to a quadrant. An item is high margin
// when its margin percent is at least the median, and popular when its weekly
// orders are at least the median; ties therefore land high and popular.
// The orders median is taken over every row of the sales snapshot, including
// rows for items that were not costed. Items absent from sales count zero
// orders themselves but add nothing to the median. An empty menu has zero
// medians whatever the snapshot holds.
func Classify(costs []foodcost.Result, sales map[string]int) Report {
	margins := make([]float64, len(costs))
	orders := make([]int, len(costs))
	for i, c := range costs {
		margins[i] = c.MarginPercent
		orders[i] = sales[c.MenuItemID]
	}
	medianMargin := medianFloat(margins)
	medianOrders := 0
	if len(costs) > 0 {
		medianOrders = medianInt(snapshotOrders(sales))
	}

	report := Report{
		Items:          make([]Result, 0, len(costs)),
		MedianMargin:   foodcost.Round(medianMargin, 1),
		MedianOrders:   medianOrders,
		CategoryCounts: make(map[models.Category]int, len(models.Categories)),
	}
	for _, cat := range models.Categories {
		report.CategoryCounts[cat] = 0
	}

	for i, c := range costs {
		cat := Quadrant(c.MarginPercent >= medianMargin, orders[i] >= medianOrders)
		report.Items = append(report.Items, Result{
			MenuItemID:    c.MenuItemID,
			MenuItemName:  c.MenuItemName,
			Category:      cat,
			WeeklyOrders:  orders[i],
			SellingPrice:  c.SellingPrice,
			MarginPercent: c.MarginPercent,
			MarginAmount:  c.MarginAmount,
			WeeklyProfit:  foodcost.Round(c.MarginAmount*float64(orders[i]), 2),
		})
		report.CategoryCounts[cat]++
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].WeeklyProfit > report.Items[j].WeeklyProfit
	})
	return report
}

func snapshotOrders(sales map[string]int) []int {
	out := make([]int, 0, len(sales))
	for _, qty := range sales {
		out = append(out, qty)
	}
	return out
}

// Quadrant maps the two threshold tests to a category
func Quadrant(highMargin, popular bool) models.Category {
	switch {
	case highMargin && popular:
		return models.CategoryStar
	case popular:
		return models.CategoryAnchor
	case highMargin:
		return models.CategoryDrift
	default:
		return models.CategoryRock
	}
}

// medianFloat returns the element at len/2 of the sorted values, which is the
// upper of the two middle elements for even lengths, or 0 when empty.
func medianFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func medianInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}
