package classification

import (
	"testing"

	"menuperf/internal/foodcost"
	"menuperf/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cost(id string, margin, amount float64) foodcost.Result {
	return foodcost.Result{MenuItemID: id, MenuItemName: id, SellingPrice: 20, MarginPercent: margin, MarginAmount: amount}
}

func categories(r Report) map[string]models.Category {
	out := make(map[string]models.Category, len(r.Items))
	for _, it := range r.Items {
		out[it.MenuItemID] = it.Category
	}
	return out
}

func TestClassifyFourQuadrants(t *testing.T) {
	costs := []foodcost.Result{
		cost("A", 40, 8),
		cost("B", 55, 11),
		cost("C", 80, 16),
		cost("D", 65, 13),
	}
	sales := map[string]int{"A": 2, "B": 10, "C": 4, "D": 8}

	r := Classify(costs, sales)

	assert.Equal(t, 65.0, r.MedianMargin)
	assert.Equal(t, 8, r.MedianOrders)
	assert.Equal(t, map[string]models.Category{
		"A": models.CategoryRock,
		"B": models.CategoryAnchor,
		"C": models.CategoryDrift,
		"D": models.CategoryStar,
	}, categories(r))
	assert.Equal(t, map[models.Category]int{
		models.CategoryStar: 1, models.CategoryAnchor: 1, models.CategoryDrift: 1, models.CategoryRock: 1,
	}, r.CategoryCounts)
}

func TestClassifyEmpty(t *testing.T) {
	r := Classify(nil, map[string]int{"ghost": 12})

	assert.NotNil(t, r.Items)
	assert.Empty(t, r.Items)
	assert.Zero(t, r.MedianMargin)
	assert.Zero(t, r.MedianOrders)
	assert.Equal(t, map[models.Category]int{
		models.CategoryStar: 0, models.CategoryAnchor: 0, models.CategoryDrift: 0, models.CategoryRock: 0,
	}, r.CategoryCounts)
}

func TestClassifyOrdersMedianComesFromSalesSnapshot(t *testing.T) {
	costs := []foodcost.Result{
		cost("A", 80, 16),
		cost("B", 70, 14),
		cost("C", 60, 12),
		cost("D", 50, 10),
	}
	// C and D never sold; X sold but has no recipe
	sales := map[string]int{"A": 10, "B": 4, "X": 20}

	r := Classify(costs, sales)

	assert.Equal(t, 10, r.MedianOrders)
	assert.Equal(t, 70.0, r.MedianMargin)
	assert.Equal(t, map[string]models.Category{
		"A": models.CategoryStar,
		"B": models.CategoryDrift,
		"C": models.CategoryRock,
		"D": models.CategoryRock,
	}, categories(r))
	for _, it := range r.Items {
		if it.MenuItemID == "C" {
			assert.Zero(t, it.WeeklyOrders)
		}
	}
	require.Len(t, r.Items, 4)
}

func TestClassifySingleItemIsStar(t *testing.T) {
	r := Classify([]foodcost.Result{cost("solo", 12, 1)}, nil)
	require.Len(t, r.Items, 1)
	assert.Equal(t, models.CategoryStar, r.Items[0].Category)
	assert.Zero(t, r.Items[0].WeeklyOrders)
}

func TestClassifyTiesGoHighAndPopular(t *testing.T) {
	costs := []foodcost.Result{cost("a", 70, 7), cost("b", 70, 7), cost("c", 50, 5)}
	sales := map[string]int{"a": 5, "b": 5, "c": 5}

	r := Classify(costs, sales)
	assert.Equal(t, 70.0, r.MedianMargin)
	assert.Equal(t, 5, r.MedianOrders)
	assert.Equal(t, map[string]models.Category{
		"a": models.CategoryStar,
		"b": models.CategoryStar,
		"c": models.CategoryAnchor,
	}, categories(r))
}

func TestClassifyWeeklyProfitOrdering(t *testing.T) {
	costs := []foodcost.Result{
		cost("low", 60, 3.333),
		cost("tieFirst", 60, 5),
		cost("top", 60, 9.99),
		cost("tieSecond", 60, 2.5),
	}
	sales := map[string]int{"low": 3, "tieFirst": 2, "top": 3, "tieSecond": 4}

	r := Classify(costs, sales)
	ids := make([]string, len(r.Items))
	for i, it := range r.Items {
		ids[i] = it.MenuItemID
	}
	assert.Equal(t, []string{"top", "low", "tieFirst", "tieSecond"}, ids)
	assert.Equal(t, 29.97, r.Items[0].WeeklyProfit)
	assert.Equal(t, 10.0, r.Items[1].WeeklyProfit)
	assert.Equal(t, 10.0, r.Items[2].WeeklyProfit)
}

func TestClassifyMedianUsesIndexHalfLength(t *testing.T) {
	costs := []foodcost.Result{cost("a", 10, 1), cost("b", 20, 1), cost("c", 30, 1), cost("d", 40, 1)}
	r := Classify(costs, map[string]int{"a": 1, "b": 2, "c": 3, "d": 4})

	// no interpolation: sorted[4/2]
	assert.Equal(t, 30.0, r.MedianMargin)
	assert.Equal(t, 3, r.MedianOrders)
}

func TestClassifyMedianMarginRounded(t *testing.T) {
	r := Classify([]foodcost.Result{cost("a", 66.66, 1)}, nil)
	assert.Equal(t, 66.7, r.MedianMargin)
}

func TestQuadrant(t *testing.T) {
	assert.Equal(t, models.CategoryStar, Quadrant(true, true))
	assert.Equal(t, models.CategoryAnchor, Quadrant(false, true))
	assert.Equal(t, models.CategoryDrift, Quadrant(true, false))
	assert.Equal(t, models.CategoryRock, Quadrant(false, false))
}
