package advisory

import "menuperf/internal/models"

var fallbacks = map[models.Category]string{
	models.CategoryStar:   "Feature it prominently on the menu and QR menu. Keep quality and portioning consistent.",
	models.CategoryAnchor: "Popular but low margin. Raise the price slightly or reduce the ingredient cost.",
	models.CategoryDrift:  "Profitable but rarely ordered. Improve its description and placement on the menu.",
	models.CategoryRock:   "Consider removing it or reworking the dish entirely.",
}

// Fallback returns the generic advice for a category
func Fallback(category models.Category) string {
	if text, ok := fallbacks[category]; ok {
		return text
	}
	return fallbacks[models.CategoryRock]
}
