package models

import "time"

// MenuItem represents a dish on a restaurant's menu. The catalog owns it;
// the engine only reads it.
type MenuItem struct {
	ID           string `gorm:"primary_key"`
	RestaurantID string `gorm:"index"`
	Name         string
	Description  string
	Price        float64
	Available    bool
	// ExternalID is the item's identifier in the restaurant's POS, when mapped.
	ExternalID string `gorm:"column:pos_item_id"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName sets the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}

// HasExternalID reports whether the item is mapped to a POS identifier
func (mi *MenuItem) HasExternalID() bool {
	return mi.ExternalID != ""
}

// Category is a quadrant of the popularity/profitability matrix
type Category string

const (
	CategoryStar   Category = "star"   // high margin, popular
	CategoryAnchor Category = "anchor" // low margin, popular
	CategoryDrift  Category = "drift"  // high margin, unpopular
	CategoryRock   Category = "rock"   // low margin, unpopular
)

// Categories lists every quadrant in display order.
var Categories = []Category{CategoryStar, CategoryAnchor, CategoryDrift, CategoryRock}

// Valid reports whether c is one of the four quadrants
func (c Category) Valid() bool {
	switch c {
	case CategoryStar, CategoryAnchor, CategoryDrift, CategoryRock:
		return true
	}
	return false
}
