package models

import "time"

// SalesRecord is the canonical weekly quantity sold for one menu item, as
// written by the reconciler. One live row per (restaurant, menu item).
type SalesRecord struct {
	RestaurantID       string    `gorm:"primary_key" json:"restaurantId"`
	MenuItemID         string    `gorm:"primary_key" json:"menuItemId"`
	QuantitySoldWeekly int       `json:"quantitySoldWeekly"`
	Provider           string    `json:"provider"`
	RecordedAt         time.Time `json:"recordedAt"`
}

// TableName sets the table name for SalesRecord
func (SalesRecord) TableName() string {
	return "pos_sales"
}

// Integration holds a restaurant's stored credential for one POS provider
type Integration struct {
	RestaurantID string `gorm:"primary_key"`
	Provider     string `gorm:"primary_key"`
	AccessToken  string
	IsActive     bool
	UpdatedAt    time.Time
}

// TableName sets the table name for Integration
func (Integration) TableName() string {
	return "restaurant_integrations"
}

// Recommendation is the cached advisory text for one menu item
type Recommendation struct {
	RestaurantID   string `gorm:"primary_key"`
	MenuItemID     string `gorm:"primary_key"`
	Recommendation string `gorm:"type:text"`
	Category       Category
	CalculatedAt   time.Time
}

// TableName sets the table name for Recommendation
func (Recommendation) TableName() string {
	return "menu_recommendations"
}
