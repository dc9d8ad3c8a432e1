package models

import "time"

// MenuItem is a dish on the owner's menu. A menu item always references at
// least one ingredient; items with no resolvable ingredients are never
// persisted.
type MenuItem struct {
	ID            string      `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID       string      `gorm:"index;not null" json:"ownerId"`
	Name          string      `gorm:"not null" json:"name"`
	IngredientIDs StringSlice `gorm:"type:text" json:"ingredientIds"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// TableName sets the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}
