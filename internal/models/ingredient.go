package models

import "time"

// DefaultExpiryDays is the shelf life assigned to ingredients created by the
// catalog sync pipeline.
const DefaultExpiryDays = 7

// Ingredient is the canonical record for an ingredient within an owner's
// catalog. The allergen set is fixed when the record is created.
type Ingredient struct {
	ID                string      `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID           string      `gorm:"index;not null" json:"ownerId"`
	Name              string      `gorm:"not null" json:"name"`
	DefaultExpiryDays int         `json:"defaultExpiryDays"`
	AllergenIDs       StringSlice `gorm:"type:text" json:"allergenIds"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// TableName sets the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}
