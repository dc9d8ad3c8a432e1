package models

import "time"

// Allergen is the canonical record for a food allergen within an owner's
// catalog. Standard allergens come from the regulatory list; custom ones are
// user-defined and never auto-created by the sync pipeline.
type Allergen struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID   string    `gorm:"index;not null" json:"ownerId"`
	Name      string    `gorm:"not null" json:"name"`
	IsCustom  bool      `json:"isCustom"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName sets the table name for Allergen
func (Allergen) TableName() string {
	return "allergens"
}
