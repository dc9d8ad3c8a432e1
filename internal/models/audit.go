package models

import "time"

// Audit statuses recorded for a completed sync run.
const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// SyncAudit is an append-only log row written after every sync run.
type SyncAudit struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID        string    `gorm:"index;not null" json:"ownerId"`
	Kind           string    `gorm:"not null" json:"kind"`
	Status         string    `gorm:"not null" json:"status"`
	ItemsProcessed int       `json:"itemsProcessed"`
	ItemsCreated   int       `json:"itemsCreated"`
	ItemsFailed    int       `json:"itemsFailed"`
	ErrorSummary   string    `gorm:"type:text" json:"errorSummary,omitempty"`
	DurationMs     int64     `json:"durationMs"`
	CompletedAt    time.Time `json:"completedAt"`
}

// TableName sets the table name for SyncAudit
func (SyncAudit) TableName() string {
	return "sync_audits"
}

// SyncStatus tracks the last successful catalog sync per owner.
type SyncStatus struct {
	OwnerID      string    `gorm:"primary_key" json:"ownerId"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName sets the table name for SyncStatus
func (SyncStatus) TableName() string {
	return "sync_statuses"
}
