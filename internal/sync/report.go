package sync

import "fmt"

// KindStats counts resolution outcomes for one entity kind.
type KindStats struct {
	Existing int `json:"existing"`
	Created  int `json:"created"`
	Skipped  int `json:"skipped"`
}

// Stats groups per-kind counters for a run.
type Stats struct {
	Allergens   KindStats `json:"allergens"`
	Ingredients KindStats `json:"ingredients"`
	MenuItems   KindStats `json:"menuItems"`
}

// SyncedItem records the outcome for one processed menu item.
type SyncedItem struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "created" or "skipped"
}

// FailedItem records a menu item whose assembly failed.
type FailedItem struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Result is the report returned to the caller after a sync run.
type Result struct {
	ItemsProcessed int          `json:"itemsProcessed"`
	ItemsCreated   int          `json:"itemsCreated"`
	ItemsFailed    int          `json:"itemsFailed"`
	Stats          Stats        `json:"stats"`
	ExistingItems  []string     `json:"existingItems"`
	NewItems       []string     `json:"newItems"`
	SyncedItems    []SyncedItem `json:"syncedItems"`
	FailedItems    []FailedItem `json:"failedItems"`
	Warnings       []string     `json:"warnings"`
	Errors         []string     `json:"errors"`
	DurationMs     int64        `json:"durationMs"`
	Success        bool         `json:"success"`
}

// NewResult creates an empty report with allocated lists so the JSON
// rendering always shows arrays, not nulls.
func NewResult() *Result {
	return &Result{
		ExistingItems: []string{},
		NewItems:      []string{},
		SyncedItems:   []SyncedItem{},
		FailedItems:   []FailedItem{},
		Warnings:      []string{},
		Errors:        []string{},
	}
}

// AddWarning appends a formatted warning. Warnings never affect success.
func (r *Result) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// AddError appends a formatted error message to the report.
func (r *Result) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// RecordFailure registers a menu item whose assembly failed.
func (r *Result) RecordFailure(name string, err error) {
	r.ItemsFailed++
	r.FailedItems = append(r.FailedItems, FailedItem{Name: name, Error: err.Error()})
	r.AddError("failed to sync %q: %v", name, err)
}

// Finalize derives the success flag. Only assembly failures count; skips are
// deliberate outcomes.
func (r *Result) Finalize(durationMs int64) {
	r.DurationMs = durationMs
	r.Success = r.ItemsFailed == 0
}
