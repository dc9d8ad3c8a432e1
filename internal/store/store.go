package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"kitchensync/internal/logger"
	"kitchensync/internal/models"
)

// Store is the persistence collaborator for the catalog sync pipeline. All
// reads and writes are scoped to a single owner. Create calls that lose a
// concurrent check-then-create race return the record that won, with
// reused=true.
type Store interface {
	ListAllergens(ctx context.Context, ownerID string) ([]models.Allergen, error)
	ListIngredients(ctx context.Context, ownerID string) ([]models.Ingredient, error)
	ListMenuItems(ctx context.Context, ownerID string) ([]models.MenuItem, error)

	CreateAllergen(ctx context.Context, ownerID, name string, isCustom bool) (*models.Allergen, bool, error)
	CreateIngredient(ctx context.Context, ownerID, name string, expiryDays int, allergenIDs []string) (*models.Ingredient, bool, error)
	CreateMenuItem(ctx context.Context, ownerID, name string, ingredientIDs []string) (*models.MenuItem, bool, error)

	FindAllergenByName(ctx context.Context, ownerID, name string) (*models.Allergen, error)
	FindIngredientByName(ctx context.Context, ownerID, name string) (*models.Ingredient, error)
	FindMenuItemByName(ctx context.Context, ownerID, name string) (*models.MenuItem, error)

	AppendAudit(ctx context.Context, audit *models.SyncAudit) error
	TouchLastSynced(ctx context.Context, ownerID string, at time.Time) error
	LastSynced(ctx context.Context, ownerID string) (*models.SyncStatus, error)
	RecentAudits(ctx context.Context, ownerID string, limit int) ([]models.SyncAudit, error)
}

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// New creates a gorm-backed Store.
func New(db *gorm.DB, baseLog *logger.Logger) Store {
	return &gormStore{db: db, log: baseLog.With("component", "store")}
}

func (s *gormStore) ListAllergens(ctx context.Context, ownerID string) ([]models.Allergen, error) {
	var results []models.Allergen
	if err := s.db.Where("owner_id = ?", ownerID).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list allergens: %w", err)
	}
	return results, nil
}

func (s *gormStore) ListIngredients(ctx context.Context, ownerID string) ([]models.Ingredient, error) {
	var results []models.Ingredient
	if err := s.db.Where("owner_id = ?", ownerID).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return results, nil
}

func (s *gormStore) ListMenuItems(ctx context.Context, ownerID string) ([]models.MenuItem, error) {
	var results []models.MenuItem
	if err := s.db.Where("owner_id = ?", ownerID).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return results, nil
}

func (s *gormStore) CreateAllergen(ctx context.Context, ownerID, name string, isCustom bool) (*models.Allergen, bool, error) {
	allergen := &models.Allergen{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     name,
		IsCustom: isCustom,
		IsActive: true,
	}
	if err := s.db.Create(allergen).Error; err != nil {
		if isUniqueViolation(err) {
			existing, ferr := s.FindAllergenByName(ctx, ownerID, name)
			if ferr == nil && existing != nil {
				return existing, true, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create allergen %q: %w", name, err)
	}
	return allergen, false, nil
}

func (s *gormStore) CreateIngredient(ctx context.Context, ownerID, name string, expiryDays int, allergenIDs []string) (*models.Ingredient, bool, error) {
	ingredient := &models.Ingredient{
		ID:                uuid.NewString(),
		OwnerID:           ownerID,
		Name:              name,
		DefaultExpiryDays: expiryDays,
		AllergenIDs:       models.StringSlice(allergenIDs),
	}
	if err := s.db.Create(ingredient).Error; err != nil {
		if isUniqueViolation(err) {
			existing, ferr := s.FindIngredientByName(ctx, ownerID, name)
			if ferr == nil && existing != nil {
				return existing, true, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create ingredient %q: %w", name, err)
	}
	return ingredient, false, nil
}

func (s *gormStore) CreateMenuItem(ctx context.Context, ownerID, name string, ingredientIDs []string) (*models.MenuItem, bool, error) {
	item := &models.MenuItem{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Name:          name,
		IngredientIDs: models.StringSlice(ingredientIDs),
	}
	if err := s.db.Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			existing, ferr := s.FindMenuItemByName(ctx, ownerID, name)
			if ferr == nil && existing != nil {
				return existing, true, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create menu item %q: %w", name, err)
	}
	return item, false, nil
}

func (s *gormStore) FindAllergenByName(ctx context.Context, ownerID, name string) (*models.Allergen, error) {
	var allergen models.Allergen
	err := s.db.Where("owner_id = ? AND LOWER(name) = LOWER(?)", ownerID, name).First(&allergen).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find allergen %q: %w", name, err)
	}
	return &allergen, nil
}

func (s *gormStore) FindIngredientByName(ctx context.Context, ownerID, name string) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := s.db.Where("owner_id = ? AND LOWER(name) = LOWER(?)", ownerID, name).First(&ingredient).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ingredient %q: %w", name, err)
	}
	return &ingredient, nil
}

func (s *gormStore) FindMenuItemByName(ctx context.Context, ownerID, name string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.Where("owner_id = ? AND LOWER(name) = LOWER(?)", ownerID, name).First(&item).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find menu item %q: %w", name, err)
	}
	return &item, nil
}

func (s *gormStore) AppendAudit(ctx context.Context, audit *models.SyncAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.NewString()
	}
	if audit.CompletedAt.IsZero() {
		audit.CompletedAt = time.Now().UTC()
	}
	if err := s.db.Create(audit).Error; err != nil {
		return fmt.Errorf("failed to append sync audit: %w", err)
	}
	return nil
}

func (s *gormStore) TouchLastSynced(ctx context.Context, ownerID string, at time.Time) error {
	var status models.SyncStatus
	err := s.db.Where("owner_id = ?", ownerID).First(&status).Error
	if err != nil {
		if !gorm.IsRecordNotFoundError(err) {
			return fmt.Errorf("failed to load sync status: %w", err)
		}
		status = models.SyncStatus{OwnerID: ownerID, LastSyncedAt: at}
		if err := s.db.Create(&status).Error; err != nil {
			return fmt.Errorf("failed to create sync status: %w", err)
		}
		return nil
	}
	status.LastSyncedAt = at
	if err := s.db.Save(&status).Error; err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

func (s *gormStore) LastSynced(ctx context.Context, ownerID string) (*models.SyncStatus, error) {
	var status models.SyncStatus
	err := s.db.Where("owner_id = ?", ownerID).First(&status).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load sync status: %w", err)
	}
	return &status, nil
}

func (s *gormStore) RecentAudits(ctx context.Context, ownerID string, limit int) ([]models.SyncAudit, error) {
	var audits []models.SyncAudit
	if limit <= 0 {
		limit = 10
	}
	err := s.db.Where("owner_id = ?", ownerID).
		Order("completed_at desc").
		Limit(limit).
		Find(&audits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sync audits: %w", err)
	}
	return audits, nil
}

// isUniqueViolation recognizes uniqueness errors from both supported drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite3
		strings.Contains(msg, "duplicate key value") // postgres
}
