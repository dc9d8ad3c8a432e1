package sync

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"kitchensync/internal/catalog"
	"kitchensync/internal/models"
)

// memStore is an in-memory Store used by the engine tests. It mirrors the
// real store's uniqueness behavior: creating a name that already exists
// returns the existing record with reused=true.
type memStore struct {
	allergens   []models.Allergen
	ingredients []models.Ingredient
	menuItems   []models.MenuItem
	audits      []models.SyncAudit
	lastSynced  map[string]time.Time

	failAllergenCreate   map[string]error
	failIngredientCreate map[string]error
	failMenuItemCreate   map[string]error

	allergenCreateCalls []string
}

func newMemStore() *memStore {
	return &memStore{
		lastSynced:           make(map[string]time.Time),
		failAllergenCreate:   make(map[string]error),
		failIngredientCreate: make(map[string]error),
		failMenuItemCreate:   make(map[string]error),
	}
}

func (m *memStore) ListAllergens(ctx context.Context, ownerID string) ([]models.Allergen, error) {
	return append([]models.Allergen(nil), m.allergens...), nil
}

func (m *memStore) ListIngredients(ctx context.Context, ownerID string) ([]models.Ingredient, error) {
	return append([]models.Ingredient(nil), m.ingredients...), nil
}

func (m *memStore) ListMenuItems(ctx context.Context, ownerID string) ([]models.MenuItem, error) {
	return append([]models.MenuItem(nil), m.menuItems...), nil
}

func (m *memStore) CreateAllergen(ctx context.Context, ownerID, name string, isCustom bool) (*models.Allergen, bool, error) {
	m.allergenCreateCalls = append(m.allergenCreateCalls, name)
	if err := m.failAllergenCreate[strings.ToLower(name)]; err != nil {
		return nil, false, err
	}
	if existing, _ := m.FindAllergenByName(ctx, ownerID, name); existing != nil {
		return existing, true, nil
	}
	allergen := models.Allergen{ID: uuid.NewString(), OwnerID: ownerID, Name: name, IsCustom: isCustom, IsActive: true}
	m.allergens = append(m.allergens, allergen)
	return &allergen, false, nil
}

func (m *memStore) CreateIngredient(ctx context.Context, ownerID, name string, expiryDays int, allergenIDs []string) (*models.Ingredient, bool, error) {
	if err := m.failIngredientCreate[strings.ToLower(name)]; err != nil {
		return nil, false, err
	}
	if existing, _ := m.FindIngredientByName(ctx, ownerID, name); existing != nil {
		return existing, true, nil
	}
	ingredient := models.Ingredient{
		ID: uuid.NewString(), OwnerID: ownerID, Name: name,
		DefaultExpiryDays: expiryDays, AllergenIDs: models.StringSlice(allergenIDs),
	}
	m.ingredients = append(m.ingredients, ingredient)
	return &ingredient, false, nil
}

func (m *memStore) CreateMenuItem(ctx context.Context, ownerID, name string, ingredientIDs []string) (*models.MenuItem, bool, error) {
	if err := m.failMenuItemCreate[strings.ToLower(name)]; err != nil {
		return nil, false, err
	}
	if existing, _ := m.FindMenuItemByName(ctx, ownerID, name); existing != nil {
		return existing, true, nil
	}
	item := models.MenuItem{
		ID: uuid.NewString(), OwnerID: ownerID, Name: name,
		IngredientIDs: models.StringSlice(ingredientIDs),
	}
	m.menuItems = append(m.menuItems, item)
	return &item, false, nil
}

func (m *memStore) FindAllergenByName(ctx context.Context, ownerID, name string) (*models.Allergen, error) {
	for i := range m.allergens {
		if strings.EqualFold(m.allergens[i].Name, name) {
			a := m.allergens[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindIngredientByName(ctx context.Context, ownerID, name string) (*models.Ingredient, error) {
	for i := range m.ingredients {
		if strings.EqualFold(m.ingredients[i].Name, name) {
			ing := m.ingredients[i]
			return &ing, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindMenuItemByName(ctx context.Context, ownerID, name string) (*models.MenuItem, error) {
	for i := range m.menuItems {
		if strings.EqualFold(m.menuItems[i].Name, name) {
			item := m.menuItems[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (m *memStore) AppendAudit(ctx context.Context, audit *models.SyncAudit) error {
	m.audits = append(m.audits, *audit)
	return nil
}

func (m *memStore) TouchLastSynced(ctx context.Context, ownerID string, at time.Time) error {
	m.lastSynced[ownerID] = at
	return nil
}

func (m *memStore) LastSynced(ctx context.Context, ownerID string) (*models.SyncStatus, error) {
	at, ok := m.lastSynced[ownerID]
	if !ok {
		return nil, nil
	}
	return &models.SyncStatus{OwnerID: ownerID, LastSyncedAt: at}, nil
}

func (m *memStore) RecentAudits(ctx context.Context, ownerID string, limit int) ([]models.SyncAudit, error) {
	return append([]models.SyncAudit(nil), m.audits...), nil
}

// fakeProvider returns a fixed catalog.
type fakeProvider struct {
	items []catalog.Item
	err   error
}

func (f *fakeProvider) ListCatalog(ctx context.Context, creds catalog.Credentials, location string) ([]catalog.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]catalog.Item(nil), f.items...), nil
}
