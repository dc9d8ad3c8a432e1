package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchensync/internal/catalog"
	"kitchensync/internal/logger"
	"kitchensync/internal/textanalysis"
)

const testOwner = "owner-1"

var testCreds = catalog.Credentials{AccessToken: "token"}

func newTestOrchestrator(st *memStore, provider catalog.Client) *Orchestrator {
	planner := NewPlanner(textanalysis.NewKeywordExtractor(), logger.NewNop())
	return NewOrchestrator(st, provider, planner, logger.NewNop())
}

// testCatalog is a small but representative remote catalog: a marked
// modifier list, an item relying on linked modifier lists, a plain-text
// item, and an item whose description yields nothing.
func testCatalog() []catalog.Item {
	return []catalog.Item{
		{
			ID:          "ml-1",
			Kind:        catalog.KindModifierList,
			Name:        "Ingredient: Mozzarella",
			Description: "contains milk",
		},
		{
			ID:                    "item-1",
			Kind:                  catalog.KindItem,
			Name:                  "Margherita Pizza",
			Description:           "tomato, mozzarella, basil",
			LinkedModifierListIDs: []string{"ml-1"},
		},
		{
			ID:          "item-2",
			Kind:        catalog.KindItem,
			Name:        "Chicken Wrap",
			Description: "chicken, gluten, milk",
		},
		{
			ID:          "item-3",
			Kind:        catalog.KindItem,
			Name:        "Plain Roll",
			Description: "Freshly baked.",
		},
	}
}

func TestRun_MissingCredentialsIsFatal(t *testing.T) {
	st := newMemStore()
	orch := newTestOrchestrator(st, &fakeProvider{items: testCatalog()})

	result, err := orch.Run(context.Background(), Options{OwnerID: testOwner})

	require.ErrorIs(t, err, ErrNoCredentials)
	assert.Nil(t, result, "fatal errors produce no report")
	assert.Empty(t, st.audits, "nothing is persisted on a fatal error")
}

func TestRun_ProviderFailureIsFatal(t *testing.T) {
	st := newMemStore()
	providerErr := fmt.Errorf("%w: status 401", catalog.ErrProvider)
	orch := newTestOrchestrator(st, &fakeProvider{err: providerErr})

	result, err := orch.Run(context.Background(), Options{OwnerID: testOwner, Credentials: testCreds})

	require.ErrorIs(t, err, catalog.ErrProvider)
	assert.Nil(t, result)
	assert.Empty(t, st.allergens)
	assert.Empty(t, st.ingredients)
	assert.Empty(t, st.menuItems)
}

func TestRun_FullSync(t *testing.T) {
	st := newMemStore()
	orch := newTestOrchestrator(st, &fakeProvider{items: testCatalog()})

	result, err := orch.Run(context.Background(), Options{OwnerID: testOwner, Credentials: testCreds})
	require.NoError(t, err)

	// Three Item-kind entries were processed; only the plain-text one
	// could be assembled.
	assert.Equal(t, 3, result.ItemsProcessed)
	assert.Equal(t, 1, result.ItemsCreated)
	assert.Equal(t, 0, result.ItemsFailed)
	assert.True(t, result.Success)

	assert.Equal(t, 2, result.Stats.Allergens.Created, "milk and gluten")
	assert.Equal(t, 2, result.Stats.Ingredients.Created, "Mozzarella and chicken")
	assert.Equal(t, 1, result.Stats.MenuItems.Created)
	assert.Equal(t, 2, result.Stats.MenuItems.Skipped)

	assert.Equal(t, []string{"Chicken Wrap"}, result.NewItems)

	// The linked-modifier-list item and the empty-description item are
	// both skipped with a warning.
	assert.Contains(t, result.Warnings, `no ingredients found for menu item "Margherita Pizza"`)
	assert.Contains(t, result.Warnings, `no ingredients found for menu item "Plain Roll"`)

	// Chicken carries no allergen substring, so it gets an empty set even
	// though gluten and milk were extracted beside it.
	chicken, err := st.FindIngredientByName(context.Background(), testOwner, "chicken")
	require.NoError(t, err)
	require.NotNil(t, chicken)
	assert.Empty(t, []string(chicken.AllergenIDs))

	// Finalizing persisted the audit row and the last-synced marker.
	require.Len(t, st.audits, 1)
	assert.Equal(t, "menu_items", st.audits[0].Kind)
	assert.Equal(t, "success", st.audits[0].Status)
	assert.Equal(t, 3, st.audits[0].ItemsProcessed)
	_, touched := st.lastSynced[testOwner]
	assert.True(t, touched)
}

func TestRun_DependencyOrdering(t *testing.T) {
	st := newMemStore()
	orch := newTestOrchestrator(st, &fakeProvider{items: []catalog.Item{
		{
			ID:          "ml-1",
			Kind:        catalog.KindModifierList,
			Name:        "Ingredient: Roasted Peanuts",
			Description: "contains peanuts",
		},
		{
			ID:          "item-1",
			Kind:        catalog.KindItem,
			Name:        "Satay Skewers",
			Description: "chicken, peanuts",
		},
	}})

	_, err := orch.Run(context.Background(), Options{OwnerID: testOwner, Credentials: testCreds})
	require.NoError(t, err)

	// Every allergen ID referenced by a created ingredient must exist.
	allergenIDs := map[string]bool{}
	for _, a := range st.allergens {
		allergenIDs[a.ID] = true
	}
	for _, ing := range st.ingredients {
		for _, id := range ing.AllergenIDs {
			assert.True(t, allergenIDs[id], "ingredient %q references unknown allergen %s", ing.Name, id)
		}
	}

	// Every ingredient ID referenced by a created menu item must exist,
	// and menu items are never created empty.
	ingredientIDs := map[string]bool{}
	for _, ing := range st.ingredients {
		ingredientIDs[ing.ID] = true
	}
	for _, item := range st.menuItems {
		require.NotEmpty(t, []string(item.IngredientIDs))
		for _, id := range item.IngredientIDs {
			assert.True(t, ingredientIDs[id], "menu item %q references unknown ingredient %s", item.Name, id)
		}
	}

	// Roasted Peanuts picked up the peanut allergen via the substring
	// heuristic.
	pb, err := st.FindIngredientByName(context.Background(), testOwner, "Roasted Peanuts")
	require.NoError(t, err)
	require.NotNil(t, pb)
	assert.Len(t, []string(pb.AllergenIDs), 1)
}

func TestRun_Idempotence(t *testing.T) {
	st := newMemStore()
	provider := &fakeProvider{items: testCatalog()}

	first, err := newTestOrchestrator(st, provider).Run(context.Background(), Options{OwnerID: testOwner, Credentials: testCreds})
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := newTestOrchestrator(st, provider).Run(context.Background(), Options{OwnerID: testOwner, Credentials: testCreds})
	require.NoError(t, err)

	assert.Equal(t, 0, second.Stats.Allergens.Created)
	assert.Equal(t, 0, second.Stats.Ingredients.Created)
	assert.Equal(t, 0, second.Stats.MenuItems.Created)
	assert.Equal(t, 0, second.ItemsCreated)
	assert.True(t, second.Success)

	// Everything resolves as existing on the second pass.
	assert.Equal(t, first.Stats.Allergens.Created, len(st.allergens))
	assert.Equal(t, first.Stats.Ingredients.Created, len(st.ingredients))
	assert.Equal(t, first.Stats.MenuItems.Created, len(st.menuItems))
	assert.Contains(t, second.ExistingItems, "Chicken Wrap")
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	items := testCatalog()
	// A nameless catalog item cannot be assembled and must fail alone.
	items = append(items, catalog.Item{
		ID:          "item-bad",
		Kind:        catalog.KindItem,
		Description: "beef, onions",
	})

	st := newMemStore()
	result, err := newTestOrchestrator(st, &fakeProvider{items: items}).
		Run(context.Background(), Options{OwnerID: testOwner, Credentials: testCreds})
	require.NoError(t, err, "per-item failures never abort the run")

	assert.Equal(t, 4, result.ItemsProcessed)
	assert.Equal(t, 1, result.ItemsFailed)
	require.Len(t, result.FailedItems, 1)
	assert.Equal(t, "item-bad", result.FailedItems[0].Name)
	assert.False(t, result.Success)

	// The healthy items still synced.
	assert.Equal(t, 1, result.ItemsCreated)
	assert.Contains(t, result.NewItems, "Chicken Wrap")

	require.Len(t, st.audits, 1)
	assert.Equal(t, "partial", st.audits[0].Status)
}

func TestRun_PublishesProgressPhases(t *testing.T) {
	var phases []string
	sink := SinkFunc(func(event ProgressEvent) {
		phases = append(phases, event.Phase)
	})

	st := newMemStore()
	_, err := newTestOrchestrator(st, &fakeProvider{items: testCatalog()}).
		Run(context.Background(), Options{
			OwnerID:     testOwner,
			Credentials: testCreds,
			Progress:    sink,
		})
	require.NoError(t, err)

	assert.Equal(t, []string{
		PhaseSeeding,
		PhaseCollecting,
		PhaseResolvingAllergens,
		PhaseResolvingIngredients,
		PhaseAssembling,
		PhaseFinalizing,
		PhaseDone,
	}, phases)
}
