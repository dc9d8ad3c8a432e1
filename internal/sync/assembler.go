package sync

import (
	"context"
	"fmt"

	"kitchensync/internal/catalog"
	"kitchensync/internal/logger"
	"kitchensync/internal/store"
)

// Assembler turns an Item-kind catalog entry into a persisted menu item,
// after the batch-wide allergen and ingredient resolution phases have run.
type Assembler struct {
	index       *EntityIndex
	store       store.Store
	ownerID     string
	ingredients *IngredientResolver
	allergens   *AllergenResolver
	result      *Result
	log         *logger.Logger
}

// NewAssembler wires the assembler to a run's menu-item index, report, and
// resolvers.
func NewAssembler(index *EntityIndex, st store.Store, ownerID string, ingredients *IngredientResolver, allergens *AllergenResolver, result *Result, baseLog *logger.Logger) *Assembler {
	return &Assembler{
		index:       index,
		store:       st,
		ownerID:     ownerID,
		ingredients: ingredients,
		allergens:   allergens,
		result:      result,
		log:         baseLog.With("component", "assembler"),
	}
}

// Assemble processes one catalog item. It returns true when a menu item was
// created. An error return means the item failed outright and counts toward
// itemsFailed; deliberate skips return (false, nil).
func (a *Assembler) Assemble(ctx context.Context, item catalog.Item, cand Candidates) (bool, error) {
	if item.Name == "" {
		return false, fmt.Errorf("catalog item %s has no name", item.ID)
	}

	if id, ok := a.index.Lookup(item.Name); ok {
		a.result.Stats.MenuItems.Existing++
		a.result.ExistingItems = append(a.result.ExistingItems, item.Name)
		a.result.SyncedItems = append(a.result.SyncedItems, SyncedItem{Name: item.Name, Status: "skipped"})
		a.log.Debug("menu item already exists", "name", item.Name, "id", id)
		return false, nil
	}

	ingredientNames := cand.IngredientNames
	if len(ingredientNames) == 0 {
		a.result.AddWarning("no ingredients found for menu item %q", item.Name)
		a.skip(item.Name)
		return false, nil
	}

	// Seed allergen IDs first so ingredient creation can reference them.
	for _, allergenName := range cand.AllergenNames {
		a.allergens.Resolve(ctx, allergenName)
	}

	var ingredientIDs []string
	for _, name := range ingredientNames {
		id, ok := a.ingredients.Resolve(ctx, name, cand.AllergenNames)
		if !ok {
			if EligibleIngredientName(name) {
				a.result.AddWarning("could not resolve ingredient %q for menu item %q", name, item.Name)
			}
			continue
		}
		ingredientIDs = append(ingredientIDs, id)
	}

	if len(ingredientIDs) == 0 {
		a.result.AddWarning("menu item %q skipped: none of its ingredients could be resolved", item.Name)
		a.skip(item.Name)
		return false, nil
	}

	menuItem, reused, err := a.store.CreateMenuItem(ctx, a.ownerID, item.Name, ingredientIDs)
	if err != nil {
		a.result.AddWarning("could not create menu item %q: %v", item.Name, err)
		a.skip(item.Name)
		return false, nil
	}

	a.index.Insert(item.Name, menuItem.ID)
	if reused {
		a.result.Stats.MenuItems.Existing++
		a.result.ExistingItems = append(a.result.ExistingItems, item.Name)
		a.result.SyncedItems = append(a.result.SyncedItems, SyncedItem{Name: item.Name, Status: "skipped"})
		return false, nil
	}

	a.result.Stats.MenuItems.Created++
	a.result.NewItems = append(a.result.NewItems, item.Name)
	a.result.SyncedItems = append(a.result.SyncedItems, SyncedItem{Name: item.Name, Status: "created"})
	a.log.Info("created menu item", "name", item.Name, "ingredients", len(ingredientIDs))
	return true, nil
}

func (a *Assembler) skip(name string) {
	a.result.Stats.MenuItems.Skipped++
	a.result.SyncedItems = append(a.result.SyncedItems, SyncedItem{Name: name, Status: "skipped"})
}
