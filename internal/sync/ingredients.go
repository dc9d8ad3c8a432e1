package sync

import (
	"context"
	"strings"

	"kitchensync/internal/logger"
	"kitchensync/internal/models"
	"kitchensync/internal/store"
)

// ingredientStopWords are connective tokens the text extractor sometimes
// surfaces that are never real ingredients.
var ingredientStopWords = map[string]bool{
	"and": true, "or": true, "the": true, "a": true, "an": true,
	"with": true, "made": true, "contains": true, "ingredients": true,
}

// EligibleIngredientName reports whether a candidate name passes the
// length and stop-word filters. Ineligible names are dropped silently.
func EligibleIngredientName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 3 {
		return false
	}
	return !ingredientStopWords[strings.ToLower(trimmed)]
}

// IngredientResolver resolves ingredient names against the run's index,
// creating canonical records as needed. New ingredients get their allergen
// set fixed at creation time from the candidate allergen names.
type IngredientResolver struct {
	index     *EntityIndex
	store     store.Store
	ownerID   string
	allergens *AllergenResolver
	result    *Result
	log       *logger.Logger
}

// NewIngredientResolver wires the resolver to a run's index, report, and
// allergen resolver.
func NewIngredientResolver(index *EntityIndex, st store.Store, ownerID string, allergens *AllergenResolver, result *Result, baseLog *logger.Logger) *IngredientResolver {
	return &IngredientResolver{
		index:     index,
		store:     st,
		ownerID:   ownerID,
		allergens: allergens,
		result:    result,
		log:       baseLog.With("component", "ingredient_resolver"),
	}
}

// Resolve returns the canonical ID for an ingredient name, creating the
// record when it is new. candidateAllergens are resolved first so a created
// ingredient always references allergen IDs that exist.
func (r *IngredientResolver) Resolve(ctx context.Context, name string, candidateAllergens []string) (string, bool) {
	name = strings.TrimSpace(name)
	if !EligibleIngredientName(name) {
		return "", false
	}

	if id, ok := r.index.Lookup(name); ok {
		r.result.Stats.Ingredients.Existing++
		return id, true
	}

	var allergenIDs []string
	for _, allergenName := range candidateAllergens {
		id, ok := r.allergens.Resolve(ctx, allergenName)
		if !ok {
			r.result.AddWarning("could not resolve allergen %q for ingredient %q", allergenName, name)
			continue
		}
		allergenIDs = append(allergenIDs, id)
	}

	ingredient, reused, err := r.store.CreateIngredient(ctx, r.ownerID, name, models.DefaultExpiryDays, allergenIDs)
	if err != nil {
		// A concurrent run may have created the same name after our seed.
		existing, ferr := r.store.FindIngredientByName(ctx, r.ownerID, name)
		if ferr == nil && existing != nil {
			r.index.Insert(name, existing.ID)
			r.result.Stats.Ingredients.Existing++
			return existing.ID, true
		}
		r.result.AddWarning("could not create ingredient %q: %v", name, err)
		return "", false
	}

	r.index.Insert(name, ingredient.ID)
	if reused {
		r.result.Stats.Ingredients.Existing++
	} else {
		r.result.Stats.Ingredients.Created++
	}
	return ingredient.ID, true
}
