package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchensync/internal/logger"
	"kitchensync/internal/models"
)

func newIngredientResolver(st *memStore) (*IngredientResolver, *EntityIndex, *Result) {
	result := NewResult()
	allergenIndex := NewEntityIndex()
	allergens := NewAllergenResolver(allergenIndex, st, testOwner, result, logger.NewNop())
	index := NewEntityIndex()
	return NewIngredientResolver(index, st, testOwner, allergens, result, logger.NewNop()), index, result
}

func TestIngredientResolver_RejectsShortAndStopWordNames(t *testing.T) {
	st := newMemStore()
	resolver, _, result := newIngredientResolver(st)

	for _, name := range []string{"ab", " x ", "and", "With", "ingredients", "CONTAINS"} {
		id, ok := resolver.Resolve(context.Background(), name, nil)
		assert.False(t, ok, "expected %q to be rejected", name)
		assert.Empty(t, id)
	}

	assert.Empty(t, st.ingredients)
	assert.Empty(t, result.Warnings, "filter rejections are silent")
}

func TestIngredientResolver_CreatesWithDefaultExpiry(t *testing.T) {
	st := newMemStore()
	resolver, index, result := newIngredientResolver(st)

	id, ok := resolver.Resolve(context.Background(), "basil", nil)
	require.True(t, ok)
	assert.Equal(t, 1, result.Stats.Ingredients.Created)

	require.Len(t, st.ingredients, 1)
	assert.Equal(t, models.DefaultExpiryDays, st.ingredients[0].DefaultExpiryDays)
	assert.Empty(t, []string(st.ingredients[0].AllergenIDs))

	got, found := index.Lookup("Basil")
	assert.True(t, found)
	assert.Equal(t, id, got)
}

func TestIngredientResolver_ResolvesCandidateAllergens(t *testing.T) {
	st := newMemStore()
	resolver, _, result := newIngredientResolver(st)

	_, ok := resolver.Resolve(context.Background(), "wheat flour", []string{"wheat", "saffron"})
	require.True(t, ok)

	// The allowlisted allergen was created and linked; the unknown one
	// produced a warning but did not stop resolution.
	require.Len(t, st.ingredients, 1)
	assert.Len(t, []string(st.ingredients[0].AllergenIDs), 1)
	require.Len(t, st.allergens, 1)
	assert.Equal(t, "wheat", st.allergens[0].Name)

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], `could not resolve allergen "saffron"`)
}

func TestIngredientResolver_ExistingResolvesFromIndex(t *testing.T) {
	st := newMemStore()
	resolver, index, result := newIngredientResolver(st)
	index.Seed("Tomatoes", "ing-1")

	id, ok := resolver.Resolve(context.Background(), "tomato", nil)
	require.True(t, ok)
	assert.Equal(t, "ing-1", id)
	assert.Equal(t, 1, result.Stats.Ingredients.Existing)
	assert.Empty(t, st.ingredients, "no create for an indexed name")
}

func TestIngredientResolver_CreateFailureFallsBackToExactLookup(t *testing.T) {
	st := newMemStore()
	st.failIngredientCreate["basil"] = errors.New("unique violation")
	// The record a concurrent run created after our seed.
	st.ingredients = append(st.ingredients, models.Ingredient{ID: "ing-9", OwnerID: testOwner, Name: "basil"})

	resolver, index, result := newIngredientResolver(st)

	id, ok := resolver.Resolve(context.Background(), "basil", nil)
	require.True(t, ok)
	assert.Equal(t, "ing-9", id)
	assert.Equal(t, 1, result.Stats.Ingredients.Existing)

	got, found := index.Lookup("basil")
	assert.True(t, found)
	assert.Equal(t, "ing-9", got)
}

func TestIngredientResolver_CreateFailureWithoutFallbackWarns(t *testing.T) {
	st := newMemStore()
	st.failIngredientCreate["basil"] = errors.New("store down")

	resolver, _, result := newIngredientResolver(st)

	id, ok := resolver.Resolve(context.Background(), "basil", nil)
	assert.False(t, ok)
	assert.Empty(t, id)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[len(result.Warnings)-1], `could not create ingredient "basil"`)
}

func TestEligibleIngredientName(t *testing.T) {
	assert.True(t, EligibleIngredientName("basil"))
	assert.True(t, EligibleIngredientName("egg"))
	assert.False(t, EligibleIngredientName("or"))
	assert.False(t, EligibleIngredientName("made"))
	assert.False(t, EligibleIngredientName("  a  "))
}
