package textanalysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, text string) Extraction {
	t.Helper()
	result, err := NewKeywordExtractor().Extract(context.Background(), text)
	require.NoError(t, err)
	return result
}

func TestKeywordExtractor_CommaSeparatedList(t *testing.T) {
	result := extract(t, "chicken, gluten, milk")

	assert.Equal(t, []string{"chicken"}, result.Ingredients)
	assert.Equal(t, []string{"gluten", "milk"}, result.Allergens)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestKeywordExtractor_MarketingCopyYieldsNothing(t *testing.T) {
	result := extract(t, "Freshly baked.")

	assert.Empty(t, result.Ingredients)
	assert.Empty(t, result.Allergens)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestKeywordExtractor_EmptyText(t *testing.T) {
	result := extract(t, "   ")

	assert.Empty(t, result.Ingredients)
	assert.Empty(t, result.Allergens)
}

func TestKeywordExtractor_ConnectivesSplitPhrases(t *testing.T) {
	result := extract(t, "Grilled chicken with dairy sauce and almonds")

	assert.Equal(t, []string{"chicken"}, result.Ingredients)
	assert.Equal(t, []string{"milk", "tree nuts"}, result.Allergens)
}

func TestKeywordExtractor_AllergenAliases(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"contains dairy", "milk"},
		{"may contain shellfish", "crustaceans"},
		{"hazelnut praline", "tree nuts"},
		{"soya protein", "soy"},
		{"sulfites added", "sulphites"},
	}
	for _, tc := range tests {
		result := extract(t, tc.text)
		assert.Equal(t, []string{tc.want}, result.Allergens, "text %q", tc.text)
	}
}

func TestKeywordExtractor_PluralsFoldIntoVocabulary(t *testing.T) {
	result := extract(t, "tomatoes, onions, peanuts")

	// Ingredient tokens keep the form the description used.
	assert.Equal(t, []string{"tomatoes", "onions"}, result.Ingredients)
	assert.Equal(t, []string{"peanuts"}, result.Allergens)
}

func TestKeywordExtractor_MultiWordVocabularyPhrase(t *testing.T) {
	result := extract(t, "olive oil, basil")

	assert.Equal(t, []string{"olive oil", "basil"}, result.Ingredients)
}

func TestKeywordExtractor_Deduplicates(t *testing.T) {
	result := extract(t, "milk, dairy, milk")

	assert.Equal(t, []string{"milk"}, result.Allergens)
	assert.Empty(t, result.Ingredients)
}

func TestKeywordExtractor_ConfidenceIsMatchRatio(t *testing.T) {
	result := extract(t, "chicken, secret spice blend")

	assert.Equal(t, []string{"chicken"}, result.Ingredients)
	assert.InDelta(t, 0.5, result.Confidence, 0.001)
}

func TestSingularize(t *testing.T) {
	tests := map[string]string{
		"tomatoes":     "tomato",
		"berries":      "berry",
		"leaves":       "leaf",
		"onions":       "onion",
		"couscous":     "couscou",
		"egg":          "egg",
		"s":            "s",
		"strawberries": "strawberry",
	}
	for in, want := range tests {
		assert.Equal(t, want, singularize(in), "singularize(%q)", in)
	}
}
