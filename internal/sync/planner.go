package sync

import (
	"context"
	"strings"

	"kitchensync/internal/catalog"
	"kitchensync/internal/logger"
	"kitchensync/internal/textanalysis"
)

// IngredientMarkerPrefix marks a modifier list whose name encodes a single
// ingredient, e.g. "Ingredient: Mozzarella".
const IngredientMarkerPrefix = "ingredient:"

// Source records where a catalog item's candidates came from.
type Source string

const (
	SourceStructured Source = "structured"
	SourceText       Source = "text"
)

// Candidates holds the ingredient and allergen names extracted for one
// catalog item.
type Candidates struct {
	IngredientNames []string
	AllergenNames   []string
	Source          Source
}

// Planner decides, per catalog item, whether candidates come from structured
// modifier-list data or from free-text description analysis.
type Planner struct {
	extractor textanalysis.Extractor
	log       *logger.Logger
}

// NewPlanner creates a planner backed by the given text-analysis
// collaborator.
func NewPlanner(extractor textanalysis.Extractor, baseLog *logger.Logger) *Planner {
	return &Planner{
		extractor: extractor,
		log:       baseLog.With("component", "planner"),
	}
}

// Plan produces the candidate names for one catalog item, applying the fixed
// priority order:
//
//  1. A modifier list carrying the ingredient marker contributes the marked
//     name as a single ingredient; its description is mined for allergen
//     hints only.
//  2. An item that references modifier lists contributes nothing here;
//     its structured data arrives through the modifier-list entries of the
//     same batch.
//  3. An item without modifier lists has its description mined for both
//     ingredients and allergens.
func (p *Planner) Plan(ctx context.Context, item catalog.Item) Candidates {
	switch item.Kind {
	case catalog.KindModifierList:
		name := strings.TrimSpace(item.Name)
		if !strings.HasPrefix(strings.ToLower(name), IngredientMarkerPrefix) {
			return Candidates{Source: SourceStructured}
		}
		ingredient := strings.TrimSpace(name[len(IngredientMarkerPrefix):])
		cand := Candidates{Source: SourceStructured}
		if ingredient != "" {
			cand.IngredientNames = []string{ingredient}
		}
		cand.AllergenNames = p.extract(ctx, item).Allergens
		return cand

	case catalog.KindItem:
		if len(item.LinkedModifierListIDs) > 0 {
			// Structured data is handled via the modifier-list entries of
			// the batch; this item contributes no candidates of its own.
			return Candidates{Source: SourceStructured}
		}
		extraction := p.extract(ctx, item)
		return Candidates{
			IngredientNames: extraction.Ingredients,
			AllergenNames:   extraction.Allergens,
			Source:          SourceText,
		}

	default:
		return Candidates{}
	}
}

// extract runs the text-analysis collaborator over the item description. A
// collaborator failure degrades to an empty extraction; the pipeline never
// fails on extractor quality.
func (p *Planner) extract(ctx context.Context, item catalog.Item) textanalysis.Extraction {
	text := strings.TrimSpace(item.Description)
	if text == "" {
		return textanalysis.Extraction{}
	}
	extraction, err := p.extractor.Extract(ctx, text)
	if err != nil {
		p.log.Warn("text extraction failed, continuing without candidates",
			"item", item.Name, "error", err)
		return textanalysis.Extraction{}
	}
	p.log.Debug("text extraction",
		"item", item.Name,
		"ingredients", len(extraction.Ingredients),
		"allergens", len(extraction.Allergens),
		"confidence", extraction.Confidence)
	return extraction
}

// AssociateAllergens links each collected ingredient name with every
// collected allergen name whose lowercase form is a substring of the
// ingredient's lowercase form. A best-effort heuristic, not a verified
// nutritional fact.
func AssociateAllergens(ingredientNames, allergenNames []string) map[string][]string {
	assoc := make(map[string][]string, len(ingredientNames))
	for _, ingredient := range ingredientNames {
		lowerIngredient := strings.ToLower(ingredient)
		var matched []string
		for _, allergen := range allergenNames {
			if strings.Contains(lowerIngredient, strings.ToLower(allergen)) {
				matched = append(matched, allergen)
			}
		}
		assoc[ingredient] = matched
	}
	return assoc
}
