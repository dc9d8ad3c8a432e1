package sync

import (
	"context"

	"kitchensync/internal/logger"
	"kitchensync/internal/store"
)

// standardAllergenNames is the regulatory allergen list this pipeline may
// auto-create, plus the common single-word aliases descriptions actually
// use. Membership is checked on the normalized name.
var standardAllergenNames = []string{
	"celery",
	"cereals containing gluten",
	"gluten",
	"wheat",
	"crustaceans",
	"shellfish",
	"eggs",
	"fish",
	"lupin",
	"milk",
	"molluscs",
	"mustard",
	"peanuts",
	"sesame",
	"soybeans",
	"soy",
	"soya",
	"sulphur dioxide",
	"sulphites",
	"sulfites",
	"tree nuts",
	"nuts",
}

var standardAllergens = buildAllergenAllowlist()

func buildAllergenAllowlist() map[string]bool {
	allowlist := make(map[string]bool, len(standardAllergenNames))
	for _, name := range standardAllergenNames {
		allowlist[NormalizeName(name)] = true
	}
	return allowlist
}

// IsStandardAllergen reports whether a name belongs to the fixed allowlist
// of auto-creatable allergens.
func IsStandardAllergen(name string) bool {
	return standardAllergens[NormalizeName(name)]
}

// AllergenResolver resolves allergen names against the run's index, creating
// canonical records for allowlisted names that do not exist yet. Custom
// allergens created through other paths resolve by lookup but are never
// created here.
type AllergenResolver struct {
	index   *EntityIndex
	store   store.Store
	ownerID string
	result  *Result
	log     *logger.Logger
}

// NewAllergenResolver wires the resolver to a run's index and report.
func NewAllergenResolver(index *EntityIndex, st store.Store, ownerID string, result *Result, baseLog *logger.Logger) *AllergenResolver {
	return &AllergenResolver{
		index:   index,
		store:   st,
		ownerID: ownerID,
		result:  result,
		log:     baseLog.With("component", "allergen_resolver"),
	}
}

// Resolve returns the canonical ID for an allergen name. A creation failure
// degrades to "could not resolve" with a warning; it never aborts the run.
func (r *AllergenResolver) Resolve(ctx context.Context, name string) (string, bool) {
	if id, ok := r.index.Lookup(name); ok {
		r.result.Stats.Allergens.Existing++
		return id, true
	}

	if !IsStandardAllergen(name) {
		r.result.Stats.Allergens.Skipped++
		r.log.Debug("skipping non-standard allergen", "name", name)
		return "", false
	}

	allergen, reused, err := r.store.CreateAllergen(ctx, r.ownerID, name, false)
	if err != nil {
		r.result.AddWarning("could not create allergen %q: %v", name, err)
		return "", false
	}

	r.index.Insert(name, allergen.ID)
	if reused {
		r.result.Stats.Allergens.Existing++
	} else {
		r.result.Stats.Allergens.Created++
	}
	return allergen.ID, true
}
