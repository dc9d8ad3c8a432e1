package textanalysis

import "context"

// Extraction is the result of analyzing a free-text menu description.
type Extraction struct {
	Ingredients []string `json:"ingredients"`
	Allergens   []string `json:"allergens"`
	Confidence  float64  `json:"confidence"`
}

// Extractor pulls ingredient and allergen candidates out of free text. The
// sync engine treats implementations as side-effect-free black boxes and
// never fails because of their output quality.
type Extractor interface {
	Extract(ctx context.Context, text string) (Extraction, error)
}
