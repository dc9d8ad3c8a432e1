package textanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"kitchensync/internal/logger"
)

const extractionPrompt = `You analyze restaurant menu descriptions.
Given the description below, list the food ingredients it mentions and any
of the 14 regulatory allergens it mentions or implies (celery, gluten,
crustaceans, eggs, fish, lupin, milk, molluscs, mustard, peanuts, sesame,
soybeans, sulphites, tree nuts).

Respond with a single JSON object and nothing else:
{"ingredients": ["..."], "allergens": ["..."], "confidence": 0.0}

Description:
%s`

// LLMExtractor asks a language model to pull ingredient and allergen names
// out of free text. Any call or parse failure falls back to the
// deterministic keyword extractor so the pipeline never depends on model
// availability.
type LLMExtractor struct {
	model    llms.Model
	fallback Extractor
	log      *logger.Logger
}

// NewLLMExtractor wraps a langchaingo model. fallback must not be nil.
func NewLLMExtractor(model llms.Model, fallback Extractor, baseLog *logger.Logger) *LLMExtractor {
	return &LLMExtractor{
		model:    model,
		fallback: fallback,
		log:      baseLog.With("component", "llm_extractor"),
	}
}

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, text string) (Extraction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Extraction{}, nil
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, e.model,
		fmt.Sprintf(extractionPrompt, text),
		llms.WithTemperature(0),
	)
	if err != nil {
		e.log.Warn("llm extraction call failed, using keyword fallback", "error", err)
		return e.fallback.Extract(ctx, text)
	}

	extraction, err := parseExtraction(completion)
	if err != nil {
		e.log.Warn("llm extraction response unparsable, using keyword fallback", "error", err)
		return e.fallback.Extract(ctx, text)
	}
	return extraction, nil
}

// parseExtraction decodes the model's JSON reply, tolerating markdown code
// fences around the object.
func parseExtraction(completion string) (Extraction, error) {
	cleaned := strings.TrimSpace(completion)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var extraction Extraction
	if err := json.Unmarshal([]byte(cleaned), &extraction); err != nil {
		return Extraction{}, fmt.Errorf("decoding extraction response: %w", err)
	}
	return extraction, nil
}
