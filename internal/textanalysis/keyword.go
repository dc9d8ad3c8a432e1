package textanalysis

import (
	"context"
	"strings"
)

// allergenAliases maps recognized tokens to the allergen name reported for
// them. Keys are singularized lowercase forms.
var allergenAliases = map[string]string{
	"celery":          "celery",
	"gluten":          "gluten",
	"wheat":           "wheat",
	"crustacean":      "crustaceans",
	"shellfish":       "crustaceans",
	"egg":             "eggs",
	"fish":            "fish",
	"lupin":           "lupin",
	"milk":            "milk",
	"dairy":           "milk",
	"mollusc":         "molluscs",
	"mustard":         "mustard",
	"peanut":          "peanuts",
	"sesame":          "sesame",
	"soy":             "soy",
	"soya":            "soy",
	"soybean":         "soybeans",
	"sulphite":        "sulphites",
	"sulfite":         "sulphites",
	"sulphit":         "sulphites", // singularize("sulphites") strips the whole "es"
	"sulfit":          "sulphites",
	"sulphur dioxide": "sulphites",
	"nut":             "nuts",
	"tree nut":        "tree nuts",
	"almond":          "tree nuts",
	"hazelnut":        "tree nuts",
	"walnut":          "tree nuts",
	"cashew":          "tree nuts",
	"pistachio":       "tree nuts",
}

// ingredientVocabulary lists food words the keyword extractor recognizes as
// ingredient candidates, in singularized lowercase form. Descriptions are
// full of marketing copy, so an unknown word is ignored rather than guessed
// at.
var ingredientVocabulary = map[string]bool{
	"chicken": true, "beef": true, "pork": true, "lamb": true, "turkey": true,
	"bacon": true, "ham": true, "sausage": true, "salmon": true, "tuna": true,
	"cod": true, "prawn": true, "shrimp": true, "crab": true, "lobster": true,
	"mussel": true, "oyster": true, "squid": true, "anchovy": true,
	"tomato": true, "lettuce": true, "onion": true, "garlic": true,
	"pepper": true, "cucumber": true, "carrot": true, "potato": true,
	"mushroom": true, "spinach": true, "kale": true, "avocado": true,
	"olive": true, "olive oil": true, "corn": true, "pea": true, "bean": true,
	"chickpea": true, "lentil": true, "rice": true, "pasta": true,
	"noodle": true, "bread": true, "flour": true, "tortilla": true,
	"cheese": true, "mozzarella": true, "cheddar": true, "parmesan": true,
	"feta": true, "butter": true, "cream": true, "yogurt": true,
	"mayonnaise": true, "egg": true, "milk": true, "honey": true,
	"sugar": true, "salt": true, "basil": true, "oregano": true,
	"parsley": true, "coriander": true, "cilantro": true, "chilli": true,
	"chili": true, "lemon": true, "lime": true, "apple": true,
	"banana": true, "strawberry": true, "blueberry": true, "raspberry": true,
	"chocolate": true, "vanilla": true, "cinnamon": true, "ginger": true,
	"almond": true, "hazelnut": true, "walnut": true, "peanut": true,
	"cashew": true, "sesame": true, "tofu": true, "quinoa": true,
	"couscous": true, "beetroot": true, "courgette": true, "zucchini": true,
	"aubergine": true, "eggplant": true, "broccoli": true, "cauliflower": true,
	"cabbage": true, "celery": true, "leek": true, "radish": true,
	"mustard": true, "vinegar": true, "wine": true, "stock": true,
	"mint": true, "rosemary": true, "thyme": true, "sage": true,
}

var phraseDelimiters = strings.NewReplacer(
	";", ",", ".", ",", ":", ",", "(", ",", ")", ",",
	" and ", ",", " with ", ",", " or ", ",", "&", ",", "/", ",",
)

// KeywordExtractor is the deterministic text-analysis implementation. It
// recognizes allergen tokens by alias and ingredient tokens by a fixed food
// vocabulary; everything else in the text is ignored.
type KeywordExtractor struct{}

// NewKeywordExtractor creates the default extractor.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract never returns an error; an empty or unrecognizable description
// yields an empty extraction.
func (e *KeywordExtractor) Extract(_ context.Context, text string) (Extraction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Extraction{}, nil
	}

	var (
		ingredients   []string
		allergens     []string
		seenIng       = map[string]bool{}
		seenAll       = map[string]bool{}
		tokensTotal   int
		tokensMatched int
	)

	appendMatch := func(token string) bool {
		key := singularize(token)
		if alias, ok := allergenAliases[key]; ok {
			if !seenAll[alias] {
				seenAll[alias] = true
				allergens = append(allergens, alias)
			}
			return true
		}
		if len(key) >= 3 && ingredientVocabulary[key] {
			if !seenIng[token] {
				seenIng[token] = true
				ingredients = append(ingredients, token)
			}
			return true
		}
		return false
	}

	normalized := phraseDelimiters.Replace(strings.ToLower(text))
	for _, phrase := range strings.Split(normalized, ",") {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		tokensTotal++
		if appendMatch(phrase) {
			tokensMatched++
			continue
		}
		// No phrase-level match; fall back to individual words.
		matchedWord := false
		for _, word := range strings.Fields(phrase) {
			if appendMatch(strings.Trim(word, "-'\"")) {
				matchedWord = true
			}
		}
		if matchedWord {
			tokensMatched++
		}
	}

	confidence := 0.0
	if tokensTotal > 0 {
		confidence = float64(tokensMatched) / float64(tokensTotal)
	}

	return Extraction{
		Ingredients: ingredients,
		Allergens:   allergens,
		Confidence:  confidence,
	}, nil
}

// singularize strips the common English plural suffixes so vocabulary
// lookups tolerate plural forms. Order matters; first match wins.
func singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ves") && len(word) > 3:
		return word[:len(word)-3] + "f"
	case strings.HasSuffix(word, "es") && len(word) > 2:
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && len(word) > 1:
		return word[:len(word)-1]
	}
	return word
}
