package sync

import "strings"

// LiteralKey lowercases a display name, trims it, and collapses internal
// whitespace. This is the exact-match lookup key.
func LiteralKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NormalizeName derives the morphology-insensitive lookup key for a display
// name: the literal key with common English plural suffixes stripped. The
// rules are ordered and the first match wins. This is a heuristic
// singularizer, not a dictionary lookup; it happily produces false singulars
// ("bus" becomes "bu") and downstream matching depends on exactly these
// rules.
func NormalizeName(name string) string {
	key := LiteralKey(name)
	switch {
	case strings.HasSuffix(key, "ies") && len(key) > 3:
		return key[:len(key)-3] + "y"
	case strings.HasSuffix(key, "ves") && len(key) > 3:
		return key[:len(key)-3] + "f"
	case strings.HasSuffix(key, "es") && len(key) > 2:
		return key[:len(key)-2]
	case strings.HasSuffix(key, "s") && len(key) > 1:
		return key[:len(key)-1]
	}
	return key
}
