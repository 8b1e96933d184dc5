package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer transforms a query or a table key before comparison.
type Normalizer func(string) string

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLowercaseUTF8 trims and lowercases, keeping accents.
func NormalizeLowercaseUTF8(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeLowercaseASCII trims, lowercases and strips accents (Café -> cafe).
func NormalizeLowercaseASCII(s string) string {
	result, _, _ := transform.String(stripAccents, NormalizeLowercaseUTF8(s))
	return result
}

// GetNormalizer returns the normalizer for the given mode.
// Default is lowercase_utf8; there is no mode that skips trim and lowercase.
func GetNormalizer(mode string) Normalizer {
	switch mode {
	case "lowercase_ascii":
		return NormalizeLowercaseASCII
	default:
		return NormalizeLowercaseUTF8
	}
}

// NormalizeCategory is the category table normalization: lowercase, "&"
// spelled out as "and", whitespace collapsed and trimmed.
func NormalizeCategory(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "&", " and ")
	return strings.Join(strings.Fields(s), " ")
}
