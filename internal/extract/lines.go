// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

// knownCategories is the fixed bulletin section vocabulary. Matching is by
// substring against the uppercased line, so trailing column headers on the
// same physical line do not defeat detection.
var knownCategories = []string{
	"IMPORTED COMMERCIAL RICE",
	"LOCAL COMMERCIAL RICE",
	"CORN PRODUCTS",
	"LEGUMES",
	"FISH PRODUCTS",
	"BEEF MEAT PRODUCTS",
	"CARABEEF MEAT PRODUCTS",
	"PORK MEAT PRODUCTS",
	"CHICKEN MEAT PRODUCTS",
	"EGGS",
	"VEGETABLES",
	"FRUITS",
	"SPICES",
	"COOKING OIL",
	"SUGAR",
	"PROCESSED FOOD",
	"ROOT CROPS",
	"LOWLAND VEGETABLES",
	"HIGHLAND VEGETABLES",
	"LEAFY VEGETABLES",
	"FRUIT VEGETABLES",
}

// categoryWords are the indicator words for heuristic header detection:
// an all-caps line of ten or more characters containing one of these is
// treated as a new (possibly previously unseen) category.
var categoryWords = []string{
	"RICE", "CORN", "FISH", "MEAT", "CHICKEN", "PORK", "BEEF", "VEGETABLE",
	"FRUIT", "SPICE", "OIL", "SUGAR", "EGG", "LEGUME", "PROCESSED", "ROOT",
	"CARABEEF", "LOWLAND", "HIGHLAND", "LEAFY",
}

// pageNoisePatterns match page headers, footers, and column headings that
// repeat on every page of a bulletin.
var pageNoisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Page \d+ of \d+`),
	regexp.MustCompile(`(?i)^Department of Agriculture`),
	regexp.MustCompile(`(?i)^DAILY PRICE INDEX`),
	regexp.MustCompile(`(?i)^National Capital Region`),
	regexp.MustCompile(`(?i)^Prevailing Retail Price`),
	regexp.MustCompile(`(?i)^COMMODITY\s+SPECIFICATION`),
	regexp.MustCompile(`(?i)^PREVAILING`),
	regexp.MustCompile(`(?i)^RETAIL PRICE`),
	regexp.MustCompile(`(?i)^UNIT \(P/UNIT\)`),
	regexp.MustCompile(`^\(.*\d{4}\)`), // date stamp in parentheses
}

// skipPrefixes mark annotation lines: sources, notes, and signature blocks.
var skipPrefixes = []string{
	"source:", "note:", "disclaimer", "prepared by",
	"checked by", "approved by", "page", "p/unit",
}

var allCapsLine = regexp.MustCompile(`^[A-Z\s]{10,}$`)

// isPageNoise reports whether the line is a repeating page header or footer.
func isPageNoise(line string) bool {
	for _, p := range pageNoisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// isSkipLine reports whether the line is an annotation or too short to
// carry data.
func isSkipLine(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return len(lower) < 3
}

// detectCategory reports whether the line is a category header and, if so,
// the category it announces. Known categories match by substring; unknown
// ones are accepted when the line is all-caps, at least ten characters,
// and contains a category-indicative word. Newly discovered categories are
// kept as-is; the canonicalization stage disposes of drift later.
func detectCategory(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	upper := strings.ToUpper(trimmed)

	for _, cat := range knownCategories {
		if strings.Contains(upper, cat) {
			return cat, true
		}
	}

	if allCapsLine.MatchString(trimmed) {
		for _, w := range categoryWords {
			if strings.Contains(upper, w) {
				return upper, true
			}
		}
	}

	return "", false
}
