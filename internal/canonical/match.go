// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canonical

import (
	"regexp"
	"strings"

	"github.com/pdiddy/price-engine/internal/store"
)

// ordinalPrefix matches the stray row numbers bulletins prepend to
// commodity names ("12 Corn Grits").
var ordinalPrefix = regexp.MustCompile(`^\d+\s+`)

// Normalize reduces a commodity name for pattern comparison: surrounding
// whitespace and trailing commas dropped, lowercased.
func Normalize(name string) string {
	n := strings.TrimSpace(name)
	n = strings.TrimRight(n, ",")
	return strings.ToLower(strings.TrimSpace(n))
}

func stripOrdinal(s string) string {
	return strings.TrimSpace(ordinalPrefix.ReplaceAllString(s, ""))
}

// nameMatches reports whether a normalized commodity name matches a
// normalized pattern: equality first, then prefix, each checked with and
// without the ordinal row-number prefix stripped from both sides.
func nameMatches(name, pattern string, exact bool) bool {
	nameStripped := stripOrdinal(name)
	patStripped := stripOrdinal(pattern)
	if name == pattern || nameStripped == patStripped {
		return true
	}
	if exact {
		return false
	}
	return strings.HasPrefix(name, pattern) || strings.HasPrefix(nameStripped, patStripped)
}

// Match assigns each commodity to at most one rule. Matching runs in two
// passes: exact name equality over the whole table first, then prefix
// matching for what remains. The exact pass keeps the stage idempotent: an
// already-canonical commodity re-matches its own rule even when an earlier
// rule's pattern is a prefix of its name. Within a pass the first matching
// rule wins. The returned slice is indexed like rules; commodities keep
// their input order within each rule. Commodities matching no rule are
// returned separately as noise.
func Match(rules []Rule, commodities []store.Commodity) (matched [][]store.Commodity, noise []store.Commodity) {
	matched = make([][]store.Commodity, len(rules))

	normalized := make([][]string, len(rules))
	for i, r := range rules {
		normalized[i] = make([]string, len(r.Patterns))
		for j, p := range r.Patterns {
			normalized[i][j] = Normalize(p)
		}
	}

	assigned := make(map[int64]int, len(commodities))
	for _, exact := range []bool{true, false} {
		for _, c := range commodities {
			if _, done := assigned[c.ID]; done {
				continue
			}
			name := Normalize(c.Name)
			for i := range rules {
				found := false
				for _, p := range normalized[i] {
					if nameMatches(name, p, exact) {
						found = true
						break
					}
				}
				if found {
					assigned[c.ID] = i
					matched[i] = append(matched[i], c)
					break
				}
			}
		}
	}

	for _, c := range commodities {
		if _, done := assigned[c.ID]; !done {
			noise = append(noise, c)
		}
	}
	return matched, noise
}
