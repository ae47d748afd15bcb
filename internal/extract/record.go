// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/price-engine/pkg/types"
)

var (
	// priceAtEnd matches a trailing thousands-grouped price with up to two
	// decimal places, e.g. "45.50" or "1,250.00".
	priceAtEnd = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)\s*$`)

	// naAtEnd matches the bulletin's explicit "not available" marker.
	naAtEnd = regexp.MustCompile(`(?i)n/a\s*$`)

	// continuationStart marks a line that begins like the wrapped tail of
	// the previous row's specification rather than a new commodity.
	continuationStart = regexp.MustCompile(`^[a-z()\d]`)
)

// parseRecord turns a candidate data line into a CommodityRecord. prev is
// the preceding raw line, used for continuation merging: bulletins wrap
// long specifications, e.g.
//
//	Broccoli, Local  Medium (8 -10 cm
//	diameter/bunch hd)  160.00
//
// When the current line starts like a wrap fragment and the previous line
// carried text but no price, the two are re-parsed as one. If the merge
// still finds no price it is abandoned and the line parsed alone. Lines
// with neither a price nor an "n/a" marker yield no record at all.
func parseRecord(line, prev string, category *string) (types.CommodityRecord, bool) {
	if continuationStart.MatchString(line) && mergeableWith(prev) {
		combined := prev + " " + line
		// Commit to the merge only when it produced a price or an "n/a"
		// marker; otherwise fall back to the line on its own.
		if priceAtEnd.MatchString(combined) || naAtEnd.MatchString(combined) {
			return buildRecord(combined, category)
		}
	}

	return buildRecord(line, category)
}

// mergeableWith reports whether prev is a non-trivial data line missing its
// trailing price, i.e. the head of a wrapped row.
func mergeableWith(prev string) bool {
	if len(prev) <= 5 || isPageNoise(prev) || isSkipLine(prev) {
		return false
	}
	return !priceAtEnd.MatchString(prev) && !naAtEnd.MatchString(prev)
}

// buildRecord extracts the trailing price or "n/a" marker from line, splits
// the remaining text into name and specification, and applies the guards
// that keep mis-classified headers out of the data.
func buildRecord(line string, category *string) (types.CommodityRecord, bool) {
	var price *float64
	var text string

	if m := priceAtEnd.FindStringSubmatchIndex(line); m != nil {
		raw := strings.ReplaceAll(line[m[2]:m[3]], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.CommodityRecord{}, false
		}
		price = &v
		text = strings.TrimSpace(line[:m[0]])
	} else if m := naAtEnd.FindStringIndex(line); m != nil {
		text = strings.TrimSpace(line[:m[0]])
	} else {
		return types.CommodityRecord{}, false
	}

	if len(text) < 2 {
		return types.CommodityRecord{}, false
	}

	name, spec := splitNameSpec(text)
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return types.CommodityRecord{}, false
	}
	// An all-caps name this long is a section header that leaked through
	// classification, not a commodity.
	if name == strings.ToUpper(name) && len(name) > 30 {
		return types.CommodityRecord{}, false
	}

	rec := types.CommodityRecord{
		Category: category,
		Name:     name,
		Price:    price,
		Unit:     defaultUnit,
	}
	if spec != "" {
		trimmed := strings.TrimSpace(spec)
		rec.Specification = &trimmed
	}
	return rec, true
}
