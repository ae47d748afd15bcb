// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// monthPatterns match "Month D, YYYY" text for each month, tolerating a
// single whitespace split inside the month name ("Febr uary"), a known
// extraction artifact. Built once, in calendar order, so the first match
// is deterministic.
var monthPatterns = buildMonthPatterns()

type monthPattern struct {
	month int
	re    *regexp.Regexp
}

func buildMonthPatterns() []monthPattern {
	names := []string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}
	patterns := make([]monthPattern, len(names))
	for i, name := range names {
		// Allow the artifact split after the fourth letter: "janu ary".
		expr := name + `\s+(\d{1,2}),?\s*(\d{4})`
		if len(name) > 4 {
			expr = name[:4] + `\s*` + name[4:] + `\s+(\d{1,2}),?\s*(\d{4})`
		}
		patterns[i] = monthPattern{month: i + 1, re: regexp.MustCompile(expr)}
	}
	return patterns
}

// dateFromText recovers the bulletin date from its text, returning it in
// YYYY-MM-DD form or empty when no month-name date is present.
func dateFromText(text string) string {
	lower := strings.ToLower(text)
	for _, mp := range monthPatterns {
		m := mp.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%d-%02d-%02d", year, mp.month, day)
	}
	return ""
}
