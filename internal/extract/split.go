// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

// doubleSpace splits at the first run of two or more spaces. Bulletins
// tab-align the specification column with padding, which survives text
// extraction as multiple spaces, so this is the strongest signal.
var doubleSpace = regexp.MustCompile(`^(.*?)\s{2,}(.*)$`)

// specKeywords split at a size/origin/state adjective, a broken-grain
// percentage, or a cut descriptor. These run last: a name containing one
// of these words must not be split when a stronger separator exists.
var specKeywords = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.*?)\s+((?:Medium|Large|Small|Fresh|Frozen|Whole|Cob|Male|Female|Local|Imported).*)$`),
	regexp.MustCompile(`(?i)^(.*?)\s+(\d+%?\s*broken.*)$`),
	regexp.MustCompile(`(?i)^(.*?)\s+(Meat\s+with.*)$`),
	regexp.MustCompile(`(?i)^(.*?)\s+(White\s+Rice)$`),
}

// splitNameSpec separates a record's raw text into commodity name and
// specification. Rules run in order, first match wins: double-space, then
// comma, then the keyword anchors. When nothing matches the whole text is
// the name and the specification is empty.
func splitNameSpec(text string) (name, spec string) {
	if m := doubleSpace.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}

	if i := strings.Index(text, ","); i >= 0 {
		return text[:i], strings.TrimSpace(text[i+1:])
	}

	for _, p := range specKeywords {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1], m[2]
		}
	}

	return text, ""
}
