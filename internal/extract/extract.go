// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract parses bulletin text into structured commodity price
// records. The text arrives from PDF extraction with no stable layout:
// wrapped lines, shifting category headers, and occasional binary noise
// from image-based documents. The parser classifies each line, tracks the
// running category, and recovers price records where they exist, dropping
// what it cannot read rather than guessing.
package extract

import (
	"fmt"
	"strings"

	"github.com/pdiddy/price-engine/pkg/types"
)

// defaultUnit is the price unit for bulletin rows; the bulletins quote
// retail prices per kilogram unless a specification says otherwise.
const defaultUnit = "PHP/kg"

// garbageKeywords is the domain vocabulary a readable bulletin must hit at
// least twice. Image-based PDFs whose extraction yields noise virtually
// never contain two of these.
var garbageKeywords = []string{
	"rice", "price", "commodity", "peso", "pork", "chicken", "fish", "beef",
}

// readablePunct is the punctuation and currency set counted as readable
// alongside letters, digits, and whitespace.
const readablePunct = ".,/()-₱"

// Parse converts one bulletin document into a ParseResult. It is a pure
// function of its input: parsing the same Document twice yields identical
// results. A document that fails the garbage checks is rejected before any
// structural parsing; an unexpected panic during the scan is reported as
// failed_error, keeping any records already accumulated.
func Parse(doc types.Document) types.ParseResult {
	result := types.ParseResult{
		Date:   doc.Date,
		Source: doc.Source,
	}

	if strings.TrimSpace(doc.Text) == "" {
		result.Method = types.MethodFailedEmpty
		result.Errors = append(result.Errors, "no text extracted: likely image-based PDF")
		return result
	}

	if isGarbage(doc.Text) {
		result.Method = types.MethodFailedGarbage
		result.Errors = append(result.Errors, "extracted text appears to be garbage: likely image-based PDF")
		return result
	}

	if result.Date == "" {
		result.Date = dateFromText(doc.Text)
	}

	records, scanErr := scanLines(doc.Text)
	result.Commodities = records
	if scanErr != nil {
		result.Method = types.MethodFailedError
		result.Errors = append(result.Errors, scanErr.Error())
		return result
	}

	result.Method = types.MethodText
	return result
}

// isGarbage reports whether extracted text is unusable: too short, mostly
// unreadable characters, or missing the domain vocabulary.
func isGarbage(text string) bool {
	if len(strings.TrimSpace(text)) < 50 {
		return true
	}

	var readable, total int
	for _, r := range text {
		total++
		if isAlnum(r) || isSpace(r) || strings.ContainsRune(readablePunct, r) {
			readable++
		}
	}
	if total > 0 && float64(readable)/float64(total) < 0.4 {
		return true
	}

	lower := strings.ToLower(text)
	var found int
	for _, k := range garbageKeywords {
		if strings.Contains(lower, k) {
			found++
		}
	}
	return found < 2
}

func isAlnum(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

// scanLines walks the document's lines once, classifying each and parsing
// candidate data lines into records. The current category is an explicit
// accumulator updated by header lines and attached to every record parsed
// after it. A panic anywhere in the scan is converted to an error so one
// malformed document cannot take down a batch.
func scanLines(text string) (records []types.CommodityRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("line scan aborted: %v", r)
		}
	}()

	lines := strings.Split(text, "\n")
	var category *string

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || isPageNoise(line) {
			continue
		}

		if cat, ok := detectCategory(line); ok {
			category = &cat
			continue
		}

		if isSkipLine(line) {
			continue
		}

		prev := ""
		if i > 0 {
			prev = strings.TrimSpace(lines[i-1])
		}
		if rec, ok := parseRecord(line, prev, category); ok {
			records = append(records, rec)
		}
	}

	return records, nil
}
