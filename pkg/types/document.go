// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared across pipeline stages.
package types

// ParseMethod records how (or whether) a bulletin's text was parsed.
type ParseMethod string

const (
	// MethodText means the bulletin text was parsed structurally.
	MethodText ParseMethod = "text"
	// MethodFailedEmpty means no text was present at all.
	MethodFailedEmpty ParseMethod = "failed_empty"
	// MethodFailedGarbage means the text failed the readability checks,
	// typically an image-based PDF whose extraction produced noise.
	MethodFailedGarbage ParseMethod = "failed_garbage"
	// MethodFailedError means the scan aborted on an unexpected failure.
	MethodFailedError ParseMethod = "failed_error"
)

// Document is one bulletin instance handed to the extraction engine.
// It exists only for the duration of a parse call.
type Document struct {
	// Text is the raw text extracted from the bulletin.
	Text string

	// Date is the bulletin date in YYYY-MM-DD form, empty when unknown.
	// When empty the parser attempts to recover it from the text.
	Date string

	// Source identifies the originating file.
	Source string
}

// CommodityRecord is a single parsed price line, prior to persistence.
type CommodityRecord struct {
	// Category is the bulletin section the line appeared under, nil when
	// no category header preceded it.
	Category *string `json:"category" yaml:"category"`

	Name string `json:"name" yaml:"name"`

	// Specification is the size/origin/state qualifier, nil when the line
	// carried none.
	Specification *string `json:"specification" yaml:"specification"`

	// Price is nil when the bulletin explicitly reported "n/a".
	Price *float64 `json:"price" yaml:"price"`

	Unit string `json:"unit" yaml:"unit"`
}

// ParseResult is the outcome of parsing one bulletin. It is immutable
// after creation; parsing the same Document twice yields identical results.
type ParseResult struct {
	Date        string            `json:"date" yaml:"date"`
	Source      string            `json:"source" yaml:"source"`
	Method      ParseMethod       `json:"parse_method" yaml:"parse_method"`
	Commodities []CommodityRecord `json:"commodities" yaml:"commodities"`
	Errors      []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// BulletinLink is one discovered bulletin PDF link from the price
// monitoring index page.
type BulletinLink struct {
	URL  string `json:"url" yaml:"url"`
	Text string `json:"text" yaml:"text"`

	// Type classifies the bulletin: daily, weekly, or other.
	Type string `json:"type" yaml:"type"`

	// Date is the bulletin date recovered from the link, empty when the
	// link text and URL carry none.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
}
