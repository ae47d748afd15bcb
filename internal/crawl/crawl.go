// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl discovers bulletin PDF links on the price monitoring
// index page and records them in a manifest for the fetch stage.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/price-engine/pkg/types"
)

const manifestFile = "links.yaml"

// Manifest groups the discovered bulletin links by type. Daily links are
// the parse pipeline's input; weekly and other links are recorded so a
// re-crawl can show what the index offers without downloading it.
type Manifest struct {
	Daily  []types.BulletinLink `yaml:"daily"`
	Weekly []types.BulletinLink `yaml:"weekly"`
	Other  []types.BulletinLink `yaml:"other,omitempty"`
}

// Total returns the number of links across all types.
func (m Manifest) Total() int {
	return len(m.Daily) + len(m.Weekly) + len(m.Other)
}

// Crawl fetches the index page, extracts every PDF anchor, classifies it,
// and returns the manifest. Daily links carry a bulletin date when one can
// be recovered from the link text or URL.
func Crawl(ctx context.Context, client *http.Client, cfg types.CrawlConfig, w io.Writer) (Manifest, error) {
	fmt.Fprintf(w, "fetching index: %s\n", cfg.IndexURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.IndexURL, nil)
	if err != nil {
		return Manifest{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("fetching index page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Manifest{}, fmt.Errorf("HTTP %d from %s", resp.StatusCode, cfg.IndexURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Manifest{}, fmt.Errorf("parsing index page: %w", err)
	}

	manifest := Classify(ExtractPDFLinks(doc))
	fmt.Fprintf(w, "found: %d daily, %d weekly, %d other\n",
		len(manifest.Daily), len(manifest.Weekly), len(manifest.Other))
	return manifest, nil
}

// ExtractPDFLinks returns every anchor on the page whose href ends in .pdf.
func ExtractPDFLinks(doc *goquery.Document) []types.BulletinLink {
	var links []types.BulletinLink
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return
		}
		links = append(links, types.BulletinLink{
			URL:  href,
			Text: strings.TrimSpace(s.Text()),
		})
	})
	return links
}

// Classify sorts raw links into daily, weekly, and other buckets. Weekly
// wins over daily when both keywords appear. Links with no keyword but a
// recoverable date are treated as daily, since the index mixes unlabeled
// daily bulletins into its archives.
func Classify(links []types.BulletinLink) Manifest {
	var m Manifest
	for _, link := range links {
		urlLower := strings.ToLower(link.URL)
		textLower := strings.ToLower(link.Text)

		switch {
		case strings.Contains(urlLower, "weekly") || strings.Contains(textLower, "weekly"):
			link.Type = "weekly"
			m.Weekly = append(m.Weekly, link)
		case strings.Contains(urlLower, "daily") || strings.Contains(urlLower, "dpi") ||
			strings.Contains(urlLower, "price-monitoring"):
			link.Type = "daily"
			link.Date = ParseLinkDate(link.Text, link.URL)
			m.Daily = append(m.Daily, link)
		default:
			if date := ParseLinkDate(link.Text, link.URL); date != "" {
				link.Type = "daily"
				link.Date = date
				m.Daily = append(m.Daily, link)
			} else {
				link.Type = "other"
				m.Other = append(m.Other, link)
			}
		}
	}
	return m
}

// monthNumbers includes a misspelling the index actually publishes.
// Ordered so pattern matching is deterministic.
var monthNumbers = []struct{ name, num string }{
	{"january", "01"}, {"february", "02"}, {"march", "03"}, {"april", "04"},
	{"may", "05"}, {"june", "06"}, {"july", "07"}, {"august", "08"},
	{"september", "09"}, {"october", "10"}, {"november", "11"}, {"december", "12"},
	{"marhc", "03"},
}

var (
	textDatePatterns = buildMonthPatterns(`%s\s+(\d{1,2}),?\s*(\d{4})`)
	urlDatePatterns  = buildMonthPatterns(`%s-(\d{1,2})-(\d{4})`)
	urlStemDate      = regexp.MustCompile(`(?i)(\d{2})(\d{2})(\d{4})-PRICE`)
)

type monthPattern struct {
	num string
	re  *regexp.Regexp
}

func buildMonthPatterns(format string) []monthPattern {
	patterns := make([]monthPattern, 0, len(monthNumbers))
	for _, m := range monthNumbers {
		patterns = append(patterns, monthPattern{
			num: m.num,
			re:  regexp.MustCompile(fmt.Sprintf(format, m.name)),
		})
	}
	return patterns
}

// ParseLinkDate recovers a bulletin date (YYYY-MM-DD) from the link text
// ("February 8, 2026") or, failing that, from the URL: either an
// MMDDYYYY-PRICE stem or a month-day-year slug. Returns "" when neither
// form is present.
func ParseLinkDate(text, url string) string {
	lowText := strings.ToLower(text)
	for _, p := range textDatePatterns {
		if m := p.re.FindStringSubmatch(lowText); m != nil {
			return formatDate(m[2], p.num, m[1])
		}
	}

	if m := urlStemDate.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], m[1], m[2])
	}

	lowURL := strings.ToLower(url)
	for _, p := range urlDatePatterns {
		if m := p.re.FindStringSubmatch(lowURL); m != nil {
			return formatDate(m[2], p.num, m[1])
		}
	}
	return ""
}

func formatDate(year, month, day string) string {
	d, err := strconv.Atoi(day)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s-%s-%02d", year, month, d)
}

// WriteManifest saves the manifest as YAML under the bulletins directory.
func WriteManifest(m Manifest, bulletinsDir string) (string, error) {
	if err := os.MkdirAll(bulletinsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating bulletins directory: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(bulletinsDir, manifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(bulletinsDir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(bulletinsDir, manifestFile))
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
