// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package canonical merges the noisy commodity identities accumulated by
// parsing into a fixed vocabulary of real commodities. Extraction noise
// (spelling variants, stray row numbers, leaked header fragments) produces
// many persisted identities for the same real-world good; this package
// matches them against a static rule table, rewrites their price history
// onto one canonical identity per rule, and deletes the rest.
package canonical

import (
	_ "embed"
	"fmt"

	"go.yaml.in/yaml/v3"
)

//go:embed rules.yaml
var rulesData []byte

// Rule defines one canonical commodity and the name patterns that map
// noisy identities onto it. The table is static configuration, not derived
// from data.
type Rule struct {
	Name          string   `yaml:"name"`
	Category      string   `yaml:"category"`
	Specification *string  `yaml:"specification"`
	Patterns      []string `yaml:"patterns"`
}

// LoadRules parses the embedded rule table. It rejects tables with
// duplicate (name, specification) pairs, which would collide with the
// store's commodity uniqueness key during the merge.
func LoadRules() ([]Rule, error) {
	var rules []Rule
	if err := yaml.Unmarshal(rulesData, &rules); err != nil {
		return nil, fmt.Errorf("parsing canonical rules: %w", err)
	}

	seen := make(map[string]string, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("canonical rule with empty name")
		}
		key := r.Name + "\x00"
		if r.Specification != nil {
			key += *r.Specification
		}
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("canonical rules %q and %q share a (name, specification) pair", prev, r.Name)
		}
		seen[key] = r.Name
	}
	return rules, nil
}
