// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canonical

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/price-engine/internal/store"
)

// tempMarker prefixes canonical commodities while their noisy sources are
// still live, keeping the (name, specification) uniqueness key clear of
// collisions until the sources are deleted. It is stripped at the end of
// the stage.
const tempMarker = "__canon__"

const canonicalUnit = "PHP/kg"

// RuleReport summarizes the merge outcome for one rule.
type RuleReport struct {
	Rule      string `json:"rule" yaml:"rule"`
	Matched   int    `json:"matched_noisy_count" yaml:"matched_noisy_count"`
	Merged    int    `json:"merged_price_count" yaml:"merged_price_count"`
	Conflicts int    `json:"conflicts_resolved" yaml:"conflicts_resolved"`
}

// Merge rewrites the store onto the canonical vocabulary: one commodity
// per rule with data, holding the union of its noisy sources' price
// history, with everything unmatched deleted. The whole stage runs in one
// write transaction and is applied fully or not at all; a store held by
// another writer fails the stage at BEGIN.
//
// Date/source collisions between two sources of the same rule are
// resolved deterministically: sources are processed in ascending commodity
// ID order and observations in ascending price ID order, so the
// earliest-inserted observation wins and later ones are dropped and
// counted. Running Merge twice in succession leaves the store unchanged:
// every canonical commodity re-matches its own rule and carries its own
// history over.
func Merge(ctx context.Context, s *store.Store, rules []Rule, w io.Writer) ([]RuleReport, error) {
	var reports []RuleReport

	err := s.ExclusiveTx(ctx, func(tx *store.Tx) error {
		commodities, err := tx.ListCommodities(ctx)
		if err != nil {
			return err
		}

		matched, noise := Match(rules, commodities)

		type created struct {
			id   int64
			name string
		}
		var canonicals []created

		for i, rule := range rules {
			group := matched[i]
			if len(group) == 0 {
				continue
			}
			sort.Slice(group, func(a, b int) bool { return group[a].ID < group[b].ID })

			prices := make([][]store.Price, len(group))
			var total int
			for j, c := range group {
				prices[j], err = tx.ListPricesForCommodity(ctx, c.ID)
				if err != nil {
					return err
				}
				total += len(prices[j])
			}
			// A rule that matched identities but holds no observations
			// creates no canonical entity.
			if total == 0 {
				continue
			}

			category := rule.Category
			canonID, err := tx.UpsertCommodity(ctx, tempMarker+rule.Name, &category, rule.Specification, canonicalUnit)
			if err != nil {
				return err
			}
			canonicals = append(canonicals, created{id: canonID, name: rule.Name})

			report := RuleReport{Rule: rule.Name, Matched: len(group)}
			for j := range group {
				for _, p := range prices[j] {
					err := tx.ReassignPrice(ctx, p.ID, canonID)
					switch {
					case err == nil:
						report.Merged++
					case store.IsUniqueViolation(err):
						// Two sources reported this date and source type;
						// the first reassignment already holds the slot.
						if err := tx.DeletePrice(ctx, p.ID); err != nil {
							return err
						}
						report.Conflicts++
					default:
						return fmt.Errorf("reassigning price %d: %w", p.ID, err)
					}
				}
			}

			fmt.Fprintf(w, "merged  %-35s %3d variants, %5d prices, %d conflicts\n",
				rule.Name, report.Matched, report.Merged, report.Conflicts)
			reports = append(reports, report)
		}

		// Every pre-existing identity is retired: matched sources are empty
		// now, unmatched ones are noise and lose their observations too.
		for _, c := range commodities {
			orphaned, err := tx.ListPricesForCommodity(ctx, c.ID)
			if err != nil {
				return err
			}
			for _, p := range orphaned {
				if err := tx.DeletePrice(ctx, p.ID); err != nil {
					return err
				}
			}
			if err := tx.DeleteCommodity(ctx, c.ID); err != nil {
				return err
			}
		}

		for _, c := range canonicals {
			if err := tx.RenameCommodity(ctx, c.id, strings.TrimSpace(c.name)); err != nil {
				return err
			}
		}

		fmt.Fprintf(w, "\ncanonicalized: %d commodities kept, %d identities retired (%d unmatched noise)\n",
			len(canonicals), len(commodities), len(noise))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}
