package core

import (
	"sort"
)

var tierOrder = map[Tier]int{
	TierHigh:   0,
	TierMedium: 1,
	TierLow:    2,
}

// Rank sorts classified messages into presentation order: HIGH before MEDIUM
// before LOW, more recent first within a tier. The sort is stable so the
// order is fully deterministic for identical inputs. The input slice is not
// modified.
func Rank(items []Classified) []Classified {
	ranked := make([]Classified, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		ta := tierOrder[a.Classification.Tier]
		tb := tierOrder[b.Classification.Tier]
		if ta != tb {
			return ta < tb
		}
		return a.Message.Timestamp.After(b.Message.Timestamp)
	})

	return ranked
}

// FilterByTier keeps only messages of the given tier, preserving relative
// order.
func FilterByTier(items []Classified, tier Tier) []Classified {
	filtered := make([]Classified, 0, len(items))
	for _, item := range items {
		if item.Classification.Tier == tier {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
