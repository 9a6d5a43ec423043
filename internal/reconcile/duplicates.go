package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"fieldstock-api/internal/model"
)

// ErrKeeperNotInGroup is returned when the requested keeper ID does not
// belong to the duplicate group being merged. A caller request error, not
// a data problem.
var ErrKeeperNotInGroup = errors.New("keeper is not in the duplicate group")

// NormalizeName returns the matching key for an item name: trimmed and
// lower-cased. Exact equality on this key is the only linking rule in this
// package; fuzzy matching belongs to the scanner search, not here.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindDuplicates partitions items into groups that share a normalized name.
// Only groups with two or more members are returned. Group order and
// within-group order follow first occurrence in the input. Groups are a
// snapshot; any merge invalidates them.
func FindDuplicates(items []model.Item) [][]model.Item {
	byKey := make(map[string][]model.Item)
	var order []string

	for _, item := range items {
		key := NormalizeName(item.Name)
		if key == "" {
			continue
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], item)
	}

	var groups [][]model.Item
	for _, key := range order {
		if group := byKey[key]; len(group) >= 2 {
			groups = append(groups, group)
		}
	}
	return groups
}

// MergeKeepingTotal merges a duplicate group into the chosen keeper.
//
// The keeper supplies identity (ID, CreatedAt). The merged quantity is the
// sum over the whole group: duplicates are double-counted stock being
// consolidated, not copies to discard. Optional fields keep the keeper's
// value when present, otherwise take the first non-empty value in group
// order. The returned IDs are the non-keeper records the caller must delete.
func MergeKeepingTotal(group []model.Item, keeperID string) (model.Item, []string, error) {
	keeperIdx := -1
	for i, item := range group {
		if item.ID == keeperID {
			keeperIdx = i
			break
		}
	}
	if keeperIdx < 0 {
		return model.Item{}, nil, fmt.Errorf("keeper %s: %w", keeperID, ErrKeeperNotInGroup)
	}

	merged := group[keeperIdx]
	removeIDs := make([]string, 0, len(group)-1)

	total := 0
	for _, item := range group {
		total += item.Quantity
		if item.ID != keeperID {
			removeIDs = append(removeIDs, item.ID)
		}
	}
	merged.Quantity = total

	fillMissingFields(&merged, group)
	return merged, removeIDs, nil
}

// MergeResettingToZero is the bulk auto-merge policy: the first group member
// is the keeper and the merged quantity is forced to 0 no matter what the
// members held. Used after supplier re-imports where on-hand counts are
// untrustworthy and get recounted. Distinct from MergeKeepingTotal on
// purpose; do not fold the two together.
func MergeResettingToZero(group []model.Item) (model.Item, []string) {
	if len(group) == 0 {
		return model.Item{}, nil
	}

	merged := group[0]
	merged.Quantity = 0

	removeIDs := make([]string, 0, len(group)-1)
	for _, item := range group[1:] {
		removeIDs = append(removeIDs, item.ID)
	}

	fillMissingFields(&merged, group)
	return merged, removeIDs
}

// fillMissingFields copies the first non-empty optional field from the group
// into merged, in group order, without overwriting anything merged already
// has.
func fillMissingFields(merged *model.Item, group []model.Item) {
	for _, item := range group {
		if item.ID == merged.ID {
			continue
		}
		if merged.UnitPrice == nil && item.UnitPrice != nil {
			price := *item.UnitPrice
			merged.UnitPrice = &price
		}
		if merged.Barcode == "" && item.Barcode != "" {
			merged.Barcode = item.Barcode
		}
		if merged.Description == "" && item.Description != "" {
			merged.Description = item.Description
		}
	}
}
