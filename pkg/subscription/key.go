package subscription

import (
	"sort"
	"strings"
)

// TargetAll is the sentinel target scope meaning "all available devices".
// It is never merged with a concrete device identifier: a subscription
// for all devices and a subscription for one device are distinct keys
// even when their name sets are identical.
const TargetAll = "*"

// nameSeparator joins canonical name sets. Filter names come from the
// hub's naming rules and never contain control characters.
const nameSeparator = "\x1f"

// Key identifies a long-poll subscription: a target scope plus a filter
// name set. Keys are value types with map-key equality.
type Key struct {
	// Target is a device identifier, or TargetAll.
	Target string

	// Names is the canonical encoding of the filter name set: sorted,
	// deduplicated, separator-joined. Empty means "all names".
	Names string
}

// NewKey builds a key for the given target and filter names.
func NewKey(target string, names []string) Key {
	return Key{Target: target, Names: canonicalNames(names)}
}

// AllKey builds a key scoped to all devices.
func AllKey(names []string) Key {
	return NewKey(TargetAll, names)
}

// UpdateKey identifies a one-shot command-update subscription.
type UpdateKey struct {
	// Target is the device the command was sent to.
	Target string

	// CommandID is the hub-assigned command identifier.
	CommandID int64
}

// Pair is one (target, filter name) duplex subscription entry. An empty
// Name is the wildcard marker: all filters for the target.
type Pair struct {
	Target string
	Name   string
}

// canonicalNames produces a canonical encoding of a name set so that
// two subscribe calls with the same names in any order yield equal keys.
func canonicalNames(names []string) string {
	if len(names) == 0 {
		return ""
	}

	sorted := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	return strings.Join(sorted, nameSeparator)
}
