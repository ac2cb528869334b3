// Package modules models the host build's module graph and computes the
// transitive dependency closure that a duplicate scan covers.
package modules

import "sort"

// Module is a node in the host dependency graph. ID is the identity used for
// equality and dedup (for Gradle builds, the project path such as ":app").
type Module struct {
	ID  string
	Dir string
}

func (m Module) String() string {
	return m.ID
}

// SortByID orders modules by ID in place.
func SortByID(mods []Module) {
	sort.Slice(mods, func(i, j int) bool {
		return mods[i].ID < mods[j].ID
	})
}

// IDs returns the module IDs in slice order.
func IDs(mods []Module) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.ID
	}
	return out
}
