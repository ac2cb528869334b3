// Package duplicates groups file paths by base filename and keeps the
// groups that collide.
package duplicates

import (
	"dupguard/internal/shared/util"
	"fmt"
	"sort"
)

// Order selects how groups and their members are emitted.
type Order int

const (
	// OrderName sorts groups by base name and members by path, so output
	// does not depend on filesystem walk order.
	OrderName Order = iota
	// OrderFirstSeen keeps groups in first-occurrence order and members in
	// discovery order.
	OrderFirstSeen
)

// ParseOrder maps the config spelling to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "name":
		return OrderName, nil
	case "first-seen":
		return OrderFirstSeen, nil
	default:
		return OrderName, fmt.Errorf("unknown order %q", s)
	}
}

func (o Order) String() string {
	if o == OrderFirstSeen {
		return "first-seen"
	}
	return "name"
}

// Group is a base filename and every path that shares it. Reported groups
// always hold at least two paths.
type Group struct {
	Name  string   `json:"name"`
	Paths []string `json:"paths"`
}

// Find folds paths into base-name groups and returns the collisions.
// Base names compare as exact, case-sensitive strings. A path repeated in the
// input is counted once.
func Find(paths []string, order Order) []Group {
	index := make(map[string]int)
	var groups []Group
	seen := make(map[string]bool, len(paths))

	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true

		name := util.BaseName(p)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Paths = append(groups[i].Paths, p)
	}

	out := make([]Group, 0)
	for _, g := range groups {
		if len(g.Paths) > 1 {
			out = append(out, g)
		}
	}

	if order == OrderName {
		for _, g := range out {
			sort.Strings(g.Paths)
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].Name < out[j].Name
		})
	}
	return out
}

// Summary returns the number of groups and the total colliding paths.
func Summary(groups []Group) (names, paths int) {
	for _, g := range groups {
		paths += len(g.Paths)
	}
	return len(groups), paths
}

// Flatten lists every colliding path, group by group.
func Flatten(groups []Group) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g.Paths...)
	}
	return out
}
