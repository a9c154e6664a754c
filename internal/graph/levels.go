package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Level is one set of modules whose internal dependencies are all satisfied
// by earlier levels. Members are sorted for deterministic output; order
// within a level carries no scheduling meaning.
type Level []string

// CycleWarning reports that the remaining modules could not be leveled
// because they form at least one dependency cycle among themselves. Per
// policy the members are placed together in one final level rather than
// failing the run: a shared root descriptor can legitimately anchor build
// order without being expressible as a clean DAG edge, and the external
// build tool's own reactor ordering gets a chance to sort the batch out.
type CycleWarning struct {
	Members []string
}

func (w *CycleWarning) String() string {
	return fmt.Sprintf("dependency cycle detected among %s; building them together in one final level",
		strings.Join(w.Members, ", "))
}

// UnknownModulesError reports requested names that do not exist in the graph.
// This is a configuration error: the run must abort before scheduling.
type UnknownModulesError struct {
	Names []string
}

func (e *UnknownModulesError) Error() string {
	return fmt.Sprintf("unknown module(s): %s", strings.Join(e.Names, ", "))
}

// ComputeLevels performs a Kahn-style level decomposition of g restricted to
// the requested module set. Dependencies outside the requested set are
// treated as already satisfied. Each module lands at the earliest level its
// dependencies allow, so the union of levels partitions the requested set.
//
// If the requested subgraph contains a cycle, the modules still unleveled
// when progress stops are returned as one final combined level together with
// a non-nil CycleWarning. The only error condition is a requested name that
// is not a graph node.
func ComputeLevels(requested []string, g Graph) ([]Level, *CycleWarning, error) {
	requestedSet := make(map[string]bool, len(requested))
	var unknown []string
	for _, name := range requested {
		if _, ok := g[name]; !ok {
			unknown = append(unknown, name)
			continue
		}
		requestedSet[name] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, nil, &UnknownModulesError{Names: unknown}
	}

	leveled := make(map[string]bool, len(requestedSet))
	var levels []Level

	for len(leveled) < len(requestedSet) {
		var next Level
		for name := range requestedSet {
			if leveled[name] {
				continue
			}
			ready := true
			for dep := range g[name] {
				if requestedSet[dep] && !leveled[dep] {
					ready = false
					break
				}
			}
			if ready {
				next = append(next, name)
			}
		}

		if len(next) == 0 {
			// No progress with modules remaining: the rest form a cycle.
			var remaining Level
			for name := range requestedSet {
				if !leveled[name] {
					remaining = append(remaining, name)
				}
			}
			sort.Strings(remaining)
			levels = append(levels, remaining)
			return levels, &CycleWarning{Members: remaining}, nil
		}

		sort.Strings(next)
		for _, name := range next {
			leveled[name] = true
		}
		levels = append(levels, next)
	}

	return levels, nil, nil
}
