package modules

import (
	"context"
	"dupguard/internal/core/errors"
)

// DependencySource lists the direct (not transitive) dependencies of a module.
type DependencySource interface {
	Dependencies(m Module) ([]Module, error)
}

// Resolver computes the transitive dependency closure of a root module.
type Resolver struct {
	source      DependencySource
	includeRoot bool
}

func NewResolver(source DependencySource, includeRoot bool) *Resolver {
	return &Resolver{source: source, includeRoot: includeRoot}
}

// Closure walks dependency edges breadth-first from root, visiting every
// module once even when the graph has cycles. Direct dependencies are
// visited in ID order so the closure order is reproducible. The root is
// part of the result only when the resolver was built with includeRoot.
func (r *Resolver) Closure(ctx context.Context, root Module) ([]Module, error) {
	visited := map[string]bool{root.ID: true}
	queue := []Module{root}
	var out []Module
	if r.includeRoot {
		out = append(out, root)
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		curr := queue[0]
		queue = queue[1:]

		deps, err := r.source.Dependencies(curr)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeInternal, "list module dependencies"),
				errors.CtxModule, curr.ID,
			)
		}
		next := append([]Module(nil), deps...)
		SortByID(next)

		for _, dep := range next {
			if visited[dep.ID] {
				continue
			}
			visited[dep.ID] = true
			out = append(out, dep)
			queue = append(queue, dep)
		}
	}

	return out, nil
}
