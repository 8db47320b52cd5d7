package graph

import "github.com/cadi-dev/cadi/internal/cadierrors"

type color int

const (
	white color = iota
	gray
	black
)

// DetectCycle runs a white/gray/black DFS over the DEPENDS_ON subgraph
// rooted at every node, returning the first cycle found as a chunk-id path.
// Used by the resolver at build/resolve time; edge creation itself never
// refuses a cycle.
func (v *View) DetectCycle() ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	adjacency := v.outByType[DependsOn]
	colors := map[string]color{}
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		colors[id] = gray
		stack = append(stack, id)
		for _, e := range adjacency[id] {
			switch colors[e.To] {
			case white:
				if cyc := visit(e.To); cyc != nil {
					return cyc
				}
			case gray:
				cycle := append([]string{}, stack...)
				cycle = append(cycle, e.To)
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		colors[id] = black
		return nil
	}

	for id := range adjacency {
		if colors[id] == white {
			if cyc := visit(id); cyc != nil {
				return cyc, cadierrors.New(cadierrors.CycleDetected, "DEPENDS_ON cycle detected")
			}
		}
	}
	return nil, nil
}
