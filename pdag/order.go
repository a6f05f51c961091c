package pdag

import "sort"

// AssignOrder assigns each vertex a strict topological rank such that every
// child's order is strictly greater than its parent's, using
// the longest distance from the root over all paths — relaxed iteratively,
// Bellman-Ford style, since the PDAG is acyclic and shared subgraphs can be
// reached through parents at different depths. Vertices are then renumbered
// by (distance, index), so no two vertices share an order. This seeds the
// BDD variable ordering.
func AssignOrder(p *PDAG) {
	if p.Root == nil {
		return
	}
	order := make(map[int]int)
	order[p.Root.Index] = 0
	p.Root.Order = 0

	vertices := make([]Vertex, 0, len(p.Gates)+len(p.Variables))
	vertices = append(vertices, p.Root)
	for _, g := range p.Gates {
		if g != p.Root {
			vertices = append(vertices, g)
		}
	}
	for _, v := range p.Variables {
		vertices = append(vertices, v)
	}

	bound := len(vertices) + 1
	for iter := 0; iter < bound; iter++ {
		changed := false
		for _, v := range vertices {
			g, ok := v.(*Gate)
			if !ok {
				continue
			}
			parentOrder, ok := order[g.Index]
			if !ok {
				continue
			}
			for _, arg := range g.Args {
				childIdx := arg.Child.VertexIndex()
				want := parentOrder + 1
				if cur, ok := order[childIdx]; !ok || want > cur {
					order[childIdx] = want
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	ranked := make([]int, 0, len(order))
	for idx := range order {
		ranked = append(ranked, idx)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if order[ranked[i]] != order[ranked[j]] {
			return order[ranked[i]] < order[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	for rank, idx := range ranked {
		order[idx] = rank
	}

	for idx, o := range order {
		if g, ok := p.Gates[idx]; ok {
			g.Order = o
		}
		if v, ok := p.Variables[idx]; ok {
			v.Order = o
		}
	}
}
