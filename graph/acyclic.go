package graph

import "fmt"

// visitState mirrors the three-color DFS marking used for cycle detection:
// White (unvisited), Gray (on the current recursion stack), Black (done).
type visitState int

const (
	white visitState = iota
	gray
	black
)

// HasCycle reports whether g contains a directed cycle, via three-color DFS
// back-edge detection: a Gray→Gray edge during traversal witnesses a cycle
// closing through the current path. Used to verify global-stemma
// acyclicity (§8 invariant 9), which the posterior>prior asymmetry plus
// deterministic tie-breaking in package witness is expected to guarantee.
func (g *Graph) HasCycle() (bool, error) {
	verts := g.Vertices()
	state := make(map[string]visitState, len(verts))

	var visit func(id string) (bool, error)
	visit = func(id string) (bool, error) {
		state[id] = gray
		nbrs, err := g.OutNeighbors(id)
		if err != nil {
			return false, fmt.Errorf("graph: HasCycle: %w", err)
		}
		for _, nbr := range nbrs {
			switch state[nbr] {
			case gray:
				return true, nil
			case white:
				cyclic, err := visit(nbr)
				if err != nil {
					return false, err
				}
				if cyclic {
					return true, nil
				}
			}
		}
		state[id] = black
		return false, nil
	}

	for _, v := range verts {
		if state[v.ID] == white {
			cyclic, err := visit(v.ID)
			if err != nil {
				return false, err
			}
			if cyclic {
				return true, nil
			}
		}
	}
	return false, nil
}
