// Package localstemma implements the per-variation-unit directed acyclic
// graph over reading identifiers (§4.1) and its reflexive-transitive
// closure.
//
// Construction applies two transforms before computing the closure:
// trivial-collapse rewrites edge endpoints through a canonical map (folding
// orthographic/defective sub-variants into their parent reading), and
// split-merge adds bidirectional edges between RIDs that are surface-
// identical variants tagged "split". The closure itself is computed with a
// fixed k→i→j loop order over a dense boolean adjacency matrix, the same
// deterministic accumulation order used for all-pairs closure problems
// elsewhere in the corpus (Floyd–Warshall-style fixpoint) — appropriate
// here because local stemmata are tiny (spec.md: "typically fewer than a
// dozen readings per unit").
package localstemma

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownVertex indicates an edge referenced a RID absent from the
// vertex set.
var ErrUnknownVertex = errors.New("localstemma: edge references unknown vertex")

// Edge is a directed prior→posterior pair over reading identifiers.
type Edge struct {
	Prior     string
	Posterior string
}

// LocalStemma is the editor-supplied DAG over one variation unit's readings,
// plus its materialized closure.
type LocalStemma struct {
	label string

	vertices map[string]struct{} // non-dropped RIDs after collapse
	dropped  map[string]struct{}
	edges    []Edge // after trivial-collapse and split-merge, self-loops discarded

	index   map[string]int // RID -> dense matrix row/col, only over vertices
	order   []string       // dense index -> RID, sorted for determinism
	closure [][]bool       // closure[i][j] == true iff order[i] is equal-or-prior to order[j]
}

// Build constructs a LocalStemma from a parsed vertex/edge list, a
// trivial-collapse map (trivial RID -> canonical RID), a set of split pairs,
// and a set of dropped (ambiguous) RIDs.
//
// trivialToCanonical may be nil or partial; any RID absent from it is its
// own canonical form. splitPairs entries {r, r'} cause bidirectional edges
// r↔r' to be added after collapse, per spec.md §3 "Split-merge". dropped
// RIDs are excluded from vertices and from the closure; edges incident to a
// dropped RID are discarded.
func Build(label string, vertexIDs []string, rawEdges []Edge, trivialToCanonical map[string]string, splitPairs [][2]string, dropped map[string]struct{}) (*LocalStemma, error) {
	if dropped == nil {
		dropped = map[string]struct{}{}
	}

	canon := func(rid string) string {
		if c, ok := trivialToCanonical[rid]; ok {
			return c
		}
		return rid
	}

	vertices := make(map[string]struct{})
	for _, v := range vertexIDs {
		if _, isDropped := dropped[v]; isDropped {
			continue
		}
		vertices[canon(v)] = struct{}{}
	}

	var edges []Edge
	seen := make(map[Edge]struct{})
	addEdge := func(e Edge) error {
		if e.Prior == e.Posterior {
			return nil // self-loop discarded (trivial-collapse may introduce these)
		}
		if _, ok := vertices[e.Prior]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownVertex, e.Prior)
		}
		if _, ok := vertices[e.Posterior]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownVertex, e.Posterior)
		}
		if _, dup := seen[e]; dup {
			return nil
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
		return nil
	}

	for _, e := range rawEdges {
		prior, posterior := canon(e.Prior), canon(e.Posterior)
		if _, dp := dropped[e.Prior]; dp {
			continue
		}
		if _, dp := dropped[e.Posterior]; dp {
			continue
		}
		if err := addEdge(Edge{Prior: prior, Posterior: posterior}); err != nil {
			return nil, err
		}
	}

	for _, pair := range splitPairs {
		a, b := canon(pair[0]), canon(pair[1])
		if _, dp := dropped[pair[0]]; dp {
			continue
		}
		if _, dp := dropped[pair[1]]; dp {
			continue
		}
		if err := addEdge(Edge{Prior: a, Posterior: b}); err != nil {
			return nil, err
		}
		if err := addEdge(Edge{Prior: b, Posterior: a}); err != nil {
			return nil, err
		}
	}

	ls := &LocalStemma{
		label:    label,
		vertices: vertices,
		dropped:  dropped,
		edges:    edges,
	}
	ls.computeClosure()
	return ls, nil
}

// computeClosure materializes the reflexive-transitive closure over
// ls.vertices using a dense n×n boolean matrix and a deterministic k→i→j
// fixpoint pass: closure[i][j] is set true whenever closure[i][k] and
// closure[k][j] both hold, for every intermediate k. Bounded by the vertex
// count per spec.md §4.1 ("implementations should bound the closure loop by
// the vertex count") — no separate cycle check is required since this
// fixpoint terminates in exactly one O(n) sweep per k regardless of input
// shape.
func (ls *LocalStemma) computeClosure() {
	order := make([]string, 0, len(ls.vertices))
	for v := range ls.vertices {
		order = append(order, v)
	}
	sort.Strings(order)
	ls.order = order

	n := len(order)
	index := make(map[string]int, n)
	for i, v := range order {
		index[v] = i
	}
	ls.index = index

	closure := make([][]bool, n)
	for i := range closure {
		closure[i] = make([]bool, n)
		closure[i][i] = true // reflexive
	}
	for _, e := range ls.edges {
		closure[index[e.Prior]][index[e.Posterior]] = true
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !closure[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if closure[k][j] {
					closure[i][j] = true
				}
			}
		}
	}
	ls.closure = closure
}

// IsEqualOrPrior reports whether (a, b) is in the closure: a is equal or
// prior to b. Unknown or dropped RIDs are never related to anything.
// Complexity: O(1).
func (ls *LocalStemma) IsEqualOrPrior(a, b string) bool {
	ia, ok := ls.index[a]
	if !ok {
		return false
	}
	ib, ok := ls.index[b]
	if !ok {
		return false
	}
	return ls.closure[ia][ib]
}

// Label returns the stemma's display label.
func (ls *LocalStemma) Label() string { return ls.label }

// Vertices returns the non-dropped RIDs, sorted ascending.
func (ls *LocalStemma) Vertices() []string {
	out := make([]string, len(ls.order))
	copy(out, ls.order)
	return out
}

// Edges returns the post-collapse, post-merge edge set.
func (ls *LocalStemma) Edges() []Edge {
	out := make([]Edge, len(ls.edges))
	copy(out, ls.edges)
	return out
}

// IsDropped reports whether rid was excluded from the stemma as ambiguous.
func (ls *LocalStemma) IsDropped(rid string) bool {
	_, ok := ls.dropped[rid]
	return ok
}
