// Package globalstemma implements the assembly of the directed graph over
// every witness's finalized substemma (spec.md §4.7): one vertex per WID,
// one edge v -> w for every v in w.stemma_ancestors, and the acyclicity
// check required of the result (§8 invariant 9).
package globalstemma

import (
	"errors"

	"github.com/open-cbgm/cbgm-go/graph"
	"github.com/open-cbgm/cbgm-go/witness"
)

// ErrCyclic indicates the assembled global stemma contains a cycle, which
// violates spec.md §8 invariant 9 and signals an upstream inconsistency in
// the finalized substemmata (e.g. a set-cover tie resolved asymmetrically
// across two witnesses).
var ErrCyclic = errors.New("globalstemma: assembled graph contains a cycle")

// Build assembles the global stemma from witnesses whose StemmaAncestors
// have already been finalized by the set-cover optimization pass. Returns
// ErrCyclic if the result is not acyclic.
func Build(listWit []string, witnesses map[string]*witness.Witness) (*graph.Graph, error) {
	g := graph.New()

	for _, wid := range listWit {
		if err := g.AddVertex(wid, nil); err != nil {
			return nil, err
		}
	}

	for _, wid := range listWit {
		w, ok := witnesses[wid]
		if !ok {
			continue
		}
		for _, ancestor := range w.StemmaAncestors() {
			if _, err := g.AddEdge(ancestor, wid, 0, "", nil); err != nil {
				return nil, err
			}
		}
	}

	cyclic, err := g.HasCycle()
	if err != nil {
		return nil, err
	}
	if cyclic {
		return nil, ErrCyclic
	}

	return g, nil
}
