// Package textualflow implements the per-variation-unit flow graph
// construction of spec.md §4.5: for each witness, find its textual-flow
// ancestor under the connectivity rule, and the three diagram projections
// built over the resulting graph.
package textualflow

import (
	"errors"
	"sort"

	"github.com/open-cbgm/cbgm-go/apparatus"
	"github.com/open-cbgm/cbgm-go/graph"
	"github.com/open-cbgm/cbgm-go/witness"
)

// ErrUnknownWitness indicates Build was given a list_wit entry with no
// corresponding precomputed Witness.
var ErrUnknownWitness = errors.New("textualflow: witness not precomputed")

// FlowType classifies a textual-flow edge (spec.md §3 "TextualFlow").
type FlowType string

const (
	FlowEqual     FlowType = "EQUAL"
	FlowAmbiguous FlowType = "AMBIGUOUS"
	FlowChange    FlowType = "CHANGE"
	FlowLoss      FlowType = "LOSS"
	// FlowNone classifies a witness with no flow ancestor; Build emits no
	// edge for such a witness, so no edge carries this type.
	FlowNone FlowType = "NONE"
)

// Build constructs the flow graph for one variation unit: one vertex per
// witness carrying its support at this unit, and at most one incoming edge
// per witness naming its flow ancestor, rank, and FlowType, per the
// algorithm in spec.md §4.5.
func Build(u *apparatus.VariationUnit, witnesses map[string]*witness.Witness, listWit []string) (*graph.Graph, error) {
	g := graph.New()

	included := make(map[string]struct{}, len(listWit))
	for _, wid := range listWit {
		included[wid] = struct{}{}
	}

	for _, wid := range listWit {
		support, _ := u.SupportFor(wid)
		if err := g.AddVertex(wid, map[string]any{"support": sortedKeys(support)}); err != nil {
			return nil, err
		}
	}

	bound := u.Connectivity()

	for _, wid := range listWit {
		w, ok := witnesses[wid]
		if !ok {
			return nil, ErrUnknownWitness
		}
		// A witness's potential ancestors are ranked over its whole
		// apparatus, which may include witnesses listWit excludes (e.g.
		// below the extancy threshold and so never added as a vertex
		// above); restricting to listWit here keeps every chosen flow
		// ancestor a real graph vertex without renumbering its rank
		// relative to the other candidates listWit does include.
		ancestors := filterAncestors(w.PotentialAncestors(), included)
		if len(ancestors) == 0 {
			continue // initial text: no flow edge
		}

		wSupport, wExtant := u.SupportFor(wid)

		if wExtant {
			if rank, ancestor, ok := firstAgreeingWithinBound(ancestors, bound, u, wSupport); ok {
				ftype := FlowAmbiguous
				if len(wSupport) == 1 {
					ftype = FlowEqual
				}
				if _, err := g.AddEdge(ancestor, wid, rank, string(ftype), nil); err != nil {
					return nil, err
				}
				continue
			}
		}

		if rank, ancestor, ok := firstExtant(ancestors, u); ok {
			ftype := FlowLoss
			if wExtant {
				ftype = FlowChange
			}
			if _, err := g.AddEdge(ancestor, wid, rank, string(ftype), nil); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

// firstAgreeingWithinBound walks ancestors in rank order up to the
// connectivity bound, returning the first whose support at u shares a RID
// with wSupport.
func firstAgreeingWithinBound(ancestors []witness.Ancestor, bound int, u *apparatus.VariationUnit, wSupport map[string]struct{}) (int, string, bool) {
	for rank, a := range ancestors {
		if bound > 0 && rank >= bound {
			break
		}
		aSupport, aExtant := u.SupportFor(a.WID)
		if aExtant && intersects(wSupport, aSupport) {
			return rank, a.WID, true
		}
	}
	return 0, "", false
}

// firstExtant walks the full ranked ancestor list, ignoring the
// connectivity bound, returning the first ancestor extant at u.
func firstExtant(ancestors []witness.Ancestor, u *apparatus.VariationUnit) (int, string, bool) {
	for rank, a := range ancestors {
		if _, aExtant := u.SupportFor(a.WID); aExtant {
			return rank, a.WID, true
		}
	}
	return 0, "", false
}

// filterAncestors restricts ancestors to those present in included,
// preserving relative order (and so their rank positions) since exclusion
// never changes the relative perc/eq/list_wit ordering between two
// included candidates.
func filterAncestors(ancestors []witness.Ancestor, included map[string]struct{}) []witness.Ancestor {
	out := make([]witness.Ancestor, 0, len(ancestors))
	for _, a := range ancestors {
		if _, ok := included[a.WID]; ok {
			out = append(out, a)
		}
	}
	return out
}

func intersects(a, b map[string]struct{}) bool {
	for r := range a {
		if _, ok := b[r]; ok {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
