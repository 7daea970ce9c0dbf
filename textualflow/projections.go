package textualflow

import (
	"github.com/open-cbgm/cbgm-go/graph"
)

// CompleteFlow returns the full flow graph unfiltered (spec.md §4.5
// "complete flow: all vertices and edges").
func CompleteFlow(g *graph.Graph) *graph.Graph { return g }

// CoherenceInAttestation builds the "coherence in attestation of reading r"
// projection: the primary set is every vertex whose support contains r;
// the secondary set adds ancestors of primary vertices that lie outside
// it. Edges are kept only when their descendant is in the primary set.
func CoherenceInAttestation(g *graph.Graph, rid string) (*graph.Graph, error) {
	primary := make(map[string]struct{})
	for _, v := range g.Vertices() {
		if supportHas(v, rid) {
			primary[v.ID] = struct{}{}
		}
	}

	secondary := make(map[string]struct{})
	for _, e := range g.Edges() {
		if _, isPrimary := primary[e.To]; isPrimary {
			if _, already := primary[e.From]; !already {
				secondary[e.From] = struct{}{}
			}
		}
	}

	out := graph.New()
	byID := make(map[string]*graph.Vertex)
	for _, v := range g.Vertices() {
		byID[v.ID] = v
	}
	for id := range primary {
		if err := out.AddVertex(id, byID[id].Style); err != nil {
			return nil, err
		}
	}
	for id := range secondary {
		if err := out.AddVertex(id, byID[id].Style); err != nil {
			return nil, err
		}
	}

	for _, e := range g.Edges() {
		if _, isPrimary := primary[e.To]; !isPrimary {
			continue
		}
		if _, err := out.AddEdge(e.From, e.To, e.Rank, e.Label, e.Style); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// CoherenceAtVariantPassages builds the "coherence at variant passages"
// projection: vertices are grouped by their single attested RID (a
// "cluster" style hint), restricted to vertices incident to a CHANGE edge;
// only CHANGE edges are drawn.
func CoherenceAtVariantPassages(g *graph.Graph) (*graph.Graph, error) {
	out := graph.New()
	byID := make(map[string]*graph.Vertex)
	for _, v := range g.Vertices() {
		byID[v.ID] = v
	}

	include := make(map[string]struct{})
	for _, e := range g.Edges() {
		if e.Label != string(FlowChange) {
			continue
		}
		include[e.From] = struct{}{}
		include[e.To] = struct{}{}
	}

	for id := range include {
		v := byID[id]
		style := make(map[string]any, len(v.Style)+1)
		for k, val := range v.Style {
			style[k] = val
		}
		if rid, ok := singleRID(v); ok {
			style["cluster"] = rid
		}
		if err := out.AddVertex(id, style); err != nil {
			return nil, err
		}
	}

	for _, e := range g.Edges() {
		if e.Label != string(FlowChange) {
			continue
		}
		if _, err := out.AddEdge(e.From, e.To, e.Rank, e.Label, e.Style); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func supportHas(v *graph.Vertex, rid string) bool {
	support, ok := v.Style["support"].([]string)
	if !ok {
		return false
	}
	for _, r := range support {
		if r == rid {
			return true
		}
	}
	return false
}

func singleRID(v *graph.Vertex) (string, bool) {
	support, ok := v.Style["support"].([]string)
	if !ok || len(support) != 1 {
		return "", false
	}
	return support[0], true
}
