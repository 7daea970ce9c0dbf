// Package diagram renders the four CBGM graph kinds named in spec.md §4 —
// local stemma, the three textual-flow projections, and the global stemma —
// to Graphviz DOT, and rasterizes DOT to SVG/PNG via goccy/go-graphviz. DOT
// emission is grounded on stacktower's pkg/render/nodelink/dot.go; the style
// hints (dashed lacunose vertices, double-bordered ambiguous ones, colored
// edges by FlowType) are grounded on original_source's print_graphs.cpp and
// textual_flow.cpp, which draw the same distinctions for the reference
// implementation's own .dot output.
package diagram

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/open-cbgm/cbgm-go/graph"
	"github.com/open-cbgm/cbgm-go/localstemma"
	"github.com/open-cbgm/cbgm-go/textualflow"
)

// LocalStemmaDOT renders a local stemma's DAG: one ellipse per non-dropped
// reading and one arrow per prior->posterior edge (print_graphs.cpp's
// local_stemma::to_dot). Readings dropped as ambiguous are not drawn, since
// ls.Vertices() does not list them.
func LocalStemmaDOT(ls *localstemma.LocalStemma) string {
	var buf bytes.Buffer
	buf.WriteString("digraph local_stemma {\n")
	buf.WriteString("\tnode [shape=ellipse];\n")
	fmt.Fprintf(&buf, "\tlabel [shape=box, label=%q];\n", ls.Label())

	for _, rid := range ls.Vertices() {
		attrs := []string{fmt.Sprintf("label=%q", rid)}
		if ls.IsDropped(rid) {
			attrs = append(attrs, "color=gray", "style=dashed")
		}
		fmt.Fprintf(&buf, "\t%q [%s];\n", rid, strings.Join(attrs, ", "))
	}

	for _, e := range ls.Edges() {
		fmt.Fprintf(&buf, "\t%q -> %q;\n", e.Prior, e.Posterior)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// TextualFlowDOT renders one variation unit's flow graph (or one of its
// projections from package textualflow): a plain-text label per witness
// attesting a single reading, a dashed grey ellipse if lacunose at this
// unit, a double-bordered ellipse if ambiguous; edges colored by FlowType as in
// textual_flow.cpp's textual_flow_to_dot (CHANGE blue, LOSS dashed grey,
// EQUAL/AMBIGUOUS black), labeled with their one-based connectivity rank
// when it is not direct (rank 0).
func TextualFlowDOT(g *graph.Graph, unitLabel string, connectivity int) string {
	var buf bytes.Buffer
	buf.WriteString("digraph textual_flow {\n")
	buf.WriteString("\tnode [shape=plaintext];\n")
	fmt.Fprintf(&buf, "\tlabel [shape=box, label=\"%s\\nCon=%d\"];\n", unitLabel, connectivity)

	for _, v := range g.Vertices() {
		support, _ := v.Style["support"].([]string)
		attrs := []string{fmt.Sprintf("label=%q", v.ID)}
		switch {
		case len(support) == 0:
			attrs = append(attrs, "color=gray", "shape=ellipse", "style=dashed")
		case len(support) > 1:
			attrs = append(attrs, "shape=ellipse", "peripheries=2")
		}
		fmt.Fprintf(&buf, "\t%q [%s];\n", v.ID, strings.Join(attrs, ", "))
	}

	for _, e := range g.Edges() {
		arrow := "->"
		attrs := []string{}
		if e.Rank > 0 {
			attrs = append(attrs, fmt.Sprintf("label=%q", fmt.Sprint(e.Rank+1)), "fontsize=10")
		}
		switch e.Label {
		case string(textualflow.FlowChange):
			attrs = append(attrs, "color=blue")
		case string(textualflow.FlowLoss):
			attrs = append(attrs, "color=gray", "style=dashed")
		default:
			attrs = append(attrs, "color=black")
		}
		fmt.Fprintf(&buf, "\t%q %s %q [%s];\n", e.From, arrow, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// GlobalStemmaDOT renders the assembled global stemma: one box per witness,
// one arrow per ancestor->descendant edge. The global stemma carries no
// per-edge type or per-vertex support (spec.md §4.7: "no further
// simplification"), so it gets a plain rendering unlike the flow diagrams.
func GlobalStemmaDOT(g *graph.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph global_stemma {\n")
	buf.WriteString("\tnode [shape=box];\n")

	for _, v := range g.Vertices() {
		fmt.Fprintf(&buf, "\t%q;\n", v.ID)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "\t%q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagram: init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("diagram: parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("diagram: render SVG: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagram: init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("diagram: parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("diagram: render PNG: %w", err)
	}
	return buf.Bytes(), nil
}
