// Package collation defines the wire shapes the core consumes at the parser
// boundary (spec.md §6). Parsing the collation document itself — the XML
// tradition of apparatus encoding, with its reading/witness/local-stemma
// markup — is explicitly out of scope for this module; callers (or
// cmd/cbgm's JSON loader) are responsible for producing values of these
// types from whatever source document they hold.
package collation

// ReadingType tags a Reading with the attributes that drive the
// distinct-reading-types and drop-ambiguous configuration knobs (§6).
type ReadingType string

const (
	TypeSubstantive  ReadingType = "substantive"
	TypeSplit        ReadingType = "split"
	TypeOrthographic ReadingType = "orthographic"
	TypeDefective    ReadingType = "defective"
	TypeAmbiguous    ReadingType = "ambiguous"
)

// Reading is one attested textual variant at a unit.
type Reading struct {
	RID       string
	Witnesses []string
	Types     []ReadingType

	// CanonicalParent names the RID this reading collapses to when its
	// type is folded (not retained distinct) by config.Config. Empty if
	// this reading has no parent (e.g. it is itself a substantive
	// reading, or distinct-reading-types already retains its type).
	CanonicalParent string

	// SurfaceText identifies readings with identical surface wording; two
	// "split" readings sharing SurfaceText are candidates for
	// split-merge bidirectional edges (§3 "Split-merge").
	SurfaceText string
}

// HasType reports whether t is among the reading's type tags.
func (r Reading) HasType(t ReadingType) bool {
	for _, rt := range r.Types {
		if rt == t {
			return true
		}
	}
	return false
}

// StemmaEdge is a directed prior→posterior pair over RIDs, as authored in
// the unit's local stemma.
type StemmaEdge struct {
	Prior     string
	Posterior string
}

// UnitInput is everything the core requires to build one VariationUnit
// (spec.md §6): id/label, ordered readings, optional connectivity bound,
// and the local-stemma graph.
type UnitInput struct {
	ID           string
	Label        string // optional; defaults to ID
	Readings     []Reading
	Connectivity int // 0 means "not specified": config.Config.DefaultConnectivity applies
	StemmaEdges  []StemmaEdge
}

// ApparatusInput is the full parsed collation: canonical witness order plus
// every variation unit, in the order they should receive VUIs.
type ApparatusInput struct {
	ListWit []string
	Units   []UnitInput
}
