// Package apparatus implements VariationUnit and Apparatus (spec.md §3,
// §4.2): the collation unit of analysis and the ordered collection of units
// plus the canonical witness list that everything else in this module is
// indexed against.
package apparatus

import (
	"fmt"
	"sort"

	"github.com/open-cbgm/cbgm-go/collation"
	"github.com/open-cbgm/cbgm-go/config"
	"github.com/open-cbgm/cbgm-go/localstemma"
)

// VariationUnit binds a set of reading identifiers to the witnesses
// attesting them, a connectivity bound, and its LocalStemma.
type VariationUnit struct {
	index        int
	id           string
	label        string
	readings     []string
	support      map[string]map[string]struct{} // WID -> set of RIDs
	connectivity int
	stemma       *localstemma.LocalStemma
}

// Index returns the unit's zero-based VUI within its Apparatus.
func (u *VariationUnit) Index() int { return u.index }

// ID returns the unit's identifier.
func (u *VariationUnit) ID() string { return u.id }

// Label returns the unit's display label (defaults to ID).
func (u *VariationUnit) Label() string { return u.label }

// Readings returns the ordered list of non-dropped RIDs at this unit.
func (u *VariationUnit) Readings() []string {
	out := make([]string, len(u.readings))
	copy(out, u.readings)
	return out
}

// Connectivity returns the per-unit connectivity bound.
func (u *VariationUnit) Connectivity() int { return u.connectivity }

// Stemma returns the unit's LocalStemma.
func (u *VariationUnit) Stemma() *localstemma.LocalStemma { return u.stemma }

// SupportFor returns the set of RIDs witness wid attests at this unit, and
// whether wid has any attestation at all (false means lacunose).
func (u *VariationUnit) SupportFor(wid string) (map[string]struct{}, bool) {
	s, ok := u.support[wid]
	return s, ok
}

// buildUnit constructs a VariationUnit from its collation input, applying
// the distinct-reading-type collapse, ambiguous-reading drop, and
// split-merge transforms described in spec.md §4.2 before delegating
// closure computation to package localstemma.
func buildUnit(idx int, in collation.UnitInput, cfg *config.Config) (*VariationUnit, error) {
	if in.ID == "" {
		return nil, ErrMissingID
	}
	label := in.Label
	if label == "" {
		label = in.ID
	}
	connectivity := in.Connectivity
	if connectivity <= 0 {
		connectivity = cfg.DefaultConnectivity
	}

	// trivialToCanonical maps non-distinct RIDs to the canonical parent
	// named on the reading by the upstream parser (collation.Reading's
	// CanonicalParent field); this core does not infer surface
	// relationships between RIDs, it only acts on what it is given.
	trivialToCanonical := map[string]string{}
	dropped := map[string]struct{}{}
	var splitPairs [][2]string
	splitBySurface := map[string][]string{}

	var readingIDs []string
	for _, r := range in.Readings {
		if cfg.DropAmbiguous && r.HasType(collation.TypeAmbiguous) {
			dropped[r.RID] = struct{}{}
			continue
		}
		readingIDs = append(readingIDs, r.RID)

		for _, t := range r.Types {
			switch t {
			case collation.TypeSplit, collation.TypeOrthographic, collation.TypeDefective:
				if !cfg.IsDistinct(string(t)) && r.CanonicalParent != "" {
					trivialToCanonical[r.RID] = r.CanonicalParent
				}
			}
		}
		if cfg.MergeSplits && r.HasType(collation.TypeSplit) && r.SurfaceText != "" {
			splitBySurface[r.SurfaceText] = append(splitBySurface[r.SurfaceText], r.RID)
		}
	}
	for _, group := range splitBySurface {
		sort.Strings(group)
		for i := 1; i < len(group); i++ {
			splitPairs = append(splitPairs, [2]string{group[0], group[i]})
		}
	}

	stemma, err := localstemma.Build(label, readingIDs, toLocalStemmaEdges(in.StemmaEdges), trivialToCanonical, splitPairs, dropped)
	if err != nil {
		return nil, fmt.Errorf("apparatus: unit %q: %w", in.ID, err)
	}

	support := make(map[string]map[string]struct{})
	for _, r := range in.Readings {
		if _, isDropped := dropped[r.RID]; isDropped {
			continue
		}
		rid := r.RID
		if canonical, ok := trivialToCanonical[rid]; ok {
			rid = canonical
		}
		for _, wid := range r.Witnesses {
			if support[wid] == nil {
				support[wid] = make(map[string]struct{})
			}
			support[wid][rid] = struct{}{}
		}
	}

	return &VariationUnit{
		index:        idx,
		id:           in.ID,
		label:        label,
		readings:     stemma.Vertices(),
		support:      support,
		connectivity: connectivity,
		stemma:       stemma,
	}, nil
}

func toLocalStemmaEdges(edges []collation.StemmaEdge) []localstemma.Edge {
	out := make([]localstemma.Edge, len(edges))
	for i, e := range edges {
		out[i] = localstemma.Edge{Prior: e.Prior, Posterior: e.Posterior}
	}
	return out
}
