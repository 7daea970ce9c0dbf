package apparatus

import (
	"fmt"
	"strconv"

	"github.com/open-cbgm/cbgm-go/collation"
	"github.com/open-cbgm/cbgm-go/config"
)

// Apparatus is the whole collation: the canonical witness order plus every
// VariationUnit, indexed by VUI.
type Apparatus struct {
	listWit     []string
	units       []*VariationUnit
	byID        map[string]int // unit id/label -> VUI
	extantCount map[string]int // WID -> number of units where it is attested
}

// Build constructs an Apparatus from parsed collation input and resolved
// configuration. Returns ErrMissingID if a unit lacks an id,
// ErrDuplicateUnitID if two units share one, or any localstemma/apparatus
// construction error wrapped with unit context.
func Build(in collation.ApparatusInput, cfg *config.Config) (*Apparatus, error) {
	a := &Apparatus{
		listWit:     append([]string(nil), in.ListWit...),
		byID:        make(map[string]int, len(in.Units)),
		extantCount: make(map[string]int, len(in.ListWit)),
	}

	for idx, unitInput := range in.Units {
		u, err := buildUnit(idx, unitInput, cfg)
		if err != nil {
			return nil, err
		}
		if _, dup := a.byID[u.id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateUnitID, u.id)
		}
		a.byID[u.id] = idx
		if u.label != u.id {
			if _, dup := a.byID[u.label]; !dup {
				a.byID[u.label] = idx
			}
		}
		a.units = append(a.units, u)
	}

	for _, wid := range a.listWit {
		count := 0
		for _, u := range a.units {
			if support, ok := u.SupportFor(wid); ok && len(support) > 0 {
				count++
			}
		}
		a.extantCount[wid] = count
	}

	return a, nil
}

// ListWit returns the canonical witness order.
func (a *Apparatus) ListWit() []string {
	out := make([]string, len(a.listWit))
	copy(out, a.listWit)
	return out
}

// Units returns the VUI-indexed unit vector.
func (a *Apparatus) Units() []*VariationUnit {
	out := make([]*VariationUnit, len(a.units))
	copy(out, a.units)
	return out
}

// Unit returns the unit at the given VUI.
func (a *Apparatus) Unit(vui int) (*VariationUnit, bool) {
	if vui < 0 || vui >= len(a.units) {
		return nil, false
	}
	return a.units[vui], true
}

// Len returns the number of variation units (N in spec.md's VUI range).
func (a *Apparatus) Len() int { return len(a.units) }

// ExtantCount returns the number of units at which wid is attested.
func (a *Apparatus) ExtantCount(wid string) int { return a.extantCount[wid] }

// FindUnit resolves a passage selector: matched first against unit id, then
// label, then parsed as a decimal VUI. Returns ErrUnknownSelector if none
// match.
func (a *Apparatus) FindUnit(selector string) (*VariationUnit, error) {
	if vui, ok := a.byID[selector]; ok {
		return a.units[vui], nil
	}
	if n, err := strconv.Atoi(selector); err == nil {
		if u, ok := a.Unit(n); ok {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSelector, selector)
}
