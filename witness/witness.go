// Package witness implements the per-subject relation precomputation of
// spec.md §3 "Witness" and §4.3-§4.4: for a subject witness w, compact
// bitsets of agreement and explanation against every other witness in the
// apparatus, the derived per-pair scalars those bitsets support, and the
// ranked potential-ancestor list used by package setcover to build w's
// substemma.
package witness

import (
	"errors"
	"sort"

	"github.com/open-cbgm/cbgm-go/apparatus"
	"github.com/open-cbgm/cbgm-go/bitset"
)

// ErrUnknownWitness indicates Build was asked to precompute relations for a
// WID absent from the apparatus's canonical witness list.
var ErrUnknownWitness = errors.New("witness: subject not in apparatus witness list")

// Ancestor is one entry in a subject's ranked potential-ancestor list.
type Ancestor struct {
	WID  string
	Perc float64
	Eq   int
}

// Comparison holds the derived scalars of comparing a subject w against
// another witness v, restricted to their mutually-extant units (§4.3).
// Posterior counts units where v's reading explains w's but not vice versa
// (v is the ancestor candidate); Prior counts the reverse.
type Comparison struct {
	Pass      int
	Eq        int
	Prior     int
	Posterior int
	Norel     int
	Perc      float64
	Dir       int // sign(Posterior-Prior): +1 v is ancestor candidate, -1 v is descendant, 0 equal priority
}

// Witness carries the precomputed relation bitsets for one subject against
// every other witness in its apparatus, plus the ranked potential-ancestor
// list and (once populated by the second pass, after set-cover
// optimization) the chosen substemma ancestors.
type Witness struct {
	id string

	agreements  map[string]*bitset.Set // v -> bitset over VUIs
	explainedBy map[string]*bitset.Set // v -> bitset over VUIs; explainedBy[id] == extant
	extant      *bitset.Set

	comparisons        map[string]Comparison
	potentialAncestors []Ancestor
	stemmaAncestors    []string
}

// ID returns the subject's WID.
func (w *Witness) ID() string { return w.id }

// Extant returns the bitset of VUIs at which the subject is attested.
func (w *Witness) Extant() *bitset.Set { return w.extant }

// ExplainedBy returns the bitset of VUIs at which v's reading explains the
// subject's (or the subject is lacunose). For v equal to the subject this is
// the Extant set. Returns nil if v is unknown.
func (w *Witness) ExplainedBy(v string) *bitset.Set { return w.explainedBy[v] }

// Agreements returns the bitset of VUIs at which the subject and v share a
// reading. Returns nil if v is unknown.
func (w *Witness) Agreements(v string) *bitset.Set { return w.agreements[v] }

// PotentialAncestors returns the ranked potential-ancestor list (§4.4),
// sorted by decreasing strength: perc desc, then eq desc, then the
// canonical list_wit order ascending as the stable final tie-break
// (SPEC_FULL.md §14, Open Question 2).
func (w *Witness) PotentialAncestors() []Ancestor {
	out := make([]Ancestor, len(w.potentialAncestors))
	copy(out, w.potentialAncestors)
	return out
}

// StemmaAncestors returns the subset of potential ancestors chosen by
// substemma optimization. Empty until SetStemmaAncestors is called.
func (w *Witness) StemmaAncestors() []string {
	out := make([]string, len(w.stemmaAncestors))
	copy(out, w.stemmaAncestors)
	return out
}

// SetStemmaAncestors finalizes w's substemma, populated by package cbgm
// after running the set-cover optimization over w's potential ancestors.
// Called exactly once per Witness lifecycle (spec.md §3 "Lifecycle").
func (w *Witness) SetStemmaAncestors(ancestors []string) {
	w.stemmaAncestors = append([]string(nil), ancestors...)
}

// Compare returns the precomputed derived scalars (§4.3) for the subject
// against v. Returns ErrUnknownWitness if v was not part of the apparatus
// this Witness was built from.
func (w *Witness) Compare(v string) (Comparison, error) {
	c, ok := w.comparisons[v]
	if !ok {
		return Comparison{}, ErrUnknownWitness
	}
	return c, nil
}

// Build precomputes agreement/explanation bitsets for subject against every
// other witness in app, derives the §4.3 scalars for each pair, and ranks
// subject's potential ancestors (§4.4). Returns ErrUnknownWitness if
// subject is not in app.ListWit().
func Build(subject string, app *apparatus.Apparatus) (*Witness, error) {
	listWit := app.ListWit()
	known := false
	for _, wid := range listWit {
		if wid == subject {
			known = true
			break
		}
	}
	if !known {
		return nil, ErrUnknownWitness
	}

	n := app.Len()
	units := app.Units()

	w := &Witness{
		id:          subject,
		agreements:  make(map[string]*bitset.Set, len(listWit)),
		explainedBy: make(map[string]*bitset.Set, len(listWit)),
		comparisons: make(map[string]Comparison, len(listWit)),
	}

	for _, v := range listWit {
		agree := bitset.New(n)
		vExplainsW := bitset.New(n) // w.explainedBy[v]: v's reading explains w's, or w is lacunose (v != w)
		mutual := bitset.New(n)     // both w and v extant at this unit
		vPrior := bitset.New(n)     // within mutual: v's reading explains w's
		wPrior := bitset.New(n)     // within mutual: w's reading explains v's

		for _, u := range units {
			i := u.Index()
			wSupport, wExtant := u.SupportFor(subject)
			vSupport, vExtant := u.SupportFor(v)

			if !wExtant && v != subject {
				_ = vExplainsW.Set(i) // lacunose subject: trivially explained
			} else if explainsAll(wSupport, vSupport, u) {
				_ = vExplainsW.Set(i)
			}

			if !wExtant || !vExtant {
				continue
			}
			_ = mutual.Set(i)
			if intersects(wSupport, vSupport) {
				_ = agree.Set(i)
			}
			if explainsAll(wSupport, vSupport, u) {
				_ = vPrior.Set(i)
			}
			if explainsAll(vSupport, wSupport, u) {
				_ = wPrior.Set(i)
			}
		}

		w.agreements[v] = agree
		w.explainedBy[v] = vExplainsW

		if v != subject {
			w.comparisons[v] = deriveComparison(mutual, agree, wPrior, vPrior)
		}
	}

	w.extant = w.explainedBy[subject]
	w.rankPotentialAncestors(listWit)

	return w, nil
}

// deriveComparison computes pass/eq/prior/posterior/norel/perc/dir per
// spec.md §4.3: pass and eq come directly from the mutually-extant and
// agreement bitsets; posterior is explained_by[v] less agreements (v
// explains w, disagreeing), prior is the symmetric quantity with w and v
// swapped. Both wPrior and vPrior already hold only bits within the
// mutually-extant domain.
func deriveComparison(mutual, agree, wPrior, vPrior *bitset.Set) Comparison {
	posteriorOnly, _ := vPrior.AndNot(agree)
	priorOnly, _ := wPrior.AndNot(agree)

	pass := mutual.Count()
	eq := agree.Count()
	posterior := posteriorOnly.Count()
	prior := priorOnly.Count()
	norel := pass - eq - prior - posterior

	var perc float64
	if pass > 0 {
		perc = 100 * float64(eq) / float64(pass)
	}

	dir := 0
	if posterior > prior {
		dir = 1
	} else if prior > posterior {
		dir = -1
	}

	return Comparison{Pass: pass, Eq: eq, Prior: prior, Posterior: posterior, Norel: norel, Perc: perc, Dir: dir}
}

// explainsAll reports whether every RID in explaineeSupport is equal-or-
// prior-explained by some RID in explainerSupport, per unit u's local
// stemma closure. A lacunose explainer (empty explainerSupport) explains
// nothing.
func explainsAll(explaineeSupport, explainerSupport map[string]struct{}, u *apparatus.VariationUnit) bool {
	if len(explainerSupport) == 0 {
		return false
	}
	stemma := u.Stemma()
	for r := range explaineeSupport {
		found := false
		for rp := range explainerSupport {
			if stemma.IsEqualOrPrior(rp, r) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func intersects(a, b map[string]struct{}) bool {
	for r := range a {
		if _, ok := b[r]; ok {
			return true
		}
	}
	return false
}

// rankPotentialAncestors builds the ranked list of witnesses v for which
// Posterior(w,v) > Prior(w,v), sorted by (perc desc, eq desc, list_wit
// index asc) per spec.md §4.4 and the Open Question decision in
// SPEC_FULL.md §14.
func (w *Witness) rankPotentialAncestors(listWit []string) {
	type candidate struct {
		wid   string
		perc  float64
		eq    int
		order int
	}
	var candidates []candidate

	for i, v := range listWit {
		if v == w.id {
			continue
		}
		c, ok := w.comparisons[v]
		if !ok || c.Dir != 1 {
			continue
		}
		candidates = append(candidates, candidate{wid: v, perc: c.Perc, eq: c.Eq, order: i})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.perc != b.perc {
			return a.perc > b.perc
		}
		if a.eq != b.eq {
			return a.eq > b.eq
		}
		return a.order < b.order
	})

	out := make([]Ancestor, len(candidates))
	for i, c := range candidates {
		out[i] = Ancestor{WID: c.wid, Perc: c.perc, Eq: c.eq}
	}
	w.potentialAncestors = out
}
