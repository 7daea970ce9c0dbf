// Package cbgm orchestrates the full computational core of spec.md §2:
// Apparatus construction, per-witness relation precomputation (§4.3/§4.4),
// substemma optimization (§4.6), textual-flow construction (§4.5), and
// global-stemma assembly (§4.7), behind a single Engine entry point plus
// the external-interface surface of §6 (the tabular comparison report) and
// the typed error/warning model of §7.
package cbgm

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/open-cbgm/cbgm-go/apparatus"
	"github.com/open-cbgm/cbgm-go/collation"
	"github.com/open-cbgm/cbgm-go/config"
	"github.com/open-cbgm/cbgm-go/globalstemma"
	"github.com/open-cbgm/cbgm-go/graph"
	"github.com/open-cbgm/cbgm-go/localstemma"
	"github.com/open-cbgm/cbgm-go/setcover"
	"github.com/open-cbgm/cbgm-go/textualflow"
	"github.com/open-cbgm/cbgm-go/witness"
)

// Engine holds a fully precomputed CBGM run: the apparatus, every analyzed
// witness's relations and finalized substemma, and the witness order
// (extancy-threshold filtered) that all deterministic enumeration in this
// package follows.
type Engine struct {
	app       *apparatus.Apparatus
	cfg       *config.Config
	witnesses map[string]*witness.Witness
	included  []string // app.ListWit(), filtered by ExtancyThreshold, order preserved
	runID     string
}

// Option configures a Build call.
type Option func(*options)

type options struct {
	logger   *log.Logger
	parallel bool
}

// WithLogger attaches a logger for run progress (spec.md §10.3). Defaults
// to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithParallel toggles the errgroup-based fan-out over per-witness
// precomputation and substemma optimization (§5 "embarrassingly parallel").
// Defaults to true; set false to force single-threaded, fully deterministic
// execution useful for debugging.
func WithParallel(p bool) Option {
	return func(o *options) { o.parallel = p }
}

// Build runs the full pipeline: Apparatus construction, per-witness
// precomputation, substemma optimization. Returns the resulting Engine,
// any non-fatal UncoverableSubstemma warnings, and a fatal *Error wrapping
// InputMalformed or InternalInvariant on failure.
func Build(ctx context.Context, in collation.ApparatusInput, cfg *config.Config, opts ...Option) (*Engine, []Warning, error) {
	o := &options{logger: log.Default(), parallel: true}
	for _, opt := range opts {
		opt(o)
	}

	runID := uuid.NewString()[:8]
	logger := o.logger.With("run", runID)

	app, err := apparatus.Build(in, cfg)
	if err != nil {
		return nil, nil, newError(InputMalformed, err)
	}
	logger.Infof("built apparatus: %d units, %d witnesses", app.Len(), len(app.ListWit()))

	var included []string
	for _, wid := range app.ListWit() {
		if app.ExtantCount(wid) >= cfg.ExtancyThreshold {
			included = append(included, wid)
		}
	}
	if len(included) < len(app.ListWit()) {
		logger.Infof("extancy threshold %d excludes %d of %d witnesses", cfg.ExtancyThreshold, len(app.ListWit())-len(included), len(app.ListWit()))
	}

	witnesses, err := buildWitnesses(ctx, app, included, o.parallel, logger)
	if err != nil {
		return nil, nil, newError(InternalInvariant, err)
	}

	includedSet := make(map[string]struct{}, len(included))
	for _, wid := range included {
		includedSet[wid] = struct{}{}
	}

	warnings, err := optimizeSubstemmata(ctx, witnesses, included, includedSet, o.parallel, logger)
	if err != nil {
		return nil, nil, newError(InternalInvariant, err)
	}

	logger.Infof("run complete: %d witness(es) analyzed, %d warning(s)", len(included), len(warnings))

	return &Engine{app: app, cfg: cfg, witnesses: witnesses, included: included, runID: runID}, warnings, nil
}

// buildWitnesses precomputes per-subject relations for every included WID,
// in parallel via errgroup when enabled, writing to a fixed-size result
// slice indexed by position so no lock is needed across goroutines (the
// same shape as the corpus's priority-group enricher fan-out).
func buildWitnesses(ctx context.Context, app *apparatus.Apparatus, included []string, parallel bool, logger *log.Logger) (map[string]*witness.Witness, error) {
	results := make([]*witness.Witness, len(included))

	if !parallel {
		for i, wid := range included {
			w, err := witness.Build(wid, app)
			if err != nil {
				return nil, fmt.Errorf("precompute witness %q: %w", wid, err)
			}
			results[i] = w
		}
	} else {
		g, gCtx := errgroup.WithContext(ctx)
		for i, wid := range included {
			i, wid := i, wid
			g.Go(func() error {
				select {
				case <-gCtx.Done():
					return gCtx.Err()
				default:
				}
				w, err := witness.Build(wid, app)
				if err != nil {
					return fmt.Errorf("precompute witness %q: %w", wid, err)
				}
				results[i] = w
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	logger.Debugf("precomputed relations for %d witness(es)", len(included))

	out := make(map[string]*witness.Witness, len(included))
	for i, wid := range included {
		out[wid] = results[i]
	}
	return out, nil
}

// substemmaResult holds one witness's set-cover outcome before it is
// committed via Witness.SetStemmaAncestors.
type substemmaResult struct {
	solution setcover.Solution
	warning  *Warning
}

// optimizeSubstemmata runs the weighted set-cover solve (§4.6) for every
// included witness that has at least one candidate ancestor row, then
// finalizes each Witness.StemmaAncestors. Ancestor candidates outside the
// included set are filtered out before building rows, mirroring the
// reference tool's restriction of potential-ancestor lists to
// non-fragmentary witnesses. A witness with no candidate rows is a source of
// the global stemma: its substemma is empty and it raises no warning.
func optimizeSubstemmata(ctx context.Context, witnesses map[string]*witness.Witness, included []string, includedSet map[string]struct{}, parallel bool, logger *log.Logger) ([]Warning, error) {
	results := make([]substemmaResult, len(included))

	run := func(i int, wid string) error {
		w := witnesses[wid]
		rows := buildRows(w, includedSet)
		if len(rows) == 0 {
			return nil
		}

		sol, err := setcover.Solve(ctx, rows, w.Extant())
		if err != nil {
			return fmt.Errorf("solve substemma for %q: %w", wid, err)
		}
		results[i] = substemmaResult{solution: sol}
		if !sol.Complete {
			results[i].warning = &Warning{Witness: wid, UncoveredVUIs: sol.Uncovered.Slice()}
		}
		return nil
	}

	if !parallel {
		for i, wid := range included {
			if err := run(i, wid); err != nil {
				return nil, err
			}
		}
	} else {
		g, _ := errgroup.WithContext(ctx)
		for i, wid := range included {
			i, wid := i, wid
			g.Go(func() error { return run(i, wid) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var warnings []Warning
	for i, wid := range included {
		witnesses[wid].SetStemmaAncestors(results[i].solution.Rows)
		if results[i].warning != nil {
			warnings = append(warnings, *results[i].warning)
			logger.Warnf("%s", results[i].warning.String())
		}
	}
	return warnings, nil
}

// buildRows constructs the §4.6 set-cover rows for w: one per potential
// ancestor restricted to the included set, bits = explainedBy[v] ∩
// w.extant, cost = pass(w,v) − eq(w,v), rank = index in w's ranked
// potential-ancestor list.
func buildRows(w *witness.Witness, includedSet map[string]struct{}) []setcover.Row {
	var rows []setcover.Row
	for rank, a := range w.PotentialAncestors() {
		if _, ok := includedSet[a.WID]; !ok {
			continue
		}
		explained := w.ExplainedBy(a.WID)
		restricted, andErr := explained.And(w.Extant())
		if andErr != nil {
			continue
		}
		cmp, cmpErr := w.Compare(a.WID)
		if cmpErr != nil {
			continue
		}
		rows = append(rows, setcover.Row{
			ID:   a.WID,
			Bits: restricted,
			Cost: cmp.Pass - cmp.Eq,
			Rank: rank,
		})
	}
	return rows
}

// IncludedWitnesses returns the extancy-threshold-filtered witness order
// this Engine analyzed, in list_wit order.
func (e *Engine) IncludedWitnesses() []string {
	out := make([]string, len(e.included))
	copy(out, e.included)
	return out
}

// LocalStemma resolves selector (id, label, or decimal VUI) and returns its
// unit's local stemma.
func (e *Engine) LocalStemma(selector string) (*localstemma.LocalStemma, error) {
	u, err := e.app.FindUnit(selector)
	if err != nil {
		return nil, newError(UnknownSelector, err)
	}
	return u.Stemma(), nil
}

// Unit resolves selector (id, label, or decimal VUI) to its variation unit,
// for callers that need its label/connectivity alongside a diagram (e.g.
// cmd/cbgm's flow command titling a rendered graph).
func (e *Engine) Unit(selector string) (*apparatus.VariationUnit, error) {
	u, err := e.app.FindUnit(selector)
	if err != nil {
		return nil, newError(UnknownSelector, err)
	}
	return u, nil
}

// TextualFlow resolves selector and builds that unit's complete flow graph
// (§4.5) over the included witness set.
func (e *Engine) TextualFlow(selector string) (*graph.Graph, error) {
	u, err := e.app.FindUnit(selector)
	if err != nil {
		return nil, newError(UnknownSelector, err)
	}
	g, err := textualflow.Build(u, e.witnesses, e.included)
	if err != nil {
		return nil, newError(InternalInvariant, err)
	}
	return g, nil
}

// GlobalStemma assembles the global stemma (§4.7) from every included
// witness's finalized substemma.
func (e *Engine) GlobalStemma() (*graph.Graph, error) {
	g, err := globalstemma.Build(e.included, e.witnesses)
	if err != nil {
		return nil, newError(InternalInvariant, err)
	}
	return g, nil
}

// ComparisonRow is one line of the §6 tabular comparison report: the
// primary witness against one secondary, at one variation unit.
type ComparisonRow struct {
	WID       string
	Direction string // "ANCESTOR", "DESCENDANT", "NOREL"
	Rank      int    // index in the primary's potential-ancestor list, -1 if absent
	Attested  []string
	Pass      int
	Perc      float64
	Eq        int
	Prior     int
	Posterior int
	Norel     int
}

// ComparisonReport builds the §6 tabular comparison report for primary
// against every other included witness, with the attested-RID column
// evaluated at unitSelector. Rows are ordered by list_wit (§5 "Ordering
// guarantees").
func (e *Engine) ComparisonReport(primary, unitSelector string) ([]ComparisonRow, error) {
	w, err := e.witness(primary)
	if err != nil {
		return nil, err
	}

	u, err := e.app.FindUnit(unitSelector)
	if err != nil {
		return nil, newError(UnknownSelector, err)
	}

	rank := make(map[string]int, len(w.PotentialAncestors()))
	for i, a := range w.PotentialAncestors() {
		rank[a.WID] = i
	}

	var rows []ComparisonRow
	for _, wid := range e.included {
		if wid == primary {
			continue
		}
		cmp, err := w.Compare(wid)
		if err != nil {
			return nil, newError(InternalInvariant, err)
		}

		r := -1
		if v, ok := rank[wid]; ok {
			r = v
		}

		support, _ := u.SupportFor(wid)
		attested := make([]string, 0, len(support))
		for rid := range support {
			attested = append(attested, rid)
		}
		sort.Strings(attested)

		rows = append(rows, ComparisonRow{
			WID:       wid,
			Direction: direction(cmp.Dir),
			Rank:      r,
			Attested:  attested,
			Pass:      cmp.Pass,
			Perc:      cmp.Perc,
			Eq:        cmp.Eq,
			Prior:     cmp.Prior,
			Posterior: cmp.Posterior,
			Norel:     cmp.Norel,
		})
	}
	return rows, nil
}

// witness resolves a primary witness selector against the included set,
// distinguishing an unknown WID (UnknownSelector) from one excluded by the
// extancy threshold (ThresholdExcludesSubject).
func (e *Engine) witness(wid string) (*witness.Witness, error) {
	if w, ok := e.witnesses[wid]; ok {
		return w, nil
	}
	for _, known := range e.app.ListWit() {
		if known == wid {
			return nil, newError(ThresholdExcludesSubject, fmt.Errorf("witness %q falls below the extancy threshold", wid))
		}
	}
	return nil, newError(UnknownSelector, fmt.Errorf("witness %q not found", wid))
}

func direction(dir int) string {
	switch {
	case dir > 0:
		return "ANCESTOR"
	case dir < 0:
		return "DESCENDANT"
	default:
		return "NOREL"
	}
}
