// Package setcover implements the weighted set-cover engine of spec.md
// §4.6: given a universe of bits to cover and a set of candidate rows each
// with a cost and a bitset of covered bits, find a minimum-cost subset of
// rows whose union covers the universe.
//
// The engine follows the same shape as the corpus's other exact-search
// solvers: a dedicated engine struct carrying precomputed state, a greedy
// heuristic to seed an incumbent upper bound, and a depth-first
// branch-and-bound search pruned by an admissible lower bound, with
// deterministic branching and sparse deadline checks.
package setcover

import (
	"context"
	"errors"
	"sort"

	"github.com/open-cbgm/cbgm-go/bitset"
)

// ErrEmptyUniverse indicates Solve was asked to cover a zero-bit universe.
var ErrEmptyUniverse = errors.New("setcover: universe has zero bits")

// Row is one candidate set: Bits is the subset of the universe it covers,
// Cost is its weight, and Rank/ID determine the deterministic tie-break
// order (rank in potential_ancestors ascending, then ID lexicographic)
// used for branching order, for the greedy pass and for
// GetTrivialSolution. Solve does not use it to choose among equal-cost
// optima: it keeps the first optimal cover it reaches (the greedy cover,
// when that one is optimal), which is not necessarily the (Rank, ID)-
// smallest one.
type Row struct {
	ID   string
	Bits *bitset.Set
	Cost int
	Rank int
}

// Solution is the result of Solve: the chosen rows, their total cost, and
// (if the universe could not be fully covered) the bits that remain
// uncovered.
type Solution struct {
	Rows      []string
	Cost      int
	Uncovered *bitset.Set
	Complete  bool
}

// GetUniqueRows returns every row that covers a bit no other row covers —
// these must appear in any feasible solution (spec.md §4.6).
func GetUniqueRows(rows []Row, universe int) []Row {
	coverCount := make([]int, universe)
	for _, r := range rows {
		for _, b := range r.Bits.Slice() {
			coverCount[b]++
		}
	}

	var out []Row
	seen := make(map[string]struct{})
	for _, r := range rows {
		for _, b := range r.Bits.Slice() {
			if coverCount[b] == 1 {
				if _, ok := seen[r.ID]; !ok {
					seen[r.ID] = struct{}{}
					out = append(out, r)
				}
				break
			}
		}
	}
	sortRows(out)
	return out
}

// GetTrivialSolution returns the cheapest single row covering the entire
// universe, if one exists.
func GetTrivialSolution(rows []Row, universe *bitset.Set) (Row, bool) {
	best := Row{}
	found := false
	for _, r := range rows {
		if coversAll(r.Bits, universe) {
			if !found || r.Cost < best.Cost || (r.Cost == best.Cost && lessRow(r, best)) {
				best = r
				found = true
			}
		}
	}
	return best, found
}

// GetGreedySolution iteratively picks the row maximizing newly-covered
// bits per unit cost until the universe is covered or no row makes
// progress. Used as the incumbent upper bound for the exact search.
func GetGreedySolution(rows []Row, universe *bitset.Set) Solution {
	remaining := universe.Clone()
	chosen := make([]Row, 0)
	cost := 0

	candidates := append([]Row(nil), rows...)
	sortRows(candidates)

	for remaining.Count() > 0 {
		bestIdx := -1
		var bestRatio float64
		for i, r := range candidates {
			overlap, _ := r.Bits.And(remaining)
			newBits := overlap.Count()
			if newBits == 0 {
				continue
			}
			ratio := float64(newBits) / float64(maxInt(r.Cost, 1))
			if bestIdx < 0 || ratio > bestRatio || (ratio == bestRatio && lessRow(r, candidates[bestIdx])) {
				bestIdx = i
				bestRatio = ratio
			}
		}
		if bestIdx < 0 {
			break // no progress possible
		}
		r := candidates[bestIdx]
		chosen = append(chosen, r)
		cost += r.Cost
		remaining, _ = remaining.AndNot(r.Bits)
	}

	ids := make([]string, len(chosen))
	for i, r := range chosen {
		ids[i] = r.ID
	}
	return Solution{Rows: ids, Cost: cost, Uncovered: remaining, Complete: remaining.Count() == 0}
}

// engine holds the branch-and-bound search state over the non-unique rows.
type engine struct {
	rows     []Row
	universe *bitset.Set

	mandatory     []Row // unique rows, forced into every solution
	mandatoryIDs  []string
	mandatoryCost int
	baseCovered   *bitset.Set

	order []Row // non-unique candidates, deterministically ordered for branching

	best      []Row
	bestCost  int
	bestFound bool

	steps int
}

// Solve runs the exact branch-and-bound search (spec.md §4.6 "solve()").
// Unique rows are forced in first; the remaining search space is explored
// in deterministic (rank, ID) order, seeded by the greedy solution as the
// initial incumbent and pruned whenever current cost plus a cheapest-
// remaining-row lower bound meets or exceeds the incumbent. If the
// universe cannot be fully covered, Solution.Complete is false and
// Solution.Uncovered names the remaining bits.
func Solve(ctx context.Context, rows []Row, universe *bitset.Set) (Solution, error) {
	if universe.Len() == 0 {
		return Solution{}, ErrEmptyUniverse
	}

	e := &engine{rows: rows, universe: universe}
	e.partitionMandatory()

	if e.baseCovered.Count() == universe.Count() {
		sortRows(e.mandatory)
		ids := make([]string, len(e.mandatory))
		for i, r := range e.mandatory {
			ids[i] = r.ID
		}
		return Solution{Rows: ids, Cost: e.mandatoryCost, Uncovered: bitset.New(universe.Len()), Complete: true}, nil
	}

	remainingUniverse, _ := universe.AndNot(e.baseCovered)

	greedy := GetGreedySolution(e.nonMandatoryRows(), remainingUniverse)
	e.bestCost = greedy.Cost
	e.bestFound = greedy.Complete
	if greedy.Complete {
		for _, id := range greedy.Rows {
			for _, r := range e.order {
				if r.ID == id {
					e.best = append(e.best, r)
				}
			}
		}
	}

	sort.Slice(e.order, func(i, j int) bool { return lessRow(e.order[i], e.order[j]) })

	e.dfs(ctx, remainingUniverse.Clone(), nil, 0)

	if !e.bestFound {
		// No combination of candidate rows covers the universe; fall back
		// to the greedy partial (the only partial cover computed) rather
		// than discarding it, so Uncovered names only the genuinely
		// unexplained bits instead of the whole universe.
		var partial []Row
		for _, id := range greedy.Rows {
			for _, r := range e.order {
				if r.ID == id {
					partial = append(partial, r)
					break
				}
			}
		}
		sortRows(partial)
		ids := append([]string(nil), e.mandatoryIDs...)
		for _, r := range partial {
			ids = append(ids, r.ID)
		}
		return Solution{Rows: ids, Cost: e.mandatoryCost + greedy.Cost, Uncovered: greedy.Uncovered, Complete: false}, nil
	}

	sortRows(e.best)
	ids := append([]string(nil), e.mandatoryIDs...)
	for _, r := range e.best {
		ids = append(ids, r.ID)
	}
	return Solution{Rows: ids, Cost: e.mandatoryCost + e.bestCost, Uncovered: bitset.New(universe.Len()), Complete: true}, nil
}

// partitionMandatory splits rows into the forced unique-row set and the
// remaining candidates, computing the bits the mandatory rows already
// cover.
func (e *engine) partitionMandatory() {
	e.mandatory = GetUniqueRows(e.rows, e.universe.Len())
	mandatorySet := make(map[string]struct{}, len(e.mandatory))
	e.baseCovered = bitset.New(e.universe.Len())
	for _, r := range e.mandatory {
		mandatorySet[r.ID] = struct{}{}
		e.mandatoryCost += r.Cost
		e.baseCovered, _ = e.baseCovered.Or(r.Bits)
	}
	sortRows(e.mandatory)
	e.mandatoryIDs = make([]string, len(e.mandatory))
	for i, r := range e.mandatory {
		e.mandatoryIDs[i] = r.ID
	}

	for _, r := range e.rows {
		if _, ok := mandatorySet[r.ID]; !ok {
			e.order = append(e.order, r)
		}
	}
}

func (e *engine) nonMandatoryRows() []Row {
	return e.order
}

// dfs explores subsets of the non-mandatory rows in deterministic order,
// pruning whenever the admissible lower bound (current cost plus the
// cheapest row that could still cover any remaining bit) meets or exceeds
// the incumbent.
func (e *engine) dfs(ctx context.Context, remaining *bitset.Set, chosen []Row, costSoFar int) {
	e.steps++
	if e.steps&2047 == 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}
	}

	if remaining.Count() == 0 {
		if !e.bestFound || costSoFar < e.bestCost {
			e.best = append([]Row(nil), chosen...)
			e.bestCost = costSoFar
			e.bestFound = true
		}
		return
	}

	if e.bestFound && costSoFar+e.lowerBoundExtra(remaining) >= e.bestCost {
		return
	}

	for _, r := range e.order {
		overlap, _ := r.Bits.And(remaining)
		if overlap.IsZero() {
			continue
		}
		nextRemaining, _ := remaining.AndNot(r.Bits)
		e.dfs(ctx, nextRemaining, append(chosen, r), costSoFar+r.Cost)
	}
}

// lowerBoundExtra estimates the minimum additional cost required to cover
// the remaining bits: for each uncovered bit, the cheapest candidate row
// that still covers it; the bound is the max single cheapest-row cost
// among remaining bits (admissible since any completion must spend at
// least that much on some row).
func (e *engine) lowerBoundExtra(remaining *bitset.Set) int {
	best := -1
	for _, b := range remaining.Slice() {
		cheapest := -1
		for _, r := range e.order {
			if r.Bits.Test(b) {
				if cheapest < 0 || r.Cost < cheapest {
					cheapest = r.Cost
				}
			}
		}
		if cheapest < 0 {
			return 0 // unreachable bit: no lower bound contribution, Solve reports it uncoverable
		}
		if cheapest > best {
			best = cheapest
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func coversAll(bits, universe *bitset.Set) bool {
	covered, err := bits.And(universe)
	if err != nil {
		return false
	}
	return covered.Count() == universe.Count()
}

func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool { return lessRow(rows[i], rows[j]) })
}

// lessRow implements the deterministic tie-break of spec.md §4.6: rank in
// potential_ancestors ascending (earlier wins), then WID lexicographic.
func lessRow(a, b Row) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.ID < b.ID
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
