package cbgm

import "fmt"

// Kind classifies the fatal and non-fatal error conditions of spec.md §7.
type Kind int

const (
	// InputMalformed: the parsed collation violates a structural
	// constraint (missing required attribute, non-existent RID
	// referenced by an edge).
	InputMalformed Kind = iota
	// UnknownSelector: a passage or witness identifier does not resolve.
	UnknownSelector
	// ThresholdExcludesSubject: the requested primary witness falls
	// below the extancy threshold.
	ThresholdExcludesSubject
	// UncoverableSubstemma: a witness has extant units no potential
	// ancestor explains. Non-fatal; surfaced via Warning, never Error.
	UncoverableSubstemma
	// InternalInvariant: a closure, bitset, or rank invariant has been
	// violated; fatal.
	InternalInvariant
)

func (k Kind) String() string {
	switch k {
	case InputMalformed:
		return "InputMalformed"
	case UnknownSelector:
		return "UnknownSelector"
	case ThresholdExcludesSubject:
		return "ThresholdExcludesSubject"
	case UncoverableSubstemma:
		return "UncoverableSubstemma"
	case InternalInvariant:
		return "InternalInvariant"
	default:
		return "Unknown"
	}
}

// Error wraps a cause with the Kind of boundary failure it represents
// (spec.md §7 "Propagation"). InputMalformed, UnknownSelector,
// ThresholdExcludesSubject, and InternalInvariant abort the current
// request; this type is never constructed with Kind == UncoverableSubstemma
// (that condition is reported via Warning instead).
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cbgm: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Warning reports a non-fatal UncoverableSubstemma condition: Witness has
// extant units that no potential ancestor explains, so its substemma is
// only a partial cover. Computation continues; the run's other results are
// unaffected.
type Warning struct {
	Witness       string
	UncoveredVUIs []int
}

func (w Warning) String() string {
	return fmt.Sprintf("cbgm: uncoverable substemma for %s: %d unit(s) unexplained", w.Witness, len(w.UncoveredVUIs))
}
