package matcher

import "errors"

// Sentinel errors for query validation. All of them are raised before
// the algorithm starts; budget or timeout exhaustion is reported via
// Output.Truncated instead of an error.
var (
	// ErrInvalidCandidate indicates a candidate match referencing a node
	// id absent from the query or target graph.
	ErrInvalidCandidate = errors.New("matcher: candidate references unknown node")

	// ErrBadWeight indicates a candidate weight that cannot be clipped
	// unambiguously into [0,1] (NaN).
	ErrBadWeight = errors.New("matcher: candidate weight is not a number")

	// ErrBadConfig indicates an invalid search configuration value.
	ErrBadConfig = errors.New("matcher: invalid search config")
)
