// Package matcher implements approximate subgraph matching between a
// small labeled query graph and a large target graph, in the style of
// the NeMa algorithm.
//
// A query runs in four stages over purely in-memory data:
//
//  1. a sparse similarity matrix is seeded from externally computed
//     (query node, target node, weight) candidate matches;
//  2. scores are refined by iterative neighborhood propagation, which
//     rewards pairs whose neighbors also match well;
//  3. a bounded best-first search walks the refined score space for
//     injective, high-scoring node assignments;
//  4. assignments are deduplicated, ranked, and returned as the top-n
//     results, optionally with per-edge match detail.
//
// The matrix support is fixed at step 1: propagation and search only
// ever redistribute mass among staged candidate pairs.
package matcher

import (
	"context"
	"fmt"

	"github.com/sanonone/nemadb/pkg/core/graph"
)

// Output is the outcome of one query execution. Truncated is set when
// the expansion budget or timeout was hit before n results were found;
// whatever was found so far is still returned, so truncation is a
// quality signal rather than a failure.
type Output struct {
	Results    []Result `json:"results"`
	Truncated  bool     `json:"truncated"`
	Rounds     int      `json:"rounds"`
	Expansions int64    `json:"expansions"`
}

// Execute runs one approximate subgraph-matching query and returns the
// top-n results. Both graphs and the candidate list are read-only for
// the duration of the call.
//
// Validation errors (bad candidates, bad config, n <= 0) are returned
// immediately; an empty candidate list or an exhausted search space is
// not an error and yields an empty or short result list.
func Execute(ctx context.Context, query, target *graph.Graph, cands []Candidate, n int, includeEdges bool, cfg Config) (*Output, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", ErrBadConfig, n)
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	m, err := NewMatrix(query, target, cands)
	if err != nil {
		return nil, err
	}

	rounds := m.Propagate(query, target, cfg)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	s := newSearcher(query, m, cfg, n)
	terminal, truncated := s.run(ctx)

	return &Output{
		Results:    s.rank(terminal, n, includeEdges, query, target),
		Truncated:  truncated,
		Rounds:     rounds,
		Expansions: s.expansions.Load(),
	}, nil
}
