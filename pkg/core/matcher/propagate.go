package matcher

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sanonone/nemadb/pkg/core/graph"
)

// Propagate refines label-similarity scores with structural
// neighborhood agreement. Each round recomputes every supported (q,t)
// entry as
//
//	score'(q,t) = alpha*label(q,t) + (1-alpha)*avg over q' in N(q) of
//	              max over t' in N(t) of score(q',t')
//
// reading only the previous round's scores: new values go into a
// scratch buffer that is swapped in wholesale once the round is
// complete, so the result is independent of iteration order.
//
// Degree-0 query nodes skip the structural term and keep their label
// weight verbatim. A neighbor q' with no candidates near t contributes
// 0, which legitimately drags the score down.
//
// It runs for at most cfg.MaxRounds rounds, stopping early when the
// largest absolute per-entry change falls below cfg.Tolerance, and
// returns the number of rounds executed. The support set never changes.
func (m *Matrix) Propagate(query, target *graph.Graph, cfg Config) int {
	// Neighbor lists are stable for the whole run; resolve them once.
	queryNeighbors := make(map[int64][]int64, len(m.queryIDs))
	targetNeighbors := make(map[int64][]int64)
	for _, q := range m.queryIDs {
		queryNeighbors[q] = query.Neighbors(q)
		for _, t := range m.rows[q].targets {
			if _, ok := targetNeighbors[t]; !ok {
				targetNeighbors[t] = target.Neighbors(t)
			}
		}
	}

	next := make(map[int64][]float64, len(m.queryIDs))
	for _, q := range m.queryIDs {
		next[q] = make([]float64, len(m.rows[q].targets))
	}

	rounds := 0
	for round := 0; round < cfg.MaxRounds; round++ {
		// Compute the whole next round from the previous one.
		for _, q := range m.queryIDs {
			row := m.rows[q]
			buf := next[q]
			qn := queryNeighbors[q]
			if len(qn) == 0 {
				copy(buf, row.scores)
				continue
			}
			for i, t := range row.targets {
				structural := 0.0
				for _, nq := range qn {
					nrow, ok := m.rows[nq]
					if !ok {
						continue // neighbor has no candidates: contributes 0
					}
					best := 0.0
					for _, nt := range targetNeighbors[t] {
						if s, ok := nrow.score(nt); ok && s > best {
							best = s
						}
					}
					structural += best
				}
				structural /= float64(len(qn))
				buf[i] = cfg.Alpha*row.labels[i] + (1-cfg.Alpha)*structural
			}
		}

		// Swap buffers and measure the round delta.
		maxDelta := 0.0
		for _, q := range m.queryIDs {
			row := m.rows[q]
			if d := floats.Distance(row.scores, next[q], math.Inf(1)); d > maxDelta {
				maxDelta = d
			}
			row.scores, next[q] = next[q], row.scores
		}
		rounds++
		if maxDelta < cfg.Tolerance {
			break
		}
	}

	// Re-clip. The update is a convex combination of values in [0,1],
	// so this only guards against float drift.
	for _, row := range m.rows {
		for i, s := range row.scores {
			row.scores[i] = math.Min(1, math.Max(0, s))
		}
	}
	return rounds
}
