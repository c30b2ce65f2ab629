package matcher

import (
	"container/heap"
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sanonone/nemadb/pkg/core/graph"
)

// state is a partial injective assignment under construction.
// chosen[i] holds the target assigned to the i-th query node in the
// searcher's fixed assignment order; score is the running sum of pair
// scores and bound is score plus the best independently achievable
// score of every node still unassigned (never an underestimate).
type state struct {
	chosen []int64
	score  float64
	bound  float64
	seq    uint64
}

// searcher holds the read-only search space shared by all workers:
// everything here is frozen before the first expansion.
type searcher struct {
	m     *Matrix
	order []int64 // candidate-bearing query nodes, desc degree, asc id

	// Per order position: candidate target ids and scores sorted by
	// descending score (tie: ascending target id), MinScore applied.
	candTargets [][]int64
	candScores  [][]float64

	// suffix[i] is the sum of the best remaining per-node scores over
	// order[i:]; suffix[len(order)] is 0.
	suffix []float64

	cfg Config
	n   int64

	seq        atomic.Uint64
	expansions atomic.Int64
	emitted    atomic.Int64
	overBudget atomic.Bool

	mu       sync.Mutex
	terminal []*state
}

// newSearcher freezes the assignment order and per-node candidate
// rankings from a propagated matrix.
func newSearcher(query *graph.Graph, m *Matrix, cfg Config, n int) *searcher {
	order := append([]int64(nil), m.QueryIDs()...)
	sort.Slice(order, func(i, j int) bool {
		di, dj := query.Degree(order[i]), query.Degree(order[j])
		if di != dj {
			return di > dj // highly connected nodes first: prunes faster
		}
		return order[i] < order[j]
	})

	s := &searcher{
		m:           m,
		order:       order,
		candTargets: make([][]int64, len(order)),
		candScores:  make([][]float64, len(order)),
		suffix:      make([]float64, len(order)+1),
		cfg:         cfg,
		n:           int64(n),
	}

	for i, q := range order {
		row := m.rows[q]
		idx := make([]int, len(row.targets))
		for j := range idx {
			idx[j] = j
		}
		sort.Slice(idx, func(a, b int) bool {
			if row.scores[idx[a]] != row.scores[idx[b]] {
				return row.scores[idx[a]] > row.scores[idx[b]]
			}
			return row.targets[idx[a]] < row.targets[idx[b]]
		})
		for _, j := range idx {
			if row.scores[j] < cfg.MinScore {
				break // sorted descending: everything after is below too
			}
			s.candTargets[i] = append(s.candTargets[i], row.targets[j])
			s.candScores[i] = append(s.candScores[i], row.scores[j])
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		best := 0.0
		if len(s.candScores[i]) > 0 {
			best = s.candScores[i][0]
		}
		s.suffix[i] = s.suffix[i+1] + best
	}
	return s
}

// run explores the space of injective assignments best-first and
// returns the emitted terminal states plus a truncation flag. Workers
// own disjoint partitions of the first node's branches; the matrix and
// candidate rankings are shared read-only, terminal states merge
// through a single locked sink, and the emission/expansion caps are
// atomic so no worker over-collects.
func (s *searcher) run(ctx context.Context) ([]*state, bool) {
	if len(s.order) == 0 {
		return nil, false
	}

	workers := s.cfg.Workers
	if nb := len(s.candTargets[0]); workers > nb {
		workers = nb
	}
	if workers <= 1 {
		s.explore(ctx, 0, 1)
	} else {
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				s.explore(ctx, w, workers)
			}(w)
		}
		wg.Wait()
	}

	truncated := s.emitted.Load() < s.n &&
		(s.overBudget.Load() || ctx.Err() != nil)
	return s.terminal, truncated
}

// explore runs one worker's frontier loop over its share of the first
// node's candidate branches (branch indexes congruent to part modulo
// stride).
func (s *searcher) explore(ctx context.Context, part, stride int) {
	f := newFrontier(64)
	for j := part; j < len(s.candTargets[0]); j += stride {
		st := &state{
			chosen: []int64{s.candTargets[0][j]},
			score:  s.candScores[0][j],
			seq:    s.seq.Add(1),
		}
		st.bound = st.score + s.suffix[1]
		heap.Push(f, st)
	}

	for f.Len() > 0 {
		if ctx.Err() != nil || s.emitted.Load() >= s.n {
			return
		}
		if s.expansions.Add(1) > s.cfg.ExpansionBudget {
			s.overBudget.Store(true)
			return
		}

		st := heap.Pop(f).(*state)
		depth := len(st.chosen)
		if depth == len(s.order) {
			s.emit(st)
			continue
		}

		// Branch over the next node's candidates; injectivity skips
		// targets already used in this state. A node left with no
		// usable candidate simply produces no children and the state
		// is dropped, never emitted.
		for j, t := range s.candTargets[depth] {
			if used(st.chosen, t) {
				continue
			}
			child := &state{
				chosen: append(append(make([]int64, 0, depth+1), st.chosen...), t),
				score:  st.score + s.candScores[depth][j],
				seq:    s.seq.Add(1),
			}
			child.bound = child.score + s.suffix[depth+1]
			heap.Push(f, child)
		}
	}
}

func (s *searcher) emit(st *state) {
	if s.emitted.Add(1) > s.n {
		return
	}
	s.mu.Lock()
	s.terminal = append(s.terminal, st)
	s.mu.Unlock()
}

// used reports whether a target id already appears in the assignment.
// Assignments are query-sized (at most a few hundred entries), so a
// linear scan beats maintaining per-state sets.
func used(chosen []int64, t int64) bool {
	for _, c := range chosen {
		if c == t {
			return true
		}
	}
	return false
}
