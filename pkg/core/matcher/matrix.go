package matcher

import (
	"fmt"
	"math"
	"sort"

	"github.com/sanonone/nemadb/pkg/core/graph"
)

// Candidate is an externally computed label-similarity weight between
// one query node and one target node. Only nonzero weights are staged;
// pairs never staged stay at score 0 forever.
type Candidate struct {
	QueryID  int64   `json:"query_id"`
	TargetID int64   `json:"target_id"`
	Weight   float64 `json:"weight"`
}

// Matrix is the sparse (query node, target node) -> score mapping. Its
// support is fixed at construction time: propagation redistributes mass
// among staged pairs but never invents new ones.
//
// Rows are stored as sorted parallel slices so per-round neighbor
// lookups are binary searches and round deltas are plain vector ops.
type Matrix struct {
	queryIDs []int64
	rows     map[int64]*matrixRow
	byTarget map[int64][]int64 // target id -> query ids holding a candidate for it
}

type matrixRow struct {
	targets []int64   // sorted ascending
	labels  []float64 // original clipped label weights, frozen
	scores  []float64 // current refined scores, parallel to targets
}

// score returns the current score for a target in this row.
func (r *matrixRow) score(target int64) (float64, bool) {
	i := sort.Search(len(r.targets), func(i int) bool { return r.targets[i] >= target })
	if i < len(r.targets) && r.targets[i] == target {
		return r.scores[i], true
	}
	return 0, false
}

// NewMatrix builds the initial similarity matrix from staged candidate
// matches. Duplicate (q,t) entries resolve to the maximum weight,
// finite out-of-range weights are clipped to [0,1], and zero-weight
// candidates are dropped (a zero weight means "no possible match",
// which is already the implicit default).
//
// It fails with ErrInvalidCandidate when a candidate references a node
// absent from the corresponding graph, and with ErrBadWeight on NaN.
func NewMatrix(query, target *graph.Graph, cands []Candidate) (*Matrix, error) {
	acc := make(map[int64]map[int64]float64)
	for _, c := range cands {
		if math.IsNaN(c.Weight) {
			return nil, fmt.Errorf("%w: (%d,%d)", ErrBadWeight, c.QueryID, c.TargetID)
		}
		if !query.HasNode(c.QueryID) {
			return nil, fmt.Errorf("%w: query node %d", ErrInvalidCandidate, c.QueryID)
		}
		if !target.HasNode(c.TargetID) {
			return nil, fmt.Errorf("%w: target node %d", ErrInvalidCandidate, c.TargetID)
		}
		w := math.Min(1, math.Max(0, c.Weight))
		if w == 0 {
			continue
		}
		row, ok := acc[c.QueryID]
		if !ok {
			row = make(map[int64]float64)
			acc[c.QueryID] = row
		}
		if w > row[c.TargetID] {
			row[c.TargetID] = w
		}
	}

	m := &Matrix{
		rows:     make(map[int64]*matrixRow, len(acc)),
		byTarget: make(map[int64][]int64),
	}
	for q, row := range acc {
		mr := &matrixRow{
			targets: make([]int64, 0, len(row)),
			labels:  make([]float64, 0, len(row)),
			scores:  make([]float64, 0, len(row)),
		}
		for t := range row {
			mr.targets = append(mr.targets, t)
		}
		sort.Slice(mr.targets, func(i, j int) bool { return mr.targets[i] < mr.targets[j] })
		for _, t := range mr.targets {
			mr.labels = append(mr.labels, row[t])
			mr.scores = append(mr.scores, row[t])
			m.byTarget[t] = append(m.byTarget[t], q)
		}
		m.rows[q] = mr
		m.queryIDs = append(m.queryIDs, q)
	}
	sort.Slice(m.queryIDs, func(i, j int) bool { return m.queryIDs[i] < m.queryIDs[j] })
	for t := range m.byTarget {
		qs := m.byTarget[t]
		sort.Slice(qs, func(i, j int) bool { return qs[i] < qs[j] })
	}
	return m, nil
}

// Score returns the current score for a (query, target) pair. Pairs
// outside the support report (0, false).
func (m *Matrix) Score(q, t int64) (float64, bool) {
	row, ok := m.rows[q]
	if !ok {
		return 0, false
	}
	return row.score(t)
}

// QueryIDs returns the query nodes with at least one candidate, sorted.
func (m *Matrix) QueryIDs() []int64 { return m.queryIDs }

// CandidateQueries returns the query nodes holding a candidate for the
// given target node, sorted. This is the reverse index used by the
// searcher's injectivity bookkeeping.
func (m *Matrix) CandidateQueries(t int64) []int64 { return m.byTarget[t] }

// Support counts the nonzero (q,t) pairs.
func (m *Matrix) Support() int {
	n := 0
	for _, row := range m.rows {
		n += len(row.targets)
	}
	return n
}

// Each calls fn for every supported pair in (query id, target id) order.
func (m *Matrix) Each(fn func(q, t int64, score float64)) {
	for _, q := range m.queryIDs {
		row := m.rows[q]
		for i, t := range row.targets {
			fn(q, t, row.scores[i])
		}
	}
}
