package matcher

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sanonone/nemadb/pkg/core/graph"
)

// Pair is one matched (query node, target node) pair with its refined
// score.
type Pair struct {
	QueryID  int64   `json:"query_id"`
	TargetID int64   `json:"target_id"`
	Score    float64 `json:"score"`
}

// EdgeMatch reports whether one query edge has a counterpart between
// the assigned target nodes. An unmatched edge is expected, informative
// output, not an error.
type EdgeMatch struct {
	QueryEdge  graph.Edge  `json:"query_edge"`
	Matched    bool        `json:"matched"`
	TargetEdge *graph.Edge `json:"target_edge,omitempty"`
}

// Result is one ranked subgraph match: the assignment's pairs ordered
// by query node id, the aggregate score (mean of pair scores, so a
// perfect match is 1.0 at any query size), and optional edge detail.
type Result struct {
	Pairs []Pair      `json:"pairs"`
	Score float64     `json:"score"`
	Edges []EdgeMatch `json:"edges,omitempty"`
}

// rank deduplicates terminal states mapping to the identical pair set,
// orders them by aggregate score descending (ties broken by the
// lexicographic order of the sorted pair lists), keeps the first n, and
// optionally materializes the matched-edge detail.
func (s *searcher) rank(states []*state, n int, includeEdges bool, query, target *graph.Graph) []Result {
	type ranked struct {
		pairs []Pair
		key   string
		score float64
	}

	seen := make(map[string]struct{}, len(states))
	all := make([]ranked, 0, len(states))
	for _, st := range states {
		pairs := make([]Pair, len(st.chosen))
		for i, t := range st.chosen {
			q := s.order[i]
			sc, _ := s.m.Score(q, t)
			pairs[i] = Pair{QueryID: q, TargetID: t, Score: sc}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].QueryID < pairs[j].QueryID })

		key := pairKey(pairs)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		all = append(all, ranked{pairs: pairs, key: key, score: st.score / float64(len(pairs))})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return lessPairs(all[i].pairs, all[j].pairs)
	})
	if len(all) > n {
		all = all[:n]
	}

	results := make([]Result, len(all))
	for i, r := range all {
		res := Result{Pairs: r.pairs, Score: r.score}
		if includeEdges {
			res.Edges = matchEdges(r.pairs, query, target)
		}
		results[i] = res
	}
	return results
}

// matchEdges maps every query edge onto the target graph: an edge is
// matched when both endpoints are assigned and the assigned targets are
// connected in the target graph.
func matchEdges(pairs []Pair, query, target *graph.Graph) []EdgeMatch {
	assigned := make(map[int64]int64, len(pairs))
	for _, p := range pairs {
		assigned[p.QueryID] = p.TargetID
	}

	queryEdges := query.Edges()
	out := make([]EdgeMatch, 0, len(queryEdges))
	for _, qe := range queryEdges {
		em := EdgeMatch{QueryEdge: qe}
		tFrom, okFrom := assigned[qe.From]
		tTo, okTo := assigned[qe.To]
		if okFrom && okTo {
			if te, ok := target.FindEdge(tFrom, tTo); ok {
				em.Matched = true
				em.TargetEdge = &te
			}
		}
		out = append(out, em)
	}
	return out
}

// pairKey canonicalizes a sorted pair list into the dedupe key.
func pairKey(pairs []Pair) string {
	var b strings.Builder
	b.Grow(len(pairs) * 12)
	for _, p := range pairs {
		b.WriteString(strconv.FormatInt(p.QueryID, 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(p.TargetID, 10))
		b.WriteByte(',')
	}
	return b.String()
}

// lessPairs is the numeric lexicographic order over sorted pair lists,
// used as the deterministic tiebreak between equal aggregate scores.
func lessPairs(a, b []Pair) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].QueryID != b[i].QueryID {
			return a[i].QueryID < b[i].QueryID
		}
		if a[i].TargetID != b[i].TargetID {
			return a[i].TargetID < b[i].TargetID
		}
	}
	return len(a) < len(b)
}
