// Package store holds the in-memory staging area: target graphs, query
// graphs, and the candidate matches staged against each query before a
// search is executed.
package store

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tidwall/btree"

	"github.com/sanonone/nemadb/pkg/core/graph"
	"github.com/sanonone/nemadb/pkg/core/matcher"
)

var (
	ErrGraphNotFound = errors.New("graph not found")
	ErrQueryNotFound = errors.New("query not found")
	ErrInvalidMatch  = errors.New("invalid match")
)

// NodeSpec is a node staged into a graph, with optional metadata.
type NodeSpec struct {
	ID   int64          `json:"id"`
	Meta map[string]any `json:"meta,omitempty"`
}

// MatchItem is one staged candidate match, stored in the per-query
// B-Tree ordered by (QueryNode, TargetNode).
type MatchItem struct {
	QueryNode  int64
	TargetNode int64
	Weight     float64
}

func matchItemLess(a, b MatchItem) bool {
	if a.QueryNode != b.QueryNode {
		return a.QueryNode < b.QueryNode
	}
	return a.TargetNode < b.TargetNode
}

// GraphInfo is a listing summary for a staged graph.
type GraphInfo struct {
	ID       string `json:"id"`
	Directed bool   `json:"directed"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
}

// QueryInfo is a listing summary for a staged query.
type QueryInfo struct {
	ID            string `json:"id"`
	QueryGraphID  string `json:"query_graph_id"`
	TargetGraphID string `json:"target_graph_id"`
	Matches       int    `json:"matches"`
}

type graphRecord struct {
	id string
	g  *graph.Graph
}

type queryRecord struct {
	id            string
	queryGraphID  string
	targetGraphID string
	matches       *btree.BTreeG[MatchItem]
}

// Store is the concurrency-safe staging area. A single RWMutex guards
// all records; match execution runs under the read lock (see WithQuery),
// so writers stall while a search is in flight.
type Store struct {
	mu      sync.RWMutex
	graphs  map[string]*graphRecord
	queries map[string]*queryRecord
}

func NewStore() *Store {
	return &Store{
		graphs:  make(map[string]*graphRecord),
		queries: make(map[string]*queryRecord),
	}
}

// CreateGraph registers an empty graph under the given ID.
func (s *Store) CreateGraph(id string, directed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graphs[id]; ok {
		return fmt.Errorf("graph %q already exists", id)
	}
	s.graphs[id] = &graphRecord{id: id, g: graph.New(directed)}
	return nil
}

// DeleteGraph removes a graph and, cascading, every query that
// references it.
func (s *Store) DeleteGraph(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graphs[id]; !ok {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, id)
	}
	delete(s.graphs, id)
	for qid, q := range s.queries {
		if q.queryGraphID == id || q.targetGraphID == id {
			delete(s.queries, qid)
		}
	}
	return nil
}

// AddNodes stages nodes into a graph. Fails on the first invalid node.
func (s *Store) AddNodes(graphID string, nodes []NodeSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.graphs[graphID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, graphID)
	}
	for _, n := range nodes {
		if err := rec.g.AddNode(n.ID, n.Meta); err != nil {
			return err
		}
	}
	return nil
}

// AddEdges stages edges into a graph. Fails on the first invalid edge.
func (s *Store) AddEdges(graphID string, edges []graph.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.graphs[graphID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, graphID)
	}
	for _, e := range edges {
		if err := rec.g.AddEdge(e.From, e.To); err != nil {
			return err
		}
	}
	return nil
}

// GraphInfo returns the listing summary for one graph.
func (s *Store) GraphInfo(id string) (GraphInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.graphs[id]
	if !ok {
		return GraphInfo{}, fmt.Errorf("%w: %q", ErrGraphNotFound, id)
	}
	return GraphInfo{ID: id, Directed: rec.g.Directed(), Nodes: rec.g.NodeCount(), Edges: rec.g.EdgeCount()}, nil
}

// Graphs lists all staged graphs, sorted by ID.
func (s *Store) Graphs() []GraphInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]GraphInfo, 0, len(s.graphs))
	for id, rec := range s.graphs {
		out = append(out, GraphInfo{ID: id, Directed: rec.g.Directed(), Nodes: rec.g.NodeCount(), Edges: rec.g.EdgeCount()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateQuery registers a query binding a query graph to a target graph.
func (s *Store) CreateQuery(id, queryGraphID, targetGraphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queries[id]; ok {
		return fmt.Errorf("query %q already exists", id)
	}
	if _, ok := s.graphs[queryGraphID]; !ok {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, queryGraphID)
	}
	if _, ok := s.graphs[targetGraphID]; !ok {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, targetGraphID)
	}
	s.queries[id] = &queryRecord{
		id:            id,
		queryGraphID:  queryGraphID,
		targetGraphID: targetGraphID,
		matches:       btree.NewBTreeG[MatchItem](matchItemLess),
	}
	return nil
}

// DeleteQuery removes a query and its staged matches.
func (s *Store) DeleteQuery(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queries[id]; !ok {
		return fmt.Errorf("%w: %q", ErrQueryNotFound, id)
	}
	delete(s.queries, id)
	return nil
}

// QueryInfo returns the listing summary for one query.
func (s *Store) QueryInfo(id string) (QueryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queries[id]
	if !ok {
		return QueryInfo{}, fmt.Errorf("%w: %q", ErrQueryNotFound, id)
	}
	return QueryInfo{ID: id, QueryGraphID: q.queryGraphID, TargetGraphID: q.targetGraphID, Matches: q.matches.Len()}, nil
}

// Queries lists all staged queries, sorted by ID.
func (s *Store) Queries() []QueryInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]QueryInfo, 0, len(s.queries))
	for id, q := range s.queries {
		out = append(out, QueryInfo{ID: id, QueryGraphID: q.queryGraphID, TargetGraphID: q.targetGraphID, Matches: q.matches.Len()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddMatches stages candidate matches against a query. Weights must be
// in [0, 1]; zero-weight matches are accepted but dropped, anything
// outside the range (or NaN) is rejected. Re-staging an existing
// (query node, target node) pair
// overwrites its weight. Both endpoints must already exist in their
// respective graphs.
func (s *Store) AddMatches(queryID string, items []MatchItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queries[queryID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrQueryNotFound, queryID)
	}
	qg := s.graphs[q.queryGraphID].g
	tg := s.graphs[q.targetGraphID].g

	for _, it := range items {
		if math.IsNaN(it.Weight) || it.Weight < 0 || it.Weight > 1 {
			return fmt.Errorf("%w: weight %v for (%d, %d) out of range [0, 1]", ErrInvalidMatch, it.Weight, it.QueryNode, it.TargetNode)
		}
		if !qg.HasNode(it.QueryNode) {
			return fmt.Errorf("%w: query node %d not in graph %q", ErrInvalidMatch, it.QueryNode, q.queryGraphID)
		}
		if !tg.HasNode(it.TargetNode) {
			return fmt.Errorf("%w: target node %d not in graph %q", ErrInvalidMatch, it.TargetNode, q.targetGraphID)
		}
		if it.Weight == 0 {
			continue
		}
		q.matches.Set(it)
	}
	return nil
}

// Matches returns the staged matches for a query as candidates, in
// (query node, target node) order.
func (s *Store) Matches(queryID string) ([]matcher.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queries[queryID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrQueryNotFound, queryID)
	}
	return collectMatches(q), nil
}

// WithQuery runs fn under the store's read lock with the query's graphs
// and staged candidates. The graphs are owned by the store and must be
// treated as read-only; the lock makes that safe against writers for
// the duration of fn, including a full match execution.
func (s *Store) WithQuery(queryID string, fn func(queryG, targetG *graph.Graph, cands []matcher.Candidate) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queries[queryID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrQueryNotFound, queryID)
	}
	return fn(s.graphs[q.queryGraphID].g, s.graphs[q.targetGraphID].g, collectMatches(q))
}

func collectMatches(q *queryRecord) []matcher.Candidate {
	out := make([]matcher.Candidate, 0, q.matches.Len())
	q.matches.Ascend(MatchItem{QueryNode: math.MinInt64, TargetNode: math.MinInt64}, func(it MatchItem) bool {
		out = append(out, matcher.Candidate{QueryID: it.QueryNode, TargetID: it.TargetNode, Weight: it.Weight})
		return true
	})
	return out
}
