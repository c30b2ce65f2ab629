// Package graph defines the labeled graph model shared by the matcher
// and the staging store: nodes with opaque metadata, unweighted edges,
// and construction-time validation.
//
// A Graph is built incrementally with AddNode/AddEdge and is expected to
// be treated as read-only once a match query starts executing. All
// accessors that return collections (NodeIDs, Neighbors, Edges) return
// them in sorted order so downstream iteration is deterministic.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for graph construction. All of them are raised while
// building a graph, never during matching.
var (
	// ErrDuplicateNode indicates a node id was added twice.
	ErrDuplicateNode = errors.New("graph: duplicate node id")

	// ErrUnknownNode indicates an edge endpoint that is not in the node set.
	ErrUnknownNode = errors.New("graph: unknown node id")

	// ErrSelfLoop indicates an edge starting and ending on the same node.
	ErrSelfLoop = errors.New("graph: self-loops not allowed")

	// ErrDuplicateEdge indicates a parallel edge between the same endpoints.
	ErrDuplicateEdge = errors.New("graph: multi-edges not allowed")
)

// Edge is an unweighted connection between two node ids. For undirected
// graphs the stored form is canonical (From < To).
type Edge struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Graph is a set of labeled nodes plus an edge set referencing only
// nodes in that set. Presence/absence is the only edge information.
type Graph struct {
	directed bool

	meta  map[int64]map[string]any
	adj   map[int64]map[int64]struct{} // neighborhood, both directions
	edges map[Edge]struct{}
}

// New returns an empty graph. Directed graphs keep edge orientation for
// HasEdge checks; neighborhoods always cover both directions.
func New(directed bool) *Graph {
	return &Graph{
		directed: directed,
		meta:     make(map[int64]map[string]any),
		adj:      make(map[int64]map[int64]struct{}),
		edges:    make(map[Edge]struct{}),
	}
}

// Directed reports whether edges carry orientation.
func (g *Graph) Directed() bool { return g.directed }

// AddNode registers a node with optional metadata. The metadata map is
// opaque to the matching math and is carried through to results as-is.
func (g *Graph) AddNode(id int64, meta map[string]any) error {
	if _, exists := g.meta[id]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	g.meta[id] = meta
	g.adj[id] = make(map[int64]struct{})
	return nil
}

// AddEdge connects two existing nodes. Self-loops and parallel edges
// are rejected; for directed graphs the reverse orientation counts as a
// distinct edge.
func (g *Graph) AddEdge(from, to int64) error {
	if from == to {
		return fmt.Errorf("%w: %d", ErrSelfLoop, from)
	}
	if _, ok := g.meta[from]; !ok {
		return fmt.Errorf("%w: edge start %d", ErrUnknownNode, from)
	}
	if _, ok := g.meta[to]; !ok {
		return fmt.Errorf("%w: edge end %d", ErrUnknownNode, to)
	}
	key := g.edgeKey(from, to)
	if _, dup := g.edges[key]; dup {
		return fmt.Errorf("%w: (%d,%d)", ErrDuplicateEdge, from, to)
	}
	g.edges[key] = struct{}{}
	g.adj[from][to] = struct{}{}
	g.adj[to][from] = struct{}{}
	return nil
}

func (g *Graph) edgeKey(from, to int64) Edge {
	if !g.directed && from > to {
		from, to = to, from
	}
	return Edge{From: from, To: to}
}

// HasNode reports whether id is in the node set.
func (g *Graph) HasNode(id int64) bool {
	_, ok := g.meta[id]
	return ok
}

// Meta returns the metadata attached to a node.
func (g *Graph) Meta(id int64) (map[string]any, bool) {
	m, ok := g.meta[id]
	return m, ok
}

// HasEdge reports edge presence. Undirected graphs match either
// orientation; directed graphs match the stored orientation only.
func (g *Graph) HasEdge(from, to int64) bool {
	_, ok := g.edges[g.edgeKey(from, to)]
	return ok
}

// FindEdge returns the stored edge between two endpoints, if any. For
// undirected graphs the returned edge is in canonical orientation.
func (g *Graph) FindEdge(from, to int64) (Edge, bool) {
	key := g.edgeKey(from, to)
	_, ok := g.edges[key]
	return key, ok
}

// Neighbors returns the ids adjacent to a node, sorted ascending. For
// directed graphs this is the union of in- and out-neighbors: the
// structural neighborhood used by score propagation.
func (g *Graph) Neighbors(id int64) []int64 {
	set, ok := g.adj[id]
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Degree returns the neighborhood size of a node (0 for unknown ids).
func (g *Graph) Degree(id int64) int {
	return len(g.adj[id])
}

// NodeIDs returns all node ids sorted ascending.
func (g *Graph) NodeIDs() []int64 {
	out := make([]int64, 0, len(g.meta))
	for id := range g.meta {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges returns the edge set sorted by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.meta) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }
