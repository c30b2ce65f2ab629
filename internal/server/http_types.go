// This file defines the request/response payloads of the REST API.
package server

import (
	"github.com/sanonone/nemadb/pkg/core/graph"
	"github.com/sanonone/nemadb/pkg/core/matcher"
	"github.com/sanonone/nemadb/pkg/core/store"
)

type CreateGraphRequest struct {
	Directed bool `json:"directed"`
}

type CreateGraphResponse struct {
	ID string `json:"id"`
}

type AddNodesRequest struct {
	Nodes []store.NodeSpec `json:"nodes"`
}

type AddEdgesRequest struct {
	Edges []graph.Edge `json:"edges"`
}

// ImportGraphRequest creates a graph and stages nodes and edges in one
// round trip.
type ImportGraphRequest struct {
	Directed bool             `json:"directed"`
	Nodes    []store.NodeSpec `json:"nodes"`
	Edges    []graph.Edge     `json:"edges"`
}

type CreateQueryRequest struct {
	QueryGraphID  string `json:"query_graph_id"`
	TargetGraphID string `json:"target_graph_id"`
}

type CreateQueryResponse struct {
	ID string `json:"id"`
}

// MatchSpec is the wire form of one staged candidate match.
type MatchSpec struct {
	QueryNode  int64   `json:"query_node"`
	TargetNode int64   `json:"target_node"`
	Weight     float64 `json:"weight"`
}

type AddMatchesRequest struct {
	Matches []MatchSpec `json:"matches"`
}

// ExecuteRequest tunes a single search. Zero fields fall back to the
// server's configured defaults; Alpha and MinScore use pointers because
// zero is a meaningful value for both.
type ExecuteRequest struct {
	Limit           int      `json:"limit"`
	IncludeEdges    bool     `json:"include_edges"`
	Alpha           *float64 `json:"alpha"`
	MaxRounds       int      `json:"max_rounds"`
	Tolerance       float64  `json:"tolerance"`
	MinScore        *float64 `json:"min_score"`
	ExpansionBudget int64    `json:"expansion_budget"`
	Workers         int      `json:"workers"`
	TimeoutMs       int64    `json:"timeout_ms"`
}

type ExecuteResponse struct {
	QueryID string `json:"query_id"`
	*matcher.Output
}

type StatusResponse struct {
	Status string `json:"status"`
}
