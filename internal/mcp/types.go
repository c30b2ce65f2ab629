package mcp

// --- Tool Arguments ---

type CreateGraphArgs struct {
	Directed bool `json:"directed,omitempty" jsonschema:"Whether edges are directed"`
}

type CreateGraphResult struct {
	GraphID string `json:"graph_id"`
}

type NodeArg struct {
	ID   int64          `json:"id"`
	Meta map[string]any `json:"meta,omitempty"`
}

type EdgeArg struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type ImportGraphArgs struct {
	Directed bool      `json:"directed,omitempty"`
	Nodes    []NodeArg `json:"nodes"`
	Edges    []EdgeArg `json:"edges,omitempty"`
}

type ImportGraphResult struct {
	GraphID string `json:"graph_id"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}

type MatchArg struct {
	QueryNode  int64   `json:"query_node" jsonschema:"required"`
	TargetNode int64   `json:"target_node" jsonschema:"required"`
	Weight     float64 `json:"weight" jsonschema:"Label similarity in (0.0-1.0],required"`
}

type StageMatchesArgs struct {
	QueryID       string     `json:"query_id,omitempty" jsonschema:"Existing query to stage into. Leave empty to create one"`
	QueryGraphID  string     `json:"query_graph_id,omitempty" jsonschema:"Required when query_id is empty"`
	TargetGraphID string     `json:"target_graph_id,omitempty" jsonschema:"Required when query_id is empty"`
	Matches       []MatchArg `json:"matches" jsonschema:"required"`
}

type StageMatchesResult struct {
	QueryID string `json:"query_id"`
	Staged  int    `json:"staged"`
}

type MatchSubgraphArgs struct {
	QueryID      string `json:"query_id" jsonschema:"required"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Max number of results (default 5)"`
	IncludeEdges bool   `json:"include_edges,omitempty" jsonschema:"Report which query edges the assignment preserves"`
}

type MatchSubgraphResult struct {
	Description string `json:"description"` // Formatted summary for the LLM
	Truncated   bool   `json:"truncated"`
}

type ListGraphsResult struct {
	Description string `json:"description"`
}
