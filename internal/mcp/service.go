package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/nemadb/pkg/core/graph"
	"github.com/sanonone/nemadb/pkg/core/store"
	"github.com/sanonone/nemadb/pkg/engine"
)

type Service struct {
	engine *engine.Engine
}

func NewService(eng *engine.Engine) *Service {
	return &Service{engine: eng}
}

// --- Tool Handlers ---

func (s *Service) CreateGraph(ctx context.Context, req *mcp.CallToolRequest, args CreateGraphArgs) (*mcp.CallToolResult, CreateGraphResult, error) {
	id, err := s.engine.CreateGraph(args.Directed)
	if err != nil {
		return nil, CreateGraphResult{}, err
	}
	return nil, CreateGraphResult{GraphID: id}, nil
}

func (s *Service) ImportGraph(ctx context.Context, req *mcp.CallToolRequest, args ImportGraphArgs) (*mcp.CallToolResult, ImportGraphResult, error) {
	nodes := make([]store.NodeSpec, len(args.Nodes))
	for i, n := range args.Nodes {
		nodes[i] = store.NodeSpec{ID: n.ID, Meta: n.Meta}
	}
	edges := make([]graph.Edge, len(args.Edges))
	for i, e := range args.Edges {
		edges[i] = graph.Edge{From: e.From, To: e.To}
	}

	id, err := s.engine.ImportGraph(args.Directed, nodes, edges)
	if err != nil {
		return nil, ImportGraphResult{}, err
	}
	return nil, ImportGraphResult{GraphID: id, Nodes: len(nodes), Edges: len(edges)}, nil
}

func (s *Service) StageMatches(ctx context.Context, req *mcp.CallToolRequest, args StageMatchesArgs) (*mcp.CallToolResult, StageMatchesResult, error) {
	queryID := args.QueryID
	if queryID == "" {
		if args.QueryGraphID == "" || args.TargetGraphID == "" {
			return nil, StageMatchesResult{}, fmt.Errorf("either query_id or both query_graph_id and target_graph_id are required")
		}
		var err error
		queryID, err = s.engine.CreateQuery(args.QueryGraphID, args.TargetGraphID)
		if err != nil {
			return nil, StageMatchesResult{}, err
		}
	}

	items := make([]store.MatchItem, len(args.Matches))
	for i, m := range args.Matches {
		items[i] = store.MatchItem{QueryNode: m.QueryNode, TargetNode: m.TargetNode, Weight: m.Weight}
	}
	if err := s.engine.AddMatches(queryID, items); err != nil {
		return nil, StageMatchesResult{}, err
	}
	return nil, StageMatchesResult{QueryID: queryID, Staged: len(items)}, nil
}

func (s *Service) MatchSubgraph(ctx context.Context, req *mcp.CallToolRequest, args MatchSubgraphArgs) (*mcp.CallToolResult, MatchSubgraphResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 5
	}

	out, err := s.engine.Execute(ctx, args.QueryID, engine.ExecuteOptions{
		Limit:        limit,
		IncludeEdges: args.IncludeEdges,
	})
	if err != nil {
		return nil, MatchSubgraphResult{}, err
	}

	// Format as a readable description for the LLM
	var sb strings.Builder
	if len(out.Results) == 0 {
		sb.WriteString("No embeddings found for this query.\n")
	} else {
		fmt.Fprintf(&sb, "Found %d embedding(s) after %d propagation round(s):\n", len(out.Results), out.Rounds)
		for i, res := range out.Results {
			fmt.Fprintf(&sb, "%d. score %.4f:", i+1, res.Score)
			for _, p := range res.Pairs {
				fmt.Fprintf(&sb, " %d->%d", p.QueryID, p.TargetID)
			}
			sb.WriteString("\n")
			for _, em := range res.Edges {
				if em.Matched {
					fmt.Fprintf(&sb, "   edge (%d,%d) preserved\n", em.QueryEdge.From, em.QueryEdge.To)
				} else {
					fmt.Fprintf(&sb, "   edge (%d,%d) NOT preserved\n", em.QueryEdge.From, em.QueryEdge.To)
				}
			}
		}
	}
	if out.Truncated {
		sb.WriteString("Search was truncated by its budget; results may be incomplete.\n")
	}

	return nil, MatchSubgraphResult{Description: sb.String(), Truncated: out.Truncated}, nil
}

func (s *Service) ListGraphs(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, ListGraphsResult, error) {
	var sb strings.Builder

	graphs := s.engine.Graphs()
	if len(graphs) == 0 {
		sb.WriteString("No graphs staged.\n")
	} else {
		sb.WriteString("Graphs:\n")
		for _, g := range graphs {
			kind := "undirected"
			if g.Directed {
				kind = "directed"
			}
			fmt.Fprintf(&sb, "- %s: %s, %d nodes, %d edges\n", g.ID, kind, g.Nodes, g.Edges)
		}
	}

	queries := s.engine.Queries()
	if len(queries) > 0 {
		sb.WriteString("Queries:\n")
		for _, q := range queries {
			fmt.Fprintf(&sb, "- %s: %s against %s, %d staged matches\n", q.ID, q.QueryGraphID, q.TargetGraphID, q.Matches)
		}
	}

	return nil, ListGraphsResult{Description: sb.String()}, nil
}
