package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/nemadb/pkg/engine"
)

func NewMCPServer(eng *engine.Engine) *mcp.Server {
	service := NewService(eng)

	// Create Server instance
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "NemaDB Matcher",
		Version: "0.2.0",
	}, nil) // Options can be nil for default

	// Register Tools using the Generic AddTool which inspects structs!

	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_graph",
		Description: "Create a new empty graph to stage nodes and edges into.",
	}, service.CreateGraph)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "import_graph",
		Description: "Create a graph and load its nodes and edges in one call.",
		InputSchema: importGraphSchema,
	}, service.ImportGraph)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "stage_matches",
		Description: "Stage weighted candidate matches between query-graph nodes and target-graph nodes. Creates the query when no query_id is given.",
	}, service.StageMatches)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "match_subgraph",
		Description: "Search the target graph for the best approximate embeddings of the query graph, ranked by score.",
	}, service.MatchSubgraph)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_graphs",
		Description: "List the staged graphs and queries with their sizes.",
	}, service.ListGraphs)

	return s
}

// importGraphSchema is spelled out by hand because the node metadata is
// an open object, which reflection would over-constrain.
var importGraphSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"directed": {
			Type:        "boolean",
			Description: "Whether edges are directed.",
		},
		"nodes": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"id": {Type: "integer", Description: "Node ID, unique within the graph."},
					"meta": {
						Type:                 "object",
						Description:          "Free-form node metadata (labels, attributes).",
						AdditionalProperties: &jsonschema.Schema{},
					},
				},
				Required: []string{"id"},
			},
		},
		"edges": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"from": {Type: "integer"},
					"to":   {Type: "integer"},
				},
				Required: []string{"from", "to"},
			},
		},
	},
	Required: []string{"nodes"},
}
