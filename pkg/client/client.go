// Package client provides a Go client for interacting with the NemaDB API.
//
// It offers a type-safe way to perform all major operations, including:
//   - Graph staging (create, import, add nodes/edges, list, delete).
//   - Query staging (create, stage candidate matches, list, delete).
//   - Subgraph match execution with per-request tuning.
//
// The client handles HTTP communication, JSON serialization/deserialization, and
// standardized error handling.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sanonone/nemadb/pkg/core/graph"
	"github.com/sanonone/nemadb/pkg/core/matcher"
	"github.com/sanonone/nemadb/pkg/core/store"
)

// --- Custom Errors ---

// APIError represents an error returned by the NemaDB API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// --- JSON Request/Response Structs ---

type idResponse struct {
	ID string `json:"id"`
}

// MatchSpec is one staged candidate match on the wire.
type MatchSpec struct {
	QueryNode  int64   `json:"query_node"`
	TargetNode int64   `json:"target_node"`
	Weight     float64 `json:"weight"`
}

// ExecuteRequest tunes a single search. Zero fields use the server's
// configured defaults.
type ExecuteRequest struct {
	Limit           int      `json:"limit,omitempty"`
	IncludeEdges    bool     `json:"include_edges,omitempty"`
	Alpha           *float64 `json:"alpha,omitempty"`
	MaxRounds       int      `json:"max_rounds,omitempty"`
	Tolerance       float64  `json:"tolerance,omitempty"`
	MinScore        *float64 `json:"min_score,omitempty"`
	ExpansionBudget int64    `json:"expansion_budget,omitempty"`
	Workers         int      `json:"workers,omitempty"`
	TimeoutMs       int64    `json:"timeout_ms,omitempty"`
}

// ExecuteResult is the outcome of one subgraph search.
type ExecuteResult struct {
	QueryID    string           `json:"query_id"`
	Results    []matcher.Result `json:"results"`
	Truncated  bool             `json:"truncated"`
	Rounds     int              `json:"rounds"`
	Expansions int64            `json:"expansions"`
}

// --- Client ---

// Client is the Go client for interacting with NemaDB.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New creates a new NemaDB client.
func New(host string, port int) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d", host, port),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewWithURL creates a client for a full base URL (e.g. behind a proxy).
func NewWithURL(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetAuthToken attaches a Bearer token to every request.
func (c *Client) SetAuthToken(token string) {
	c.authToken = token
}

// jsonRequest is a helper method to execute all requests to the API.
// It handles JSON serialization, HTTP calls, and error management.
func (c *Client) jsonRequest(method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil // For 204 responses.
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}

// --- Graph Methods ---

// CreateGraph creates an empty graph and returns its ID.
func (c *Client) CreateGraph(directed bool) (string, error) {
	respBody, err := c.jsonRequest(http.MethodPost, "/graphs", map[string]bool{"directed": directed})
	if err != nil {
		return "", err
	}
	var resp idResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ImportGraph creates a graph and stages its nodes and edges in one call.
func (c *Client) ImportGraph(directed bool, nodes []store.NodeSpec, edges []graph.Edge) (string, error) {
	payload := map[string]any{"directed": directed, "nodes": nodes, "edges": edges}
	respBody, err := c.jsonRequest(http.MethodPost, "/graphs/import", payload)
	if err != nil {
		return "", err
	}
	var resp idResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// AddNodes stages nodes into an existing graph.
func (c *Client) AddNodes(graphID string, nodes []store.NodeSpec) error {
	_, err := c.jsonRequest(http.MethodPost, "/graphs/"+graphID+"/nodes", map[string]any{"nodes": nodes})
	return err
}

// AddEdges stages edges into an existing graph.
func (c *Client) AddEdges(graphID string, edges []graph.Edge) error {
	_, err := c.jsonRequest(http.MethodPost, "/graphs/"+graphID+"/edges", map[string]any{"edges": edges})
	return err
}

// GetGraph retrieves the summary of one graph.
func (c *Client) GetGraph(graphID string) (store.GraphInfo, error) {
	var info store.GraphInfo
	respBody, err := c.jsonRequest(http.MethodGet, "/graphs/"+graphID, nil)
	if err != nil {
		return info, err
	}
	err = json.Unmarshal(respBody, &info)
	return info, err
}

// ListGraphs lists all staged graphs.
func (c *Client) ListGraphs() ([]store.GraphInfo, error) {
	respBody, err := c.jsonRequest(http.MethodGet, "/graphs", nil)
	if err != nil {
		return nil, err
	}
	var infos []store.GraphInfo
	err = json.Unmarshal(respBody, &infos)
	return infos, err
}

// DeleteGraph removes a graph and every query referencing it.
func (c *Client) DeleteGraph(graphID string) error {
	_, err := c.jsonRequest(http.MethodDelete, "/graphs/"+graphID, nil)
	return err
}

// --- Query Methods ---

// CreateQuery binds a query graph to a target graph and returns the query ID.
func (c *Client) CreateQuery(queryGraphID, targetGraphID string) (string, error) {
	payload := map[string]string{
		"query_graph_id":  queryGraphID,
		"target_graph_id": targetGraphID,
	}
	respBody, err := c.jsonRequest(http.MethodPost, "/queries", payload)
	if err != nil {
		return "", err
	}
	var resp idResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// GetQuery retrieves the summary of one query.
func (c *Client) GetQuery(queryID string) (store.QueryInfo, error) {
	var info store.QueryInfo
	respBody, err := c.jsonRequest(http.MethodGet, "/queries/"+queryID, nil)
	if err != nil {
		return info, err
	}
	err = json.Unmarshal(respBody, &info)
	return info, err
}

// ListQueries lists all staged queries.
func (c *Client) ListQueries() ([]store.QueryInfo, error) {
	respBody, err := c.jsonRequest(http.MethodGet, "/queries", nil)
	if err != nil {
		return nil, err
	}
	var infos []store.QueryInfo
	err = json.Unmarshal(respBody, &infos)
	return infos, err
}

// DeleteQuery removes a query and its staged matches.
func (c *Client) DeleteQuery(queryID string) error {
	_, err := c.jsonRequest(http.MethodDelete, "/queries/"+queryID, nil)
	return err
}

// StageMatches stages weighted candidate matches against a query.
func (c *Client) StageMatches(queryID string, matches []MatchSpec) error {
	_, err := c.jsonRequest(http.MethodPost, "/queries/"+queryID+"/matches", map[string]any{"matches": matches})
	return err
}

// GetMatches retrieves the staged candidate matches of a query.
func (c *Client) GetMatches(queryID string) ([]matcher.Candidate, error) {
	respBody, err := c.jsonRequest(http.MethodGet, "/queries/"+queryID+"/matches", nil)
	if err != nil {
		return nil, err
	}
	var cands []matcher.Candidate
	err = json.Unmarshal(respBody, &cands)
	return cands, err
}

// Execute runs the subgraph search for a staged query.
func (c *Client) Execute(queryID string, req ExecuteRequest) (*ExecuteResult, error) {
	respBody, err := c.jsonRequest(http.MethodPost, "/queries/"+queryID+"/execute", req)
	if err != nil {
		return nil, err
	}
	var result ExecuteResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
