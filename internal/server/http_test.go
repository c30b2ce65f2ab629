package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sanonone/nemadb/pkg/engine"
)

func newTestServer(t *testing.T, authToken string) (*Server, *httptest.Server) {
	t.Helper()

	eng, err := engine.Open(engine.DefaultOptions(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })

	cfg := DefaultConfig()
	cfg.AuthToken = authToken
	s, err := NewServer(eng, cfg)
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decoding response: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthzAndAuth(t *testing.T) {
	_, ts := newTestServer(t, "test-secret-token")

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("healthz expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/graphs")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 401 {
		t.Errorf("protected expected 401, got %d", resp.StatusCode)
	}

	req, err := http.NewRequest("GET", ts.URL+"/graphs", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Add("Authorization", "Bearer test-secret-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("protected with token expected 200, got %d", resp.StatusCode)
	}
}

func TestGraphQueryLifecycle(t *testing.T) {
	_, ts := newTestServer(t, "")

	// Import the query graph: a 2-node edge.
	var qg CreateGraphResponse
	status := doJSON(t, "POST", ts.URL+"/graphs/import", map[string]any{
		"nodes": []map[string]any{{"id": 0}, {"id": 1}},
		"edges": []map[string]any{{"from": 0, "to": 1}},
	}, &qg)
	if status != http.StatusCreated {
		t.Fatalf("import query graph: status %d", status)
	}

	// Build the target graph incrementally.
	var tg CreateGraphResponse
	if status := doJSON(t, "POST", ts.URL+"/graphs", CreateGraphRequest{}, &tg); status != http.StatusCreated {
		t.Fatalf("create target graph: status %d", status)
	}
	if status := doJSON(t, "POST", fmt.Sprintf("%s/graphs/%s/nodes", ts.URL, tg.ID), map[string]any{
		"nodes": []map[string]any{{"id": 10}, {"id": 11}, {"id": 12}},
	}, nil); status != http.StatusOK {
		t.Fatalf("add nodes: status %d", status)
	}
	if status := doJSON(t, "POST", fmt.Sprintf("%s/graphs/%s/edges", ts.URL, tg.ID), map[string]any{
		"edges": []map[string]any{{"from": 10, "to": 11}, {"from": 11, "to": 12}},
	}, nil); status != http.StatusOK {
		t.Fatalf("add edges: status %d", status)
	}

	// Duplicate node is a client error.
	if status := doJSON(t, "POST", fmt.Sprintf("%s/graphs/%s/nodes", ts.URL, tg.ID), map[string]any{
		"nodes": []map[string]any{{"id": 10}},
	}, nil); status != http.StatusBadRequest {
		t.Errorf("duplicate node: status %d, want 400", status)
	}

	// Unknown graph is a 404.
	if status := doJSON(t, "GET", ts.URL+"/graphs/nope", nil, nil); status != http.StatusNotFound {
		t.Errorf("missing graph: status %d, want 404", status)
	}

	// Create the query and stage matches.
	var q CreateQueryResponse
	if status := doJSON(t, "POST", ts.URL+"/queries", CreateQueryRequest{
		QueryGraphID:  qg.ID,
		TargetGraphID: tg.ID,
	}, &q); status != http.StatusCreated {
		t.Fatalf("create query: status %d", status)
	}

	// Executing before staging matches is a client error.
	if status := doJSON(t, "POST", fmt.Sprintf("%s/queries/%s/execute", ts.URL, q.ID), nil, nil); status != http.StatusBadRequest {
		t.Errorf("execute without matches: status %d, want 400", status)
	}

	if status := doJSON(t, "POST", fmt.Sprintf("%s/queries/%s/matches", ts.URL, q.ID), AddMatchesRequest{
		Matches: []MatchSpec{
			{QueryNode: 0, TargetNode: 10, Weight: 1},
			{QueryNode: 1, TargetNode: 11, Weight: 1},
			{QueryNode: 1, TargetNode: 12, Weight: 0.2},
		},
	}, nil); status != http.StatusOK {
		t.Fatalf("stage matches: status %d", status)
	}

	// Out-of-range weight is a client error.
	if status := doJSON(t, "POST", fmt.Sprintf("%s/queries/%s/matches", ts.URL, q.ID), AddMatchesRequest{
		Matches: []MatchSpec{{QueryNode: 0, TargetNode: 10, Weight: 2}},
	}, nil); status != http.StatusBadRequest {
		t.Errorf("bad weight: status %d, want 400", status)
	}

	// Execute and verify the best assignment.
	var out ExecuteResponse
	if status := doJSON(t, "POST", fmt.Sprintf("%s/queries/%s/execute", ts.URL, q.ID), ExecuteRequest{
		Limit:        1,
		IncludeEdges: true,
	}, &out); status != http.StatusOK {
		t.Fatalf("execute: status %d", status)
	}
	if out.Truncated {
		t.Error("tiny search should not truncate")
	}
	if len(out.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(out.Results))
	}
	best := out.Results[0]
	if best.Score < 0.99 {
		t.Errorf("best score = %v, want ~1.0", best.Score)
	}
	if len(best.Edges) != 1 || !best.Edges[0].Matched {
		t.Errorf("edge report = %+v, want one matched edge", best.Edges)
	}

	// Listings reflect the staged state.
	var graphs []map[string]any
	if status := doJSON(t, "GET", ts.URL+"/graphs", nil, &graphs); status != http.StatusOK || len(graphs) != 2 {
		t.Errorf("list graphs: status %d, %d entries", status, len(graphs))
	}

	// Deleting the target graph cascades onto the query.
	if status := doJSON(t, "DELETE", fmt.Sprintf("%s/graphs/%s", ts.URL, tg.ID), nil, nil); status != http.StatusOK {
		t.Fatalf("delete graph: status %d", status)
	}
	if status := doJSON(t, "GET", fmt.Sprintf("%s/queries/%s", ts.URL, q.ID), nil, nil); status != http.StatusNotFound {
		t.Errorf("query after cascade: status %d, want 404", status)
	}
}
