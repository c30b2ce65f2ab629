// REST API handlers.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/sanonone/nemadb/pkg/core/graph"
	"github.com/sanonone/nemadb/pkg/core/matcher"
	"github.com/sanonone/nemadb/pkg/core/store"
	"github.com/sanonone/nemadb/pkg/engine"
)

// servePprof delegates /debug/pprof requests to the pprof handlers.
func servePprof(w http.ResponseWriter, r *http.Request, path string) bool {
	if !strings.HasPrefix(path, "/debug/pprof") {
		return false
	}
	switch {
	case path == "/debug/pprof/":
		pprof.Index(w, r)
	case path == "/debug/pprof/cmdline":
		pprof.Cmdline(w, r)
	case path == "/debug/pprof/profile":
		pprof.Profile(w, r)
	case path == "/debug/pprof/symbol":
		pprof.Symbol(w, r)
	case path == "/debug/pprof/trace":
		pprof.Trace(w, r)
	default:
		http.NotFound(w, r)
	}
	return true
}

func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", s.router)
}

// router is the main manual router. It inspects the URL and delegates
// to the correct handler.
func (s *Server) router(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// --- Debug endpoints (pprof) ---
	if servePprof(w, r, path) {
		return
	}

	// --- Collection endpoints ---
	switch path {
	case "/graphs":
		s.handleGraphsRequest(w, r)
		return
	case "/graphs/import":
		s.handleImportGraph(w, r)
		return
	case "/queries":
		s.handleQueriesRequest(w, r)
		return
	}

	// --- Item endpoints, like /graphs/{id} and /queries/{id}/execute ---
	if rest, ok := strings.CutPrefix(path, "/graphs/"); ok {
		if id, ok := strings.CutSuffix(rest, "/nodes"); ok {
			s.handleAddNodes(w, r, id)
			return
		}
		if id, ok := strings.CutSuffix(rest, "/edges"); ok {
			s.handleAddEdges(w, r, id)
			return
		}
		if !strings.Contains(rest, "/") {
			s.handleSingleGraphRequest(w, r, rest)
			return
		}
	}
	if rest, ok := strings.CutPrefix(path, "/queries/"); ok {
		if id, ok := strings.CutSuffix(rest, "/matches"); ok {
			s.handleMatchesRequest(w, r, id)
			return
		}
		if id, ok := strings.CutSuffix(rest, "/execute"); ok {
			s.handleExecuteQuery(w, r, id)
			return
		}
		if !strings.Contains(rest, "/") {
			s.handleSingleQueryRequest(w, r, rest)
			return
		}
	}

	// If no pattern matched, return Not Found.
	s.writeHTTPError(w, http.StatusNotFound, "endpoint not found")
}

// --- Graph handlers ---

// handleGraphsRequest handles both listing and creation.
func (s *Server) handleGraphsRequest(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeHTTPResponse(w, http.StatusOK, s.Engine.Graphs())
	case http.MethodPost:
		var req CreateGraphRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		id, err := s.Engine.CreateGraph(req.Directed)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusCreated, CreateGraphResponse{ID: id})
	default:
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "only GET and POST are allowed on /graphs")
	}
}

// handleImportGraph creates a graph and stages its nodes and edges in
// a single request.
func (s *Server) handleImportGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	var req ImportGraphRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	id, err := s.Engine.ImportGraph(req.Directed, req.Nodes, req.Edges)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusCreated, CreateGraphResponse{ID: id})
}

// handleSingleGraphRequest handles GET and DELETE on a single graph.
func (s *Server) handleSingleGraphRequest(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		info, err := s.Engine.GraphInfo(id)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, info)
	case http.MethodDelete:
		if err := s.Engine.DeleteGraph(id); err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "deleted"})
	default:
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "only GET and DELETE are allowed on /graphs/{id}")
	}
}

func (s *Server) handleAddNodes(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	var req AddNodesRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.Engine.AddNodes(id, req.Nodes); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (s *Server) handleAddEdges(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	var req AddEdgesRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.Engine.AddEdges(id, req.Edges); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// --- Query handlers ---

// handleQueriesRequest handles both listing and creation.
func (s *Server) handleQueriesRequest(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeHTTPResponse(w, http.StatusOK, s.Engine.Queries())
	case http.MethodPost:
		var req CreateQueryRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		id, err := s.Engine.CreateQuery(req.QueryGraphID, req.TargetGraphID)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusCreated, CreateQueryResponse{ID: id})
	default:
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "only GET and POST are allowed on /queries")
	}
}

// handleSingleQueryRequest handles GET and DELETE on a single query.
func (s *Server) handleSingleQueryRequest(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		info, err := s.Engine.QueryInfo(id)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, info)
	case http.MethodDelete:
		if err := s.Engine.DeleteQuery(id); err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "deleted"})
	default:
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "only GET and DELETE are allowed on /queries/{id}")
	}
}

// handleMatchesRequest handles staging (POST) and inspecting (GET) the
// candidate matches of a query.
func (s *Server) handleMatchesRequest(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		cands, err := s.Engine.Matches(id)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, cands)
	case http.MethodPost:
		var req AddMatchesRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		items := make([]store.MatchItem, len(req.Matches))
		for i, m := range req.Matches {
			items[i] = store.MatchItem{QueryNode: m.QueryNode, TargetNode: m.TargetNode, Weight: m.Weight}
		}
		if err := s.Engine.AddMatches(id, items); err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
	default:
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "only GET and POST are allowed on /queries/{id}/matches")
	}
}

// handleExecuteQuery runs the subgraph search for a staged query.
// A truncated search is still a 200: the response carries the
// truncated flag so the client can widen the budget and retry.
func (s *Server) handleExecuteQuery(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	var req ExecuteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	cfg := s.search.matcherConfig()
	if req.Alpha != nil {
		cfg.Alpha = *req.Alpha
	}
	if req.MaxRounds > 0 {
		cfg.MaxRounds = req.MaxRounds
	}
	if req.Tolerance > 0 {
		cfg.Tolerance = req.Tolerance
	}
	if req.MinScore != nil {
		cfg.MinScore = *req.MinScore
	}
	if req.ExpansionBudget > 0 {
		cfg.ExpansionBudget = req.ExpansionBudget
	}
	if req.Workers > 0 {
		cfg.Workers = req.Workers
	}
	if req.TimeoutMs > 0 {
		cfg.Timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.search.DefaultLimit
	}

	out, err := s.Engine.Execute(r.Context(), id, engine.ExecuteOptions{
		Limit:        limit,
		IncludeEdges: req.IncludeEdges,
		Config:       cfg,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, ExecuteResponse{QueryID: id, Output: out})
}

// --- HTTP response helpers ---

// decodeBody decodes a JSON request body. An empty body is accepted
// and leaves the destination zeroed.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}

// writeEngineError maps engine and validation errors onto HTTP status
// codes: unknown IDs are 404, rejected input is 400, the rest is 500.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrGraphNotFound) || errors.Is(err, store.ErrQueryNotFound):
		s.writeHTTPError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidMatch) ||
		errors.Is(err, engine.ErrNoMatches) ||
		errors.Is(err, matcher.ErrBadConfig) ||
		errors.Is(err, matcher.ErrInvalidCandidate) ||
		errors.Is(err, matcher.ErrBadWeight) ||
		errors.Is(err, graph.ErrDuplicateNode) ||
		errors.Is(err, graph.ErrUnknownNode) ||
		errors.Is(err, graph.ErrSelfLoop) ||
		errors.Is(err, graph.ErrDuplicateEdge):
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
	}
}
