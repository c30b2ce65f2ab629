// This file implements the operational methods of the Engine, wrapping
// staging-area actions (graph create/delete, node/edge/match staging,
// query execution) with persistence logic. Every successful mutation is
// appended to the AOF so the staging state survives restarts.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sanonone/nemadb/pkg/core/graph"
	"github.com/sanonone/nemadb/pkg/core/matcher"
	"github.com/sanonone/nemadb/pkg/core/store"
	"github.com/sanonone/nemadb/pkg/metrics"
)

// ErrNoMatches is returned by Execute when the query has no staged
// candidate matches to search over.
var ErrNoMatches = errors.New("no matches staged for query")

// --- Graph Operations ---

// CreateGraph registers a new empty graph and returns its generated ID.
// The operation is persisted to the AOF log.
func (e *Engine) CreateGraph(directed bool) (string, error) {
	id := uuid.NewString()
	if err := e.Store.CreateGraph(id, directed); err != nil {
		return "", err
	}
	if err := e.persist("GCREATE " + id + " " + strconv.FormatBool(directed)); err != nil {
		return "", err
	}
	metrics.StagedGraphs.Inc()
	return id, nil
}

// DeleteGraph removes a graph and every query referencing it.
// The operation is persisted to the AOF log.
func (e *Engine) DeleteGraph(id string) error {
	if err := e.Store.DeleteGraph(id); err != nil {
		return err
	}
	if err := e.persist("GDEL " + id); err != nil {
		return err
	}
	metrics.StagedGraphs.Dec()
	return nil
}

// AddNodes stages nodes into a graph, persisting one NADD line each.
func (e *Engine) AddNodes(graphID string, nodes []store.NodeSpec) error {
	if err := e.Store.AddNodes(graphID, nodes); err != nil {
		return err
	}
	for _, n := range nodes {
		line := "NADD " + graphID + " " + strconv.FormatInt(n.ID, 10)
		if len(n.Meta) > 0 {
			raw, err := json.Marshal(n.Meta)
			if err != nil {
				return fmt.Errorf("failed to encode node metadata: %w", err)
			}
			line += " " + string(raw)
		}
		if err := e.persist(line); err != nil {
			return err
		}
	}
	return nil
}

// AddEdges stages edges into a graph, persisting one EADD line each.
func (e *Engine) AddEdges(graphID string, edges []graph.Edge) error {
	if err := e.Store.AddEdges(graphID, edges); err != nil {
		return err
	}
	for _, ed := range edges {
		line := "EADD " + graphID + " " + strconv.FormatInt(ed.From, 10) + " " + strconv.FormatInt(ed.To, 10)
		if err := e.persist(line); err != nil {
			return err
		}
	}
	return nil
}

// ImportGraph creates a graph and stages its nodes and edges in one
// call. On a staging error the partially built graph is removed again.
func (e *Engine) ImportGraph(directed bool, nodes []store.NodeSpec, edges []graph.Edge) (string, error) {
	id, err := e.CreateGraph(directed)
	if err != nil {
		return "", err
	}
	if err := e.AddNodes(id, nodes); err != nil {
		_ = e.DeleteGraph(id)
		return "", err
	}
	if err := e.AddEdges(id, edges); err != nil {
		_ = e.DeleteGraph(id)
		return "", err
	}
	return id, nil
}

// GraphInfo returns the listing summary for one staged graph.
func (e *Engine) GraphInfo(id string) (store.GraphInfo, error) {
	return e.Store.GraphInfo(id)
}

// Graphs lists all staged graphs.
func (e *Engine) Graphs() []store.GraphInfo {
	return e.Store.Graphs()
}

// --- Query Operations ---

// CreateQuery binds a query graph to a target graph and returns the
// generated query ID. The operation is persisted to the AOF log.
func (e *Engine) CreateQuery(queryGraphID, targetGraphID string) (string, error) {
	id := uuid.NewString()
	if err := e.Store.CreateQuery(id, queryGraphID, targetGraphID); err != nil {
		return "", err
	}
	if err := e.persist("QCREATE " + id + " " + queryGraphID + " " + targetGraphID); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteQuery removes a query and its staged matches.
// The operation is persisted to the AOF log.
func (e *Engine) DeleteQuery(id string) error {
	if err := e.Store.DeleteQuery(id); err != nil {
		return err
	}
	return e.persist("QDEL " + id)
}

// AddMatches stages candidate matches against a query, persisting one
// MADD line per kept match. Zero-weight matches are accepted and
// dropped without being logged.
func (e *Engine) AddMatches(queryID string, items []store.MatchItem) error {
	if err := e.Store.AddMatches(queryID, items); err != nil {
		return err
	}
	for _, it := range items {
		if it.Weight == 0 {
			continue
		}
		line := "MADD " + queryID +
			" " + strconv.FormatInt(it.QueryNode, 10) +
			" " + strconv.FormatInt(it.TargetNode, 10) +
			" " + strconv.FormatFloat(it.Weight, 'g', -1, 64)
		if err := e.persist(line); err != nil {
			return err
		}
	}
	return nil
}

// QueryInfo returns the listing summary for one staged query.
func (e *Engine) QueryInfo(id string) (store.QueryInfo, error) {
	return e.Store.QueryInfo(id)
}

// Queries lists all staged queries.
func (e *Engine) Queries() []store.QueryInfo {
	return e.Store.Queries()
}

// Matches returns the staged candidate matches for a query.
func (e *Engine) Matches(queryID string) ([]matcher.Candidate, error) {
	return e.Store.Matches(queryID)
}

// --- Execution ---

// ExecuteOptions controls a single query execution.
type ExecuteOptions struct {
	// Limit is the maximum number of results to return (default 10).
	Limit int
	// IncludeEdges adds per-result edge match reports.
	IncludeEdges bool
	// Config tunes the matcher; zero fields fall back to defaults.
	Config matcher.Config
}

// Execute runs the subgraph search for a staged query: it seeds the
// similarity matrix from the staged matches, refines it by
// neighborhood propagation, and searches for the best-scoring
// assignments. The staging area stays readable but cannot be written
// while the search runs.
func (e *Engine) Execute(ctx context.Context, queryID string, opts ExecuteOptions) (*matcher.Output, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	start := time.Now()
	var out *matcher.Output
	err := e.Store.WithQuery(queryID, func(queryG, targetG *graph.Graph, cands []matcher.Candidate) error {
		if len(cands) == 0 {
			return fmt.Errorf("%w: %q", ErrNoMatches, queryID)
		}
		var execErr error
		out, execErr = matcher.Execute(ctx, queryG, targetG, cands, opts.Limit, opts.IncludeEdges, opts.Config)
		return execErr
	})

	switch {
	case err != nil:
		metrics.QueriesTotal.WithLabelValues("error").Inc()
		return nil, err
	case out.Truncated:
		metrics.QueriesTotal.WithLabelValues("truncated").Inc()
	default:
		metrics.QueriesTotal.WithLabelValues("ok").Inc()
	}
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	metrics.PropagationRounds.Observe(float64(out.Rounds))

	return out, nil
}
