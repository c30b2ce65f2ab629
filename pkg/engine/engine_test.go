package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/sanonone/nemadb/pkg/core/graph"
	"github.com/sanonone/nemadb/pkg/core/store"
)

// stageScenario stages a 3-node path query against a 4-node target
// that contains an exact copy of the path.
func stageScenario(t *testing.T, e *Engine) (queryID string) {
	t.Helper()

	qg, err := e.ImportGraph(false,
		[]store.NodeSpec{{ID: 0, Meta: map[string]any{"label": "person"}}, {ID: 1}, {ID: 2}},
		[]graph.Edge{{From: 0, To: 1}, {From: 1, To: 2}},
	)
	if err != nil {
		t.Fatalf("ImportGraph(query): %v", err)
	}
	tg, err := e.ImportGraph(false,
		[]store.NodeSpec{{ID: 10}, {ID: 11}, {ID: 12}, {ID: 20}},
		[]graph.Edge{{From: 10, To: 11}, {From: 11, To: 12}, {From: 12, To: 20}},
	)
	if err != nil {
		t.Fatalf("ImportGraph(target): %v", err)
	}

	queryID, err = e.CreateQuery(qg, tg)
	if err != nil {
		t.Fatalf("CreateQuery: %v", err)
	}
	err = e.AddMatches(queryID, []store.MatchItem{
		{QueryNode: 0, TargetNode: 10, Weight: 1},
		{QueryNode: 1, TargetNode: 11, Weight: 1},
		{QueryNode: 2, TargetNode: 12, Weight: 1},
		{QueryNode: 2, TargetNode: 20, Weight: 0.3},
	})
	if err != nil {
		t.Fatalf("AddMatches: %v", err)
	}
	return queryID
}

func TestEngineExecute(t *testing.T) {
	e, err := Open(DefaultOptions(t.TempDir()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer e.Close()

	queryID := stageScenario(t, e)

	out, err := e.Execute(context.Background(), queryID, ExecuteOptions{Limit: 1})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(out.Results))
	}
	best := out.Results[0]
	want := map[int64]int64{0: 10, 1: 11, 2: 12}
	for _, p := range best.Pairs {
		if want[p.QueryID] != p.TargetID {
			t.Errorf("pair %d -> %d, want %d", p.QueryID, p.TargetID, want[p.QueryID])
		}
	}
	if best.Score < 0.99 {
		t.Errorf("best score = %v, want ~1.0", best.Score)
	}
}

func TestEngineExecuteNoMatches(t *testing.T) {
	e, err := Open(DefaultOptions(t.TempDir()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer e.Close()

	qg, _ := e.ImportGraph(false, []store.NodeSpec{{ID: 0}}, nil)
	tg, _ := e.ImportGraph(false, []store.NodeSpec{{ID: 1}}, nil)
	queryID, err := e.CreateQuery(qg, tg)
	if err != nil {
		t.Fatalf("CreateQuery: %v", err)
	}

	if _, err := e.Execute(context.Background(), queryID, ExecuteOptions{}); !errors.Is(err, ErrNoMatches) {
		t.Errorf("Execute without staged matches: got %v, want ErrNoMatches", err)
	}
}

func TestEngineRecovery(t *testing.T) {
	dir := t.TempDir()

	e, err := Open(DefaultOptions(dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	queryID := stageScenario(t, e)

	// Also stage metadata with spaces to cover NADD tail replay.
	extra, err := e.ImportGraph(true, []store.NodeSpec{{ID: 7, Meta: map[string]any{"label": "Bruce Banner"}}}, nil)
	if err != nil {
		t.Fatalf("ImportGraph(extra): %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	e2, err := Open(DefaultOptions(dir))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer e2.Close()

	if got := len(e2.Graphs()); got != 3 {
		t.Fatalf("got %d graphs after replay, want 3", got)
	}
	info, err := e2.GraphInfo(extra)
	if err != nil {
		t.Fatalf("GraphInfo(extra): %v", err)
	}
	if !info.Directed || info.Nodes != 1 {
		t.Errorf("extra graph after replay = %+v", info)
	}

	qinfo, err := e2.QueryInfo(queryID)
	if err != nil {
		t.Fatalf("QueryInfo after replay: %v", err)
	}
	if qinfo.Matches != 4 {
		t.Errorf("got %d staged matches after replay, want 4", qinfo.Matches)
	}

	out, err := e2.Execute(context.Background(), queryID, ExecuteOptions{Limit: 1})
	if err != nil {
		t.Fatalf("Execute after replay: %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].Score < 0.99 {
		t.Errorf("replayed execution: %+v", out.Results)
	}
}

func TestEngineDeleteGraphPersisted(t *testing.T) {
	dir := t.TempDir()

	e, err := Open(DefaultOptions(dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	queryID := stageScenario(t, e)
	qinfo, err := e.QueryInfo(queryID)
	if err != nil {
		t.Fatalf("QueryInfo: %v", err)
	}
	if err := e.DeleteGraph(qinfo.TargetGraphID); err != nil {
		t.Fatalf("DeleteGraph: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	e2, err := Open(DefaultOptions(dir))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer e2.Close()

	if got := len(e2.Graphs()); got != 1 {
		t.Errorf("got %d graphs after replay, want 1", got)
	}
	if _, err := e2.QueryInfo(queryID); !errors.Is(err, store.ErrQueryNotFound) {
		t.Errorf("query should be cascaded away after replay, got %v", err)
	}
}
