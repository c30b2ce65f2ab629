package store

import (
	"errors"
	"math"
	"testing"

	"github.com/sanonone/nemadb/pkg/core/graph"
	"github.com/sanonone/nemadb/pkg/core/matcher"
)

func stagePair(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	if err := s.CreateGraph("query", false); err != nil {
		t.Fatalf("CreateGraph(query): %v", err)
	}
	if err := s.CreateGraph("target", false); err != nil {
		t.Fatalf("CreateGraph(target): %v", err)
	}
	if err := s.AddNodes("query", []NodeSpec{{ID: 0}, {ID: 1}}); err != nil {
		t.Fatalf("AddNodes(query): %v", err)
	}
	if err := s.AddNodes("target", []NodeSpec{{ID: 100}, {ID: 101}}); err != nil {
		t.Fatalf("AddNodes(target): %v", err)
	}
	if err := s.AddEdges("query", []graph.Edge{{From: 0, To: 1}}); err != nil {
		t.Fatalf("AddEdges(query): %v", err)
	}
	if err := s.CreateQuery("q1", "query", "target"); err != nil {
		t.Fatalf("CreateQuery: %v", err)
	}
	return s
}

func TestStoreGraphLifecycle(t *testing.T) {
	s := stagePair(t)

	infos := s.Graphs()
	if len(infos) != 2 || infos[0].ID != "query" || infos[1].ID != "target" {
		t.Fatalf("Graphs() = %+v, want [query target]", infos)
	}
	if infos[0].Nodes != 2 || infos[0].Edges != 1 {
		t.Errorf("query graph summary = %+v, want 2 nodes 1 edge", infos[0])
	}

	if err := s.AddNodes("missing", []NodeSpec{{ID: 5}}); !errors.Is(err, ErrGraphNotFound) {
		t.Errorf("AddNodes on missing graph: got %v, want ErrGraphNotFound", err)
	}
	if err := s.CreateGraph("query", true); err == nil {
		t.Error("CreateGraph with duplicate ID should fail")
	}
}

func TestStoreDeleteGraphCascades(t *testing.T) {
	s := stagePair(t)

	if err := s.DeleteGraph("target"); err != nil {
		t.Fatalf("DeleteGraph: %v", err)
	}
	if _, err := s.QueryInfo("q1"); !errors.Is(err, ErrQueryNotFound) {
		t.Errorf("query referencing deleted graph should be gone, got %v", err)
	}
	if err := s.DeleteGraph("target"); !errors.Is(err, ErrGraphNotFound) {
		t.Errorf("second delete: got %v, want ErrGraphNotFound", err)
	}
}

func TestStoreAddMatches(t *testing.T) {
	s := stagePair(t)

	err := s.AddMatches("q1", []MatchItem{
		{QueryNode: 0, TargetNode: 100, Weight: 0.9},
		{QueryNode: 0, TargetNode: 101, Weight: 0},   // dropped
		{QueryNode: 1, TargetNode: 101, Weight: 0.5},
		{QueryNode: 1, TargetNode: 101, Weight: 0.7}, // overwrites
	})
	if err != nil {
		t.Fatalf("AddMatches: %v", err)
	}

	cands, err := s.Matches("q1")
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(cands), cands)
	}
	if cands[0].QueryID != 0 || cands[0].TargetID != 100 || cands[0].Weight != 0.9 {
		t.Errorf("cands[0] = %+v", cands[0])
	}
	if cands[1].Weight != 0.7 {
		t.Errorf("re-staged pair weight = %v, want 0.7", cands[1].Weight)
	}

	invalid := []struct {
		name string
		item MatchItem
	}{
		{"weight above one", MatchItem{QueryNode: 0, TargetNode: 100, Weight: 1.5}},
		{"negative weight", MatchItem{QueryNode: 0, TargetNode: 100, Weight: -0.1}},
		{"nan weight", MatchItem{QueryNode: 0, TargetNode: 100, Weight: math.NaN()}},
		{"unknown query node", MatchItem{QueryNode: 9, TargetNode: 100, Weight: 0.5}},
		{"unknown target node", MatchItem{QueryNode: 0, TargetNode: 9, Weight: 0.5}},
	}
	for _, tc := range invalid {
		if err := s.AddMatches("q1", []MatchItem{tc.item}); !errors.Is(err, ErrInvalidMatch) {
			t.Errorf("%s: got %v, want ErrInvalidMatch", tc.name, err)
		}
	}
}

func TestStoreWithQuery(t *testing.T) {
	s := stagePair(t)
	if err := s.AddMatches("q1", []MatchItem{{QueryNode: 0, TargetNode: 100, Weight: 1}}); err != nil {
		t.Fatalf("AddMatches: %v", err)
	}

	called := false
	err := s.WithQuery("q1", func(queryG, targetG *graph.Graph, cands []matcher.Candidate) error {
		called = true
		if queryG.NodeCount() != 2 || targetG.NodeCount() != 2 {
			t.Errorf("unexpected graph sizes: %d, %d", queryG.NodeCount(), targetG.NodeCount())
		}
		if len(cands) != 1 || cands[0].Weight != 1 {
			t.Errorf("cands = %+v", cands)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithQuery: %v", err)
	}
	if !called {
		t.Fatal("WithQuery never invoked fn")
	}

	if err := s.WithQuery("nope", func(_, _ *graph.Graph, _ []matcher.Candidate) error { return nil }); !errors.Is(err, ErrQueryNotFound) {
		t.Errorf("WithQuery(missing): got %v, want ErrQueryNotFound", err)
	}
}
