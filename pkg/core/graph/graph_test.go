package graph

import (
	"errors"
	"testing"
)

func TestAddNodeRejectsDuplicates(t *testing.T) {
	g := New(false)
	if err := g.AddNode(1, map[string]any{"label": "Hulk"}); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	err := g.AddNode(1, nil)
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("duplicate node: got %v, want ErrDuplicateNode", err)
	}
}

func TestAddEdgeValidation(t *testing.T) {
	g := New(false)
	g.AddNode(1, nil)
	g.AddNode(2, nil)
	g.AddEdge(1, 2)

	testCases := []struct {
		name     string
		from, to int64
		want     error
	}{
		{"self loop", 1, 1, ErrSelfLoop},
		{"unknown start", 9, 2, ErrUnknownNode},
		{"unknown end", 1, 9, ErrUnknownNode},
		{"duplicate", 1, 2, ErrDuplicateEdge},
		{"duplicate reversed", 2, 1, ErrDuplicateEdge},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := g.AddEdge(tc.from, tc.to); !errors.Is(err, tc.want) {
				t.Errorf("AddEdge(%d,%d): got %v, want %v", tc.from, tc.to, err, tc.want)
			}
		})
	}
}

func TestDirectedEdgeOrientation(t *testing.T) {
	g := New(true)
	g.AddNode(1, nil)
	g.AddNode(2, nil)
	if err := g.AddEdge(1, 2); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}

	if !g.HasEdge(1, 2) {
		t.Error("forward edge missing")
	}
	if g.HasEdge(2, 1) {
		t.Error("reverse edge should not exist in a directed graph")
	}
	// The reverse orientation is a distinct edge, not a duplicate.
	if err := g.AddEdge(2, 1); err != nil {
		t.Errorf("reverse AddEdge failed: %v", err)
	}

	// Neighborhoods ignore orientation.
	if got := g.Neighbors(2); len(got) != 1 || got[0] != 1 {
		t.Errorf("Neighbors(2) = %v, want [1]", got)
	}
}

func TestSortedAccessors(t *testing.T) {
	g := New(false)
	for _, id := range []int64{5, 1, 3} {
		g.AddNode(id, nil)
	}
	g.AddEdge(5, 1)
	g.AddEdge(3, 1)

	ids := g.NodeIDs()
	want := []int64{1, 3, 5}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("NodeIDs = %v, want %v", ids, want)
		}
	}

	neigh := g.Neighbors(1)
	if len(neigh) != 2 || neigh[0] != 3 || neigh[1] != 5 {
		t.Errorf("Neighbors(1) = %v, want [3 5]", neigh)
	}

	edges := g.Edges()
	if len(edges) != 2 {
		t.Fatalf("EdgeCount = %d, want 2", len(edges))
	}
	// Undirected edges come back in canonical (From < To) order.
	if edges[0] != (Edge{From: 1, To: 3}) || edges[1] != (Edge{From: 1, To: 5}) {
		t.Errorf("Edges = %v", edges)
	}

	if g.Degree(1) != 2 || g.Degree(3) != 1 {
		t.Errorf("Degree mismatch: %d, %d", g.Degree(1), g.Degree(3))
	}
}
