package matcher

import (
	"math"
	"testing"

	"github.com/sanonone/nemadb/pkg/core/graph"
)

func TestPropagateKeepsSupportAndRange(t *testing.T) {
	q, tg := pairGraphs(t)
	cands := []Candidate{
		{QueryID: 0, TargetID: 10, Weight: 0.9},
		{QueryID: 1, TargetID: 11, Weight: 0.8},
		{QueryID: 2, TargetID: 12, Weight: 0.7},
		{QueryID: 2, TargetID: 20, Weight: 0.3},
	}
	m, err := NewMatrix(q, tg, cands)
	if err != nil {
		t.Fatal(err)
	}

	before := make(map[[2]int64]struct{})
	m.Each(func(qi, ti int64, _ float64) { before[[2]int64{qi, ti}] = struct{}{} })

	rounds := m.Propagate(q, tg, DefaultConfig())
	if rounds == 0 || rounds > DefaultMaxRounds {
		t.Errorf("rounds = %d", rounds)
	}

	after := 0
	m.Each(func(qi, ti int64, s float64) {
		after++
		if _, ok := before[[2]int64{qi, ti}]; !ok {
			t.Errorf("propagation invented pair (%d,%d)", qi, ti)
		}
		if s < 0 || s > 1 || math.IsNaN(s) {
			t.Errorf("score(%d,%d) = %v outside [0,1]", qi, ti, s)
		}
	})
	if after != len(before) {
		t.Errorf("support changed: %d -> %d", len(before), after)
	}
}

func TestPropagateIsolatedNodeKeepsLabelWeight(t *testing.T) {
	q := graph.New(false)
	q.AddNode(0, nil) // no edges: judged purely on label similarity
	tg := graph.New(false)
	tg.AddNode(5, nil)
	tg.AddNode(6, nil)

	m, err := NewMatrix(q, tg, []Candidate{
		{QueryID: 0, TargetID: 5, Weight: 0.9},
		{QueryID: 0, TargetID: 6, Weight: 0.4},
	})
	if err != nil {
		t.Fatal(err)
	}
	m.Propagate(q, tg, DefaultConfig())

	if s, _ := m.Score(0, 5); s != 0.9 {
		t.Errorf("Score(0,5) = %v, want 0.9 unchanged", s)
	}
	if s, _ := m.Score(0, 6); s != 0.4 {
		t.Errorf("Score(0,6) = %v, want 0.4 unchanged", s)
	}
}

func TestPropagateRewardsStructuralAgreement(t *testing.T) {
	q, tg := pairGraphs(t)
	m, err := NewMatrix(q, tg, []Candidate{
		{QueryID: 0, TargetID: 10, Weight: 0.8},
		{QueryID: 1, TargetID: 11, Weight: 0.8},
		{QueryID: 2, TargetID: 12, Weight: 0.8},
		{QueryID: 2, TargetID: 20, Weight: 0.8}, // same label score, no structure around 20
	})
	if err != nil {
		t.Fatal(err)
	}
	m.Propagate(q, tg, DefaultConfig())

	structured, _ := m.Score(2, 12)
	isolated, _ := m.Score(2, 20)
	if structured <= isolated {
		t.Errorf("structural agreement not rewarded: score(2,12)=%v <= score(2,20)=%v", structured, isolated)
	}
}

// Running far more rounds than convergence needs must not move the
// scores beyond the tolerance.
func TestPropagateConvergenceIdempotence(t *testing.T) {
	q, tg := pairGraphs(t)
	cands := []Candidate{
		{QueryID: 0, TargetID: 10, Weight: 0.9},
		{QueryID: 1, TargetID: 11, Weight: 0.7},
		{QueryID: 2, TargetID: 12, Weight: 0.5},
	}

	short, _ := NewMatrix(q, tg, cands)
	long, _ := NewMatrix(q, tg, cands)

	cfg := DefaultConfig()
	short.Propagate(q, tg, cfg)
	cfg.MaxRounds = 200
	long.Propagate(q, tg, cfg)

	long.Each(func(qi, ti int64, want float64) {
		got, ok := short.Score(qi, ti)
		if !ok {
			t.Fatalf("pair (%d,%d) missing after short run", qi, ti)
		}
		if math.Abs(got-want) > cfg.Tolerance {
			t.Errorf("score(%d,%d): short=%v long=%v beyond tolerance", qi, ti, got, want)
		}
	})
}
