package persistence

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestAOFWriteAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.aof")

	w, err := NewAOFWriter(path)
	if err != nil {
		t.Fatalf("NewAOFWriter: %v", err)
	}
	lines := []string{
		"GCREATE g1 false",
		`NADD g1 42 {"label": "two words"}`,
		"EADD g1 1 2",
	}
	for _, l := range lines {
		if err := w.Write(l + "\n"); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var replayed []string
	err = ReplayFile(path, func(line string) error {
		replayed = append(replayed, line)
		return nil
	})
	if err != nil {
		t.Fatalf("ReplayFile: %v", err)
	}
	if !reflect.DeepEqual(replayed, lines) {
		t.Errorf("replayed %v, want %v", replayed, lines)
	}
}

func TestReplayMissingFile(t *testing.T) {
	err := ReplayFile(filepath.Join(t.TempDir(), "none.aof"), func(string) error {
		t.Fatal("callback should not run")
		return nil
	})
	if err != nil {
		t.Errorf("missing file should not be an error, got %v", err)
	}
}

func TestReplayStopsOnCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.aof")
	if err := os.WriteFile(path, []byte("ONE\nTWO\n"), 0666); err != nil {
		t.Fatal(err)
	}

	calls := 0
	err := ReplayFile(path, func(line string) error {
		calls++
		return os.ErrInvalid
	})
	if err == nil {
		t.Fatal("expected error from callback")
	}
	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
}
