// Package engine provides the high-level, embedded interface for NemaDB.
//
// It orchestrates the in-memory staging area (graphs, queries, candidate
// matches) and the on-disk persistence layer (AOF), providing a thread-safe
// database instance that can be used directly within Go applications
// without network overhead.
//
// Basic usage:
//
//	opts := engine.DefaultOptions("./data")
//	db, err := engine.Open(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sanonone/nemadb/pkg/core/store"
	"github.com/sanonone/nemadb/pkg/metrics"
	"github.com/sanonone/nemadb/pkg/persistence"
)

// Options configures the behavior of the Engine, mainly persistence.
type Options struct {
	// DataDir is the directory where the .aof file will be stored.
	// It is created automatically if it does not exist.
	DataDir string

	// AofFilename is the name of the Append-Only File (default: "nemadb.aof").
	AofFilename string

	// SyncOnWrite forces an fsync after every logged operation. Slower,
	// but guarantees no staged data is lost on crash. When false, writes
	// are flushed to the OS after each operation and synced on Close.
	SyncOnWrite bool
}

// DefaultOptions returns a standard configuration suitable for most use cases.
func DefaultOptions(dataDir string) Options {
	return Options{
		DataDir:     dataDir,
		AofFilename: "nemadb.aof",
	}
}

// Engine is the main entry point for NemaDB.
// It coordinates the in-memory staging Store and the on-disk AOF.
//
// Use Open() to initialize an Engine and Close() to shut it down gracefully.
type Engine struct {
	// Store is the underlying in-memory staging area.
	// While exported, it is recommended to use Engine methods so that
	// operations are correctly persisted to disk.
	Store *store.Store

	// AOF handles the append-only log. Every successful mutation is
	// written as one command line, so a restart rebuilds the exact
	// staging state by replaying the file.
	AOF *persistence.AOFWriter

	opts    Options
	aofPath string
}

// Open initializes a new Engine instance using the provided options.
//
// It creates DataDir if missing, replays the AOF to recover staged
// state, and returns a ready-to-use Engine. This method blocks until
// the staging area is fully loaded.
func Open(opts Options) (*Engine, error) {
	if opts.AofFilename == "" {
		opts.AofFilename = "nemadb.aof"
	}
	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	aofPath := filepath.Join(opts.DataDir, opts.AofFilename)

	e := &Engine{
		Store:   store.NewStore(),
		opts:    opts,
		aofPath: aofPath,
	}

	// Replay before opening the writer so recovery never appends.
	if err := e.replayAOF(); err != nil {
		return nil, fmt.Errorf("failed to replay AOF: %w", err)
	}

	aofWriter, err := persistence.NewAOFWriter(aofPath)
	if err != nil {
		return nil, err
	}
	e.AOF = aofWriter

	metrics.StagedGraphs.Set(float64(len(e.Store.Graphs())))

	return e, nil
}

// Close performs a clean shutdown of the Engine, syncing and closing
// the AOF file. Safe to call multiple times.
func (e *Engine) Close() error {
	if e.AOF == nil {
		return nil
	}
	if err := e.AOF.Sync(); err != nil {
		_ = e.AOF.Close()
		e.AOF = nil
		return err
	}
	err := e.AOF.Close()
	e.AOF = nil
	return err
}

// persist writes one command line to the AOF and flushes it according
// to the configured durability policy.
func (e *Engine) persist(line string) error {
	if err := e.AOF.Write(line + "\n"); err != nil {
		return fmt.Errorf("persistence error (AOF write failed): %w", err)
	}
	if e.opts.SyncOnWrite {
		if err := e.AOF.Sync(); err != nil {
			return fmt.Errorf("CRITICAL: persistence sync failed: %w", err)
		}
		return nil
	}
	if err := e.AOF.Flush(); err != nil {
		return fmt.Errorf("CRITICAL: persistence flush failed: %w", err)
	}
	return nil
}
