package engine

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sanonone/nemadb/internal/protocol"
	"github.com/sanonone/nemadb/pkg/core/graph"
	"github.com/sanonone/nemadb/pkg/core/store"
	"github.com/sanonone/nemadb/pkg/persistence"
)

// replayAOF reads the AOF file and reconstructs the staging state by
// applying each logged command in order. Only commands that succeeded
// were logged, so replay applies them directly without re-logging.
func (e *Engine) replayAOF() error {
	return persistence.ReplayFile(e.aofPath, func(line string) error {
		cmd, err := protocol.Parse(line)
		if err != nil {
			return err
		}
		return e.apply(cmd)
	})
}

// apply dispatches one parsed command against the staging store.
func (e *Engine) apply(cmd *protocol.Command) error {
	switch cmd.Name {
	case "GCREATE":
		directed, err := strconv.ParseBool(cmd.Args[1])
		if err != nil {
			return fmt.Errorf("GCREATE: bad directed flag %q: %w", cmd.Args[1], err)
		}
		return e.Store.CreateGraph(cmd.Args[0], directed)

	case "GDEL":
		return e.Store.DeleteGraph(cmd.Args[0])

	case "NADD":
		nodeID, err := strconv.ParseInt(cmd.Args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("NADD: bad node id %q: %w", cmd.Args[1], err)
		}
		var meta map[string]any
		if len(cmd.Args) == 3 {
			if err := json.Unmarshal([]byte(cmd.Args[2]), &meta); err != nil {
				return fmt.Errorf("NADD: bad metadata: %w", err)
			}
		}
		return e.Store.AddNodes(cmd.Args[0], []store.NodeSpec{{ID: nodeID, Meta: meta}})

	case "EADD":
		from, err := strconv.ParseInt(cmd.Args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("EADD: bad from id %q: %w", cmd.Args[1], err)
		}
		to, err := strconv.ParseInt(cmd.Args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("EADD: bad to id %q: %w", cmd.Args[2], err)
		}
		return e.Store.AddEdges(cmd.Args[0], []graph.Edge{{From: from, To: to}})

	case "QCREATE":
		return e.Store.CreateQuery(cmd.Args[0], cmd.Args[1], cmd.Args[2])

	case "QDEL":
		return e.Store.DeleteQuery(cmd.Args[0])

	case "MADD":
		qn, err := strconv.ParseInt(cmd.Args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("MADD: bad query node %q: %w", cmd.Args[1], err)
		}
		tn, err := strconv.ParseInt(cmd.Args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("MADD: bad target node %q: %w", cmd.Args[2], err)
		}
		w, err := strconv.ParseFloat(cmd.Args[3], 64)
		if err != nil {
			return fmt.Errorf("MADD: bad weight %q: %w", cmd.Args[3], err)
		}
		return e.Store.AddMatches(cmd.Args[0], []store.MatchItem{{QueryNode: qn, TargetNode: tn, Weight: w}})

	default:
		return fmt.Errorf("unknown command %q in AOF", cmd.Name)
	}
}
