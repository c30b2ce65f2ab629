package protocol

import (
	"fmt"
	"strings"
)

// Command is a single parsed staging command, as written to the AOF
// or received over the wire.
type Command struct {
	Name string // "GCREATE", "NADD", ...
	Args []string
}

// commandSpec describes the argument shape of a command. Fixed counts
// the whitespace-delimited leading arguments; when tail is true the
// rest of the line after them is kept verbatim as one final argument
// (used for node metadata JSON, which may contain spaces).
type commandSpec struct {
	fixed int
	tail  bool
}

var commandSpecs = map[string]commandSpec{
	"GCREATE": {fixed: 2},            // id directed
	"GDEL":    {fixed: 1},            // id
	"NADD":    {fixed: 2, tail: true}, // graphID nodeID [metaJSON]
	"EADD":    {fixed: 3},            // graphID from to
	"QCREATE": {fixed: 3},            // id queryGraphID targetGraphID
	"QDEL":    {fixed: 1},            // id
	"MADD":    {fixed: 4},            // queryID queryNode targetNode weight
}

// Parse parses a raw command line into a Command, validating the
// argument count against the command's spec.
func Parse(raw string) (*Command, error) {
	rest := strings.TrimSpace(raw)
	if rest == "" {
		return nil, fmt.Errorf("empty command")
	}

	var name string
	name, rest = nextToken(rest)
	name = strings.ToUpper(name)

	spec, ok := commandSpecs[name]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", name)
	}

	cmd := &Command{
		Name: name,
		Args: make([]string, 0, spec.fixed+1),
	}
	for i := 0; i < spec.fixed; i++ {
		var arg string
		arg, rest = nextToken(rest)
		if arg == "" {
			return nil, fmt.Errorf("%s: expected %d arguments, got %d", name, spec.fixed, i)
		}
		cmd.Args = append(cmd.Args, arg)
	}

	if rest != "" {
		if !spec.tail {
			return nil, fmt.Errorf("%s: unexpected trailing arguments %q", name, rest)
		}
		cmd.Args = append(cmd.Args, rest)
	}

	return cmd, nil
}

// nextToken cuts the first whitespace-delimited token off s and
// returns it together with the trimmed remainder.
func nextToken(s string) (token, rest string) {
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimLeft(s[idx:], " \t")
}
