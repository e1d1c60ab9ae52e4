package passes

import (
	"strconv"
	"sync/atomic"
)

const (
	// MergePrefix names the temporaries that carry a record across a
	// statement boundary.
	MergePrefix = "return_check_merge"
	// MaterializePrefix names the temporary that holds the final record of
	// a rewritten root.
	MaterializePrefix = "returned_expression"
)

// Namer mints temporary names for one compilation run. It is safe for
// concurrent use; components processed in parallel must share one Namer.
type Namer struct {
	merge       atomic.Uint64
	materialize atomic.Uint64
}

// NewNamer returns a Namer whose counters start at zero.
func NewNamer() *Namer {
	return &Namer{}
}

// MergeName returns a fresh merge temporary name.
func (n *Namer) MergeName() string {
	return MergePrefix + strconv.FormatUint(n.merge.Add(1)-1, 10)
}

// MaterializeName returns a fresh materialization temporary name.
func (n *Namer) MaterializeName() string {
	return MaterializePrefix + strconv.FormatUint(n.materialize.Add(1)-1, 10)
}
