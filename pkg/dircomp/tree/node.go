package tree

import (
	"strings"

	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// Node is one entry in the comparison tree. A node exists when the
// relative path was observed under either root; the per-side entries
// record what each side holds.
type Node struct {
	// RelPath is the slash-separated path relative to both roots.
	RelPath string

	// Name is the final path element.
	Name string

	// IsDir reports whether the node behaves as a directory in the
	// merged view. For a type conflict this is true when either side
	// is a directory, so the one-sided children remain reachable.
	IsDir bool

	// Left and Right are the per-side entries, nil when the side does
	// not have this path.
	Left  *types.Entry
	Right *types.Entry

	// Status is the current comparison outcome, refolded on every
	// relevant change.
	Status types.Status

	// TypeConflict marks a path that is a directory on one side and a
	// file on the other. Such a node is always Different.
	TypeConflict bool

	leftErr  error
	rightErr error
	resolved types.Status

	// Child tallies keeping the directory fold O(1) per update.
	pendingKids int
	unequalKids int

	parent   *Node
	children []*Node
}

// Parent returns the containing directory node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children in display order: directories
// before files, then case-insensitive name order.
func (n *Node) Children() []*Node {
	return n.children
}

// Entry returns the entry for the given side, nil when absent.
func (n *Node) Entry(side types.Side) *types.Entry {
	if side == types.Left {
		return n.Left
	}
	return n.Right
}

// HasSide reports whether the path exists under the given root.
func (n *Node) HasSide(side types.Side) bool {
	return n.Entry(side) != nil
}

// Err returns the scan or compare error recorded for the node, if
// any.
func (n *Node) Err() error {
	if n.leftErr != nil {
		return n.leftErr
	}
	return n.rightErr
}

// Depth returns the number of ancestors below the root.
func (n *Node) Depth() int {
	depth := 0
	for p := n.parent; p != nil && p.parent != nil; p = p.parent {
		depth++
	}
	return depth
}

// Summary aggregates one side of the node's subtree, used to describe
// a copy before it runs.
type Summary struct {
	Files int
	Dirs  int
	Bytes int64
}

// Summarize counts the files, directories and bytes the given side
// holds in this node's subtree.
func (n *Node) Summarize(side types.Side) Summary {
	var s Summary
	n.summarize(side, &s)
	return s
}

func (n *Node) summarize(side types.Side, s *Summary) {
	e := n.Entry(side)
	if e == nil {
		return
	}
	if e.IsDir {
		s.Dirs++
	} else {
		s.Files++
		s.Bytes += e.Size
	}
	for _, c := range n.children {
		c.summarize(side, s)
	}
}

// before reports display ordering between siblings: directories
// first, then case-insensitive name order with a case-sensitive
// tie-break.
func (n *Node) before(other *Node) bool {
	if n.IsDir != other.IsDir {
		return n.IsDir
	}
	a, b := strings.ToLower(n.Name), strings.ToLower(other.Name)
	if a != b {
		return a < b
	}
	return n.Name < other.Name
}
