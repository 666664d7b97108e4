// Package tree maintains the merged comparison tree for one scan
// generation. Nodes are arena-addressed by relative path and carry a
// status that is refolded bottom-up on every change, so the view is
// meaningful while the scan is still streaming entries in.
package tree

import (
	"path"
	"sort"
	"strings"

	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// Tree is the merged comparison state for one generation. It is not
// safe for concurrent use; a single consumer applies scanner and
// comparator events in order.
type Tree struct {
	gen      uint64
	root     *Node
	nodes    map[string]*Node
	complete bool
}

// New creates an empty tree for the given generation. The synthetic
// root node represents the two root directories themselves.
func New(gen uint64) *Tree {
	root := &Node{
		IsDir:    true,
		Left:     &types.Entry{IsDir: true},
		Right:    &types.Entry{IsDir: true},
		Status:   types.Pending,
		resolved: types.Pending,
	}
	return &Tree{
		gen:   gen,
		root:  root,
		nodes: map[string]*Node{"": root},
	}
}

// Gen returns the scan generation this tree was built from.
func (t *Tree) Gen() uint64 {
	return t.gen
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Node returns the node at the given relative path, nil when absent.
func (t *Tree) Node(relPath string) *Node {
	return t.nodes[clean(relPath)]
}

// Len returns the number of nodes excluding the synthetic root.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Complete reports whether MarkComplete has been called.
func (t *Tree) Complete() bool {
	return t.complete
}

// Insert records that one side holds the given entry, creating the
// node and any missing ancestor directories, and refolds the affected
// ancestry. It returns the node.
func (t *Tree) Insert(side types.Side, entry types.Entry) *Node {
	n := t.ensure(entry.RelPath, entry.IsDir)
	e := entry
	if side == types.Left {
		n.Left = &e
	} else {
		n.Right = &e
	}
	t.reconcileKind(n)
	t.setStatus(n, t.statusOf(n))
	return n
}

// SetError records a per-entry scan failure for one side. The node is
// created if the path was not seen before, and surfaces as Error.
func (t *Tree) SetError(side types.Side, relPath string, isDir bool, cause error) {
	n := t.ensure(relPath, isDir)
	if side == types.Left {
		n.leftErr = cause
	} else {
		n.rightErr = cause
	}
	t.setStatus(n, t.statusOf(n))
}

// Resolve applies a comparator outcome to a file node present on both
// sides and refolds its ancestry. Unknown paths are ignored.
func (t *Tree) Resolve(relPath string, status types.Status) {
	n := t.nodes[clean(relPath)]
	if n == nil || n.IsDir {
		return
	}
	n.resolved = status
	t.setStatus(n, t.statusOf(n))
}

// MarkComplete ends the Pending regime for this generation: empty
// directories and fully resolved subtrees settle into their final
// status.
func (t *Tree) MarkComplete() {
	t.complete = true
	t.refold(t.root)
}

// Swap inverts the sidedness of every node in place after the two
// roots exchange positions. Content outcomes are symmetric and keep
// their value; one-sided statuses flip.
func (t *Tree) Swap() {
	for _, n := range t.nodes {
		n.Left, n.Right = n.Right, n.Left
		n.leftErr, n.rightErr = n.rightErr, n.leftErr
		n.Status = n.Status.Swapped()
		n.resolved = n.resolved.Swapped()
	}
}

// Walk visits nodes depth-first in display order, starting below the
// synthetic root. The callback's return controls descent into the
// node's children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		for _, c := range n.children {
			if fn(c, depth) {
				walk(c, depth+1)
			}
		}
	}
	walk(t.root, 0)
}

// Stats counts nodes by status.
type Stats struct {
	Identical int
	Different int
	LeftOnly  int
	RightOnly int
	Errors    int
	Pending   int
}

// Stats tallies every node's current status.
func (t *Tree) Stats() Stats {
	var s Stats
	t.Walk(func(n *Node, _ int) bool {
		switch n.Status {
		case types.Identical:
			s.Identical++
		case types.Different:
			s.Different++
		case types.LeftOnly:
			s.LeftOnly++
		case types.RightOnly:
			s.RightOnly++
		case types.Error:
			s.Errors++
		default:
			s.Pending++
		}
		return true
	})
	return s
}

func clean(relPath string) string {
	return path.Clean("/" + relPath)[1:]
}

// ensure returns the node for relPath, creating it and any missing
// ancestors. Ancestors are created as directories.
func (t *Tree) ensure(relPath string, isDir bool) *Node {
	relPath = clean(relPath)
	if n, ok := t.nodes[relPath]; ok {
		return n
	}

	parentPath := ""
	name := relPath
	if i := strings.LastIndexByte(relPath, '/'); i >= 0 {
		parentPath, name = relPath[:i], relPath[i+1:]
	}
	parent := t.ensure(parentPath, true)

	n := &Node{
		RelPath:  relPath,
		Name:     name,
		IsDir:    isDir,
		Status:   types.Pending,
		resolved: types.Pending,
		parent:   parent,
	}
	t.nodes[relPath] = n
	parent.attach(n)
	t.setStatus(parent, t.statusOf(parent))
	return n
}

// reconcileKind detects file/directory conflicts once both sides are
// known and keeps sibling ordering consistent with the node's kind.
func (t *Tree) reconcileKind(n *Node) {
	wasDir := n.IsDir
	l, r := n.Left, n.Right
	n.TypeConflict = l != nil && r != nil && l.IsDir != r.IsDir
	n.IsDir = (l != nil && l.IsDir) || (r != nil && r.IsDir)
	if n.IsDir != wasDir && n.parent != nil {
		n.parent.detach(n)
		n.parent.attach(n)
	}
}

// setStatus records a status transition, keeps the parent's child
// tallies current, and propagates upward until an ancestor settles.
func (t *Tree) setStatus(n *Node, next types.Status) {
	if n.Status == next {
		return
	}
	old := n.Status
	n.Status = next
	if p := n.parent; p != nil {
		p.tally(old, -1)
		p.tally(next, +1)
		t.setStatus(p, t.statusOf(p))
	}
}

// refold rebuilds statuses and tallies for the whole subtree
// bottom-up. Used once per generation when the scan completes.
func (t *Tree) refold(n *Node) {
	n.pendingKids, n.unequalKids = 0, 0
	for _, c := range n.children {
		t.refold(c)
		c.parent.tally(c.Status, +1)
	}
	n.Status = t.statusOf(n)
}

// statusOf derives a node's status from its entries, errors, compare
// outcome and child tallies.
func (t *Tree) statusOf(n *Node) types.Status {
	if n.TypeConflict {
		return types.Different
	}
	if !n.IsDir {
		return t.fileStatus(n)
	}
	return t.dirStatus(n)
}

func (t *Tree) fileStatus(n *Node) types.Status {
	switch {
	case n.leftErr != nil || n.rightErr != nil:
		return types.Error
	case n.Left == nil:
		return types.RightOnly
	case n.Right == nil:
		return types.LeftOnly
	default:
		return n.resolved
	}
}

// dirStatus folds a directory from its child tallies. While the scan
// is incomplete an empty directory stays Pending because children may
// still arrive.
func (t *Tree) dirStatus(n *Node) types.Status {
	if !t.complete && len(n.children) == 0 {
		return types.Pending
	}

	switch {
	case n.pendingKids > 0:
		return types.Pending
	case n.leftErr != nil || n.rightErr != nil:
		return types.Error
	case n != t.root && n.Left == nil:
		return types.RightOnly
	case n != t.root && n.Right == nil:
		return types.LeftOnly
	case n.unequalKids > 0:
		return types.Different
	default:
		return types.Identical
	}
}

// tally adjusts the per-status child counters by delta.
func (p *Node) tally(s types.Status, delta int) {
	switch s {
	case types.Pending:
		p.pendingKids += delta
	case types.Identical:
	default:
		p.unequalKids += delta
	}
}

// attach inserts the child at its sorted position and counts it.
func (p *Node) attach(c *Node) {
	i := sort.Search(len(p.children), func(i int) bool {
		return c.before(p.children[i])
	})
	p.children = append(p.children, nil)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = c
	p.tally(c.Status, +1)
}

func (p *Node) detach(c *Node) {
	for i, existing := range p.children {
		if existing == c {
			p.children = append(p.children[:i], p.children[i+1:]...)
			p.tally(c.Status, -1)
			return
		}
	}
}
