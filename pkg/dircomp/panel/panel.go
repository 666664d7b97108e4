// Package panel holds the dual-panel view state over a comparison
// tree: one shared union-aligned row list, per-side cursor and scroll
// state, mirrored expansion, and the display filter. All methods run
// on the interactive goroutine.
package panel

import (
	"github.com/jamesainslie/dircomp/pkg/dircomp/tree"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// Row is one visible line, shared by both panels. Each panel renders
// its own side of the underlying node.
type Row struct {
	Node     *tree.Node
	Depth    int
	Expanded bool
}

// State is one panel's private view state. Expansion is kept per side
// but written through the controller so the panels stay mirrored for
// paths that exist on both.
type State struct {
	Expanded   map[string]bool
	Cursor     int
	CursorPath string
	Offset     int
}

func newState() State {
	return State{Expanded: make(map[string]bool)}
}

const defaultHeight = 20

// Controller coordinates the two panels over one tree. Navigation is
// per side; expansion, filtering and the row list are shared.
type Controller struct {
	tr     *tree.Tree
	filter types.FilterMode
	active types.Side
	left   State
	right  State
	rows   []Row
	height int
}

// NewController creates a controller over the tree with everything
// collapsed and the cursor on the first row of the left panel.
func NewController(tr *tree.Tree, filter types.FilterMode) *Controller {
	c := &Controller{
		tr:     tr,
		filter: filter,
		left:   newState(),
		right:  newState(),
		height: defaultHeight,
	}
	c.flatten()
	c.syncCursors()
	return c
}

// Tree returns the controller's current tree.
func (c *Controller) Tree() *tree.Tree {
	return c.tr
}

// Rows returns the shared visible row list.
func (c *Controller) Rows() []Row {
	return c.rows
}

// Active returns which panel owns keyboard navigation.
func (c *Controller) Active() types.Side {
	return c.active
}

// Filter returns the current display filter.
func (c *Controller) Filter() types.FilterMode {
	return c.filter
}

// Side returns a copy of one panel's view state.
func (c *Controller) Side(side types.Side) State {
	return *c.state(side)
}

// SetHeight updates the visible row count used for paging and scroll
// clamping.
func (c *Controller) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	c.height = h
	c.ensureVisible(&c.left)
	c.ensureVisible(&c.right)
}

// MoveCursor moves the active panel's cursor by delta rows. The
// inactive panel is untouched.
func (c *Controller) MoveCursor(delta int) {
	st := c.state(c.active)
	st.Cursor += delta
	c.clamp(st)
	c.ensureVisible(st)
}

// Page moves the active cursor by half a screen in the given
// direction (-1 up, +1 down).
func (c *Controller) Page(dir int) {
	step := c.height / 2
	if step < 1 {
		step = 1
	}
	c.MoveCursor(dir * step)
}

// Top moves the active cursor to the first row.
func (c *Controller) Top() {
	st := c.state(c.active)
	st.Cursor = 0
	c.clamp(st)
	c.ensureVisible(st)
}

// Bottom moves the active cursor to the last row.
func (c *Controller) Bottom() {
	st := c.state(c.active)
	st.Cursor = len(c.rows) - 1
	c.clamp(st)
	c.ensureVisible(st)
}

// SwitchSide gives keyboard focus to the named panel.
func (c *Controller) SwitchSide(side types.Side) {
	c.active = side
}

// ToggleSide flips keyboard focus to the other panel.
func (c *Controller) ToggleSide() {
	c.active = c.active.Other()
}

// CurrentRow returns the row under the active cursor.
func (c *Controller) CurrentRow() (Row, bool) {
	st := c.state(c.active)
	if st.Cursor < 0 || st.Cursor >= len(c.rows) {
		return Row{}, false
	}
	return c.rows[st.Cursor], true
}

// ToggleExpand flips the directory under the active cursor. The new
// expansion state is mirrored onto the other panel wherever the node
// exists on that side.
func (c *Controller) ToggleExpand() {
	row, ok := c.CurrentRow()
	if !ok || !row.Node.IsDir {
		return
	}
	c.setExpanded(row.Node, !c.expanded(row.Node.RelPath))
	c.Rebuild(true)
}

// ExpandAll expands every directory on both panels.
func (c *Controller) ExpandAll() {
	c.tr.Walk(func(n *tree.Node, _ int) bool {
		if n.IsDir {
			c.setExpanded(n, true)
		}
		return true
	})
	c.Rebuild(true)
}

// CollapseAll collapses every directory on both panels. Top-level
// rows stay visible.
func (c *Controller) CollapseAll() {
	c.left.Expanded = make(map[string]bool)
	c.right.Expanded = make(map[string]bool)
	c.Rebuild(true)
}

// SetFilter switches the display filter and re-clamps both cursors to
// surviving rows.
func (c *Controller) SetFilter(mode types.FilterMode) {
	if mode == c.filter {
		return
	}
	c.filter = mode
	c.Rebuild(true)
}

// AttachTree replaces the tree, typically after a refresh generation
// completes. Expansion survives for paths that still exist; each
// cursor returns to its path or the nearest surviving ancestor.
func (c *Controller) AttachTree(tr *tree.Tree) {
	c.tr = tr
	prune := func(m map[string]bool) {
		for rel := range m {
			if tr.Node(rel) == nil {
				delete(m, rel)
			}
		}
	}
	prune(c.left.Expanded)
	prune(c.right.Expanded)
	c.Rebuild(true)
}

// Swap realigns the view after the tree's sides were swapped. Rows
// keep their order and both cursors stay on the same paths, so the
// panels appear to exchange contents in place.
func (c *Controller) Swap() {
	c.Rebuild(true)
}

// Rebuild re-flattens the rows after any tree or view change. With
// preserve, each panel's cursor follows its path; otherwise cursors
// are clamped by index.
func (c *Controller) Rebuild(preserve bool) {
	oldRows := c.rows
	c.rows = nil
	c.flatten()

	for _, st := range []*State{&c.left, &c.right} {
		if preserve && st.CursorPath != "" {
			st.Cursor = c.locate(st.CursorPath, oldRows, st.Cursor)
		}
		c.clamp(st)
		c.ensureVisible(st)
	}
}

// state returns the mutable view state for a side.
func (c *Controller) state(side types.Side) *State {
	if side == types.Left {
		return &c.left
	}
	return &c.right
}

func (c *Controller) expanded(rel string) bool {
	return c.left.Expanded[rel] || c.right.Expanded[rel]
}

// setExpanded writes the expansion state into each side that has the
// node.
func (c *Controller) setExpanded(n *tree.Node, expanded bool) {
	for _, side := range []types.Side{types.Left, types.Right} {
		if !n.HasSide(side) {
			continue
		}
		m := c.state(side).Expanded
		if expanded {
			m[n.RelPath] = true
		} else {
			delete(m, n.RelPath)
		}
	}
}

func (c *Controller) flatten() {
	var visit func(n *tree.Node, depth int)
	visit = func(n *tree.Node, depth int) {
		for _, k := range n.Children() {
			if !c.filter.Matches(k.Status) {
				continue
			}
			exp := k.IsDir && c.expanded(k.RelPath)
			c.rows = append(c.rows, Row{Node: k, Depth: depth, Expanded: exp})
			if exp {
				visit(k, depth+1)
			}
		}
	}
	visit(c.tr.Root(), 0)
}

// locate finds the row index for a path. When the path is filtered
// out or gone, it falls back to the nearest surviving ancestor, then
// to the nearest surviving neighbour from the previous row order.
func (c *Controller) locate(rel string, oldRows []Row, oldIdx int) int {
	index := make(map[string]int, len(c.rows))
	for i, row := range c.rows {
		index[row.Node.RelPath] = i
	}

	if i, ok := index[rel]; ok {
		return i
	}

	// Nearest ancestor still visible. Ancestors come from the path
	// itself so this works even when the node is gone from the tree.
	for p := parentPath(rel); p != ""; p = parentPath(p) {
		if i, ok := index[p]; ok {
			return i
		}
	}

	// Nearest neighbour from the old ordering.
	for dist := 1; dist < len(oldRows); dist++ {
		for _, j := range []int{oldIdx - dist, oldIdx + dist} {
			if j < 0 || j >= len(oldRows) {
				continue
			}
			if i, ok := index[oldRows[j].Node.RelPath]; ok {
				return i
			}
		}
	}
	return oldIdx
}

func parentPath(rel string) string {
	for i := len(rel) - 1; i >= 0; i-- {
		if rel[i] == '/' {
			return rel[:i]
		}
	}
	return ""
}

func (c *Controller) clamp(st *State) {
	if st.Cursor >= len(c.rows) {
		st.Cursor = len(c.rows) - 1
	}
	if st.Cursor < 0 {
		st.Cursor = 0
	}
	if len(c.rows) == 0 {
		st.CursorPath = ""
		return
	}
	st.CursorPath = c.rows[st.Cursor].Node.RelPath
}

func (c *Controller) ensureVisible(st *State) {
	if st.Cursor < st.Offset {
		st.Offset = st.Cursor
	}
	if st.Cursor >= st.Offset+c.height {
		st.Offset = st.Cursor - c.height + 1
	}
	if st.Offset < 0 {
		st.Offset = 0
	}
}

func (c *Controller) syncCursors() {
	c.clamp(&c.left)
	c.clamp(&c.right)
}
