// Package output renders comparison results for non-interactive use.
package output

import (
	"fmt"
	"io"

	"github.com/jamesainslie/dircomp/pkg/dircomp/tree"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// WriteSimple prints one line per non-identical entry in tree order:
//
//	[L] path      exists only under the left root
//	[R] path      exists only under the right root
//	[D] path      both exist and differ
//	[E] path      could not be read or compared
//
// Directories carry a trailing slash. Identical entries are omitted
// so the output is empty when the trees match, which makes it easy to
// pipe or diff against a previous run.
func WriteSimple(w io.Writer, tr *tree.Tree) error {
	var werr error
	tr.Walk(func(n *tree.Node, _ int) bool {
		if werr != nil || n.Status == types.Identical {
			return false
		}
		suffix := ""
		if n.IsDir {
			suffix = "/"
		}
		_, werr = fmt.Fprintf(w, "[%s] %s%s\n", n.Status.Tag(), n.RelPath, suffix)
		return werr == nil
	})
	return werr
}

// WriteSummary prints a short human-readable tally of the
// comparison.
func WriteSummary(w io.Writer, tr *tree.Tree, leftRoot, rightRoot string) error {
	s := tr.Stats()
	_, err := fmt.Fprintf(w,
		"compared %s and %s: %d identical, %d different, %d left-only, %d right-only, %d errors\n",
		leftRoot, rightRoot, s.Identical, s.Different, s.LeftOnly, s.RightOnly, s.Errors)
	return err
}
