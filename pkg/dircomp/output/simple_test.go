package output_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dircomp/pkg/dircomp/output"
	"github.com/jamesainslie/dircomp/pkg/dircomp/tree"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

func buildResultTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New(1)

	add := func(side types.Side, rel string, isDir bool) {
		tr.Insert(side, types.Entry{RelPath: rel, Name: rel, IsDir: isDir, Size: 1})
	}
	pair := func(rel string, status types.Status) {
		add(types.Left, rel, false)
		add(types.Right, rel, false)
		tr.Resolve(rel, status)
	}

	add(types.Left, "docs", true)
	add(types.Right, "docs", true)
	pair("docs/changed.txt", types.Different)
	pair("docs/same.txt", types.Identical)
	add(types.Left, "orphan-dir", true)
	add(types.Left, "orphan-dir/inner.txt", false)
	pair("equal.txt", types.Identical)
	add(types.Right, "extra.txt", false)
	tr.MarkComplete()
	return tr
}

func TestWriteSimple(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, output.WriteSimple(&sb, buildResultTree(t)))

	want := []string{
		"[D] docs/",
		"[D] docs/changed.txt",
		"[L] orphan-dir/",
		"[L] orphan-dir/inner.txt",
		"[R] extra.txt",
	}
	got := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	assert.Equal(t, want, got)
}

func TestWriteSimpleIdenticalTreesAreSilent(t *testing.T) {
	tr := tree.New(1)
	tr.Insert(types.Left, types.Entry{RelPath: "a.txt", Name: "a.txt", Size: 1})
	tr.Insert(types.Right, types.Entry{RelPath: "a.txt", Name: "a.txt", Size: 1})
	tr.Resolve("a.txt", types.Identical)
	tr.MarkComplete()

	var sb strings.Builder
	require.NoError(t, output.WriteSimple(&sb, tr))
	assert.Empty(t, sb.String())
}

func TestWriteSummary(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, output.WriteSummary(&sb, buildResultTree(t), "/l", "/r"))

	out := sb.String()
	assert.Contains(t, out, "/l")
	assert.Contains(t, out, "2 different")  // docs and docs/changed.txt
	assert.Contains(t, out, "2 left-only")  // orphan-dir and its file
	assert.Contains(t, out, "1 right-only") // extra.txt
}
