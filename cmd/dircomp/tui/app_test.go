package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/dircomp/pkg/dircomp/compare"
	"github.com/jamesainslie/dircomp/pkg/dircomp/engine"
	"github.com/jamesainslie/dircomp/pkg/dircomp/scanner"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// newTestModel builds a model over two empty temp roots. Events are
// injected by hand; the real generation the engine started is left
// alone.
func newTestModel(t *testing.T) Model {
	t.Helper()
	left := t.TempDir()
	right := t.TempDir()

	eng := engine.New(left, right, compare.New(compare.DefaultThresholds()), scanner.Options{})
	m, err := NewModel(Options{Engine: eng, Filter: types.FilterAll})
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	return m
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	res, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return res
}

func entryEvent(gen uint64, side types.Side, rel string, isDir bool) engineEventMsg {
	name := filepath.Base(rel)
	return engineEventMsg(engine.Event{
		Gen:  gen,
		Kind: engine.EventEntry,
		Side: side,
		Entry: types.Entry{
			RelPath: rel,
			Name:    name,
			IsDir:   isDir,
			Mode:    0o644,
		},
	})
}

func TestModelStartsScanning(t *testing.T) {
	m := newTestModel(t)
	if m.state != StateScanning {
		t.Errorf("initial state = %v, want StateScanning", m.state)
	}
}

func TestScanCompleteEntersBrowse(t *testing.T) {
	m := newTestModel(t)
	gen := m.gen

	m = apply(t, m, entryEvent(gen, types.Left, "a.txt", false))
	m = apply(t, m, entryEvent(gen, types.Right, "b.txt", false))
	m = apply(t, m, engineEventMsg(engine.Event{Gen: gen, Kind: engine.EventScanComplete}))

	if m.state != StateBrowse {
		t.Fatalf("state = %v, want StateBrowse", m.state)
	}
	if got := len(m.ctrl.Rows()); got != 2 {
		t.Errorf("rows = %d, want 2", got)
	}
	if m.entriesSeen != 2 {
		t.Errorf("entriesSeen = %d, want 2", m.entriesSeen)
	}
}

func TestStaleGenerationEventsIgnored(t *testing.T) {
	m := newTestModel(t)
	gen := m.gen

	m = apply(t, m, entryEvent(gen+7, types.Left, "ghost.txt", false))

	if m.tr.Len() != 0 {
		t.Errorf("tree has %d nodes after stale event, want 0", m.tr.Len())
	}
	if m.entriesSeen != 0 {
		t.Errorf("entriesSeen = %d, want 0", m.entriesSeen)
	}
}

func TestFilterKeys(t *testing.T) {
	m := newTestModel(t)
	gen := m.gen
	m = apply(t, m, entryEvent(gen, types.Left, "a.txt", false))
	m = apply(t, m, engineEventMsg(engine.Event{Gen: gen, Kind: engine.EventScanComplete}))

	tests := []struct {
		key  string
		want types.FilterMode
	}{
		{"2", types.FilterDifferent},
		{"3", types.FilterNoOrphans},
		{"1", types.FilterAll},
	}
	for _, tt := range tests {
		m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)})
		if m.ctrl.Filter() != tt.want {
			t.Errorf("after key %q filter = %v, want %v", tt.key, m.ctrl.Filter(), tt.want)
		}
	}
}

func TestCopyConfirmFlow(t *testing.T) {
	m := newTestModel(t)
	gen := m.gen
	m = apply(t, m, entryEvent(gen, types.Left, "a.txt", false))
	m = apply(t, m, engineEventMsg(engine.Event{Gen: gen, Kind: engine.EventScanComplete}))

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if m.state != StateConfirmCopy {
		t.Fatalf("state = %v, want StateConfirmCopy", m.state)
	}
	if m.copyFrom != types.Left {
		t.Errorf("copyFrom = %v, want Left", m.copyFrom)
	}
	if m.copySummary.Files != 1 {
		t.Errorf("summary files = %d, want 1", m.copySummary.Files)
	}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateBrowse {
		t.Errorf("state after esc = %v, want StateBrowse", m.state)
	}
}

func TestCopyFromEmptySideRefused(t *testing.T) {
	m := newTestModel(t)
	gen := m.gen
	m = apply(t, m, entryEvent(gen, types.Left, "a.txt", false))
	m = apply(t, m, engineEventMsg(engine.Event{Gen: gen, Kind: engine.EventScanComplete}))

	// The entry only exists on the left; copying from the right has
	// nothing to take.
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})

	if m.state != StateBrowse {
		t.Errorf("state = %v, want StateBrowse", m.state)
	}
	if m.status == "" {
		t.Error("expected a status message explaining the refusal")
	}
}

func TestSwapSides(t *testing.T) {
	m := newTestModel(t)
	gen := m.gen
	m = apply(t, m, entryEvent(gen, types.Left, "a.txt", false))
	m = apply(t, m, engineEventMsg(engine.Event{Gen: gen, Kind: engine.EventScanComplete}))

	leftBefore, rightBefore := m.eng.Roots()
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})

	leftAfter, rightAfter := m.eng.Roots()
	if leftAfter != rightBefore || rightAfter != leftBefore {
		t.Error("engine roots did not swap")
	}
	n := m.tr.Node("a.txt")
	if n == nil {
		t.Fatal("node missing after swap")
	}
	if n.Status != types.RightOnly {
		t.Errorf("node status after swap = %v, want RightOnly", n.Status)
	}
}

func TestCopyDoneInsertsEntry(t *testing.T) {
	m := newTestModel(t)
	gen := m.gen
	m = apply(t, m, entryEvent(gen, types.Left, "a.txt", false))
	m = apply(t, m, engineEventMsg(engine.Event{Gen: gen, Kind: engine.EventScanComplete}))

	m = apply(t, m, copyDoneMsg{
		relPath: "a.txt",
		from:    types.Left,
		entry:   types.Entry{RelPath: "a.txt", Name: "a.txt", Mode: 0o644},
		status:  types.Identical,
	})

	n := m.tr.Node("a.txt")
	if n == nil {
		t.Fatal("node missing after copy")
	}
	if n.Status != types.Identical {
		t.Errorf("status = %v, want Identical", n.Status)
	}
}

func TestViewRendersWithoutPanic(t *testing.T) {
	m := newTestModel(t)
	gen := m.gen
	m = apply(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if out := m.View(); out == "" {
		t.Error("scanning view is empty")
	}

	m = apply(t, m, entryEvent(gen, types.Left, "docs", true))
	m = apply(t, m, entryEvent(gen, types.Left, "docs/a.txt", false))
	m = apply(t, m, engineEventMsg(engine.Event{Gen: gen, Kind: engine.EventScanComplete}))
	if out := m.View(); out == "" {
		t.Error("browse view is empty")
	}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if out := m.View(); out == "" {
		t.Error("confirm view is empty")
	}
}
