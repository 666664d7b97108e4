package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/dircomp/pkg/dircomp/copyop"
	"github.com/jamesainslie/dircomp/pkg/dircomp/engine"
	"github.com/jamesainslie/dircomp/pkg/dircomp/launcher"
	"github.com/jamesainslie/dircomp/pkg/dircomp/logging"
	"github.com/jamesainslie/dircomp/pkg/dircomp/manifest"
	"github.com/jamesainslie/dircomp/pkg/dircomp/panel"
	"github.com/jamesainslie/dircomp/pkg/dircomp/tree"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
	"github.com/jamesainslie/dircomp/pkg/dircomp/watcher"
)

// AppState represents the current state of the application.
type AppState int

const (
	StateScanning AppState = iota
	StateBrowse
	StateConfirmCopy
)

// Options configures the TUI application.
type Options struct {
	Engine  *engine.Engine
	Filter  types.FilterMode
	Watch   bool
	History *manifest.Log
}

// Model is the main Bubble Tea model for the dircomp TUI.
type Model struct {
	state   AppState
	options Options

	ctx    context.Context
	cancel context.CancelFunc

	eng    *engine.Engine
	op     *copyop.Operator
	launch *launcher.Launcher
	watch  *watcher.Watcher

	// gen is the generation currently being built. tr is the tree on
	// display; pending receives a refresh generation in the
	// background and replaces tr when it completes.
	gen     uint64
	tr      *tree.Tree
	pending *tree.Tree
	ctrl    *panel.Controller

	spinner     spinner.Model
	entriesSeen int64
	startTime   time.Time

	// Copy confirmation state
	copyRow        panel.Row
	copyFrom       types.Side
	copySummary    tree.Summary
	confirmFocused int // 0 = cancel, 1 = copy

	// Transient footer message
	status   string
	statusAt time.Time

	width  int
	height int
}

// engineEventMsg wraps one engine event.
type engineEventMsg engine.Event

// tickUIMsg triggers a UI refresh.
type tickUIMsg struct{}

// watchChangedMsg reports a debounced filesystem change.
type watchChangedMsg struct{}

// execDoneMsg reports the external tool exiting.
type execDoneMsg struct{ err error }

// copyDoneMsg reports a finished copy operation.
type copyDoneMsg struct {
	relPath string
	from    types.Side
	entry   types.Entry
	isDir   bool
	status  types.Status
	err     error
}

// NewModel creates the TUI model and starts the first generation.
func NewModel(opts Options) (Model, error) {
	ctx, cancel := context.WithCancel(context.Background())

	gen, err := opts.Engine.Start(ctx)
	if err != nil {
		cancel()
		return Model{}, err
	}
	tr := tree.New(gen)

	leftRoot, rightRoot := opts.Engine.Roots()

	var w *watcher.Watcher
	if opts.Watch {
		w, err = watcher.New(watcher.DefaultQuiet)
		if err == nil {
			if werr := w.Watch(leftRoot); werr != nil {
				logging.Get("tui").Warn("watch failed", "root", leftRoot, "error", werr)
			}
			if werr := w.Watch(rightRoot); werr != nil {
				logging.Get("tui").Warn("watch failed", "root", rightRoot, "error", werr)
			}
			go w.Run(ctx)
		} else {
			logging.Get("tui").Warn("watcher unavailable", "error", err)
		}
	}

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		state:     StateScanning,
		options:   opts,
		ctx:       ctx,
		cancel:    cancel,
		eng:       opts.Engine,
		op:        copyop.New(leftRoot, rightRoot, opts.History),
		launch:    launcher.Detect(),
		watch:     w,
		gen:       gen,
		tr:        tr,
		ctrl:      panel.NewController(tr, opts.Filter),
		spinner:   s,
		startTime: time.Now(),
		width:     80,
		height:    24,
	}, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.listenForEvents(),
		m.tickUI(),
	}
	if m.watch != nil {
		cmds = append(cmds, m.listenForWatch())
	}
	return tea.Batch(cmds...)
}

// listenForEvents performs one blocking receive from the engine
// stream.
func (m Model) listenForEvents() tea.Cmd {
	events := m.eng.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return engineEventMsg(ev)
	}
}

// listenForWatch waits for one debounced change notification.
func (m Model) listenForWatch() tea.Cmd {
	changed := m.watch.Changed()
	return func() tea.Msg {
		_, ok := <-changed
		if !ok {
			return nil
		}
		return watchChangedMsg{}
	}
}

// tickUI returns a command that periodically triggers UI updates.
func (m Model) tickUI() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return tickUIMsg{}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case engineEventMsg:
		return m.handleEngineEvent(engine.Event(msg))

	case tickUIMsg:
		// Keep the spinner and counters live while a generation runs
		if m.state == StateScanning || m.pending != nil {
			return m, m.tickUI()
		}
		return m, nil

	case spinner.TickMsg:
		// Only animate while a generation is in flight
		if m.state == StateScanning || m.pending != nil {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case watchChangedMsg:
		m2, cmd := m.startRefresh()
		return m2, tea.Batch(cmd, m.listenForWatch())

	case execDoneMsg:
		if msg.err != nil {
			m.setStatus("tool failed: %v", msg.err)
		}
		return m, nil

	case copyDoneMsg:
		return m.handleCopyDone(msg)
	}

	return m, nil
}

// handleEngineEvent folds one event into whichever tree the event's
// generation belongs to. Stale generations are dropped.
func (m Model) handleEngineEvent(ev engine.Event) (tea.Model, tea.Cmd) {
	if ev.Gen != m.gen {
		return m, m.listenForEvents()
	}

	target := m.tr
	if m.pending != nil {
		target = m.pending
	}
	if ev.Kind == engine.EventEntry {
		m.entriesSeen++
	}

	if engine.Apply(target, ev) {
		switch {
		case m.pending != nil:
			// Background refresh finished; swap it in
			m.tr = m.pending
			m.pending = nil
			m.ctrl.AttachTree(m.tr)
		case m.state == StateScanning:
			m.state = StateBrowse
			m.ctrl.Rebuild(false)
		default:
			m.ctrl.Rebuild(true)
		}
	}
	return m, m.listenForEvents()
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m.quit()
	}

	switch m.state {
	case StateScanning:
		if key == "q" || key == "esc" {
			return m.quit()
		}

	case StateBrowse:
		return m.handleBrowseKey(key)

	case StateConfirmCopy:
		switch key {
		case "q", "esc", "n":
			m.state = StateBrowse
		case "left", "h":
			m.confirmFocused = 0
		case "right", "l":
			m.confirmFocused = 1
		case "tab":
			m.confirmFocused = (m.confirmFocused + 1) % 2
		case "enter":
			if m.confirmFocused == 1 {
				return m.startCopy()
			}
			m.state = StateBrowse
		case "y":
			return m.startCopy()
		}
	}

	return m, nil
}

// handleBrowseKey handles navigation and actions in the browse state.
func (m Model) handleBrowseKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "esc":
		return m.quit()
	case "left", "h":
		m.ctrl.SwitchSide(types.Left)
	case "right", "l":
		m.ctrl.SwitchSide(types.Right)
	case "tab":
		m.ctrl.ToggleSide()
	case "up", "k":
		m.ctrl.MoveCursor(-1)
	case "down", "j":
		m.ctrl.MoveCursor(1)
	case "pgup":
		m.ctrl.Page(-1)
	case "pgdown":
		m.ctrl.Page(1)
	case "home", "g":
		m.ctrl.Top()
	case "end", "G":
		m.ctrl.Bottom()
	case "enter":
		return m.openCurrent()
	case "1":
		m.ctrl.SetFilter(types.FilterAll)
	case "2":
		m.ctrl.SetFilter(types.FilterDifferent)
	case "3":
		m.ctrl.SetFilter(types.FilterNoOrphans)
	case "+":
		m.ctrl.ExpandAll()
	case "-":
		m.ctrl.CollapseAll()
	case "s":
		return m.swapSides()
	case "r", "f5":
		return m.startRefresh()
	case "c":
		return m.confirmCopy()
	}
	return m, nil
}

// openCurrent toggles a directory or launches the external tool for
// the current row.
func (m Model) openCurrent() (tea.Model, tea.Cmd) {
	row, ok := m.ctrl.CurrentRow()
	if !ok {
		return m, nil
	}
	if row.Node.IsDir {
		m.ctrl.ToggleExpand()
		return m, nil
	}

	rel := row.Node.RelPath
	var cmd *exec.Cmd
	var err error
	switch {
	case row.Node.HasSide(types.Left) && row.Node.HasSide(types.Right):
		cmd, err = m.launch.DiffCmd(m.eng.AbsPath(types.Left, rel), m.eng.AbsPath(types.Right, rel))
	case row.Node.HasSide(types.Left):
		cmd, err = m.launch.ViewCmd(m.eng.AbsPath(types.Left, rel))
	case row.Node.HasSide(types.Right):
		cmd, err = m.launch.ViewCmd(m.eng.AbsPath(types.Right, rel))
	default:
		return m, nil
	}
	if err != nil {
		if errors.Is(err, launcher.ErrNoTool) {
			m.setStatus("no diff or viewer tool found on PATH")
		} else {
			m.setStatus("cannot launch tool: %v", err)
		}
		return m, nil
	}
	return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
		return execDoneMsg{err: err}
	})
}

// confirmCopy opens the copy confirmation dialog for the current row.
func (m Model) confirmCopy() (tea.Model, tea.Cmd) {
	row, ok := m.ctrl.CurrentRow()
	if !ok {
		return m, nil
	}
	from := m.ctrl.Active()
	if !row.Node.HasSide(from) {
		m.setStatus("%s side has nothing to copy at %s", from, row.Node.RelPath)
		return m, nil
	}
	if m.pending != nil {
		m.setStatus("refresh in progress")
		return m, nil
	}
	m.copyRow = row
	m.copyFrom = from
	m.copySummary = row.Node.Summarize(from)
	m.confirmFocused = 0
	m.state = StateConfirmCopy
	return m, nil
}

// startCopy launches the confirmed copy in the background.
func (m Model) startCopy() (tea.Model, tea.Cmd) {
	m.state = StateBrowse
	op := m.op
	eng := m.eng
	from := m.copyFrom
	rel := m.copyRow.Node.RelPath
	isDir := m.copyRow.Node.IsDir

	var src types.Entry
	if e := m.copyRow.Node.Entry(from); e != nil {
		src = *e
	}

	return m, func() tea.Msg {
		entry, err := op.Copy(from, rel)
		msg := copyDoneMsg{relPath: rel, from: from, entry: entry, isDir: isDir, err: err}
		if err == nil && !isDir {
			// Re-resolve the pair so the row settles without a full
			// refresh
			left, right := src, entry
			if from == types.Right {
				left, right = entry, src
			}
			msg.status, _ = eng.CompareNow(rel, left, right)
		}
		return msg
	}
}

// handleCopyDone applies a finished copy to the tree. Directory
// copies trigger a full refresh since many entries changed.
func (m Model) handleCopyDone(msg copyDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus("copy failed: %v", msg.err)
		return m, nil
	}
	if msg.isDir {
		m.setStatus("copied %s", msg.relPath)
		return m.startRefresh()
	}
	m.tr.Insert(msg.from.Other(), msg.entry)
	m.tr.Resolve(msg.relPath, msg.status)
	m.ctrl.Rebuild(true)
	m.setStatus("copied %s", msg.relPath)
	return m, nil
}

// swapSides exchanges left and right everywhere at once.
func (m Model) swapSides() (tea.Model, tea.Cmd) {
	if m.pending != nil {
		m.setStatus("refresh in progress")
		return m, nil
	}
	m.eng.SwapRoots()
	m.op.Swap()
	m.tr.Swap()
	m.ctrl.Swap()
	m.setStatus("sides swapped")
	return m, nil
}

// startRefresh begins a new generation while the current tree stays
// interactive.
func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	gen, err := m.eng.Start(m.ctx)
	if err != nil {
		m.setStatus("refresh failed: %v", err)
		return m, nil
	}
	m.gen = gen
	m.pending = tree.New(gen)
	m.entriesSeen = 0
	if m.state == StateScanning {
		m.startTime = time.Now()
	}
	return m, tea.Batch(m.spinner.Tick, m.tickUI())
}

// quit cancels the engine and the watcher and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	if m.watch != nil {
		_ = m.watch.Close()
	}
	return m, tea.Quit
}

// setStatus records a transient footer message.
func (m *Model) setStatus(format string, args ...interface{}) {
	m.status = fmt.Sprintf(format, args...)
	m.statusAt = time.Now()
}

// View renders the current state.
func (m Model) View() string {
	switch m.state {
	case StateScanning:
		return m.renderScanning()
	case StateBrowse:
		return m.renderBrowse()
	case StateConfirmCopy:
		return m.renderConfirmDialog()
	}
	return ""
}

// Run starts the TUI application.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
