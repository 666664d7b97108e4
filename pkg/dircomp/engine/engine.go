// Package engine orchestrates one comparison session: it runs a
// scanner per root, pairs file entries by relative path, feeds pairs
// to a bounded comparator worker pool, and publishes everything as a
// single generation-stamped event stream. The interactive loop is the
// sole consumer of that stream and the sole mutator of the tree;
// bumping the generation is how a refresh invalidates everything
// still in flight.
package engine

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/jamesainslie/dircomp/pkg/dircomp/compare"
	"github.com/jamesainslie/dircomp/pkg/dircomp/logging"
	"github.com/jamesainslie/dircomp/pkg/dircomp/scanner"
	"github.com/jamesainslie/dircomp/pkg/dircomp/tree"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// EventKind discriminates the engine event stream.
type EventKind int

const (
	// EventEntry delivers one scanned entry from one side.
	EventEntry EventKind = iota

	// EventScanError delivers a per-entry scan failure; the scan
	// continues.
	EventScanError

	// EventFileResolved delivers a comparator outcome for a file pair.
	EventFileResolved

	// EventScanComplete marks the end of a generation: both walks
	// returned and every queued comparison finished.
	EventScanComplete
)

// Event is one message on the engine stream. Consumers must discard
// events whose Gen is not the current generation.
type Event struct {
	Gen    uint64
	Kind   EventKind
	Side   types.Side
	Entry  types.Entry
	Status types.Status
	Err    error
}

const (
	eventBuffer = 512
	maxWorkers  = 4
)

// Engine owns the scan/compare pipeline for a pair of roots.
type Engine struct {
	mu        sync.Mutex
	leftRoot  string
	rightRoot string
	gen       uint64
	cancel    context.CancelFunc

	cmp      *compare.Comparator
	scanOpts scanner.Options
	events   chan Event
}

// New creates an Engine for the two roots. The roots are taken as
// validated; Start re-validates them on every generation since they
// may disappear between refreshes.
func New(leftRoot, rightRoot string, cmp *compare.Comparator, scanOpts scanner.Options) *Engine {
	return &Engine{
		leftRoot:  leftRoot,
		rightRoot: rightRoot,
		cmp:       cmp,
		scanOpts:  scanOpts,
		events:    make(chan Event, eventBuffer),
	}
}

// Events returns the engine's event stream. The channel is shared
// across generations; stale events identify themselves by Gen.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Roots returns the current left and right root paths.
func (e *Engine) Roots() (string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.leftRoot, e.rightRoot
}

// Gen returns the current generation.
func (e *Engine) Gen() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// SwapRoots exchanges left and right for subsequent generations and
// for AbsPath/CompareNow. The caller swaps its tree in concert.
func (e *Engine) SwapRoots() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.leftRoot, e.rightRoot = e.rightRoot, e.leftRoot
}

// AbsPath resolves a relative path against one side's root.
func (e *Engine) AbsPath(side types.Side, relPath string) string {
	left, right := e.Roots()
	root := left
	if side == types.Right {
		root = right
	}
	return filepath.Join(root, filepath.FromSlash(relPath))
}

// Cancel stops the in-flight generation, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// CompareNow resolves a single file pair synchronously on the calling
// goroutine. Used to re-resolve one node in place after a copy.
func (e *Engine) CompareNow(relPath string, left, right types.Entry) (types.Status, error) {
	lp := e.AbsPath(types.Left, relPath)
	rp := e.AbsPath(types.Right, relPath)
	return e.cmp.Compare(context.Background(), lp, rp, left, right)
}

// Start begins a new generation: any previous generation is
// cancelled, both roots are re-validated and walked, and events begin
// flowing. It returns the new generation number.
func (e *Engine) Start(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.gen++
	gen := e.gen
	genCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	left, right := e.leftRoot, e.rightRoot
	e.mu.Unlock()

	leftScan, err := scanner.New(left, types.Left, gen, e.scanOpts)
	if err != nil {
		cancel()
		return 0, err
	}
	rightScan, err := scanner.New(right, types.Right, gen, e.scanOpts)
	if err != nil {
		cancel()
		return 0, err
	}

	go e.run(genCtx, gen, leftScan, rightScan)
	return gen, nil
}

// compareJob is one queued file pair.
type compareJob struct {
	relPath string
	left    types.Entry
	right   types.Entry
}

// pairSlot accumulates what each side holds at one relative path
// until a comparison can be dispatched.
type pairSlot struct {
	left     *types.Entry
	right    *types.Entry
	leftErr  bool
	rightErr bool
}

func (e *Engine) run(ctx context.Context, gen uint64, leftScan, rightScan *scanner.Scanner) {
	logger := logging.Get("engine")
	start := time.Now()
	logger.Debug("generation started", "gen", gen)

	scanEvents := make(chan scanner.Event, 256)
	var scans sync.WaitGroup
	for _, s := range []*scanner.Scanner{leftScan, rightScan} {
		scans.Add(1)
		go func(s *scanner.Scanner) {
			defer scans.Done()
			if err := s.Scan(ctx, scanEvents); err != nil && ctx.Err() == nil {
				logger.Error("walk failed", "root", s.Root(), "error", err)
			}
		}(s)
	}
	go func() {
		scans.Wait()
		close(scanEvents)
	}()

	jobs := make(chan compareJob, 256)
	var workers sync.WaitGroup
	for range workerCount() {
		workers.Add(1)
		go func() {
			defer workers.Done()
			e.compareWorker(ctx, gen, jobs)
		}()
	}

	// Single pairing loop: forwards scan events and dispatches a
	// compare job once both sides of a file are known.
	pending := make(map[string]*pairSlot)
	for ev := range scanEvents {
		if ev.Err != nil {
			e.slot(pending, ev.Entry.RelPath).markErr(ev.Side)
			e.emit(ctx, Event{Gen: gen, Kind: EventScanError, Side: ev.Side, Entry: ev.Entry, Err: ev.Err})
			continue
		}

		e.emit(ctx, Event{Gen: gen, Kind: EventEntry, Side: ev.Side, Entry: ev.Entry})

		slot := e.slot(pending, ev.Entry.RelPath)
		entry := ev.Entry
		if ev.Side == types.Left {
			slot.left = &entry
		} else {
			slot.right = &entry
		}
		if job, ok := slot.ready(); ok {
			delete(pending, entry.RelPath)
			select {
			case jobs <- job:
			case <-ctx.Done():
			}
		}
	}

	close(jobs)
	workers.Wait()

	if ctx.Err() != nil {
		logger.Debug("generation cancelled", "gen", gen)
		return
	}
	e.emit(ctx, Event{Gen: gen, Kind: EventScanComplete})
	logger.Debug("generation complete",
		"gen", gen,
		"entries", leftScan.EntriesSeen()+rightScan.EntriesSeen(),
		"elapsed", time.Since(start))
}

func (e *Engine) compareWorker(ctx context.Context, gen uint64, jobs <-chan compareJob) {
	for job := range jobs {
		if ctx.Err() != nil {
			continue
		}
		lp := e.AbsPath(types.Left, job.relPath)
		rp := e.AbsPath(types.Right, job.relPath)
		status, err := e.cmp.Compare(ctx, lp, rp, job.left, job.right)
		e.emit(ctx, Event{
			Gen:    gen,
			Kind:   EventFileResolved,
			Entry:  types.Entry{RelPath: job.relPath},
			Status: status,
			Err:    err,
		})
	}
}

func (e *Engine) emit(ctx context.Context, ev Event) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}

func (e *Engine) slot(pending map[string]*pairSlot, relPath string) *pairSlot {
	s, ok := pending[relPath]
	if !ok {
		s = &pairSlot{}
		pending[relPath] = s
	}
	return s
}

func (s *pairSlot) markErr(side types.Side) {
	if side == types.Left {
		s.leftErr = true
	} else {
		s.rightErr = true
	}
}

// ready reports whether both sides are regular files with no scan
// errors; directories and type conflicts never compare content.
func (s *pairSlot) ready() (compareJob, bool) {
	if s.left == nil || s.right == nil || s.leftErr || s.rightErr {
		return compareJob{}, false
	}
	if s.left.IsDir || s.right.IsDir {
		return compareJob{}, false
	}
	return compareJob{relPath: s.left.RelPath, left: *s.left, right: *s.right}, true
}

// Apply folds one event into the tree and reports whether the event
// completed the generation. Callers filter stale generations before
// applying; Apply itself trusts the event.
func Apply(tr *tree.Tree, ev Event) bool {
	switch ev.Kind {
	case EventEntry:
		tr.Insert(ev.Side, ev.Entry)
	case EventScanError:
		tr.SetError(ev.Side, ev.Entry.RelPath, ev.Entry.IsDir, ev.Err)
	case EventFileResolved:
		tr.Resolve(ev.Entry.RelPath, ev.Status)
	case EventScanComplete:
		tr.MarkComplete()
		return true
	}
	return false
}

func workerCount() int {
	n := runtime.NumCPU()
	if n > maxWorkers {
		return maxWorkers
	}
	if n < 1 {
		return 1
	}
	return n
}
