// Package scanner walks one comparison root and streams every entry
// it finds to the engine. Walks run in parallel via fastwalk; results
// arrive as generation-stamped events on a bounded channel so a
// superseded scan can be dropped cleanly.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"

	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// Event is one observation from a walk: an entry, or a per-entry
// error when the path could not be read. Err set means Entry carries
// only the path metadata that was known.
type Event struct {
	Gen   uint64
	Side  types.Side
	Entry types.Entry
	Err   error
}

// Options configures a scan.
type Options struct {
	// Exclude contains glob patterns matched against the
	// slash-separated relative path. Matching directories are not
	// descended into.
	Exclude []string
}

// Scanner walks a single root directory. One Scanner serves one side
// for one generation.
type Scanner struct {
	root    string
	side    types.Side
	gen     uint64
	exclude []glob.Glob

	entriesSeen atomic.Int64
}

// New validates the root (must exist and be a directory), compiles
// the exclusion patterns, and returns a Scanner.
func New(root string, side types.Side, gen uint64, opts Options) (*Scanner, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", abs)
	}

	patterns := make([]glob.Glob, 0, len(opts.Exclude))
	for _, p := range opts.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		patterns = append(patterns, g)
	}

	return &Scanner{
		root:    abs,
		side:    side,
		gen:     gen,
		exclude: patterns,
	}, nil
}

// Root returns the resolved absolute root path.
func (s *Scanner) Root() string {
	return s.root
}

// EntriesSeen returns the number of entries emitted so far. Safe to
// read while the scan runs.
func (s *Scanner) EntriesSeen() int64 {
	return s.entriesSeen.Load()
}

// Scan walks the root and sends one Event per entry below it. The
// root itself is not emitted and symlinks are not followed. Per-entry
// read failures become error Events and the walk continues; only
// cancellation or a root-level failure ends the walk early.
func (s *Scanner) Scan(ctx context.Context, events chan<- Event) error {
	conf := fastwalk.Config{
		Follow: false,
	}

	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() { close(done) })
	defer stop()

	err := fastwalk.Walk(&conf, s.root, s.walkCallback(ctx, events, done))
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		return err
	}
	return ctx.Err()
}

func (s *Scanner) walkCallback(ctx context.Context, events chan<- Event, done <-chan struct{}) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		rel := s.relPath(path)
		if rel == "" {
			// The root itself; a walk error here is fatal.
			return err
		}

		if err != nil {
			s.send(ctx, events, Event{
				Gen:   s.gen,
				Side:  s.side,
				Entry: types.Entry{RelPath: rel, Name: filepath.Base(path)},
				Err:   err,
			})
			return nil
		}

		if s.excluded(rel) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.send(ctx, events, Event{
				Gen:   s.gen,
				Side:  s.side,
				Entry: types.Entry{RelPath: rel, Name: d.Name(), IsDir: d.IsDir()},
				Err:   err,
			})
			return nil
		}

		entry := types.Entry{
			RelPath: rel,
			Name:    d.Name(),
			IsDir:   d.IsDir(),
			ModTime: info.ModTime(),
			Mode:    info.Mode(),
		}
		if !entry.IsDir {
			entry.Size = info.Size()
		}

		s.entriesSeen.Add(1)
		s.send(ctx, events, Event{Gen: s.gen, Side: s.side, Entry: entry})
		return nil
	}
}

// send delivers an event unless the scan is cancelled first.
func (s *Scanner) send(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func (s *Scanner) relPath(path string) string {
	if path == s.root {
		return ""
	}
	rel := strings.TrimPrefix(path, s.root+string(filepath.Separator))
	return filepath.ToSlash(rel)
}

func (s *Scanner) excluded(rel string) bool {
	for _, g := range s.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
