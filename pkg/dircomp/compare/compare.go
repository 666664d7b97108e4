// Package compare implements staged file equality checking. Pairs are
// judged with the cheapest sufficient evidence first: size metadata,
// then full byte comparison for small files, a streaming content
// digest for medium files, and a leading-prefix comparison for large
// files.
package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// Default staging thresholds.
const (
	// DefaultSmallFileMax is the size below which files are compared
	// byte-for-byte in full.
	DefaultSmallFileMax = 4 * types.KiB

	// DefaultHashFileMax is the size below which files are compared
	// by streaming content digest.
	DefaultHashFileMax = 1 * types.MiB

	// DefaultPrefixBytes is how much of the head of a large file is
	// compared. Files at or above DefaultHashFileMax that agree in
	// size and in their leading prefix are reported identical; a
	// difference past the prefix goes undetected. This trade keeps
	// interactive comparisons of large trees fast.
	DefaultPrefixBytes = 4 * types.KiB

	// DefaultModTimeTolerance absorbs filesystem timestamp
	// granularity differences when the mtime pre-filter is enabled.
	DefaultModTimeTolerance = time.Second

	bufferSize = 8 * 1024
)

// Thresholds carries the staging boundaries. Zero values are replaced
// with the defaults by New.
type Thresholds struct {
	// SmallFileMax is the full byte-compare ceiling.
	SmallFileMax int64

	// HashFileMax is the digest-compare ceiling.
	HashFileMax int64

	// PrefixBytes is the head length compared for large files.
	PrefixBytes int64

	// ModTimeTolerance is the timestamp slack for the mtime
	// pre-filter.
	ModTimeTolerance time.Duration

	// TrustModTime enables the metadata pre-filter: equal size plus
	// mtime within tolerance is accepted as identical without reading
	// content. Off by default because a touched-but-unchanged or
	// changed-in-place file defeats it.
	TrustModTime bool
}

// DefaultThresholds returns the standard staging boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SmallFileMax:     DefaultSmallFileMax,
		HashFileMax:      DefaultHashFileMax,
		PrefixBytes:      DefaultPrefixBytes,
		ModTimeTolerance: DefaultModTimeTolerance,
	}
}

// Comparator performs staged equality checks on file pairs. It is
// safe for concurrent use.
type Comparator struct {
	thresholds Thresholds
	bufferPool *sync.Pool
}

// New creates a Comparator with the given thresholds. Zero threshold
// fields fall back to the defaults.
func New(t Thresholds) *Comparator {
	if t.SmallFileMax <= 0 {
		t.SmallFileMax = DefaultSmallFileMax
	}
	if t.HashFileMax <= 0 {
		t.HashFileMax = DefaultHashFileMax
	}
	if t.PrefixBytes <= 0 {
		t.PrefixBytes = DefaultPrefixBytes
	}
	if t.ModTimeTolerance <= 0 {
		t.ModTimeTolerance = DefaultModTimeTolerance
	}
	return &Comparator{
		thresholds: t,
		bufferPool: &sync.Pool{
			New: func() any {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Thresholds returns the comparator's effective staging boundaries.
func (c *Comparator) Thresholds() Thresholds {
	return c.thresholds
}

// Compare judges the file pair at leftPath/rightPath using the entry
// metadata already gathered by the scanner. It returns Identical or
// Different, or Error with a non-nil cause when either file could not
// be read. The check is symmetric in its arguments.
func (c *Comparator) Compare(ctx context.Context, leftPath, rightPath string, left, right types.Entry) (types.Status, error) {
	// Stage 1: size metadata, no I/O.
	if left.Size != right.Size {
		return types.Different, nil
	}

	// Stage 2: two empty files need no opening.
	if left.Size == 0 {
		return types.Identical, nil
	}

	// Optional metadata pre-filter.
	if c.thresholds.TrustModTime {
		delta := left.ModTime.Sub(right.ModTime)
		if delta < 0 {
			delta = -delta
		}
		if delta <= c.thresholds.ModTimeTolerance {
			return types.Identical, nil
		}
	}

	size := left.Size
	switch {
	case size < c.thresholds.SmallFileMax:
		return c.compareBytes(ctx, leftPath, rightPath, size)
	case size < c.thresholds.HashFileMax:
		return c.compareDigest(ctx, leftPath, rightPath)
	default:
		return c.compareBytes(ctx, leftPath, rightPath, c.thresholds.PrefixBytes)
	}
}

// compareBytes reads up to limit bytes from both files and compares
// them chunk by chunk.
func (c *Comparator) compareBytes(ctx context.Context, leftPath, rightPath string, limit int64) (types.Status, error) {
	lf, err := os.Open(leftPath)
	if err != nil {
		return types.Error, fmt.Errorf("open %s: %w", leftPath, err)
	}
	defer lf.Close()

	rf, err := os.Open(rightPath)
	if err != nil {
		return types.Error, fmt.Errorf("open %s: %w", rightPath, err)
	}
	defer rf.Close()

	lr := io.LimitReader(lf, limit)
	rr := io.LimitReader(rf, limit)

	lbufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(lbufPtr)
	rbufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(rbufPtr)
	lbuf, rbuf := *lbufPtr, *rbufPtr

	for {
		if err := ctx.Err(); err != nil {
			return types.Error, err
		}

		ln, lerr := io.ReadFull(lr, lbuf)
		rn, rerr := io.ReadFull(rr, rbuf)

		if ln != rn {
			return types.Different, nil
		}
		if !bytes.Equal(lbuf[:ln], rbuf[:rn]) {
			return types.Different, nil
		}

		ldone := lerr == io.EOF || lerr == io.ErrUnexpectedEOF
		rdone := rerr == io.EOF || rerr == io.ErrUnexpectedEOF
		switch {
		case lerr != nil && !ldone:
			return types.Error, fmt.Errorf("read %s: %w", leftPath, lerr)
		case rerr != nil && !rdone:
			return types.Error, fmt.Errorf("read %s: %w", rightPath, rerr)
		case ldone && rdone:
			return types.Identical, nil
		case ldone != rdone:
			return types.Different, nil
		}
	}
}

// compareDigest streams both files through xxhash and compares the
// sums.
func (c *Comparator) compareDigest(ctx context.Context, leftPath, rightPath string) (types.Status, error) {
	lsum, err := c.digest(ctx, leftPath)
	if err != nil {
		return types.Error, err
	}
	rsum, err := c.digest(ctx, rightPath)
	if err != nil {
		return types.Error, err
	}
	if lsum != rsum {
		return types.Different, nil
	}
	return types.Identical, nil
}

func (c *Comparator) digest(ctx context.Context, path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buf := *bufPtr

	h := xxhash.New()
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, rerr := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if errors.Is(rerr, io.EOF) {
			return h.Sum64(), nil
		}
		if rerr != nil {
			return 0, fmt.Errorf("read %s: %w", path, rerr)
		}
	}
}
