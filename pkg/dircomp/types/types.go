// Package types provides core data types for the dircomp directory
// comparison tool. It includes the entry metadata shared between the
// scanner, comparator and tree, the comparison status vocabulary, and
// utility functions for parsing and formatting file sizes.
package types

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Side identifies one of the two compared directory roots.
type Side int

const (
	// Left is the first root given on the command line.
	Left Side = iota

	// Right is the second root given on the command line.
	Right
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Left {
		return Right
	}
	return Left
}

// String returns the lowercase side name.
func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Status is the comparison outcome for a single tree node.
type Status int

const (
	// Pending means the node's outcome is not yet known: its scan is
	// still running or its content comparison has not completed.
	Pending Status = iota

	// Identical means both sides exist and compare equal.
	Identical

	// Different means both sides exist and differ, either in content
	// or because their kinds conflict (file on one side, directory on
	// the other).
	Different

	// LeftOnly means the entry exists only under the left root.
	LeftOnly

	// RightOnly means the entry exists only under the right root.
	RightOnly

	// Error means the entry could not be read or compared.
	Error
)

// String returns a short human-readable status name.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Identical:
		return "identical"
	case Different:
		return "different"
	case LeftOnly:
		return "left-only"
	case RightOnly:
		return "right-only"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Tag returns the single-character marker used by simple-mode output.
func (s Status) Tag() string {
	switch s {
	case Identical:
		return "="
	case Different:
		return "D"
	case LeftOnly:
		return "L"
	case RightOnly:
		return "R"
	case Error:
		return "E"
	default:
		return "?"
	}
}

// Swapped returns the status as seen after the two roots exchange
// places. Only the one-sided statuses are directional.
func (s Status) Swapped() Status {
	switch s {
	case LeftOnly:
		return RightOnly
	case RightOnly:
		return LeftOnly
	default:
		return s
	}
}

// FilterMode selects which rows the panels display. Filtering is a
// view predicate only; it never mutates the comparison tree.
type FilterMode int

const (
	// FilterAll shows every entry.
	FilterAll FilterMode = iota

	// FilterDifferent hides entries whose status is Identical.
	FilterDifferent

	// FilterNoOrphans hides Identical entries and entries present on
	// only one side, leaving content differences and errors.
	FilterNoOrphans
)

// String returns the name accepted by the --filter flag.
func (m FilterMode) String() string {
	switch m {
	case FilterDifferent:
		return "diff"
	case FilterNoOrphans:
		return "no-orphans"
	default:
		return "all"
	}
}

// ErrInvalidFilter indicates an unrecognized filter mode name.
var ErrInvalidFilter = errors.New("invalid filter mode")

// ParseFilterMode parses a --filter flag value.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "diff", "different":
		return FilterDifferent, nil
	case "no-orphans", "noorphans":
		return FilterNoOrphans, nil
	default:
		return FilterAll, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}

// Matches reports whether a node with the given status passes the
// filter.
func (m FilterMode) Matches(s Status) bool {
	switch m {
	case FilterDifferent:
		return s != Identical
	case FilterNoOrphans:
		return s != Identical && s != LeftOnly && s != RightOnly
	default:
		return true
	}
}

// Entry records the metadata the scanner observed for one filesystem
// entry under one root.
type Entry struct {
	// RelPath is the slash-separated path relative to the scanned root.
	RelPath string `json:"rel_path"`

	// Name is the final path element.
	Name string `json:"name"`

	// IsDir reports whether the entry is a directory.
	IsDir bool `json:"is_dir"`

	// Size is the file size in bytes. Zero for directories.
	Size int64 `json:"size"`

	// ModTime is the last modification time of the entry.
	ModTime time.Time `json:"mod_time"`

	// Mode is the entry's permission and mode bits.
	Mode os.FileMode `json:"mode"`
}

// HumanSize returns the entry size formatted in IEC units.
func (e *Entry) HumanSize() string {
	return FormatSize(e.Size)
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size
// in bytes. It supports plain byte counts ("4096"), byte suffixes
// ("512B"), and K/M/G/T with optional B or iB ("4K", "1MiB", "2GB").
// Decimal values are supported and truncated to the nearest byte.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string
// using binary (IEC) units for consistency with common filesystem
// tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
