// Package copyop copies an entry from one comparison side to the
// other. Files are written to a temporary name in the destination
// directory and renamed into place, so a failed copy never leaves a
// half-written destination visible. Modification time and permission
// bits follow the source.
package copyop

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jamesainslie/dircomp/pkg/dircomp/logging"
	"github.com/jamesainslie/dircomp/pkg/dircomp/manifest"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// Error describes a failed copy step.
type Error struct {
	// Op is the step that failed: "stat", "mkdir", "open", "write",
	// "rename".
	Op string

	// Path is the file the step was operating on.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("copy: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrSameFile means source and destination resolve to the same file,
// which happens when the two roots overlap.
var ErrSameFile = errors.New("source and destination are the same file")

// Operator copies entries between the two roots. Copies run on the
// calling goroutine.
type Operator struct {
	leftRoot  string
	rightRoot string
	history   *manifest.Log
}

// New creates an Operator for the two roots. history may be nil to
// disable recording.
func New(leftRoot, rightRoot string, history *manifest.Log) *Operator {
	return &Operator{leftRoot: leftRoot, rightRoot: rightRoot, history: history}
}

// Swap exchanges the operator's roots, mirroring an engine root swap.
func (o *Operator) Swap() {
	o.leftRoot, o.rightRoot = o.rightRoot, o.leftRoot
}

// Copy transfers the entry at relPath from one side to the other and
// returns the destination entry after the copy, freshly stat'ed. An
// existing destination is replaced. The outcome is recorded in the
// history log either way.
func (o *Operator) Copy(from types.Side, relPath string) (types.Entry, error) {
	srcRoot, dstRoot := o.leftRoot, o.rightRoot
	if from == types.Right {
		srcRoot, dstRoot = o.rightRoot, o.leftRoot
	}
	src := filepath.Join(srcRoot, filepath.FromSlash(relPath))
	dst := filepath.Join(dstRoot, filepath.FromSlash(relPath))

	var files int
	var bytes int64
	entry, err := o.copyPath(src, dst, relPath, &files, &bytes)
	o.record(from, relPath, srcRoot, dstRoot, files, bytes, err)
	if err != nil {
		return types.Entry{}, err
	}

	logging.Get("copyop").Info("copied",
		"from", from, "path", relPath, "files", files, "bytes", bytes)
	return entry, nil
}

func (o *Operator) copyPath(src, dst, relPath string, files *int, bytes *int64) (types.Entry, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return types.Entry{}, &Error{Op: "stat", Path: src, Err: err}
	}
	if same, err := sameFile(src, dst); err == nil && same {
		return types.Entry{}, &Error{Op: "stat", Path: dst, Err: ErrSameFile}
	}

	if info.IsDir() {
		if err := o.copyDir(src, dst, files, bytes); err != nil {
			return types.Entry{}, err
		}
	} else {
		if err := o.copyFile(src, dst, info); err != nil {
			return types.Entry{}, err
		}
		*files++
		*bytes += info.Size()
	}

	dstInfo, err := os.Lstat(dst)
	if err != nil {
		return types.Entry{}, &Error{Op: "stat", Path: dst, Err: err}
	}
	return types.Entry{
		RelPath: relPath,
		Name:    filepath.Base(dst),
		IsDir:   dstInfo.IsDir(),
		Size:    fileSize(dstInfo),
		ModTime: dstInfo.ModTime(),
		Mode:    dstInfo.Mode(),
	}, nil
}

// copyFile writes src to a temporary file next to dst and renames it
// into place with the source's permissions and mtime.
func (o *Operator) copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return &Error{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	dstDir := filepath.Dir(dst)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return &Error{Op: "mkdir", Path: dstDir, Err: err}
	}

	tmp, err := os.CreateTemp(dstDir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return &Error{Op: "open", Path: dstDir, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := io.Copy(tmp, in); err != nil {
		cleanup()
		return &Error{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		cleanup()
		return &Error{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &Error{Op: "write", Path: tmpName, Err: err}
	}
	if err := os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		os.Remove(tmpName)
		return &Error{Op: "write", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return &Error{Op: "rename", Path: dst, Err: err}
	}
	return nil
}

// copyDir recursively copies a directory. Directory mtimes are
// restored after their contents, deepest first, so the writes do not
// disturb them.
func (o *Operator) copyDir(src, dst string, files *int, bytes *int64) error {
	type dirStamp struct {
		path string
		info fs.FileInfo
	}
	var dirs []dirStamp

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &Error{Op: "stat", Path: path, Err: err}
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return &Error{Op: "stat", Path: path, Err: relErr}
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return &Error{Op: "stat", Path: path, Err: err}
		}

		if d.IsDir() {
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return &Error{Op: "mkdir", Path: target, Err: err}
			}
			dirs = append(dirs, dirStamp{path: target, info: info})
			return nil
		}

		if err := o.copyFile(path, target, info); err != nil {
			return err
		}
		*files++
		*bytes += info.Size()
		return nil
	})
	if err != nil {
		return err
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		_ = os.Chtimes(d.path, d.info.ModTime(), d.info.ModTime())
	}
	return nil
}

func (o *Operator) record(from types.Side, relPath, srcRoot, dstRoot string, files int, bytes int64, err error) {
	if o.history == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = err.Error()
	}
	if _, herr := o.history.Append(manifest.Record{
		From:       from,
		RelPath:    relPath,
		SourceRoot: srcRoot,
		DestRoot:   dstRoot,
		Files:      files,
		Bytes:      bytes,
		Outcome:    outcome,
	}); herr != nil {
		logging.Get("copyop").Warn("history record failed", "error", herr)
	}
}

func fileSize(info fs.FileInfo) int64 {
	if info.IsDir() {
		return 0
	}
	return info.Size()
}
