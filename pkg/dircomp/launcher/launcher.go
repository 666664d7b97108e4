// Package launcher resolves and builds the external commands used to
// inspect entries: a side-by-side diff tool for pairs and a viewer
// for one-sided files. Resolution walks a fixed fallback chain at
// construction time so the footer can show which tools are active.
package launcher

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrNoTool means every candidate in a fallback chain was missing
// from PATH.
var ErrNoTool = errors.New("no suitable external tool found")

// LaunchError wraps a failure to run a resolved tool.
type LaunchError struct {
	Tool string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Tool, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// diffChain and viewChain are the fallback orders, best tool first.
var (
	diffChain = [][]string{
		{"vimdiff"},
		{"vim", "-d"},
		{"diff", "-u", "--color=always"},
	}
	viewChain = [][]string{
		{"vim"},
		{"vi"},
		{"nano"},
		{"cat"},
	}
)

// Launcher holds the resolved tool argv prefixes. A nil slice means
// the chain was exhausted.
type Launcher struct {
	diff []string
	view []string
}

// Detect probes PATH for the fallback chains and returns a Launcher.
// Detection failures are not errors here; they surface as ErrNoTool
// when a command is requested.
func Detect() *Launcher {
	return detect(exec.LookPath)
}

func detect(lookPath func(string) (string, error)) *Launcher {
	resolve := func(chain [][]string) []string {
		for _, candidate := range chain {
			if _, err := lookPath(candidate[0]); err == nil {
				return candidate
			}
		}
		return nil
	}
	return &Launcher{
		diff: resolve(diffChain),
		view: resolve(viewChain),
	}
}

// DiffTool returns the resolved diff tool name, or "" when none was
// found.
func (l *Launcher) DiffTool() string {
	if len(l.diff) == 0 {
		return ""
	}
	return l.diff[0]
}

// ViewTool returns the resolved viewer name, or "" when none was
// found.
func (l *Launcher) ViewTool() string {
	if len(l.view) == 0 {
		return ""
	}
	return l.view[0]
}

// DiffCmd builds the command showing the differences between the two
// paths.
func (l *Launcher) DiffCmd(leftPath, rightPath string) (*exec.Cmd, error) {
	if len(l.diff) == 0 {
		return nil, ErrNoTool
	}
	args := append(append([]string{}, l.diff[1:]...), leftPath, rightPath)
	return exec.Command(l.diff[0], args...), nil
}

// ViewCmd builds the command viewing a single file.
func (l *Launcher) ViewCmd(path string) (*exec.Cmd, error) {
	if len(l.view) == 0 {
		return nil, ErrNoTool
	}
	args := append(append([]string{}, l.view[1:]...), path)
	return exec.Command(l.view[0], args...), nil
}
