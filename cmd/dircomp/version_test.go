package main

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	out := versionString()

	if !strings.HasPrefix(out, "dircomp "+version+"\n") {
		t.Errorf("versionString() = %q, want prefix %q", out, "dircomp "+version)
	}
	for _, want := range []string{
		"commit:  " + commit,
		"built:   " + date,
		"go:      " + runtime.Version(),
		"os/arch: " + runtime.GOOS + "/" + runtime.GOARCH,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("versionString() missing %q", want)
		}
	}
}
