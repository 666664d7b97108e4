package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/dircomp/pkg/dircomp/engine"
	"github.com/jamesainslie/dircomp/pkg/dircomp/output"
	"github.com/jamesainslie/dircomp/pkg/dircomp/tree"
)

// runSimple runs one generation to completion and prints one line per
// non-identical entry.
func runSimple(eng *engine.Engine) error {
	ctx, cancel := interruptContext()
	defer cancel()

	gen, err := eng.Start(ctx)
	if err != nil {
		return fmt.Errorf("scan failed to start: %w", err)
	}

	tr := tree.New(gen)
	for {
		select {
		case ev := <-eng.Events():
			if ev.Gen != gen {
				continue
			}
			if engine.Apply(tr, ev) {
				return writeSimpleResult(eng, tr)
			}
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				printInfo("Comparison cancelled")
				return nil
			}
			return ctx.Err()
		}
	}
}

func writeSimpleResult(eng *engine.Engine, tr *tree.Tree) error {
	w := bufio.NewWriter(os.Stdout)
	if err := output.WriteSimple(w, tr); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if !getQuiet() {
		left, right := eng.Roots()
		return output.WriteSummary(os.Stderr, tr, left, right)
	}
	return nil
}
