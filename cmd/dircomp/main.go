// Package main provides the entry point for the dircomp directory
// comparison tool.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
