// Package main is the entry point for the esencia CLI.
package main

import (
	"fmt"
	"os"
)

// Build information injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	root.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
