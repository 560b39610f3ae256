// Package main provides the CLI entrypoint for techmap.
//
// techmap reads per-criterion specifications of accessibility techniques
// and inverts them into an index keyed by technique id:
//   - validate checks every specification against the reference grammar
//   - resolve builds the index, writes it as YAML and optionally persists it
//   - check reports technique ids missing from the registry
//   - show prints the stored records of one technique, or lists the stored techniques
//   - versions lists the guideline versions with a stored index
package main

import (
	"fmt"
	"os"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
