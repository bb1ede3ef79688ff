// Package main provides the needscheck CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/needscheck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
