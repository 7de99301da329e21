// Package main provides the entry point for the bigpick CLI.
package main

import (
	"os"

	"github.com/bigpick/bigpick/cmd/bigpick/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
