// Package main provides the entry point for the caselens CLI.
package main

import (
	"os"

	"github.com/caselens/caselens/cmd/caselens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
