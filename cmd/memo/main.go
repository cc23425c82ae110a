// Package main provides the entry point for the memo CLI.
package main

import (
	"os"

	"github.com/go-memo/memo/cmd/memo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
