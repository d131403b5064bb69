// Package main provides the climload CLI.
package main

import (
	"os"

	"github.com/verdant-labs/climload/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
