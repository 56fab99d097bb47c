// Package main provides the datareport command.
package main

import (
	"os"

	"github.com/leapstack-labs/datareport/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
