// Package main provides the leapdbml command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/leapdbml/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
