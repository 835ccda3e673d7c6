// Package main provides the anosql command line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/anosql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
