// Package main is the entry point for the memocache CLI.
package main

import (
	"os"

	"github.com/rshade/memocache/internal/cli"
	"github.com/rshade/memocache/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the result to an exit code. Cobra
// prints the error itself, so run only translates it.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
