// Package main is the entry point for the vgreport CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/vgreport/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Command failures are already written in the requested format.
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
