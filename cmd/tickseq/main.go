// Package main is the tickseq command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tickseq/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tickseq: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
