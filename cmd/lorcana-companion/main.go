// Package main is the lorcana-companion command.
package main

import (
	"fmt"
	"os"

	"github.com/guibruno93/lorcana-companion/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
