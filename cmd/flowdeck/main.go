// Package main provides the entry point for the flowdeck CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/flowdeck/cmd/flowdeck/commands"
)

func main() {
	rootCmd := commands.NewRootCommand(&commands.Env{})

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
