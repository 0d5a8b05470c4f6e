// Package main provides the entry point for LC3Sim.
// LC3Sim is a cycle-level LC-3 instruction execution engine with an
// optional pipeline performance model.
//
// For the full CLI, use: go run ./cmd/lc3sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("LC3Sim - LC-3 CPU Simulator")
	fmt.Println("")
	fmt.Println("Usage: lc3sim [options] <program.obj>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -pipeline    Enable the pipeline performance model")
	fmt.Println("  -config      Path to pipeline configuration JSON file")
	fmt.Println("  -max-cycles  Stop after this many machine cycles")
	fmt.Println("  -i           Start the interactive debugger")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/lc3sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/lc3sim' instead.")
	}
}
