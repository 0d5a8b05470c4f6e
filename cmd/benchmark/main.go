// Command benchmark runs the LC3Sim timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv           Output results in CSV format (default: human-readable)
//	-json          Output results in JSON format
//	-depth         Pipeline depth (default 5)
//	-no-forward    Disable RAW forwarding
//	-predict       Enable branch prediction
//	-no-icache     Disable instruction cache simulation
//	-no-dcache     Disable data cache simulation
//
// Example:
//
//	# Compare forwarding against stalling
//	go run ./cmd/benchmark > with_forwarding.txt
//	go run ./cmd/benchmark -no-forward > without_forwarding.txt
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/lc3sim/benchmarks"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	depth := flag.Int("depth", 5, "Pipeline depth")
	noForward := flag.Bool("no-forward", false, "Disable RAW forwarding")
	predict := flag.Bool("predict", false, "Enable branch prediction")
	noICache := flag.Bool("no-icache", false, "Disable instruction cache simulation")
	noDCache := flag.Bool("no-dcache", false, "Disable data cache simulation")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.Depth = *depth
	config.Forwarding = !*noForward
	config.BranchPrediction = *predict
	config.EnableICache = !*noICache
	config.EnableDCache = !*noDCache
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())

	if !*csvOutput && !*jsonOutput {
		fmt.Println("LC3Sim Timing Benchmark Harness")
		fmt.Println("===============================")
		fmt.Printf("Depth: %d  Forwarding: %v  Prediction: %v\n",
			config.Depth, config.Forwarding, config.BranchPrediction)
		fmt.Printf("I-Cache: %v  D-Cache: %v\n",
			config.EnableICache, config.EnableDCache)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	for _, r := range results {
		if !r.Passed {
			os.Exit(1)
		}
	}
}
