// Package main provides the entry point for LC3Sim.
// LC3Sim is a cycle-level LC-3 CPU simulator with an optional pipeline
// performance model.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/lc3sim/emu"
	"github.com/sarchlab/lc3sim/loader"
	"github.com/sarchlab/lc3sim/sim"
	"github.com/sarchlab/lc3sim/timing/pipeline"
)

var (
	usePipeline = flag.Bool("pipeline", false, "Enable the pipeline performance model")
	configPath  = flag.String("config", "", "Path to pipeline configuration JSON file")
	maxCycles   = flag.Uint64("max-cycles", 0, "Stop after this many machine cycles (0 = no bound)")
	interactive = flag.Bool("i", false, "Start the interactive debugger")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 && !*interactive {
		fmt.Fprintf(os.Stderr, "Usage: lc3sim [options] <program.obj>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	opts := []emu.MachineOption{
		emu.WithDisplay(os.Stdout),
		emu.WithLogger(log),
	}
	if !*interactive {
		// The REPL owns stdin in interactive mode.
		opts = append(opts, emu.WithKeyboardInput(os.Stdin))
	}
	s := sim.New(opts...)

	if *usePipeline || *configPath != "" {
		config := pipeline.DefaultConfig()
		if *configPath != "" {
			var err error
			config, err = pipeline.LoadConfig(*configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading pipeline config: %v\n", err)
				os.Exit(1)
			}
		}
		if err := s.ConfigurePipelineFull(config); err != nil {
			fmt.Fprintf(os.Stderr, "Error configuring pipeline: %v\n", err)
			os.Exit(1)
		}
	}

	if flag.NArg() >= 1 {
		if err := loadInto(s, flag.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
			os.Exit(1)
		}
	}

	if *interactive {
		runREPL(s, os.Stdin, os.Stdout)
		return
	}

	result := s.Run(*maxCycles)

	if result.Reason == emu.StopCycleBound {
		fmt.Fprintf(os.Stderr, "Cycle bound of %d exceeded\n", *maxCycles)
		os.Exit(2)
	}

	if *verbose || s.PipelineEnabled() {
		printReport(s, flag.Arg(0))
	}

	if s.Machine().ErrorFlag() || s.Machine().ViolationFlag() {
		os.Exit(1)
	}
}

func loadInto(s *sim.Simulator, path string) error {
	prog, err := loader.Load(path)
	if err != nil {
		return err
	}
	s.LoadProgram(prog.Words, prog.Origin)
	if *verbose {
		fmt.Printf("Loaded: %s\n", path)
		fmt.Printf("Origin: 0x%04X\n", uint16(prog.Origin))
		fmt.Printf("Words:  %d\n", len(prog.Words))
	}
	return nil
}

func printReport(s *sim.Simulator, programPath string) {
	fmt.Printf("\n")
	fmt.Printf("Program: %s\n", programPath)
	fmt.Printf("Machine Cycles: %d\n", s.CycleCount())
	fmt.Printf("Instructions:   %d\n", s.InstructionCount())
	if s.Machine().ErrorFlag() {
		fmt.Printf("Stopped on decode/privilege error\n")
	}
	if s.Machine().ViolationFlag() {
		fmt.Printf("Stopped on access violation\n")
	}

	if !s.PipelineEnabled() {
		return
	}

	m := s.PipelineMetrics()
	fmt.Printf("\n")
	fmt.Printf("Pipeline Model:\n")
	fmt.Printf("  Cycles:             %.0f\n", m["total_cycles"])
	fmt.Printf("  Instructions:       %.0f\n", m["total_instructions"])
	fmt.Printf("  CPI:                %.3f\n", m["cpi"])
	fmt.Printf("  IPC:                %.3f\n", m["ipc"])
	fmt.Printf("  Efficiency:         %.3f\n", m["pipeline_efficiency"])
	fmt.Printf("  Stall Cycles:       %.0f\n", m["stall_cycles"])
	fmt.Printf("  Data Hazards:       %.0f\n", m["data_hazards"])
	fmt.Printf("  Control Hazards:    %.0f\n", m["control_hazards"])
	fmt.Printf("  Structural Hazards: %.0f\n", m["structural_hazards"])
	fmt.Printf("  Memory Reads:       %.0f\n", m["memory_reads"])
	fmt.Printf("  Memory Writes:      %.0f\n", m["memory_writes"])
	fmt.Printf("  Memory Stalls:      %.0f\n", m["memory_stall_cycles"])
}

// used by the REPL's reg command
func ccString(s *sim.Simulator) string {
	n, z, p := s.GetConditionCodes()
	switch {
	case n:
		return "N"
	case z:
		return "Z"
	case p:
		return "P"
	}
	return "-"
}
