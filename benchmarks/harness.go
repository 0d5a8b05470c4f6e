// Package benchmarks provides the timing benchmark harness: canned
// LC-3 programs with known results, run through the pipeline model to
// characterize its hazard and stall behavior.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/lc3sim/insts"
	"github.com/sarchlab/lc3sim/sim"
	"github.com/sarchlab/lc3sim/timing/pipeline"
)

// runCycleBound caps each benchmark run. The canned programs finish in
// well under a thousand machine cycles.
const runCycleBound = 1 << 20

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark.
	Name string

	// Description explains what the benchmark measures.
	Description string

	// Setup prepares simulator state before the program runs.
	Setup func(s *sim.Simulator)

	// Program is the LC-3 machine code, loaded at the user-space origin.
	Program []insts.Word

	// ExpectedR0 is the value R0 must hold after a clean halt.
	ExpectedR0 insts.Word
}

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	SimulatedCycles     uint64  `json:"simulated_cycles"`
	InstructionsRetired uint64  `json:"instructions_retired"`
	CPI                 float64 `json:"cpi"`
	IPC                 float64 `json:"ipc"`
	Efficiency          float64 `json:"efficiency"`

	StallCycles       uint64 `json:"stall_cycles"`
	DataHazards       uint64 `json:"data_hazards"`
	ControlHazards    uint64 `json:"control_hazards"`
	StructuralHazards uint64 `json:"structural_hazards"`

	MemoryReads       uint64 `json:"memory_reads"`
	MemoryWrites      uint64 `json:"memory_writes"`
	MemoryStallCycles uint64 `json:"memory_stall_cycles"`

	ICacheHits   uint64 `json:"icache_hits,omitempty"`
	ICacheMisses uint64 `json:"icache_misses,omitempty"`
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	R0     insts.Word `json:"r0"`
	Passed bool       `json:"passed"`

	WallTime time.Duration `json:"wall_time_ns"`
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Depth is the pipeline depth for every run.
	Depth int

	// Forwarding enables RAW forwarding.
	Forwarding bool

	// BranchPrediction waives branch penalties.
	BranchPrediction bool

	// EnableICache and EnableDCache toggle the cache models.
	EnableICache bool
	EnableDCache bool

	// Output is where results are written, default os.Stdout.
	Output io.Writer

	// Verbose enables detailed output.
	Verbose bool
}

// DefaultConfig returns the default harness configuration: the
// five-stage forwarding pipeline with both caches.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Depth:        5,
		Forwarding:   true,
		EnableICache: true,
		EnableDCache: true,
		Output:       os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{config: config}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))
	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}
	return results
}

func (h *Harness) pipelineConfig() pipeline.Config {
	config := pipeline.DefaultConfig()
	config.Depth = h.config.Depth
	config.Stages = nil
	config.Forwarding = h.config.Forwarding
	config.BranchPrediction = h.config.BranchPrediction
	config.ICache.Enabled = h.config.EnableICache
	config.DCache.Enabled = h.config.EnableDCache
	return config
}

func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	s := sim.New()

	if bench.Setup != nil {
		bench.Setup(s)
	}
	s.LoadProgram(bench.Program, insts.UserSpaceAddr)

	if err := s.ConfigurePipelineFull(h.pipelineConfig()); err != nil {
		return BenchmarkResult{Name: bench.Name, Description: bench.Description}
	}

	start := time.Now()
	s.Run(runCycleBound)
	wallTime := time.Since(start)

	metrics := s.PipelineMetrics()
	r0, _ := s.GetRegister(0)

	result := BenchmarkResult{
		Name:                bench.Name,
		Description:         bench.Description,
		SimulatedCycles:     uint64(metrics["total_cycles"]),
		InstructionsRetired: uint64(metrics["total_instructions"]),
		CPI:                 metrics["cpi"],
		IPC:                 metrics["ipc"],
		Efficiency:          metrics["pipeline_efficiency"],
		StallCycles:         uint64(metrics["stall_cycles"]),
		DataHazards:         uint64(metrics["data_hazards"]),
		ControlHazards:      uint64(metrics["control_hazards"]),
		StructuralHazards:   uint64(metrics["structural_hazards"]),
		MemoryReads:         uint64(metrics["memory_reads"]),
		MemoryWrites:        uint64(metrics["memory_writes"]),
		MemoryStallCycles:   uint64(metrics["memory_stall_cycles"]),
		R0:                  r0,
		Passed:              s.IsHalted() && r0 == bench.ExpectedR0,
		WallTime:            wallTime,
	}

	if pl := s.Pipeline(); pl != nil {
		ic := pl.ICacheStats()
		result.ICacheHits = ic.Hits
		result.ICacheMisses = ic.Misses
		dc := pl.DCacheStats()
		result.DCacheHits = dc.Hits
		result.DCacheMisses = dc.Misses
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== LC3Sim Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  R0: 0x%04X  Passed: %v\n", uint16(r.R0), r.Passed)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  IPC:                  %.3f\n", r.IPC)
		_, _ = fmt.Fprintf(h.config.Output, "  Efficiency:           %.3f\n", r.Efficiency)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Data Hazards:         %d\n", r.DataHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Control Hazards:      %d\n", r.ControlHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Structural Hazards:   %d\n", r.StructuralHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Memory Stalls:        %d\n", r.MemoryStallCycles)

		if r.ICacheHits > 0 || r.ICacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- I-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.ICacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.ICacheMisses)
		}
		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DCacheMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,ipc,efficiency,stalls,data_hazards,"+
			"control_hazards,structural_hazards,mem_stalls,"+
			"icache_hits,icache_misses,dcache_hits,dcache_misses,r0,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output,
			"%s,%d,%d,%.3f,%.3f,%.3f,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%v\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.IPC,
			r.Efficiency,
			r.StallCycles,
			r.DataHazards,
			r.ControlHazards,
			r.StructuralHazards,
			r.MemoryStallCycles,
			r.ICacheHits,
			r.ICacheMisses,
			r.DCacheHits,
			r.DCacheMisses,
			uint16(r.R0),
			r.Passed,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	Metadata ReportMetadata    `json:"metadata"`
	Results  []BenchmarkResult `json:"results"`
	Summary  ReportSummary     `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	Timestamp string          `json:"timestamp"`
	Config    BenchmarkConfig `json:"config"`
}

// BenchmarkConfig describes the harness configuration used.
type BenchmarkConfig struct {
	Depth            int  `json:"depth"`
	Forwarding       bool `json:"forwarding"`
	BranchPrediction bool `json:"branch_prediction"`
	ICacheEnabled    bool `json:"icache_enabled"`
	DCacheEnabled    bool `json:"dcache_enabled"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated
// comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.InstructionsRetired
		totalWallTime += r.WallTime
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Config: BenchmarkConfig{
				Depth:            h.config.Depth,
				Forwarding:       h.config.Forwarding,
				BranchPrediction: h.config.BranchPrediction,
				ICacheEnabled:    h.config.EnableICache,
				DCacheEnabled:    h.config.EnableDCache,
			},
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
