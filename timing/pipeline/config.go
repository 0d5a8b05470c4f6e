// Package pipeline provides the configurable N-stage pipeline
// performance model: stage occupancy, hazard detection, stalling, and
// throughput metrics for an LC-3 instruction stream.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/lc3sim/timing/cache"
)

// StageKind identifies the work a pipeline stage performs.
type StageKind uint8

// Pipeline stage kinds.
const (
	StageFetch StageKind = iota
	StageDecode
	StageExecute
	StageMemory
	StageWriteback
	StageCustom
)

var stageKindNames = [...]string{
	"FETCH", "DECODE", "EXECUTE", "MEMORY", "WRITEBACK", "CUSTOM",
}

// String returns the stage kind name.
func (k StageKind) String() string {
	if int(k) < len(stageKindNames) {
		return stageKindNames[k]
	}
	return "UNKNOWN"
}

// MaxDepth is the largest supported pipeline depth.
const MaxDepth = 8

// Config holds the pipeline configuration. Depth must be in [1,8];
// Validate rejects out-of-range values rather than clamping them.
type Config struct {
	// Name labels the configuration in reports.
	Name string `json:"name"`

	// Stages is the ordered list of stage kinds. When empty it is filled
	// from the canonical order for the configured depth.
	Stages []StageKind `json:"stages,omitempty"`

	// Depth is the number of pipeline stages, 1 to 8.
	Depth int `json:"depth"`

	// Forwarding resolves RAW hazards without stalling when enabled.
	Forwarding bool `json:"forwarding"`

	// BranchPrediction waives the branch penalty when enabled. The model
	// is deterministic: a predicted branch costs nothing and is counted
	// as predicted, an unpredicted one incurs BranchPenalty.
	BranchPrediction bool `json:"branch_prediction"`

	// OutOfOrder only raises the theoretical-maximum IPC used by the
	// efficiency metric; issue remains in order.
	OutOfOrder bool `json:"out_of_order"`

	// ClockMHz is an illustrative clock label, not calibrated timing.
	ClockMHz uint32 `json:"clock_mhz"`

	// MemoryLatency is the flat memory access cost in cycles when the
	// data cache is disabled.
	MemoryLatency uint64 `json:"memory_latency"`

	// BranchPenalty is the cost in cycles of an unpredicted control-flow
	// instruction.
	BranchPenalty uint64 `json:"branch_penalty"`

	// ICache and DCache configure the cache timing model.
	ICache cache.Config `json:"icache"`
	DCache cache.Config `json:"dcache"`
}

// DefaultConfig returns the classic five-stage configuration:
// forwarding on, branch prediction off, 100 MHz label, unit memory
// latency, two-cycle branch penalty, 4KB direct-mapped caches.
func DefaultConfig() Config {
	return Config{
		Name:          "Default 5-Stage Pipeline",
		Depth:         5,
		Forwarding:    true,
		ClockMHz:      100,
		MemoryLatency: 1,
		BranchPenalty: 2,
		ICache:        cache.DefaultIConfig(),
		DCache:        cache.DefaultDConfig(),
	}
}

// canonicalStages maps each depth to its stage order.
var canonicalStages = map[int][]StageKind{
	1: {StageExecute},
	2: {StageFetch, StageExecute},
	3: {StageFetch, StageExecute, StageWriteback},
	4: {StageFetch, StageDecode, StageExecute, StageWriteback},
	5: {StageFetch, StageDecode, StageExecute, StageMemory, StageWriteback},
	6: {StageFetch, StageDecode, StageExecute, StageCustom, StageMemory,
		StageWriteback},
	7: {StageFetch, StageDecode, StageCustom, StageExecute, StageCustom,
		StageMemory, StageWriteback},
	8: {StageFetch, StageDecode, StageCustom, StageExecute, StageCustom,
		StageMemory, StageCustom, StageWriteback},
}

// Validate checks the configuration, filling Stages from the canonical
// order when empty. Invalid configurations are errors, never clamped.
func (c *Config) Validate() error {
	if c.Depth < 1 || c.Depth > MaxDepth {
		return fmt.Errorf("pipeline depth must be in [1,%d], got %d",
			MaxDepth, c.Depth)
	}
	if len(c.Stages) == 0 {
		c.Stages = append([]StageKind(nil), canonicalStages[c.Depth]...)
	}
	if len(c.Stages) != c.Depth {
		return fmt.Errorf("stage list has %d entries for depth %d",
			len(c.Stages), c.Depth)
	}
	for _, k := range c.Stages {
		if k > StageCustom {
			return fmt.Errorf("unknown stage kind %d", k)
		}
	}
	if c.MemoryLatency == 0 {
		return fmt.Errorf("memory_latency must be > 0")
	}
	return nil
}

// LoadConfig loads a Config from a JSON file, starting from defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read pipeline config file: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse pipeline config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Save writes the Config to a JSON file.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize pipeline config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write pipeline config file: %w", err)
	}
	return nil
}

// writebackIndex returns the stage index where results become
// architecturally visible: the last writeback stage, or the final stage.
func (c Config) writebackIndex() int {
	for i := len(c.Stages) - 1; i >= 0; i-- {
		if c.Stages[i] == StageWriteback {
			return i
		}
	}
	return len(c.Stages) - 1
}
