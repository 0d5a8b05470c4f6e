// Package sim provides the embedding surface for hosts: a single
// Simulator type wrapping the machine, the pipeline model, and program
// loading behind scalar getters and setters.
package sim

import (
	"fmt"

	"github.com/sarchlab/lc3sim/emu"
	"github.com/sarchlab/lc3sim/insts"
	"github.com/sarchlab/lc3sim/timing/core"
	"github.com/sarchlab/lc3sim/timing/pipeline"
)

// Simulator is one independent simulation context. Hosts may create any
// number of instances; none of them share state.
type Simulator struct {
	core *core.Core
}

// New creates a simulator at power-on state.
func New(opts ...emu.MachineOption) *Simulator {
	return &Simulator{core: core.New(emu.NewMachine(opts...))}
}

// Machine exposes the underlying machine for hosts that need more than
// the scalar surface.
func (s *Simulator) Machine() *emu.Machine {
	return s.core.Machine()
}

// Reset returns the simulator to power-on state, keeping the pipeline
// configuration but zeroing its counters.
func (s *Simulator) Reset() {
	s.core.Reset()
}

// LoadProgram loads words at start and points the PC there.
func (s *Simulator) LoadProgram(words []insts.Word, start insts.Word) {
	s.core.Machine().LoadProgram(start, words)
}

// Step executes one full instruction.
func (s *Simulator) Step() {
	s.core.Step()
}

// Run executes until halt or until maxCycles machine cycles elapse;
// 0 means no bound.
func (s *Simulator) Run(maxCycles uint64) emu.RunResult {
	return s.core.Run(maxCycles)
}

// IsHalted reports whether the machine has halted.
func (s *Simulator) IsHalted() bool {
	return s.core.Machine().Halted()
}

// GetRegister returns general-purpose register i.
func (s *Simulator) GetRegister(i uint8) (insts.Word, error) {
	if i >= insts.NumGPRs {
		return 0, fmt.Errorf("register index %d out of range", i)
	}
	return s.core.Machine().RegFile().Read(i), nil
}

// SetRegister writes general-purpose register i without touching the
// condition codes.
func (s *Simulator) SetRegister(i uint8, v insts.Word) error {
	if i >= insts.NumGPRs {
		return fmt.Errorf("register index %d out of range", i)
	}
	s.core.Machine().RegFile().WriteRaw(i, v)
	return nil
}

// GetMemory reads a memory cell through the raw path, bypassing device
// side effects.
func (s *Simulator) GetMemory(addr insts.Word) insts.Word {
	return s.core.Machine().Memory().ReadRaw(addr)
}

// SetMemory writes a memory cell through the raw path.
func (s *Simulator) SetMemory(addr insts.Word, v insts.Word) {
	s.core.Machine().Memory().WriteRaw(addr, v)
}

// GetPC returns the program counter.
func (s *Simulator) GetPC() insts.Word {
	return s.core.Machine().RegFile().PC
}

// SetPC sets the program counter.
func (s *Simulator) SetPC(pc insts.Word) {
	s.core.Machine().RegFile().PC = pc
}

// GetConditionCodes returns the N, Z, P flags.
func (s *Simulator) GetConditionCodes() (n, z, p bool) {
	cc := s.core.Machine().RegFile().CC
	return cc.N, cc.Z, cc.P
}

// CycleCount returns the machine cycle count.
func (s *Simulator) CycleCount() uint64 {
	return s.core.Machine().CycleCount()
}

// InstructionCount returns the number of instructions executed.
func (s *Simulator) InstructionCount() uint64 {
	return s.core.Machine().InstructionCount()
}

// EnablePipeline toggles the pipeline performance model. Enabling it
// for the first time attaches the default five-stage configuration.
func (s *Simulator) EnablePipeline(enabled bool) error {
	return s.core.SetPipelineEnabled(enabled)
}

// PipelineEnabled reports whether the pipeline model is active.
func (s *Simulator) PipelineEnabled() bool {
	return s.core.PipelineEnabled()
}

// ConfigurePipeline attaches a pipeline with the given shape. The full
// Config surface is available through ConfigurePipelineFull.
func (s *Simulator) ConfigurePipeline(
	name string,
	depth int,
	forwarding bool,
	branchPrediction bool,
) error {
	config := pipeline.DefaultConfig()
	config.Name = name
	config.Depth = depth
	config.Stages = nil
	config.Forwarding = forwarding
	config.BranchPrediction = branchPrediction
	return s.ConfigurePipelineFull(config)
}

// ConfigurePipelineFull attaches a pipeline built from config.
func (s *Simulator) ConfigurePipelineFull(config pipeline.Config) error {
	return s.core.AttachPipeline(config)
}

// Pipeline returns the attached pipeline model, nil when disabled.
func (s *Simulator) Pipeline() *pipeline.Pipeline {
	return s.core.Pipeline()
}

// ResetPipeline zeroes the pipeline counters and occupancy without
// touching machine state.
func (s *Simulator) ResetPipeline() {
	s.core.ResetPipeline()
}

// PipelineMetrics returns the pipeline metrics as a flat name-to-value
// map. All values are zero when no pipeline has run.
func (s *Simulator) PipelineMetrics() map[string]float64 {
	metrics := map[string]float64{
		"total_cycles":        0,
		"total_instructions":  0,
		"cpi":                 0,
		"ipc":                 0,
		"pipeline_efficiency": 0,
		"stall_cycles":        0,
		"data_hazards":        0,
		"control_hazards":     0,
		"structural_hazards":  0,
		"memory_reads":        0,
		"memory_writes":       0,
		"memory_stall_cycles": 0,
	}

	p := s.core.Pipeline()
	if p == nil {
		return metrics
	}

	m := p.Metrics()
	metrics["total_cycles"] = float64(m.Cycles)
	metrics["total_instructions"] = float64(m.Instructions)
	metrics["cpi"] = m.CPI()
	metrics["ipc"] = m.IPC()
	metrics["pipeline_efficiency"] = p.Efficiency()
	metrics["stall_cycles"] = float64(m.StallCycles)
	metrics["data_hazards"] = float64(m.DataHazards)
	metrics["control_hazards"] = float64(m.ControlHazards)
	metrics["structural_hazards"] = float64(m.StructuralHazards)
	metrics["memory_reads"] = float64(m.MemoryReads)
	metrics["memory_writes"] = float64(m.MemoryWrites)
	metrics["memory_stall_cycles"] = float64(m.MemoryStallCycles)

	return metrics
}
