// Package core couples the functional machine with the pipeline
// performance model. The machine stays the single source of
// architectural truth; the pipeline replays the issued instruction
// stream to estimate timing.
package core

import (
	"fmt"

	"github.com/sarchlab/lc3sim/emu"
	"github.com/sarchlab/lc3sim/insts"
	"github.com/sarchlab/lc3sim/timing/cache"
	"github.com/sarchlab/lc3sim/timing/pipeline"
)

// Core is a machine with an optional attached pipeline model.
type Core struct {
	machine  *emu.Machine
	pipeline *pipeline.Pipeline
	attached bool
}

// New creates a core around the given machine with no pipeline
// attached.
func New(machine *emu.Machine) *Core {
	c := &Core{machine: machine}
	machine.AddIssueListener(c)
	return c
}

// Machine returns the underlying machine.
func (c *Core) Machine() *emu.Machine {
	return c.machine
}

// Pipeline returns the attached pipeline, nil when detached.
func (c *Core) Pipeline() *pipeline.Pipeline {
	if !c.attached {
		return nil
	}
	return c.pipeline
}

// AttachPipeline builds a pipeline from config and starts feeding it
// the instruction stream. Replacing an existing pipeline discards its
// state.
func (c *Core) AttachPipeline(config pipeline.Config) error {
	backing := cache.NewMemoryBacking(c.machine.Memory())
	p, err := pipeline.New(config, backing)
	if err != nil {
		return fmt.Errorf("failed to attach pipeline: %w", err)
	}
	c.pipeline = p
	c.attached = true
	return nil
}

// SetPipelineEnabled toggles the instruction feed without losing the
// pipeline's configuration. Enabling with no pipeline built attaches
// the default configuration.
func (c *Core) SetPipelineEnabled(enabled bool) error {
	if enabled && c.pipeline == nil {
		return c.AttachPipeline(pipeline.DefaultConfig())
	}
	c.attached = enabled
	return nil
}

// PipelineEnabled reports whether the pipeline feed is active.
func (c *Core) PipelineEnabled() bool {
	return c.attached
}

// ResetPipeline zeroes the pipeline's counters and occupancy.
func (c *Core) ResetPipeline() {
	if c.pipeline != nil {
		c.pipeline.Reset()
	}
}

// InstructionIssued implements emu.IssueListener.
func (c *Core) InstructionIssued(word insts.Word, pc insts.Word) {
	if !c.attached || c.pipeline == nil {
		return
	}
	c.pipeline.Issue(word, pc)
}

// Step executes one full instruction on the machine.
func (c *Core) Step() {
	c.machine.Step()
	if c.machine.Halted() {
		c.drain()
	}
}

// Run executes until halt or the cycle bound, then drains the pipeline
// so its metrics cover every issued instruction.
func (c *Core) Run(maxCycles uint64) emu.RunResult {
	result := c.machine.Run(maxCycles)
	c.drain()
	return result
}

func (c *Core) drain() {
	if c.attached && c.pipeline != nil {
		c.pipeline.Drain()
	}
}

// Reset returns the machine and the pipeline to their initial states.
func (c *Core) Reset() {
	c.machine.Reset()
	c.ResetPipeline()
}
