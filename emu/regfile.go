// Package emu provides the LC-3 memory/register subsystem and the
// control-unit state machine that executes instructions one micro-step
// at a time.
package emu

import "github.com/sarchlab/lc3sim/insts"

// CondCodes holds the N/Z/P condition codes. Exactly one flag is set
// after any instruction that updates them.
type CondCodes struct {
	N, Z, P bool
}

// Set recomputes the condition codes from a result word. Zero takes
// precedence over negative, negative over positive.
func (c *CondCodes) Set(v insts.Word) {
	c.N, c.Z, c.P = false, false, false
	switch {
	case v == 0:
		c.Z = true
	case v&0x8000 != 0:
		c.N = true
	default:
		c.P = true
	}
}

// Bits returns the condition codes packed as PSR bits [2:0] (N,Z,P).
func (c *CondCodes) Bits() insts.Word {
	var b insts.Word
	if c.N {
		b |= 0x4
	}
	if c.Z {
		b |= 0x2
	}
	if c.P {
		b |= 0x1
	}
	return b
}

// SetFromBits restores the condition codes from PSR bits [2:0].
func (c *CondCodes) SetFromBits(b insts.Word) {
	c.N = b&0x4 != 0
	c.Z = b&0x2 != 0
	c.P = b&0x1 != 0
}

// RegFile represents the LC-3 register file: eight general-purpose
// registers, the program counter, and the datapath latches used by the
// control unit. R7 is the conventional link register; R6 the stack pointer.
type RegFile struct {
	// R holds general-purpose registers R0-R7.
	R [8]insts.Word

	// PC is the program counter. Once fetch completes it holds the
	// address of the next instruction.
	PC insts.Word

	// IR is the instruction register.
	IR insts.Word
	// MAR is the memory address register.
	MAR insts.Word
	// MDR is the memory data register.
	MDR insts.Word

	// CC holds the condition codes.
	CC CondCodes
}

// Read returns the value of register i.
func (r *RegFile) Read(i uint8) insts.Word {
	return r.R[i&0x7]
}

// WriteRaw writes a register without touching the condition codes. Used
// by the loader, host bindings, and datapath steps whose instruction
// semantics do not update CC.
func (r *RegFile) WriteRaw(i uint8, v insts.Word) {
	r.R[i&0x7] = v
}

// WriteCC writes a register and recomputes the condition codes, for the
// instruction-level destination writes that call for it.
func (r *RegFile) WriteCC(i uint8, v insts.Word) {
	r.R[i&0x7] = v
	r.CC.Set(v)
}
