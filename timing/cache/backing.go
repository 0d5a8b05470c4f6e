package cache

import (
	"github.com/sarchlab/lc3sim/emu"
	"github.com/sarchlab/lc3sim/insts"
)

// MemoryBacking wraps emu.Memory as a BackingStore. It uses the raw
// storage path so cache fills never trigger device side effects.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// ReadWord fetches one word from the backing memory.
func (m *MemoryBacking) ReadWord(addr insts.Word) insts.Word {
	return m.memory.ReadRaw(addr)
}

// WriteWord stores one word to the backing memory.
func (m *MemoryBacking) WriteWord(addr insts.Word, v insts.Word) {
	m.memory.WriteRaw(addr, v)
}
