package pipeline

// Metrics holds the raw pipeline event counters. Derived figures (CPI,
// IPC, efficiency) are computed from the counters on demand and never
// stored, so they cannot drift from the events that produced them.
type Metrics struct {
	Cycles       uint64
	Instructions uint64
	StallCycles  uint64

	DataHazards       uint64
	ControlHazards    uint64
	StructuralHazards uint64

	RAWHazards uint64
	WAWHazards uint64
	WARHazards uint64

	BranchesTotal       uint64
	BranchesPredicted   uint64
	BranchPenaltyCycles uint64

	MemoryReads       uint64
	MemoryWrites      uint64
	MemoryStallCycles uint64
}

// CPI returns cycles per instruction, 1.0 when nothing has retired.
func (m Metrics) CPI() float64 {
	if m.Instructions == 0 {
		return 1.0
	}
	return float64(m.Cycles) / float64(m.Instructions)
}

// IPC returns instructions per cycle, 0.0 before the first cycle.
func (m Metrics) IPC() float64 {
	if m.Cycles == 0 {
		return 0.0
	}
	return float64(m.Instructions) / float64(m.Cycles)
}

// Efficiency returns IPC relative to the theoretical maximum, capped
// at 1.0.
func (m Metrics) Efficiency(maxIPC float64) float64 {
	if maxIPC <= 0 {
		return 0.0
	}
	eff := m.IPC() / maxIPC
	if eff > 1.0 {
		return 1.0
	}
	return eff
}
