package pipeline

import "github.com/sarchlab/lc3sim/insts"

// HazardKind classifies a pipeline hazard.
type HazardKind uint8

// Hazard kinds.
const (
	HazardRAW HazardKind = iota
	HazardWAW
	HazardWAR
	HazardControl
	HazardStructural
)

var hazardKindNames = [...]string{"RAW", "WAW", "WAR", "CONTROL", "STRUCTURAL"}

// String returns the hazard kind name.
func (k HazardKind) String() string {
	if int(k) < len(hazardKindNames) {
		return hazardKindNames[k]
	}
	return "UNKNOWN"
}

// hazardUnit detects register dependences between a consumer packet and
// the older packets ahead of it.
type hazardUnit struct {
	forwarding bool
	wbIndex    int
}

// dependence records one detected hazard against an older packet.
type dependence struct {
	kind  HazardKind
	older *Packet
}

func reads(inst *insts.Instruction, reg uint8) bool {
	return reg != insts.RegNone &&
		(inst.Src1 == reg || inst.Src2 == reg)
}

// check classifies the register dependences between consumer and the
// older in-flight packet ahead of it.
func (h *hazardUnit) check(consumer, older *Packet) []dependence {
	var deps []dependence

	ci := consumer.Inst
	oi := older.Inst

	if oi.Dest != insts.RegNone && reads(ci, oi.Dest) {
		deps = append(deps, dependence{kind: HazardRAW, older: older})
	}
	if ci.Dest != insts.RegNone && ci.Dest == oi.Dest {
		deps = append(deps, dependence{kind: HazardWAW, older: older})
	}
	if ci.Dest != insts.RegNone && reads(oi, ci.Dest) {
		deps = append(deps, dependence{kind: HazardWAR, older: older})
	}

	return deps
}

// stallsFor returns the cycles the consumer must wait for a RAW
// dependence on the given producer. With forwarding the result bypasses
// the register file and no stall is needed; without it the consumer
// waits until the producer has passed the write-back point.
func (h *hazardUnit) stallsFor(producer *Packet) uint64 {
	if h.forwarding {
		return 0
	}
	if producer.Stage >= h.wbIndex {
		return 1
	}
	return uint64(h.wbIndex - producer.Stage)
}
