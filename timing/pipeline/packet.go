package pipeline

import "github.com/sarchlab/lc3sim/insts"

// Packet tracks one instruction flowing through the pipeline.
type Packet struct {
	// PC is the address the instruction was fetched from.
	PC insts.Word
	// Inst is the decoded instruction.
	Inst *insts.Instruction

	// IssueCycle is the cycle the packet entered the pipeline.
	IssueCycle uint64
	// CompleteCycle is the cycle the packet retired, 0 while in flight.
	CompleteCycle uint64

	// Stage is the index of the stage the packet occupies.
	Stage int

	// StallsLeft counts remaining cycles the packet must hold its stage.
	StallsLeft uint64

	// Hazards lists the hazard kinds recorded against this packet.
	Hazards []HazardKind

	// Per-stage charge flags so each cost is applied exactly once.
	fetchCharged  bool
	branchCharged bool
	memCharged    bool
	hazardChecked bool
}

func newPacket(word insts.Word, pc insts.Word, decoder *insts.Decoder,
	cycle uint64) *Packet {
	return &Packet{
		PC:         pc,
		Inst:       decoder.Decode(word),
		IssueCycle: cycle,
	}
}
