package insts

// Instruction is a decoded LC-3 instruction. Offset and immediate fields
// are already sign-extended to 16 bits; TrapVect is zero-extended.
type Instruction struct {
	// Raw is the original instruction word.
	Raw Word

	// Op is the opcode from bits [15:12].
	Op Opcode

	// DR is the destination register field, bits [11:9]. For stores this
	// field names the source register instead.
	DR uint8
	// SR1 is the first source register field, bits [8:6]. Doubles as the
	// base register for JMP/JSRR/LDR/STR.
	SR1 uint8
	// SR2 is the second source register field, bits [2:0], valid only in
	// register-mode ADD/AND.
	SR2 uint8

	// ImmMode is instruction bit 5 for ADD/AND: immediate operand mode.
	ImmMode bool

	// Imm5 is the sign-extended 5-bit immediate (ADD/AND immediate mode).
	Imm5 Word
	// Offset6 is the sign-extended 6-bit offset (LDR/STR).
	Offset6 Word
	// Offset9 is the sign-extended 9-bit PC-relative offset
	// (BR/LD/ST/LDI/STI/LEA).
	Offset9 Word
	// Offset11 is the sign-extended 11-bit offset (JSR).
	Offset11 Word
	// TrapVect is the zero-extended 8-bit trap vector (TRAP).
	TrapVect Word

	// CondN, CondZ, CondP are instruction bits 11/10/9 for BR.
	CondN, CondZ, CondP bool

	// JSRLong is instruction bit 11 for opcode 0x4: true selects JSR
	// (PC-relative), false selects JSRR (register).
	JSRLong bool

	// Dest is the register this instruction writes, or RegNone.
	Dest uint8
	// Src1, Src2 are the registers this instruction reads, or RegNone.
	Src1, Src2 uint8

	// IsBranch marks control-flow instructions (BR/JMP/JSR/JSRR/TRAP/RTI).
	IsBranch bool
	// IsLoad marks instructions with a memory read in their data path.
	IsLoad bool
	// IsStore marks instructions with a memory write in their data path.
	IsStore bool
}

// Decoder decodes LC-3 instruction words.
type Decoder struct{}

// NewDecoder creates a new Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a single instruction word. Opcode 0xD decodes to OpRES;
// executing it is the control unit's decode-error condition.
func (d *Decoder) Decode(w Word) *Instruction {
	inst := &Instruction{
		Raw:  w,
		Op:   OpcodeOf(w),
		DR:   uint8(w >> 9 & 0x7),
		SR1:  uint8(w >> 6 & 0x7),
		SR2:  uint8(w & 0x7),
		Dest: RegNone,
		Src1: RegNone,
		Src2: RegNone,
	}

	inst.ImmMode = w&(1<<5) != 0
	inst.Imm5 = SignExtend(w, WidthImm5)
	inst.Offset6 = SignExtend(w, WidthOffset6)
	inst.Offset9 = SignExtend(w, WidthOffset9)
	inst.Offset11 = SignExtend(w, WidthOffset11)
	inst.TrapVect = ZeroExtend(w, WidthTrapVect)
	inst.CondN = w&(1<<11) != 0
	inst.CondZ = w&(1<<10) != 0
	inst.CondP = w&(1<<9) != 0
	inst.JSRLong = w&(1<<11) != 0

	switch inst.Op {
	case OpADD, OpAND:
		inst.Dest = inst.DR
		inst.Src1 = inst.SR1
		if !inst.ImmMode {
			inst.Src2 = inst.SR2
		}
	case OpNOT:
		inst.Dest = inst.DR
		inst.Src1 = inst.SR1
	case OpBR:
		inst.IsBranch = true
	case OpJMP:
		inst.Src1 = inst.SR1
		inst.IsBranch = true
	case OpJSR:
		inst.Dest = 7
		inst.IsBranch = true
		if !inst.JSRLong {
			inst.Src1 = inst.SR1
		}
	case OpLD, OpLDI:
		inst.Dest = inst.DR
		inst.IsLoad = true
	case OpLDR:
		inst.Dest = inst.DR
		inst.Src1 = inst.SR1
		inst.IsLoad = true
	case OpLEA:
		inst.Dest = inst.DR
	case OpST, OpSTI:
		inst.Src1 = inst.DR
		inst.IsStore = true
	case OpSTR:
		inst.Src1 = inst.DR
		inst.Src2 = inst.SR1
		inst.IsStore = true
	case OpTRAP:
		inst.Dest = 7
		inst.IsBranch = true
	case OpRTI:
		inst.Src1 = 6
		inst.IsBranch = true
	}

	return inst
}
