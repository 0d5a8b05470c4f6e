// Package insts provides LC-3 instruction definitions and decoding.
package insts

// Word is the fundamental LC-3 data type: a 16-bit word. Memory cells,
// registers, and the program counter are all words.
type Word uint16

// Opcode represents an LC-3 opcode, held in the top 4 bits of an instruction.
type Opcode uint8

// LC-3 opcodes.
const (
	OpBR   Opcode = 0x0
	OpADD  Opcode = 0x1
	OpLD   Opcode = 0x2
	OpST   Opcode = 0x3
	OpJSR  Opcode = 0x4
	OpAND  Opcode = 0x5
	OpLDR  Opcode = 0x6
	OpSTR  Opcode = 0x7
	OpRTI  Opcode = 0x8
	OpNOT  Opcode = 0x9
	OpLDI  Opcode = 0xA
	OpSTI  Opcode = 0xB
	OpJMP  Opcode = 0xC
	OpRES  Opcode = 0xD // reserved, illegal to execute
	OpLEA  Opcode = 0xE
	OpTRAP Opcode = 0xF
)

// OpcodeOf extracts the opcode from an instruction word.
func OpcodeOf(w Word) Opcode {
	return Opcode(w >> 12)
}

var opcodeNames = [16]string{
	"BR", "ADD", "LD", "ST", "JSR", "AND", "LDR", "STR",
	"RTI", "NOT", "LDI", "STI", "JMP", "RES", "LEA", "TRAP",
}

// String returns the conventional mnemonic for the opcode.
func (op Opcode) String() string {
	if op > 0xF {
		return "???"
	}
	return opcodeNames[op]
}

// Trap vectors for the standard service routines.
const (
	TrapGETC  Word = 0x20 // read one character, no echo
	TrapOUT   Word = 0x21 // write one character
	TrapPUTS  Word = 0x22 // write a word-per-character string
	TrapIN    Word = 0x23 // prompt and read one character
	TrapPUTSP Word = 0x24 // write a packed byte-per-character string
	TrapHALT  Word = 0x25 // halt the machine
)

// Memory-mapped device registers.
const (
	KBSR Word = 0xFE00 // keyboard status: bit 15 ready, bit 14 interrupt enable
	KBDR Word = 0xFE02 // keyboard data
	DSR  Word = 0xFE04 // display status: bit 15 ready
	DDR  Word = 0xFE06 // display data
	PSR  Word = 0xFFFC // processor status word
	MCR  Word = 0xFFFE // machine control: bit 15 clock enable
)

// Memory map regions.
const (
	TrapVectorTableAddr  Word = 0x0000
	TrapVectorTableLimit Word = 0x00FF
	IntVectorTableAddr   Word = 0x0100
	IntVectorTableLimit  Word = 0x01FF
	SystemSpaceLimit     Word = 0x2FFF
	UserSpaceAddr        Word = 0x3000
	UserSpaceLimit       Word = 0xFDFF
	DeviceSpaceAddr      Word = 0xFE00
)

// KeyboardIntVector is the interrupt-vector-table slot used for keyboard
// interrupts.
const KeyboardIntVector Word = 0x0180

// Status word bits.
const (
	PSRPrivilegeBit Word = 0x8000 // set while in user mode
	MCRClockEnable  Word = 0x8000
	DSRReadyBit     Word = 0x8000
	KBSRReadyBit    Word = 0x8000
	KBSRIntEnable   Word = 0x4000
)

// Instruction field widths, in bits.
const (
	WidthImm5     = 5
	WidthOffset6  = 6
	WidthTrapVect = 8
	WidthOffset9  = 9
	WidthOffset11 = 11
)

// NumGPRs is the number of general-purpose registers.
const NumGPRs uint8 = 8

// RegNone marks an unused register operand slot in a decoded instruction.
const RegNone uint8 = 0xFF
