package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lc3sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Arithmetic", func() {
		// ADD R1, R2, R3 -> 0x1283
		It("should decode register-mode ADD", func() {
			inst := decoder.Decode(0x1283)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.DR).To(Equal(uint8(1)))
			Expect(inst.SR1).To(Equal(uint8(2)))
			Expect(inst.SR2).To(Equal(uint8(3)))
			Expect(inst.ImmMode).To(BeFalse())
			Expect(inst.Dest).To(Equal(uint8(1)))
			Expect(inst.Src1).To(Equal(uint8(2)))
			Expect(inst.Src2).To(Equal(uint8(3)))
		})

		// ADD R0, R0, #-1 -> 0x103F
		It("should decode immediate-mode ADD with a negative immediate", func() {
			inst := decoder.Decode(0x103F)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.ImmMode).To(BeTrue())
			Expect(inst.Imm5).To(Equal(insts.Word(0xFFFF)))
			Expect(inst.Src2).To(Equal(insts.RegNone))
		})

		// AND R2, R1, R0 -> 0x5440
		It("should decode register-mode AND", func() {
			inst := decoder.Decode(0x5440)

			Expect(inst.Op).To(Equal(insts.OpAND))
			Expect(inst.DR).To(Equal(uint8(2)))
			Expect(inst.SR1).To(Equal(uint8(1)))
			Expect(inst.SR2).To(Equal(uint8(0)))
		})

		// NOT R4, R5 -> 0x997F
		It("should decode NOT", func() {
			inst := decoder.Decode(0x997F)

			Expect(inst.Op).To(Equal(insts.OpNOT))
			Expect(inst.DR).To(Equal(uint8(4)))
			Expect(inst.SR1).To(Equal(uint8(5)))
			Expect(inst.Dest).To(Equal(uint8(4)))
			Expect(inst.Src1).To(Equal(uint8(5)))
		})
	})

	Describe("Control flow", func() {
		// BRnz -2 -> 0x0DFE
		It("should decode BR condition bits and offset", func() {
			inst := decoder.Decode(0x0DFE)

			Expect(inst.Op).To(Equal(insts.OpBR))
			Expect(inst.CondN).To(BeTrue())
			Expect(inst.CondZ).To(BeTrue())
			Expect(inst.CondP).To(BeFalse())
			Expect(inst.Offset9).To(Equal(insts.Word(0xFFFE)))
			Expect(inst.IsBranch).To(BeTrue())
		})

		// JSR +5 -> 0x4805
		It("should decode JSR with the long bit set", func() {
			inst := decoder.Decode(0x4805)

			Expect(inst.Op).To(Equal(insts.OpJSR))
			Expect(inst.JSRLong).To(BeTrue())
			Expect(inst.Offset11).To(Equal(insts.Word(5)))
			Expect(inst.Dest).To(Equal(uint8(7)))
		})

		// JSRR R3 -> 0x40C0
		It("should decode JSRR with the base register as a source", func() {
			inst := decoder.Decode(0x40C0)

			Expect(inst.Op).To(Equal(insts.OpJSR))
			Expect(inst.JSRLong).To(BeFalse())
			Expect(inst.SR1).To(Equal(uint8(3)))
			Expect(inst.Src1).To(Equal(uint8(3)))
		})

		// JMP R7 (RET) -> 0xC1C0
		It("should decode JMP", func() {
			inst := decoder.Decode(0xC1C0)

			Expect(inst.Op).To(Equal(insts.OpJMP))
			Expect(inst.SR1).To(Equal(uint8(7)))
			Expect(inst.IsBranch).To(BeTrue())
		})

		// TRAP x25 -> 0xF025
		It("should decode TRAP with a zero-extended vector", func() {
			inst := decoder.Decode(0xF025)

			Expect(inst.Op).To(Equal(insts.OpTRAP))
			Expect(inst.TrapVect).To(Equal(insts.TrapHALT))
			Expect(inst.Dest).To(Equal(uint8(7)))
			Expect(inst.IsBranch).To(BeTrue())
		})
	})

	Describe("Memory", func() {
		// LD R3, -7 -> 0x27F9
		It("should decode LD", func() {
			inst := decoder.Decode(0x27F9)

			Expect(inst.Op).To(Equal(insts.OpLD))
			Expect(inst.DR).To(Equal(uint8(3)))
			Expect(inst.Offset9).To(Equal(insts.Word(0xFFF9)))
			Expect(inst.IsLoad).To(BeTrue())
		})

		// LDR R2, R6, #3 -> 0x6583
		It("should decode LDR with base and offset", func() {
			inst := decoder.Decode(0x6583)

			Expect(inst.Op).To(Equal(insts.OpLDR))
			Expect(inst.DR).To(Equal(uint8(2)))
			Expect(inst.SR1).To(Equal(uint8(6)))
			Expect(inst.Offset6).To(Equal(insts.Word(3)))
			Expect(inst.Src1).To(Equal(uint8(6)))
		})

		// ST R5, +1 -> 0x3A01
		It("should decode ST reading the DR field as a source", func() {
			inst := decoder.Decode(0x3A01)

			Expect(inst.Op).To(Equal(insts.OpST))
			Expect(inst.Src1).To(Equal(uint8(5)))
			Expect(inst.Dest).To(Equal(insts.RegNone))
			Expect(inst.IsStore).To(BeTrue())
		})

		// STR R4, R1, #-1 -> 0x787F
		It("should decode STR reading both the value and the base", func() {
			inst := decoder.Decode(0x787F)

			Expect(inst.Op).To(Equal(insts.OpSTR))
			Expect(inst.Src1).To(Equal(uint8(4)))
			Expect(inst.Src2).To(Equal(uint8(1)))
			Expect(inst.Offset6).To(Equal(insts.Word(0xFFFF)))
		})

		// LDI R0, +2 -> 0xA002
		It("should decode LDI as a load", func() {
			inst := decoder.Decode(0xA002)

			Expect(inst.Op).To(Equal(insts.OpLDI))
			Expect(inst.IsLoad).To(BeTrue())
		})

		// LEA R6, +4 -> 0xEC04
		It("should decode LEA without marking it a load", func() {
			inst := decoder.Decode(0xEC04)

			Expect(inst.Op).To(Equal(insts.OpLEA))
			Expect(inst.Dest).To(Equal(uint8(6)))
			Expect(inst.IsLoad).To(BeFalse())
		})
	})

	Describe("Reserved opcode", func() {
		It("should decode 0xD000 to OpRES", func() {
			inst := decoder.Decode(0xD000)

			Expect(inst.Op).To(Equal(insts.OpRES))
		})
	})
})

var _ = Describe("Opcode", func() {
	It("should extract the opcode from the top nibble", func() {
		Expect(insts.OpcodeOf(0x1234)).To(Equal(insts.OpADD))
		Expect(insts.OpcodeOf(0xF025)).To(Equal(insts.OpTRAP))
		Expect(insts.OpcodeOf(0x0000)).To(Equal(insts.OpBR))
	})

	It("should print conventional mnemonics", func() {
		Expect(insts.OpADD.String()).To(Equal("ADD"))
		Expect(insts.OpRES.String()).To(Equal("RES"))
	})
})
