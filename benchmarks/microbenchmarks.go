package benchmarks

import (
	"github.com/sarchlab/lc3sim/insts"
	"github.com/sarchlab/lc3sim/sim"
)

// GetMicrobenchmarks returns the standard benchmark set. Each
// benchmark targets one pipeline characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		branchLoop(),
		subroutineCalls(),
		mixedOperations(),
	}
}

// 1. Arithmetic Sequential - independent ADDs to different registers.
func arithmeticSequential() Benchmark {
	words := []insts.Word{
		EncodeANDImm(0, 0, 0),
		EncodeANDImm(1, 1, 0),
		EncodeANDImm(2, 2, 0),
		EncodeANDImm(3, 3, 0),
	}
	// Four rounds of four independent increments.
	for i := 0; i < 4; i++ {
		words = append(words,
			EncodeADDImm(0, 0, 1),
			EncodeADDImm(1, 1, 1),
			EncodeADDImm(2, 2, 1),
			EncodeADDImm(3, 3, 1),
		)
	}
	words = append(words, EncodeTRAP(insts.TrapHALT))

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "16 independent ADDs across four registers - ALU throughput",
		Program:     words,
		ExpectedR0:  4,
	}
}

// 2. Dependency Chain - every ADD reads the previous result.
func dependencyChain() Benchmark {
	words := []insts.Word{EncodeANDImm(0, 0, 0)}
	for i := 0; i < 20; i++ {
		words = append(words, EncodeADDImm(0, 0, 1))
	}
	words = append(words, EncodeTRAP(insts.TrapHALT))

	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent ADDs (R0 = R0 + 1) - RAW hazard behavior",
		Program:     words,
		ExpectedR0:  20,
	}
}

// 3. Memory Sequential - store/load pairs to consecutive addresses.
func memorySequential() Benchmark {
	// R0 = 42 built from imm5-sized pieces, R1 = scratch base.
	words := []insts.Word{
		EncodeANDImm(0, 0, 0),
		EncodeADDImm(0, 0, 15),
		EncodeADDImm(0, 0, 15),
		EncodeADDImm(0, 0, 12),
		EncodeLEA(1, 16), // scratch area past the code
	}
	for i := 0; i < 6; i++ {
		words = append(words,
			EncodeSTR(0, 1, insts.Word(i)),
			EncodeLDR(0, 1, insts.Word(i)),
		)
	}
	words = append(words, EncodeTRAP(insts.TrapHALT))

	return Benchmark{
		Name:        "memory_sequential",
		Description: "6 store/load pairs to sequential addresses - memory latency",
		Program:     words,
		ExpectedR0:  42,
	}
}

// 4. Branch Loop - a real counted loop with a backward taken branch.
func branchLoop() Benchmark {
	return Benchmark{
		Name:        "branch_loop",
		Description: "10-iteration counted loop - control hazard behavior",
		Program: []insts.Word{
			EncodeANDImm(0, 0, 0),  // R0 = 0 (sum)
			EncodeANDImm(1, 1, 0),  // R1 = 0
			EncodeADDImm(1, 1, 10), // R1 = 10 (counter)
			// loop:
			EncodeADDImm(0, 0, 1),          // R0++
			EncodeADDImm(1, 1, 0x1F),       // R1-- (add -1)
			EncodeBR(false, false, true, negOffset9(3)), // BRp loop
			EncodeTRAP(insts.TrapHALT),
		},
		ExpectedR0: 10,
	}
}

// 5. Subroutine Calls - JSR/RET pairs.
func subroutineCalls() Benchmark {
	return Benchmark{
		Name:        "subroutine_calls",
		Description: "4 JSR/RET pairs - call and return overhead",
		Program: []insts.Word{
			EncodeANDImm(0, 0, 0), // R0 = 0
			EncodeJSR(4),          // -> addOne
			EncodeJSR(3),
			EncodeJSR(2),
			EncodeJSR(1),
			EncodeTRAP(insts.TrapHALT),
			// addOne:
			EncodeADDImm(0, 0, 1),
			EncodeRET(),
		},
		ExpectedR0: 4,
	}
}

// 6. Mixed Operations - ALU, memory, and control flow together.
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "ADD, ST/LD, and JSR mixed - realistic workload shape",
		Setup: func(s *sim.Simulator) {
			s.SetMemory(insts.UserSpaceAddr+0x40, 7)
		},
		Program: []insts.Word{
			EncodeANDImm(0, 0, 0),  // R0 = 0
			EncodeLD(1, 0x3E),      // R1 = mem[origin+0x40] = 7
			EncodeADDReg(0, 0, 1),  // R0 += R1
			EncodeST(0, 0x3D),      // scratch store
			EncodeJSR(2),           // -> double
			EncodeADDImm(0, 0, 2),  // R0 += 2
			EncodeTRAP(insts.TrapHALT),
			// double:
			EncodeADDReg(0, 0, 0),
			EncodeRET(),
		},
		ExpectedR0: 16, // ((0+7)*2)+2
	}
}

// negOffset9 converts a backward distance to a 9-bit two's-complement
// field value.
func negOffset9(back insts.Word) insts.Word {
	return (^back + 1) & 0x1FF
}

// Instruction encoding helpers.

// EncodeADDImm encodes ADD DR, SR1, #imm5. The immediate is the raw
// 5-bit field, so negative values are passed in two's complement.
func EncodeADDImm(dr, sr1 uint8, imm5 insts.Word) insts.Word {
	return 0x1000 |
		insts.Word(dr&0x7)<<9 | insts.Word(sr1&0x7)<<6 |
		1<<5 | imm5&0x1F
}

// EncodeADDReg encodes ADD DR, SR1, SR2.
func EncodeADDReg(dr, sr1, sr2 uint8) insts.Word {
	return 0x1000 |
		insts.Word(dr&0x7)<<9 | insts.Word(sr1&0x7)<<6 | insts.Word(sr2&0x7)
}

// EncodeANDImm encodes AND DR, SR1, #imm5.
func EncodeANDImm(dr, sr1 uint8, imm5 insts.Word) insts.Word {
	return 0x5000 |
		insts.Word(dr&0x7)<<9 | insts.Word(sr1&0x7)<<6 |
		1<<5 | imm5&0x1F
}

// EncodeANDReg encodes AND DR, SR1, SR2.
func EncodeANDReg(dr, sr1, sr2 uint8) insts.Word {
	return 0x5000 |
		insts.Word(dr&0x7)<<9 | insts.Word(sr1&0x7)<<6 | insts.Word(sr2&0x7)
}

// EncodeNOT encodes NOT DR, SR.
func EncodeNOT(dr, sr uint8) insts.Word {
	return 0x9000 | insts.Word(dr&0x7)<<9 | insts.Word(sr&0x7)<<6 | 0x3F
}

// EncodeBR encodes BRnzp with a raw 9-bit offset field.
func EncodeBR(n, z, p bool, offset9 insts.Word) insts.Word {
	w := offset9 & 0x1FF
	if n {
		w |= 1 << 11
	}
	if z {
		w |= 1 << 10
	}
	if p {
		w |= 1 << 9
	}
	return w
}

// EncodeLD encodes LD DR, offset9.
func EncodeLD(dr uint8, offset9 insts.Word) insts.Word {
	return 0x2000 | insts.Word(dr&0x7)<<9 | offset9&0x1FF
}

// EncodeST encodes ST SR, offset9.
func EncodeST(sr uint8, offset9 insts.Word) insts.Word {
	return 0x3000 | insts.Word(sr&0x7)<<9 | offset9&0x1FF
}

// EncodeLDR encodes LDR DR, BaseR, offset6.
func EncodeLDR(dr, base uint8, offset6 insts.Word) insts.Word {
	return 0x6000 |
		insts.Word(dr&0x7)<<9 | insts.Word(base&0x7)<<6 | offset6&0x3F
}

// EncodeSTR encodes STR SR, BaseR, offset6.
func EncodeSTR(sr, base uint8, offset6 insts.Word) insts.Word {
	return 0x7000 |
		insts.Word(sr&0x7)<<9 | insts.Word(base&0x7)<<6 | offset6&0x3F
}

// EncodeLEA encodes LEA DR, offset9.
func EncodeLEA(dr uint8, offset9 insts.Word) insts.Word {
	return 0xE000 | insts.Word(dr&0x7)<<9 | offset9&0x1FF
}

// EncodeJSR encodes JSR offset11 (PC-relative subroutine call).
func EncodeJSR(offset11 insts.Word) insts.Word {
	return 0x4800 | offset11&0x7FF
}

// EncodeJSRR encodes JSRR BaseR.
func EncodeJSRR(base uint8) insts.Word {
	return 0x4000 | insts.Word(base&0x7)<<6
}

// EncodeJMP encodes JMP BaseR.
func EncodeJMP(base uint8) insts.Word {
	return 0xC000 | insts.Word(base&0x7)<<6
}

// EncodeRET encodes RET (JMP R7).
func EncodeRET() insts.Word {
	return EncodeJMP(7)
}

// EncodeTRAP encodes TRAP vector.
func EncodeTRAP(vector insts.Word) insts.Word {
	return 0xF000 | vector&0xFF
}
