package emu

import "github.com/sarchlab/lc3sim/insts"

// ControlState identifies one micro-state of the control unit. The set is
// closed: every state is named here and dispatched exhaustively, so an
// unknown state cannot occur by construction.
type ControlState uint8

// Control-unit micro-states. Fetch takes three states; decode one; each
// opcode gets one or more execute states mirroring its datapath steps.
const (
	StateFetch1 ControlState = iota
	StateFetch2
	StateFetch3
	StateDecode

	StateADD
	StateAND
	StateNOT
	StateBR
	StateBRTaken
	StateJMP
	StateJSR
	StateJSRR
	StateLEA

	StateLD1
	StateLD2
	StateLD3
	StateLDR1
	StateLDR2
	StateLDR3
	StateLDI1
	StateLDI2
	StateLDI3
	StateLDI4

	StateST1
	StateST2
	StateSTR1
	StateSTR2
	StateSTI1
	StateSTI2
	StateSTI3

	StateTRAP1
	StateTRAP2
	StateTRAP3
	StateRTI

	StateInterrupt
)

var stateNames = map[ControlState]string{
	StateFetch1: "FETCH1", StateFetch2: "FETCH2", StateFetch3: "FETCH3",
	StateDecode: "DECODE",
	StateADD:    "ADD", StateAND: "AND", StateNOT: "NOT",
	StateBR: "BR", StateBRTaken: "BR.TAKEN",
	StateJMP: "JMP", StateJSR: "JSR", StateJSRR: "JSRR", StateLEA: "LEA",
	StateLD1: "LD1", StateLD2: "LD2", StateLD3: "LD3",
	StateLDR1: "LDR1", StateLDR2: "LDR2", StateLDR3: "LDR3",
	StateLDI1: "LDI1", StateLDI2: "LDI2", StateLDI3: "LDI3", StateLDI4: "LDI4",
	StateST1: "ST1", StateST2: "ST2",
	StateSTR1: "STR1", StateSTR2: "STR2",
	StateSTI1: "STI1", StateSTI2: "STI2", StateSTI3: "STI3",
	StateTRAP1: "TRAP1", StateTRAP2: "TRAP2", StateTRAP3: "TRAP3",
	StateRTI:       "RTI",
	StateInterrupt: "INT",
}

// String returns the micro-state name.
func (s ControlState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "INVALID"
}

// nextState selects the successor of a completed micro-state from the
// current state, the decoded opcode, and the machine's condition signals.
func (m *Machine) nextState(s ControlState) ControlState {
	switch s {
	case StateFetch1:
		return StateFetch2
	case StateFetch2:
		return StateFetch3
	case StateFetch3:
		return StateDecode
	case StateDecode:
		return m.dispatch()

	case StateBR:
		if m.ben {
			return StateBRTaken
		}
		return StateFetch1

	case StateLD1:
		return StateLD2
	case StateLD2:
		return StateLD3
	case StateLDR1:
		return StateLDR2
	case StateLDR2:
		return StateLDR3
	case StateLDI1:
		return StateLDI2
	case StateLDI2:
		return StateLDI3
	case StateLDI3:
		return StateLDI4

	case StateST1:
		return StateST2
	case StateSTR1:
		return StateSTR2
	case StateSTI1:
		return StateSTI2
	case StateSTI2:
		return StateSTI3

	case StateTRAP1:
		if m.trapServiced {
			m.trapServiced = false
			return StateFetch1
		}
		return StateTRAP2
	case StateTRAP2:
		return StateTRAP3

	case StateADD, StateAND, StateNOT, StateBRTaken, StateJMP, StateJSR,
		StateJSRR, StateLEA, StateLD3, StateLDR3, StateLDI4, StateST2,
		StateSTR2, StateSTI3, StateTRAP3, StateRTI, StateInterrupt:
		return StateFetch1
	}
	return StateFetch1
}

// dispatch selects the first execute state for the decoded opcode. An
// unrecognized opcode is a terminal condition: the error flag is set and
// the machine halts.
func (m *Machine) dispatch() ControlState {
	switch m.inst.Op {
	case insts.OpADD:
		return StateADD
	case insts.OpAND:
		return StateAND
	case insts.OpNOT:
		return StateNOT
	case insts.OpBR:
		return StateBR
	case insts.OpJMP:
		return StateJMP
	case insts.OpJSR:
		if m.inst.JSRLong {
			return StateJSR
		}
		return StateJSRR
	case insts.OpLEA:
		return StateLEA
	case insts.OpLD:
		return StateLD1
	case insts.OpLDR:
		return StateLDR1
	case insts.OpLDI:
		return StateLDI1
	case insts.OpST:
		return StateST1
	case insts.OpSTR:
		return StateSTR1
	case insts.OpSTI:
		return StateSTI1
	case insts.OpTRAP:
		return StateTRAP1
	case insts.OpRTI:
		return StateRTI
	default:
		m.errorFlag = true
		m.halted = true
		return StateFetch1
	}
}
