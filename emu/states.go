package emu

import "github.com/sarchlab/lc3sim/insts"

// executeState performs the datapath work of one micro-state. It returns
// false when a memory handshake is still pending, in which case the
// control unit stays in the same state and retries next cycle.
func (m *Machine) executeState(s ControlState) bool {
	r := m.regFile

	switch s {
	case StateFetch1:
		r.MAR = r.PC
		r.PC++
		m.checkACV(r.MAR)

	case StateFetch2:
		res := m.memory.StartRead(r.MAR)
		if !res.Ready {
			return false
		}
		r.MDR = res.Value

	case StateFetch3:
		r.IR = r.MDR

	case StateDecode:
		m.inst = m.decoder.Decode(r.IR)
		m.ben = (r.CC.N && m.inst.CondN) ||
			(r.CC.Z && m.inst.CondZ) ||
			(r.CC.P && m.inst.CondP)
		m.instAddr = r.PC - 1
		m.notifyIssue()

	case StateADD:
		var op2 insts.Word
		if m.inst.ImmMode {
			op2 = m.inst.Imm5
		} else {
			op2 = r.Read(m.inst.SR2)
		}
		m.writeCC(m.inst.DR, r.Read(m.inst.SR1)+op2)

	case StateAND:
		var op2 insts.Word
		if m.inst.ImmMode {
			op2 = m.inst.Imm5
		} else {
			op2 = r.Read(m.inst.SR2)
		}
		m.writeCC(m.inst.DR, r.Read(m.inst.SR1)&op2)

	case StateNOT:
		m.writeCC(m.inst.DR, ^r.Read(m.inst.SR1))

	case StateBR:
		// Branch decision only; BEN was computed at decode.

	case StateBRTaken:
		r.PC += m.inst.Offset9

	case StateJMP:
		r.PC = r.Read(m.inst.SR1)

	case StateJSR:
		r.WriteRaw(7, r.PC)
		r.PC += m.inst.Offset11

	case StateJSRR:
		// Read the base register before writing R7 so JSRR R7 works.
		target := r.Read(m.inst.SR1)
		r.WriteRaw(7, r.PC)
		r.PC = target

	case StateLEA:
		m.writeCC(m.inst.DR, r.PC+m.inst.Offset9)

	case StateLD1:
		r.MAR = r.PC + m.inst.Offset9
		m.checkACV(r.MAR)
	case StateLD2:
		res := m.memory.StartRead(r.MAR)
		if !res.Ready {
			return false
		}
		r.MDR = res.Value
	case StateLD3:
		m.writeCC(m.inst.DR, r.MDR)

	case StateLDR1:
		r.MAR = r.Read(m.inst.SR1) + m.inst.Offset6
		m.checkACV(r.MAR)
	case StateLDR2:
		res := m.memory.StartRead(r.MAR)
		if !res.Ready {
			return false
		}
		r.MDR = res.Value
	case StateLDR3:
		m.writeCC(m.inst.DR, r.MDR)

	case StateLDI1:
		r.MAR = r.PC + m.inst.Offset9
		m.checkACV(r.MAR)
	case StateLDI2:
		res := m.memory.StartRead(r.MAR)
		if !res.Ready {
			return false
		}
		r.MAR = res.Value
		m.checkACV(r.MAR)
	case StateLDI3:
		res := m.memory.StartRead(r.MAR)
		if !res.Ready {
			return false
		}
		r.MDR = res.Value
	case StateLDI4:
		m.writeCC(m.inst.DR, r.MDR)

	case StateST1:
		r.MAR = r.PC + m.inst.Offset9
		r.MDR = r.Read(m.inst.DR)
		m.checkACV(r.MAR)
	case StateST2:
		res := m.memory.StartWrite(r.MAR, r.MDR)
		if !res.Ready {
			return false
		}

	case StateSTR1:
		r.MAR = r.Read(m.inst.SR1) + m.inst.Offset6
		r.MDR = r.Read(m.inst.DR)
		m.checkACV(r.MAR)
	case StateSTR2:
		res := m.memory.StartWrite(r.MAR, r.MDR)
		if !res.Ready {
			return false
		}

	case StateSTI1:
		r.MAR = r.PC + m.inst.Offset9
		m.checkACV(r.MAR)
	case StateSTI2:
		res := m.memory.StartRead(r.MAR)
		if !res.Ready {
			return false
		}
		r.MAR = res.Value
		m.checkACV(r.MAR)
	case StateSTI3:
		res := m.memory.StartWrite(r.MAR, r.Read(m.inst.DR))
		if !res.Ready {
			return false
		}

	case StateTRAP1:
		r.WriteRaw(7, r.PC)
		r.MAR = m.inst.TrapVect
		// With no service routine installed at the vector, the machine
		// services the standard traps natively.
		if m.memory.ReadRaw(r.MAR) == 0 && m.trapHandler != nil {
			m.trapHandler.Handle(m, m.inst.TrapVect)
			m.trapServiced = true
		}
	case StateTRAP2:
		res := m.memory.StartRead(r.MAR)
		if !res.Ready {
			return false
		}
		r.MDR = res.Value
	case StateTRAP3:
		r.PC = r.MDR

	case StateRTI:
		m.executeRTI()

	case StateInterrupt:
		m.enterInterrupt()
	}

	return true
}

// executeRTI pops the saved PC and status word from the supervisor stack
// (R6) and restores privilege. Executing RTI in user mode is a privilege
// violation and halts with the error flag set.
func (m *Machine) executeRTI() {
	r := m.regFile
	if m.user {
		m.errorFlag = true
		m.halted = true
		return
	}

	r.PC = m.memory.Read(r.Read(6))
	r.WriteRaw(6, r.Read(6)+1)
	psr := m.memory.Read(r.Read(6))
	r.WriteRaw(6, r.Read(6)+1)

	r.CC.SetFromBits(psr)
	if psr&insts.PSRPrivilegeBit != 0 {
		// Returning to user mode: park the supervisor stack pointer and
		// restore the saved user stack pointer.
		m.savedSSP = r.Read(6)
		r.WriteRaw(6, m.savedUSP)
		m.user = true
	}
	m.syncPSR()
}

// enterInterrupt saves PC and the status word on the supervisor stack,
// elevates privilege, and vectors to the keyboard service routine.
func (m *Machine) enterInterrupt() {
	r := m.regFile
	psr := m.psrWord()

	if m.user {
		m.savedUSP = r.Read(6)
		r.WriteRaw(6, m.savedSSP)
		m.user = false
	}

	r.WriteRaw(6, r.Read(6)-1)
	m.memory.Write(r.Read(6), psr)
	r.WriteRaw(6, r.Read(6)-1)
	m.memory.Write(r.Read(6), r.PC)

	m.intPending = false
	m.syncPSR()
	r.PC = m.memory.Read(insts.KeyboardIntVector)
}
