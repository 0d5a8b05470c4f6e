package emu

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/lc3sim/insts"
)

// StopReason says why a Run invocation returned.
type StopReason int

const (
	// StopHalted means the machine halted, cleanly or on error. Check
	// ErrorFlag and ViolationFlag to distinguish.
	StopHalted StopReason = iota
	// StopCycleBound means the caller-supplied cycle bound was exceeded.
	// The machine is still runnable; the halted flag is untouched.
	StopCycleBound
)

// RunResult is the outcome of a Run invocation.
type RunResult struct {
	Reason StopReason
	// Cycles is the number of machine cycles consumed by this invocation.
	Cycles uint64
}

// CycleListener is notified once per machine cycle. Hosts can hook it
// for cycle-granular tracing or watchpoints.
type CycleListener interface {
	MachineCycle(cycle uint64)
}

// IssueListener is notified when an instruction enters execution.
type IssueListener interface {
	InstructionIssued(word insts.Word, pc insts.Word)
}

// Machine is one complete execution context: memory, registers, control
// state, and status flags. All mutable simulator state lives here; hosts
// may create any number of independent instances. A Machine is not safe
// for concurrent use.
type Machine struct {
	memory  *Memory
	regFile *RegFile
	decoder *insts.Decoder

	trapHandler TrapHandler
	log         *logrus.Logger

	state        ControlState
	inst         *insts.Instruction
	instAddr     insts.Word
	ben          bool
	trapServiced bool

	user       bool
	savedSSP   insts.Word
	savedUSP   insts.Word
	intPending bool

	halted        bool
	errorFlag     bool
	violationFlag bool

	cycleCount uint64
	instCount  uint64

	cycleListeners []CycleListener
	issueListeners []IssueListener
}

// MachineOption is a functional option for configuring the Machine.
type MachineOption func(*Machine)

// WithDisplay directs display-device output (DDR writes and native trap
// output) to w.
func WithDisplay(w io.Writer) MachineOption {
	return func(m *Machine) {
		m.memory.SetDisplay(w)
	}
}

// WithKeyboardInput feeds keyboard characters from r. Bytes join the
// key queue as they become readable, so a terminal delivers keys as
// they are typed and a buffered reader's contents become the queued
// key sequence.
func WithKeyboardInput(r io.Reader) MachineOption {
	return func(m *Machine) {
		m.memory.SetKeyboardSource(r)
	}
}

// WithTrapHandler sets a custom trap handler.
func WithTrapHandler(h TrapHandler) MachineOption {
	return func(m *Machine) {
		m.trapHandler = h
	}
}

// WithLogger sets the trace logger. Per-cycle state traces are emitted at
// debug level.
func WithLogger(log *logrus.Logger) MachineOption {
	return func(m *Machine) {
		m.log = log
	}
}

// WithAccessLatency makes every memory access take the given number of
// not-yet-ready handshake cycles before completing.
func WithAccessLatency(cycles int) MachineOption {
	return func(m *Machine) {
		m.memory.SetAccessLatency(cycles)
	}
}

// NewMachine creates a machine at power-on state.
func NewMachine(opts ...MachineOption) *Machine {
	m := &Machine{
		memory:   NewMemory(),
		regFile:  &RegFile{},
		decoder:  insts.NewDecoder(),
		state:    StateFetch1,
		savedSSP: insts.UserSpaceAddr,
	}
	m.powerOn()

	for _, opt := range opts {
		opt(m)
	}

	if m.trapHandler == nil {
		m.trapHandler = NewDefaultTrapHandler()
	}
	if m.log == nil {
		m.log = logrus.New()
		m.log.SetOutput(io.Discard)
	}

	return m
}

func (m *Machine) powerOn() {
	m.regFile.PC = insts.UserSpaceAddr
	m.regFile.CC.Set(0) // Z=1 at reset
	m.regFile.WriteRaw(6, insts.UserSpaceAddr)
	m.user = false
	m.savedSSP = insts.UserSpaceAddr
	m.savedUSP = 0
	m.syncPSR()
}

// Reset discards all prior state and returns the machine to power-on.
func (m *Machine) Reset() {
	m.memory.PowerOn()
	*m.regFile = RegFile{}
	m.state = StateFetch1
	m.inst = nil
	m.ben = false
	m.trapServiced = false
	m.intPending = false
	m.halted = false
	m.errorFlag = false
	m.violationFlag = false
	m.cycleCount = 0
	m.instCount = 0
	m.powerOn()
}

// Memory returns the machine's memory.
func (m *Machine) Memory() *Memory {
	return m.memory
}

// RegFile returns the machine's register file.
func (m *Machine) RegFile() *RegFile {
	return m.regFile
}

// State returns the current control-unit micro-state.
func (m *Machine) State() ControlState {
	return m.state
}

// Halted reports whether the machine has halted. Once halted, further
// Step and Run calls perform no state mutation.
func (m *Machine) Halted() bool {
	return m.halted
}

// ErrorFlag reports a fatal decode or privilege error.
func (m *Machine) ErrorFlag() bool {
	return m.errorFlag
}

// ViolationFlag reports an access-control violation.
func (m *Machine) ViolationFlag() bool {
	return m.violationFlag
}

// CycleCount returns the number of machine cycles executed.
func (m *Machine) CycleCount() uint64 {
	return m.cycleCount
}

// InstructionCount returns the number of instructions issued.
func (m *Machine) InstructionCount() uint64 {
	return m.instCount
}

// UserMode reports whether the machine is running unprivileged.
func (m *Machine) UserMode() bool {
	return m.user
}

// SetUserMode sets the privilege bit. Hosts use this to exercise the
// access-control and interrupt paths.
func (m *Machine) SetUserMode(user bool) {
	m.user = user
	m.syncPSR()
}

// RaiseInterrupt latches the external interrupt line. It is sampled at
// the fetch boundary and taken only in user mode.
func (m *Machine) RaiseInterrupt() {
	m.intPending = true
}

// AddCycleListener registers a per-cycle observer.
func (m *Machine) AddCycleListener(l CycleListener) {
	m.cycleListeners = append(m.cycleListeners, l)
}

// AddIssueListener registers a per-instruction-issue observer.
func (m *Machine) AddIssueListener(l IssueListener) {
	m.issueListeners = append(m.issueListeners, l)
}

// LoadProgram loads words at origin and points the PC there.
func (m *Machine) LoadProgram(origin insts.Word, words []insts.Word) {
	m.memory.LoadWords(origin, words)
	m.regFile.PC = origin
}

// MicroStep executes one control-unit micro-state and advances to the
// next state. A pending memory handshake keeps the machine in the same
// state for the cycle. Returns false once the machine is halted.
func (m *Machine) MicroStep() bool {
	if m.halted {
		return false
	}

	// Interrupts are sampled at the fetch boundary, before the fetch
	// touches any state, and taken only in user mode.
	if m.state == StateFetch1 && m.interruptPending() && m.userMode() {
		m.state = StateInterrupt
	}

	m.cycleCount++
	s := m.state

	advance := m.executeState(s)

	if m.log.IsLevelEnabled(logrus.DebugLevel) {
		m.log.WithFields(logrus.Fields{
			"cycle": m.cycleCount,
			"state": s.String(),
			"pc":    m.regFile.PC,
			"ir":    m.regFile.IR,
		}).Debug("machine cycle")
	}

	if m.violationFlag {
		m.halted = true
	}
	if !m.halted && !m.memory.ClockEnabled() {
		m.halted = true
	}
	if !m.halted && advance {
		m.state = m.nextState(s)
	}

	for _, l := range m.cycleListeners {
		l.MachineCycle(m.cycleCount)
	}

	return !m.halted
}

// Step executes one full instruction: micro-steps until control returns
// to the start of fetch or the machine halts.
func (m *Machine) Step() {
	if m.halted {
		return
	}
	for {
		m.MicroStep()
		if m.halted || m.state == StateFetch1 {
			return
		}
	}
}

// Run executes until the machine halts or the cycle bound is exceeded.
// A bound of 0 means no bound. Exceeding the bound is a caller-visible
// stop distinct from machine halt: the halted flag is untouched and a
// later Run call resumes.
func (m *Machine) Run(maxCycles uint64) RunResult {
	start := m.cycleCount
	for !m.halted {
		if maxCycles > 0 && m.state == StateFetch1 &&
			m.cycleCount-start >= maxCycles {
			return RunResult{Reason: StopCycleBound, Cycles: m.cycleCount - start}
		}
		m.MicroStep()
	}
	return RunResult{Reason: StopHalted, Cycles: m.cycleCount - start}
}

// interruptPending reports whether any interrupt source is asserted.
func (m *Machine) interruptPending() bool {
	return m.intPending || m.memory.KeyboardInterruptArmed()
}

func (m *Machine) userMode() bool {
	return m.user
}

// checkACV flags a user-mode access outside the user address space. The
// violation is fatal in this model: the machine halts with the violation
// flag set rather than dispatching an exception vector.
func (m *Machine) checkACV(addr insts.Word) {
	if m.user && (addr < insts.UserSpaceAddr || addr > insts.UserSpaceLimit) {
		m.violationFlag = true
	}
}

// writeCC performs an instruction-level destination write, updating the
// condition codes and the PSR word.
func (m *Machine) writeCC(reg uint8, v insts.Word) {
	m.regFile.WriteCC(reg, v)
	m.syncPSR()
}

// psrWord composes the processor status word from privilege and CC.
func (m *Machine) psrWord() insts.Word {
	var w insts.Word
	if m.user {
		w |= insts.PSRPrivilegeBit
	}
	return w | m.regFile.CC.Bits()
}

// syncPSR refreshes the memory-mapped PSR cell.
func (m *Machine) syncPSR() {
	m.memory.WriteRaw(insts.PSR, m.psrWord())
}

// notifyIssue tells issue listeners an instruction entered execution.
func (m *Machine) notifyIssue() {
	m.instCount++
	for _, l := range m.issueListeners {
		l.InstructionIssued(m.regFile.IR, m.instAddr)
	}
}
