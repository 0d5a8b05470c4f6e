package emu

import "github.com/sarchlab/lc3sim/insts"

// TrapHandler services a trap natively when no service routine is
// installed at the trap's vector. Implementations mutate the machine
// through its public surface only.
type TrapHandler interface {
	Handle(m *Machine, vector insts.Word)
}

// DefaultTrapHandler implements the six standard service routines
// against the machine's keyboard queue and display device.
type DefaultTrapHandler struct{}

// NewDefaultTrapHandler creates the standard console trap handler.
func NewDefaultTrapHandler() *DefaultTrapHandler {
	return &DefaultTrapHandler{}
}

// Handle services one trap. Unknown vectors are ignored: a program
// trapping to an unpopulated non-standard vector jumps to address 0,
// which the control unit handles like any other transfer.
func (h *DefaultTrapHandler) Handle(m *Machine, vector insts.Word) {
	mem := m.Memory()
	r := m.RegFile()

	switch vector {
	case insts.TrapGETC:
		mem.WaitKey()
		r.WriteRaw(0, mem.Read(insts.KBDR))

	case insts.TrapOUT:
		mem.Write(insts.DDR, r.Read(0)&0xFF)

	case insts.TrapPUTS:
		for addr := r.Read(0); mem.ReadRaw(addr) != 0; addr++ {
			mem.Write(insts.DDR, mem.ReadRaw(addr)&0xFF)
		}

	case insts.TrapIN:
		for _, c := range []byte("Input a character> ") {
			mem.Write(insts.DDR, insts.Word(c))
		}
		mem.WaitKey()
		c := mem.Read(insts.KBDR)
		r.WriteRaw(0, c)
		mem.Write(insts.DDR, c&0xFF)

	case insts.TrapPUTSP:
		for addr := r.Read(0); mem.ReadRaw(addr) != 0; addr++ {
			w := mem.ReadRaw(addr)
			mem.Write(insts.DDR, w&0xFF)
			if w>>8 != 0 {
				mem.Write(insts.DDR, w>>8)
			}
		}

	case insts.TrapHALT:
		mem.WriteRaw(insts.MCR, mem.ReadRaw(insts.MCR)&^insts.MCRClockEnable)
	}
}
