package emu

import (
	"io"

	"github.com/sarchlab/lc3sim/insts"
)

// MemorySize is the number of addressable words.
const MemorySize = 1 << 16

// AccessResult is the outcome of one memory handshake attempt. An access
// either completes this call (Ready true, Value holding read data) or is
// still pending and must be retried next cycle.
type AccessResult struct {
	Ready bool
	Value insts.Word
}

// Memory is the 65,536-word addressable store. A reserved set of
// addresses carry device-register semantics: reads and writes there have
// side effects instead of plain storage behavior.
type Memory struct {
	words [MemorySize]insts.Word

	// display receives bytes written to DDR. May be nil.
	display io.Writer

	// keyboard input queue, one character per word.
	keys []insts.Word

	// keySrc delivers bytes from an attached keyboard reader as they
	// become readable. Nil when no reader is attached or it is exhausted.
	keySrc chan byte

	kbIntEnable bool

	// latency is the number of pending cycles per access; elapsed counts
	// handshake attempts for the access in flight.
	latency int
	elapsed int
}

// NewMemory creates a zeroed memory with defined power-on device values:
// the display starts ready and the machine-control clock starts enabled.
func NewMemory() *Memory {
	m := &Memory{}
	m.PowerOn()
	return m
}

// PowerOn resets all storage and applies the power-on device values.
func (m *Memory) PowerOn() {
	m.words = [MemorySize]insts.Word{}
	m.keys = nil
	m.kbIntEnable = false
	m.elapsed = 0
	m.words[insts.DSR] = insts.DSRReadyBit
	m.words[insts.MCR] = insts.MCRClockEnable
}

// SetDisplay directs DDR output to w.
func (m *Memory) SetDisplay(w io.Writer) {
	m.display = w
}

// SetAccessLatency sets the number of not-yet-ready handshake cycles each
// memory access takes before completing. Zero (the default) completes
// every access on the first attempt.
func (m *Memory) SetAccessLatency(cycles int) {
	m.latency = cycles
}

// PressKey queues a keyboard character, raising the KBSR ready bit.
func (m *Memory) PressKey(c byte) {
	m.keys = append(m.keys, insts.Word(c))
}

// SetKeyboardSource attaches r as the keyboard. Bytes are read in the
// background and join the key queue as they arrive, so a terminal
// delivers keys as they are typed and a buffered reader's contents
// become the queued key sequence.
func (m *Memory) SetKeyboardSource(r io.Reader) {
	ch := make(chan byte, 64)
	m.keySrc = ch
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				ch <- buf[0]
			}
			if err != nil {
				close(ch)
				return
			}
		}
	}()
}

// pollKeys moves arrived source bytes into the key queue without
// blocking.
func (m *Memory) pollKeys() {
	for m.keySrc != nil {
		select {
		case c, ok := <-m.keySrc:
			if !ok {
				m.keySrc = nil
				return
			}
			m.keys = append(m.keys, insts.Word(c))
		default:
			return
		}
	}
}

// WaitKey blocks until a key is queued or the keyboard source is
// exhausted, and reports whether a key is waiting. With no source
// attached it returns the queue state immediately.
func (m *Memory) WaitKey() bool {
	m.pollKeys()
	for len(m.keys) == 0 && m.keySrc != nil {
		c, ok := <-m.keySrc
		if !ok {
			m.keySrc = nil
			break
		}
		m.keys = append(m.keys, insts.Word(c))
	}
	return len(m.keys) > 0
}

// KeyReady reports whether a keyboard character is waiting.
func (m *Memory) KeyReady() bool {
	m.pollKeys()
	return len(m.keys) > 0
}

// KeyboardInterruptArmed reports whether a queued key should raise an
// interrupt (KBSR interrupt-enable bit set and a key waiting).
func (m *Memory) KeyboardInterruptArmed() bool {
	return m.kbIntEnable && m.KeyReady()
}

// Read reads a word, applying device-register semantics for the device
// address range.
func (m *Memory) Read(addr insts.Word) insts.Word {
	switch addr {
	case insts.KBSR:
		var v insts.Word
		if m.KeyReady() {
			v |= insts.KBSRReadyBit
		}
		if m.kbIntEnable {
			v |= insts.KBSRIntEnable
		}
		return v
	case insts.KBDR:
		m.pollKeys()
		if len(m.keys) == 0 {
			// No key waiting: the data register holds whatever was
			// delivered last, it never invents a fresh NUL.
			return m.words[insts.KBDR]
		}
		k := m.keys[0]
		m.keys = m.keys[1:]
		m.words[insts.KBDR] = k
		return k
	case insts.DSR:
		return insts.DSRReadyBit
	default:
		return m.words[addr]
	}
}

// Write writes a word, applying device-register semantics. Writing DDR
// forwards the low byte to the display sink; the stored word is preserved
// byte-for-byte so a host can still observe it.
func (m *Memory) Write(addr insts.Word, v insts.Word) {
	switch addr {
	case insts.KBSR:
		m.kbIntEnable = v&insts.KBSRIntEnable != 0
		m.words[insts.KBSR] = v
	case insts.DDR:
		m.words[insts.DDR] = v
		if m.display != nil {
			_, _ = m.display.Write([]byte{byte(v)})
		}
	default:
		m.words[addr] = v
	}
}

// ReadRaw reads the backing word without device side effects.
func (m *Memory) ReadRaw(addr insts.Word) insts.Word {
	return m.words[addr]
}

// WriteRaw writes the backing word without device side effects.
func (m *Memory) WriteRaw(addr insts.Word, v insts.Word) {
	m.words[addr] = v
}

// StartRead attempts one read handshake. The access completes after the
// configured latency; until then the result is pending and the caller's
// state retries next cycle.
func (m *Memory) StartRead(addr insts.Word) AccessResult {
	if m.elapsed < m.latency {
		m.elapsed++
		return AccessResult{}
	}
	m.elapsed = 0
	return AccessResult{Ready: true, Value: m.Read(addr)}
}

// StartWrite attempts one write handshake, with the same completion
// contract as StartRead.
func (m *Memory) StartWrite(addr insts.Word, v insts.Word) AccessResult {
	if m.elapsed < m.latency {
		m.elapsed++
		return AccessResult{}
	}
	m.elapsed = 0
	m.Write(addr, v)
	return AccessResult{Ready: true}
}

// LoadWords copies words into consecutive cells starting at origin, the
// program-load contract. Addresses wrap modulo the address space.
func (m *Memory) LoadWords(origin insts.Word, words []insts.Word) {
	for i, w := range words {
		m.words[origin+insts.Word(i)] = w
	}
}

// ClockEnabled reports the MCR clock-enable bit. The machine stops
// cleanly once a HALT service routine clears it.
func (m *Memory) ClockEnabled() bool {
	return m.words[insts.MCR]&insts.MCRClockEnable != 0
}
