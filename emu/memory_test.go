package emu_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lc3sim/emu"
	"github.com/sarchlab/lc3sim/insts"
)

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory()
	})

	It("should power on with the clock enabled and the display ready", func() {
		Expect(mem.ClockEnabled()).To(BeTrue())
		Expect(mem.Read(insts.DSR) & insts.DSRReadyBit).NotTo(BeZero())
	})

	It("should store and return plain words", func() {
		mem.Write(0x4000, 0xBEEF)
		Expect(mem.Read(0x4000)).To(Equal(insts.Word(0xBEEF)))
	})

	Describe("keyboard device", func() {
		It("should report not-ready with no key queued", func() {
			Expect(mem.Read(insts.KBSR) & insts.KBSRReadyBit).To(BeZero())
		})

		It("should raise the ready bit when a key is queued", func() {
			mem.PressKey('a')
			Expect(mem.Read(insts.KBSR) & insts.KBSRReadyBit).NotTo(BeZero())
		})

		It("should pop one key per KBDR read", func() {
			mem.PressKey('a')
			mem.PressKey('b')

			Expect(mem.Read(insts.KBDR)).To(Equal(insts.Word('a')))
			Expect(mem.Read(insts.KBDR)).To(Equal(insts.Word('b')))
			Expect(mem.Read(insts.KBSR) & insts.KBSRReadyBit).To(BeZero())
		})

		It("should arm the keyboard interrupt through the KBSR enable bit", func() {
			mem.Write(insts.KBSR, insts.KBSRIntEnable)
			Expect(mem.KeyboardInterruptArmed()).To(BeFalse())

			mem.PressKey('x')
			Expect(mem.KeyboardInterruptArmed()).To(BeTrue())
		})

		It("should hold the last key in KBDR when the queue runs dry", func() {
			mem.PressKey('a')

			Expect(mem.Read(insts.KBDR)).To(Equal(insts.Word('a')))
			Expect(mem.Read(insts.KBSR) & insts.KBSRReadyBit).To(BeZero())
			Expect(mem.Read(insts.KBDR)).To(Equal(insts.Word('a')))
		})

		It("should deliver keyboard source bytes as they arrive", func() {
			mem.SetKeyboardSource(strings.NewReader("ab"))

			Expect(mem.WaitKey()).To(BeTrue())
			Expect(mem.Read(insts.KBDR)).To(Equal(insts.Word('a')))
			Expect(mem.WaitKey()).To(BeTrue())
			Expect(mem.Read(insts.KBDR)).To(Equal(insts.Word('b')))

			// Source exhausted: no key, no block.
			Expect(mem.WaitKey()).To(BeFalse())
		})
	})

	Describe("display device", func() {
		It("should forward DDR writes to the display sink", func() {
			var buf bytes.Buffer
			mem.SetDisplay(&buf)

			mem.Write(insts.DDR, 'H')
			mem.Write(insts.DDR, 'i')

			Expect(buf.String()).To(Equal("Hi"))
		})
	})

	Describe("access handshake", func() {
		It("should complete immediately with zero latency", func() {
			mem.Write(0x5000, 7)
			res := mem.StartRead(0x5000)

			Expect(res.Ready).To(BeTrue())
			Expect(res.Value).To(Equal(insts.Word(7)))
		})

		It("should stay pending for the configured latency", func() {
			mem.SetAccessLatency(2)
			mem.Write(0x5000, 7)

			Expect(mem.StartRead(0x5000).Ready).To(BeFalse())
			Expect(mem.StartRead(0x5000).Ready).To(BeFalse())

			res := mem.StartRead(0x5000)
			Expect(res.Ready).To(BeTrue())
			Expect(res.Value).To(Equal(insts.Word(7)))
		})

		It("should apply the write only when the handshake completes", func() {
			mem.SetAccessLatency(1)

			Expect(mem.StartWrite(0x5000, 9).Ready).To(BeFalse())
			Expect(mem.ReadRaw(0x5000)).To(Equal(insts.Word(0)))

			Expect(mem.StartWrite(0x5000, 9).Ready).To(BeTrue())
			Expect(mem.ReadRaw(0x5000)).To(Equal(insts.Word(9)))
		})
	})

	Describe("raw access", func() {
		It("should not pop keys through the raw path", func() {
			mem.PressKey('a')
			Expect(mem.ReadRaw(insts.KBDR)).To(Equal(insts.Word(0)))
			Expect(mem.KeyReady()).To(BeTrue())
		})
	})
})
