package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lc3sim/emu"
	"github.com/sarchlab/lc3sim/insts"
	"github.com/sarchlab/lc3sim/timing/cache"
	"github.com/sarchlab/lc3sim/timing/pipeline"
)

// plainConfig returns a cache-less configuration so tests see the bare
// stage behavior.
func plainConfig(depth int, forwarding bool) pipeline.Config {
	config := pipeline.DefaultConfig()
	config.Depth = depth
	config.Stages = nil
	config.Forwarding = forwarding
	config.ICache.Enabled = false
	config.DCache.Enabled = false
	return config
}

// feed issues words at consecutive addresses and drains the pipeline.
func feed(p *pipeline.Pipeline, words ...insts.Word) {
	pc := insts.UserSpaceAddr
	for _, w := range words {
		p.Issue(w, pc)
		pc++
	}
	p.Drain()
}

var _ = Describe("Pipeline", func() {
	Describe("construction", func() {
		It("should reject an invalid configuration", func() {
			config := plainConfig(5, true)
			config.Depth = 0
			config.Stages = nil

			_, err := pipeline.New(config, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should build for every legal depth", func() {
			for depth := 1; depth <= pipeline.MaxDepth; depth++ {
				_, err := pipeline.New(plainConfig(depth, true), nil)
				Expect(err).NotTo(HaveOccurred())
			}
		})
	})

	Describe("independent instruction stream", func() {
		It("should retire every instruction with no stalls", func() {
			p, err := pipeline.New(plainConfig(5, true), nil)
			Expect(err).NotTo(HaveOccurred())

			// Ten immediate-mode increments rotating across registers.
			words := make([]insts.Word, 0, 10)
			for i := 0; i < 10; i++ {
				dr := insts.Word(i % 4)
				words = append(words, 0x1000|dr<<9|dr<<6|0x20|1)
			}
			feed(p, words...)

			m := p.Metrics()
			Expect(m.Instructions).To(Equal(uint64(10)))
			Expect(m.ControlHazards).To(BeZero())
			Expect(p.InFlight()).To(BeZero())
		})

		It("should keep CPI consistent with cycles and instructions", func() {
			p, _ := pipeline.New(plainConfig(5, true), nil)

			feed(p, 0x1021, 0x1261, 0x14A1) // three writes to distinct registers

			m := p.Metrics()
			Expect(m.Instructions).To(Equal(uint64(3)))
			Expect(m.CPI() * float64(m.Instructions)).
				To(BeNumerically("~", float64(m.Cycles), 1e-9))
			Expect(m.IPC() * float64(m.Cycles)).
				To(BeNumerically("~", float64(m.Instructions), 1e-9))
		})
	})

	Describe("data hazards", func() {
		// ADD R0, R0, #5 then ADD R1, R0, #3: the second reads R0.
		producerConsumer := []insts.Word{0x1025, 0x1223}

		It("should stall a RAW pair without forwarding", func() {
			p, _ := pipeline.New(plainConfig(5, false), nil)

			feed(p, producerConsumer...)

			m := p.Metrics()
			Expect(m.RAWHazards).To(BeNumerically(">=", 1))
			Expect(m.DataHazards).To(BeNumerically(">=", 1))
			Expect(m.StallCycles).To(BeNumerically(">=", 1))
			Expect(m.Instructions).To(Equal(uint64(2)))
		})

		It("should record but not stall a RAW pair with forwarding", func() {
			p, _ := pipeline.New(plainConfig(5, true), nil)

			feed(p, producerConsumer...)

			m := p.Metrics()
			Expect(m.RAWHazards).To(BeNumerically(">=", 1))
			Expect(m.StallCycles).To(BeZero())
		})

		It("should finish sooner with forwarding than without", func() {
			fwd, _ := pipeline.New(plainConfig(5, true), nil)
			stall, _ := pipeline.New(plainConfig(5, false), nil)

			feed(fwd, producerConsumer...)
			feed(stall, producerConsumer...)

			Expect(fwd.Metrics().Cycles).
				To(BeNumerically("<", stall.Metrics().Cycles))
		})

		It("should classify WAW between two writers of one register", func() {
			p, _ := pipeline.New(plainConfig(5, true), nil)

			// ADD R0, R1, #1 then ADD R0, R2, #1: same destination, no read
			// of the other's result.
			feed(p, 0x1061, 0x10A1)

			Expect(p.Metrics().WAWHazards).To(BeNumerically(">=", 1))
		})
	})

	Describe("control hazards", func() {
		branch := insts.Word(0x0FFF) // BRnzp

		It("should charge the branch penalty without prediction", func() {
			p, _ := pipeline.New(plainConfig(5, false), nil)

			feed(p, branch)

			m := p.Metrics()
			Expect(m.ControlHazards).To(Equal(uint64(1)))
			Expect(m.BranchesTotal).To(Equal(uint64(1)))
			Expect(m.BranchesPredicted).To(BeZero())
			Expect(m.BranchPenaltyCycles).To(Equal(uint64(2)))
			Expect(m.StallCycles).To(BeNumerically(">=", 2))
		})

		It("should waive the penalty with prediction enabled", func() {
			config := plainConfig(5, true)
			config.BranchPrediction = true
			p, _ := pipeline.New(config, nil)

			feed(p, branch)

			m := p.Metrics()
			Expect(m.ControlHazards).To(Equal(uint64(1)))
			Expect(m.BranchesPredicted).To(Equal(uint64(1)))
			Expect(m.BranchPenaltyCycles).To(BeZero())
		})
	})

	Describe("memory traffic", func() {
		It("should count loads and stores", func() {
			p, _ := pipeline.New(plainConfig(5, true), nil)

			// LD R0; ST R0; LDI R1; STI R1
			feed(p, 0x2002, 0x3002, 0xA202, 0xB202)

			m := p.Metrics()
			// LDI reads twice, STI reads the pointer and writes through it.
			Expect(m.MemoryReads).To(Equal(uint64(4)))
			Expect(m.MemoryWrites).To(Equal(uint64(2)))
		})

		It("should charge flat latency stalls without a data cache", func() {
			config := plainConfig(5, true)
			config.MemoryLatency = 4
			p, _ := pipeline.New(config, nil)

			feed(p, 0x2002) // LD

			Expect(p.Metrics().MemoryStallCycles).To(BeNumerically(">=", 3))
		})

		It("should record structural hazards on the shared memory port", func() {
			p, _ := pipeline.New(plainConfig(5, true), nil)

			// Back-to-back loads: one occupies the memory stage while a
			// younger one fetches.
			feed(p, 0x2002, 0x2003, 0x2004, 0x2005)

			Expect(p.Metrics().StructuralHazards).To(BeNumerically(">=", 1))
		})
	})

	Describe("cache-backed memory", func() {
		It("should miss cold in the data cache and charge memory stalls", func() {
			config := plainConfig(5, true)
			config.DCache = cache.DefaultDConfig()
			backing := cache.NewMemoryBacking(emu.NewMemory())
			p, err := pipeline.New(config, backing)
			Expect(err).NotTo(HaveOccurred())

			feed(p, 0x2002) // LD

			stats := p.DCacheStats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(p.Metrics().MemoryStallCycles).To(BeNumerically(">", 0))
		})

		It("should hit the instruction cache on a tight stream", func() {
			config := plainConfig(5, true)
			config.ICache = cache.DefaultIConfig()
			backing := cache.NewMemoryBacking(emu.NewMemory())
			p, _ := pipeline.New(config, backing)

			feed(p, 0x1021, 0x1261, 0x14A1, 0x1021)

			stats := p.ICacheStats()
			Expect(stats.Reads).To(Equal(uint64(4)))
			Expect(stats.Hits).To(BeNumerically(">=", 3))
		})
	})

	Describe("depth sensitivity", func() {
		It("should model every depth without losing instructions", func() {
			for depth := 1; depth <= pipeline.MaxDepth; depth++ {
				p, err := pipeline.New(plainConfig(depth, true), nil)
				Expect(err).NotTo(HaveOccurred())

				feed(p, 0x1021, 0x1261, 0x14A1)

				Expect(p.Metrics().Instructions).To(Equal(uint64(3)),
					"depth %d", depth)
				Expect(p.InFlight()).To(BeZero())
			}
		})
	})

	Describe("efficiency", func() {
		It("should cap at 1.0 against the in-order maximum", func() {
			p, _ := pipeline.New(plainConfig(5, true), nil)
			for i := 0; i < 50; i++ {
				p.Issue(0x1021|insts.Word(i%4)<<9, insts.UserSpaceAddr+insts.Word(i))
			}
			p.Drain()

			Expect(p.Efficiency()).To(BeNumerically("<=", 1.0))
			Expect(p.Efficiency()).To(BeNumerically(">", 0.0))
		})

		It("should divide by the depth when flagged out of order", func() {
			config := plainConfig(4, true)
			config.OutOfOrder = true
			p, _ := pipeline.New(config, nil)

			feed(p, 0x1021, 0x1261)

			m := p.Metrics()
			Expect(p.Efficiency()).
				To(BeNumerically("~", m.IPC()/4.0, 1e-9))
		})
	})

	Describe("Flush and Reset", func() {
		It("should discard in-flight packets on Flush", func() {
			p, _ := pipeline.New(plainConfig(5, true), nil)
			p.Issue(0x1021, insts.UserSpaceAddr)

			Expect(p.InFlight()).To(BeNumerically(">", 0))
			p.Flush()
			Expect(p.InFlight()).To(BeZero())
		})

		It("should zero counters on Reset", func() {
			p, _ := pipeline.New(plainConfig(5, true), nil)
			feed(p, 0x1021, 0x1261)

			p.Reset()

			Expect(p.Cycle()).To(BeZero())
			Expect(p.Metrics().Instructions).To(BeZero())
			Expect(p.Metrics().StallCycles).To(BeZero())
		})
	})
})

var _ = Describe("Metrics", func() {
	It("should report CPI of 1.0 before anything retires", func() {
		var m pipeline.Metrics
		Expect(m.CPI()).To(Equal(1.0))
	})

	It("should report IPC of 0.0 before the first cycle", func() {
		var m pipeline.Metrics
		Expect(m.IPC()).To(Equal(0.0))
	})

	It("should cap efficiency at 1.0", func() {
		m := pipeline.Metrics{Cycles: 10, Instructions: 20}
		Expect(m.Efficiency(1.0)).To(Equal(1.0))
	})
})
