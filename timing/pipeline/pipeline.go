package pipeline

import (
	"fmt"

	"github.com/sarchlab/lc3sim/insts"
	"github.com/sarchlab/lc3sim/timing/cache"
)

// Pipeline is the N-stage performance model. It consumes the retired
// instruction stream of a machine and replays it through a stage array,
// charging stalls for hazards, branches, and memory latency. It tracks
// timing, not register dataflow: base-register addressing modes charge
// the offset alone as the effective address.
type Pipeline struct {
	config Config

	slots []*Packet
	queue []*Packet

	hazards hazardUnit

	// Stage indexes where each class of work is charged. Kinds missing
	// from the stage list collapse onto the execute stage.
	fetchIdx int
	readIdx  int
	execIdx  int
	memIdx   int

	icache *cache.Cache
	dcache *cache.Cache

	cycle   uint64
	metrics Metrics

	decoder *insts.Decoder

	// memBusy marks the shared memory port claimed by the memory stage
	// during the current cycle. Only meaningful without caches.
	memBusy bool
}

// New creates a Pipeline. The backing store is used for the cache
// models and may be nil when both caches are disabled.
func New(config Config, backing cache.BackingStore) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	p := &Pipeline{
		config:  config,
		slots:   make([]*Packet, config.Depth),
		decoder: insts.NewDecoder(),
	}

	p.execIdx = indexOf(config.Stages, StageExecute, config.Depth-1)
	p.fetchIdx = indexOf(config.Stages, StageFetch, p.execIdx)
	p.readIdx = indexOf(config.Stages, StageDecode, p.execIdx)
	p.memIdx = indexOf(config.Stages, StageMemory, p.execIdx)

	p.hazards = hazardUnit{
		forwarding: config.Forwarding,
		wbIndex:    config.writebackIndex(),
	}

	if config.ICache.Enabled {
		p.icache = cache.New(config.ICache, backing)
	}
	if config.DCache.Enabled {
		p.dcache = cache.New(config.DCache, backing)
	}

	return p, nil
}

func indexOf(stages []StageKind, kind StageKind, fallback int) int {
	for i, k := range stages {
		if k == kind {
			return i
		}
	}
	return fallback
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Metrics returns a snapshot of the counters with the cycle count
// brought up to date.
func (p *Pipeline) Metrics() Metrics {
	m := p.metrics
	m.Cycles = p.cycle
	return m
}

// Efficiency returns pipeline efficiency against the configured
// theoretical-maximum IPC: 1.0 for in-order issue, the pipeline depth
// when the out-of-order flag is set.
func (p *Pipeline) Efficiency() float64 {
	maxIPC := 1.0
	if p.config.OutOfOrder {
		maxIPC = float64(p.config.Depth)
	}
	return p.Metrics().Efficiency(maxIPC)
}

// Cycle returns the pipeline's cycle count.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// InFlight returns the number of packets in the stage array and the
// issue queue. It never exceeds the depth plus queued packets.
func (p *Pipeline) InFlight() int {
	n := len(p.queue)
	for _, pk := range p.slots {
		if pk != nil {
			n++
		}
	}
	return n
}

// ICacheStats returns instruction-cache statistics, zero when disabled.
func (p *Pipeline) ICacheStats() cache.Statistics {
	if p.icache == nil {
		return cache.Statistics{}
	}
	return p.icache.Stats()
}

// DCacheStats returns data-cache statistics, zero when disabled.
func (p *Pipeline) DCacheStats() cache.Statistics {
	if p.dcache == nil {
		return cache.Statistics{}
	}
	return p.dcache.Stats()
}

// Issue feeds one fetched instruction word into the pipeline and
// advances one cycle. When a stalled packet keeps the first stage
// occupied the pipeline keeps ticking until the new packet enters,
// charging a structural hazard for the blocked entry.
func (p *Pipeline) Issue(word insts.Word, pc insts.Word) {
	pkt := newPacket(word, pc, p.decoder, p.cycle)
	p.queue = append(p.queue, pkt)

	p.Tick()
	if p.slots[0] == pkt {
		return
	}

	p.metrics.StructuralHazards++
	pkt.Hazards = append(pkt.Hazards, HazardStructural)

	// Bounded by the longest possible stall chain per stage.
	for limit := 0; p.slots[0] != pkt && limit < 4096; limit++ {
		p.Tick()
	}
}

// Tick advances the pipeline by one cycle. Stages are walked from the
// back so a packet moves at most one stage per cycle.
func (p *Pipeline) Tick() {
	p.cycle++
	p.memBusy = false

	for i := p.config.Depth - 1; i >= 0; i-- {
		pkt := p.slots[i]
		if pkt == nil {
			continue
		}

		p.processStage(pkt, i)

		if pkt.StallsLeft > 0 {
			pkt.StallsLeft--
			p.metrics.StallCycles++
			continue
		}

		if i == p.config.Depth-1 {
			p.retire(pkt)
			p.slots[i] = nil
			continue
		}
		if p.slots[i+1] == nil {
			p.slots[i+1] = pkt
			pkt.Stage = i + 1
			p.slots[i] = nil
		} else {
			// Back-pressure from a stalled packet ahead.
			p.metrics.StallCycles++
		}
	}

	if p.slots[0] == nil && len(p.queue) > 0 {
		next := p.queue[0]
		p.queue = p.queue[1:]
		p.slots[0] = next
		next.Stage = 0
	}
}

// processStage applies the work of stage i to pkt. Every charge is
// guarded by a flag so a stalled packet pays each cost once.
func (p *Pipeline) processStage(pkt *Packet, i int) {
	if i == p.fetchIdx && !pkt.fetchCharged {
		p.chargeFetch(pkt)
	}
	if i == p.readIdx && !pkt.hazardChecked {
		p.checkHazards(pkt, i)
	}
	if i == p.execIdx && !pkt.branchCharged && pkt.Inst.IsBranch {
		p.chargeBranch(pkt)
	}
	if i == p.memIdx && !pkt.memCharged &&
		(pkt.Inst.IsLoad || pkt.Inst.IsStore) {
		p.chargeMemory(pkt)
	}
}

func (p *Pipeline) chargeFetch(pkt *Packet) {
	pkt.fetchCharged = true

	if p.icache != nil {
		res := p.icache.Read(pkt.PC)
		if res.Latency > 1 {
			extra := res.Latency - 1
			pkt.StallsLeft += extra
			p.metrics.MemoryStallCycles += extra
		}
		return
	}

	if extra := p.config.MemoryLatency - 1; extra > 0 {
		pkt.StallsLeft += extra
		p.metrics.MemoryStallCycles += extra
	}
	if p.memBusy {
		// Single memory port: the memory stage claimed it this cycle.
		p.metrics.StructuralHazards++
		pkt.Hazards = append(pkt.Hazards, HazardStructural)
		pkt.StallsLeft++
	}
}

func (p *Pipeline) checkHazards(pkt *Packet, i int) {
	pkt.hazardChecked = true

	var stalls uint64
	for j := i + 1; j < p.config.Depth; j++ {
		older := p.slots[j]
		if older == nil {
			continue
		}
		for _, dep := range p.hazards.check(pkt, older) {
			pkt.Hazards = append(pkt.Hazards, dep.kind)
			p.metrics.DataHazards++
			switch dep.kind {
			case HazardRAW:
				p.metrics.RAWHazards++
				if s := p.hazards.stallsFor(dep.older); s > stalls {
					stalls = s
				}
			case HazardWAW:
				p.metrics.WAWHazards++
			case HazardWAR:
				p.metrics.WARHazards++
			}
		}
	}
	pkt.StallsLeft += stalls
}

func (p *Pipeline) chargeBranch(pkt *Packet) {
	pkt.branchCharged = true
	pkt.Hazards = append(pkt.Hazards, HazardControl)

	p.metrics.ControlHazards++
	p.metrics.BranchesTotal++

	if p.config.BranchPrediction {
		p.metrics.BranchesPredicted++
		return
	}
	p.metrics.BranchPenaltyCycles += p.config.BranchPenalty
	pkt.StallsLeft += p.config.BranchPenalty
}

func (p *Pipeline) chargeMemory(pkt *Packet) {
	pkt.memCharged = true

	addr := p.effectiveAddr(pkt)

	var extra uint64
	if p.dcache != nil {
		var res cache.AccessResult
		if pkt.Inst.IsStore {
			res = p.dcache.Write(addr, 0)
		} else {
			res = p.dcache.Read(addr)
		}
		if res.Latency > 1 {
			extra = res.Latency - 1
		}
	} else {
		extra = p.config.MemoryLatency - 1
		p.memBusy = true
	}

	switch pkt.Inst.Op {
	case insts.OpLDI:
		p.metrics.MemoryReads += 2
	case insts.OpSTI:
		p.metrics.MemoryReads++
		p.metrics.MemoryWrites++
	default:
		if pkt.Inst.IsStore {
			p.metrics.MemoryWrites++
		} else {
			p.metrics.MemoryReads++
		}
	}

	if extra > 0 {
		pkt.StallsLeft += extra
		p.metrics.MemoryStallCycles += extra
	}
}

func (p *Pipeline) effectiveAddr(pkt *Packet) insts.Word {
	switch pkt.Inst.Op {
	case insts.OpLDR, insts.OpSTR:
		return pkt.Inst.Offset6
	default:
		return pkt.PC + 1 + pkt.Inst.Offset9
	}
}

func (p *Pipeline) retire(pkt *Packet) {
	pkt.CompleteCycle = p.cycle
	p.metrics.Instructions++
}

// Drain runs the pipeline until every in-flight packet retires.
func (p *Pipeline) Drain() {
	for limit := 0; p.InFlight() > 0 && limit < 1<<20; limit++ {
		p.Tick()
	}
}

// Flush discards all in-flight packets without retiring them.
func (p *Pipeline) Flush() {
	for i := range p.slots {
		p.slots[i] = nil
	}
	p.queue = nil
}

// Reset returns the pipeline to its initial state and zeroes all
// counters and cache statistics.
func (p *Pipeline) Reset() {
	p.Flush()
	p.cycle = 0
	p.metrics = Metrics{}
	p.memBusy = false
	if p.icache != nil {
		p.icache.Reset()
	}
	if p.dcache != nil {
		p.dcache.Reset()
	}
}
