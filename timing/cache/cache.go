// Package cache provides the L1 cache timing model used by the pipeline
// performance model, built on Akita cache components.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/lc3sim/insts"
)

// Config holds cache configuration parameters. Sizes are in words: the
// LC-3 memory is word-addressed, so the block geometry is too.
type Config struct {
	// Enabled gates the whole cache model; a disabled cache charges the
	// pipeline's flat memory latency instead.
	Enabled bool
	// SizeWords is the total capacity in words.
	SizeWords int
	// BlockWords is the cache line size in words.
	BlockWords int
	// Associativity is the number of ways.
	Associativity int
	// HitLatency in cycles.
	HitLatency uint64
	// MissPenalty in cycles, charged on top of nothing: a miss costs the
	// full penalty.
	MissPenalty uint64
}

// DefaultIConfig returns the default instruction-cache geometry: 2K
// words (4KB), direct-mapped, 16-word lines.
func DefaultIConfig() Config {
	return Config{
		Enabled:       true,
		SizeWords:     2048,
		BlockWords:    16,
		Associativity: 1,
		HitLatency:    1,
		MissPenalty:   10,
	}
}

// DefaultDConfig returns the default data-cache geometry, identical to
// the instruction cache.
func DefaultDConfig() Config {
	return DefaultIConfig()
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Data is the word read (for load operations).
	Data insts.Word
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// BackingStore is the next level in the memory hierarchy.
type BackingStore interface {
	// ReadWord fetches one word from the backing store.
	ReadWord(addr insts.Word) insts.Word
	// WriteWord stores one word to the backing store.
	WriteWord(addr insts.Word, v insts.Word)
}

// Cache is an L1 cache using an Akita directory for tag and LRU state.
type Cache struct {
	config Config

	directory *akitacache.DirectoryImpl

	// dataStore is indexed by setID*associativity + wayID.
	dataStore [][]insts.Word

	stats   Statistics
	backing BackingStore
}

// New creates a cache with the given configuration.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.SizeWords / (config.Associativity * config.BlockWords)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]insts.Word, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]insts.Word, config.BlockWords)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockWords,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr insts.Word) uint64 {
	bw := uint64(c.config.BlockWords)
	return uint64(addr) / bw * bw
}

// Read performs a cache read, returning hit state, latency, and data.
func (c *Cache) Read(addr insts.Word) AccessResult {
	c.stats.Reads++

	blockAddr := c.blockAddr(addr)
	block := c.directory.Lookup(0, blockAddr)

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		offset := uint64(addr) % uint64(c.config.BlockWords)
		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Data:    c.dataStore[c.blockIndex(block)][offset],
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, false, 0)
}

// Write performs a cache write. Write-allocate: a miss fetches the block
// before writing it.
func (c *Cache) Write(addr insts.Word, v insts.Word) AccessResult {
	c.stats.Writes++

	blockAddr := c.blockAddr(addr)
	block := c.directory.Lookup(0, blockAddr)

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		offset := uint64(addr) % uint64(c.config.BlockWords)
		c.dataStore[c.blockIndex(block)][offset] = v
		block.IsDirty = true
		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++
	return c.handleMiss(addr, true, v)
}

func (c *Cache) handleMiss(addr insts.Word, isWrite bool, writeData insts.Word) AccessResult {
	result := AccessResult{Latency: c.config.MissPenalty}

	blockAddr := c.blockAddr(addr)
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		if victim.IsDirty && c.backing != nil {
			c.stats.Writebacks++
			for i, w := range victimData {
				c.backing.WriteWord(insts.Word(victim.Tag)+insts.Word(i), w)
			}
		}
	}

	if c.backing != nil {
		for i := range victimData {
			victimData[i] = c.backing.ReadWord(insts.Word(blockAddr) + insts.Word(i))
		}
	} else {
		for i := range victimData {
			victimData[i] = 0
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	offset := uint64(addr) % uint64(c.config.BlockWords)
	if isWrite {
		victimData[offset] = writeData
		victim.IsDirty = true
	} else {
		result.Data = victimData[offset]
	}

	c.directory.Visit(victim)

	return result
}

// Reset invalidates all lines without writeback and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
