package entity

import "sync/atomic"

// Generator issues fresh entity handles and recycles released ones,
// bumping the generation on reuse so stale handles become detectable.
//
// In its default, unlocked mode Generator is single-threaded: Acquire,
// Release, Lock and Clear must all be called from the one driving thread
// (MUTABLE phase). Once Lock is called, Acquire becomes safe to call from
// multiple goroutines concurrently — it hands out IDs from a frozen pool
// using only atomic counters, never touching the free list, so IDs can be
// handed out during UPDATE without taking a lock.
type Generator struct {
	freeList []ID

	nextFresh atomic.Uint32
	locked    atomic.Bool

	// valid only while locked
	poolSize    atomic.Uint32
	reusedCount atomic.Uint32
}

// NewGenerator returns a ready-to-use Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Acquire returns a new entity handle. While unlocked it must be called
// from a single goroutine; while locked it is safe to call concurrently.
func (g *Generator) Acquire() ID {
	if g.locked.Load() {
		return g.acquireLocked()
	}
	return g.acquireUnlocked()
}

func (g *Generator) acquireUnlocked() ID {
	n := len(g.freeList)
	if n == 0 {
		index := g.nextFresh.Add(1) - 1
		return NewID(index, 1)
	}
	id := g.freeList[n-1]
	g.freeList = g.freeList[:n-1]
	return NewID(id.Index(), bumpGeneration(id.Generation()))
}

func (g *Generator) acquireLocked() ID {
	idx := g.reusedCount.Add(1) - 1
	if idx < g.poolSize.Load() {
		reuseIndex := g.poolSize.Load() - idx - 1
		id := g.freeList[reuseIndex]
		return NewID(id.Index(), bumpGeneration(id.Generation()))
	}
	index := g.nextFresh.Add(1) - 1
	return NewID(index, 1)
}

// bumpGeneration increments a generation, skipping the reserved value 0 on
// wraparound.
func bumpGeneration(generation uint32) uint32 {
	generation = (generation + 1) & generationMask
	if generation == 0 {
		generation = 1
	}
	return generation
}

// Release returns id's index to the free list. Must be called while
// unlocked, from the single driving thread.
func (g *Generator) Release(id ID) {
	g.freeList = append(g.freeList, id)
}

// Lock freezes the current free-list size as the reusable pool and enables
// the concurrent Acquire path.
func (g *Generator) Lock() {
	g.poolSize.Store(uint32(len(g.freeList)))
	g.reusedCount.Store(0)
	g.locked.Store(true)
}

// Unlock disables the concurrent Acquire path and trims from the free list
// the suffix that was consumed while locked.
func (g *Generator) Unlock() {
	g.locked.Store(false)

	used := g.reusedCount.Load()
	if len(g.freeList) == 0 {
		return
	}
	if int(used) >= len(g.freeList) {
		g.freeList = g.freeList[:0]
		return
	}
	g.freeList = g.freeList[:len(g.freeList)-int(used)]
}

// Locked reports whether the generator is in locked mode.
func (g *Generator) Locked() bool {
	return g.locked.Load()
}

// Clear resets the generator to its zero state, as happens on DestroyAll.
func (g *Generator) Clear() {
	g.freeList = g.freeList[:0]
	g.nextFresh.Store(0)
	g.reusedCount.Store(0)
	g.poolSize.Store(0)
}
