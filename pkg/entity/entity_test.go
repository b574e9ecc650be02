package entity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDPacking(t *testing.T) {
	id := NewID(12345, 7)
	assert.Equal(t, uint32(12345), id.Index())
	assert.Equal(t, uint32(7), id.Generation())
	assert.True(t, id.IsValid())
}

func TestInvalidIsZero(t *testing.T) {
	assert.False(t, Invalid.IsValid())
	assert.Equal(t, uint32(0), Invalid.Index())
	assert.Equal(t, uint32(0), Invalid.Generation())
}

func TestGeneratorFreshIndicesAreSequential(t *testing.T) {
	g := NewGenerator()
	a := g.Acquire()
	b := g.Acquire()
	assert.Equal(t, uint32(0), a.Index())
	assert.Equal(t, uint32(1), b.Index())
	assert.Equal(t, uint32(1), a.Generation())
	assert.Equal(t, uint32(1), b.Generation())
}

func TestGeneratorReuseBumpsGeneration(t *testing.T) {
	g := NewGenerator()
	a := g.Acquire()
	g.Release(a)
	b := g.Acquire()

	assert.Equal(t, a.Index(), b.Index())
	assert.Equal(t, a.Generation()+1, b.Generation())
}

func TestGeneratorGenerationNeverReturnsZero(t *testing.T) {
	g := NewGenerator()
	id := g.Acquire()
	for i := 0; i < 5000; i++ {
		g.Release(id)
		id = g.Acquire()
		assert.NotEqual(t, uint32(0), id.Generation())
	}
}

func TestGeneratorLockedConcurrentAcquireDoesNotCollide(t *testing.T) {
	g := NewGenerator()
	var released []ID
	for i := 0; i < 50; i++ {
		released = append(released, g.Acquire())
	}
	for _, id := range released {
		g.Release(id)
	}

	g.Lock()

	const workers = 8
	const perWorker = 20
	results := make(chan ID, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results <- g.Acquire()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[ID]bool)
	for id := range results {
		assert.False(t, seen[id], "duplicate id acquired under lock: %v", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)

	g.Unlock()
}

func TestGeneratorUnlockTrimsConsumedSuffix(t *testing.T) {
	g := NewGenerator()
	var ids []ID
	for i := 0; i < 10; i++ {
		ids = append(ids, g.Acquire())
	}
	for _, id := range ids {
		g.Release(id)
	}

	g.Lock()
	for i := 0; i < 4; i++ {
		g.Acquire()
	}
	g.Unlock()

	assert.Len(t, g.freeList, 6)
}

func TestGeneratorClear(t *testing.T) {
	g := NewGenerator()
	id := g.Acquire()
	g.Release(id)
	g.Clear()

	fresh := g.Acquire()
	assert.Equal(t, uint32(0), fresh.Index())
	assert.Equal(t, uint32(1), fresh.Generation())
}
