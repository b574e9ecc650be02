package dispatcher

import (
	"sync"
	"testing"

	"github.com/cuemby/ecs/pkg/entity"
	"github.com/stretchr/testify/assert"
)

func TestEnqueueDrainFIFOOrder(t *testing.T) {
	d := New(DefaultBufferSize)

	d.Enqueue(CreateEntity{ID: entity.NewID(1, 1)})
	d.Enqueue(NotifyChanges{ID: entity.NewID(1, 1)})
	d.Enqueue(DestroyEntity{ID: entity.NewID(2, 1)})

	cmds := d.Drain()
	assert.Len(t, cmds, 3)
	assert.IsType(t, CreateEntity{}, cmds[0])
	assert.IsType(t, NotifyChanges{}, cmds[1])
	assert.IsType(t, DestroyEntity{}, cmds[2])
}

func TestDrainResetsOffsetAndBuffer(t *testing.T) {
	d := New(DefaultBufferSize)
	d.Enqueue(DestroyAll{})
	assert.NotZero(t, d.BytesInUse())

	d.Drain()
	assert.Zero(t, d.BytesInUse())
	assert.Empty(t, d.Drain())
}

func TestEnqueueOverflowPanics(t *testing.T) {
	d := New(blockSize) // room for exactly one command
	d.Enqueue(DestroyAll{})
	assert.Panics(t, func() {
		d.Enqueue(DestroyAll{})
	})
}

func TestConcurrentEnqueueIsRaceFree(t *testing.T) {
	d := New(DefaultBufferSize)
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Enqueue(NotifyChanges{ID: entity.NewID(uint32(i), 1)})
		}(i)
	}
	wg.Wait()

	assert.Len(t, d.Drain(), 64)
}

func TestAddComponentAppliesOnDrain(t *testing.T) {
	d := New(DefaultBufferSize)
	var applied []entity.ID
	id := entity.NewID(5, 1)
	d.Enqueue(AddComponent{ID: id, Apply: func(id entity.ID) {
		applied = append(applied, id)
	}})

	cmds := d.Drain()
	for _, c := range cmds {
		if ac, ok := c.(AddComponent); ok {
			ac.Apply(ac.ID)
		}
	}
	assert.Equal(t, []entity.ID{id}, applied)
}
