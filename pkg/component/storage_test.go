package component

import (
	"testing"

	"github.com/cuemby/ecs/pkg/entity"
	"github.com/stretchr/testify/assert"
)

type dummy struct {
	a, b int
}

func TestPushBackAndGetRoundTrip(t *testing.T) {
	var s Storage[dummy]
	id := entity.NewID(3, 1)
	s.PushBack(id, dummy{a: 1, b: -1})

	got := s.Get(id)
	assert.NotNil(t, got)
	assert.Equal(t, dummy{a: 1, b: -1}, *got)
}

func TestGetMissingReturnsNil(t *testing.T) {
	var s Storage[dummy]
	assert.Nil(t, s.Get(entity.NewID(0, 1)))

	s.PushBack(entity.NewID(5, 1), dummy{a: 1})
	assert.Nil(t, s.Get(entity.NewID(2, 1)))
	assert.Nil(t, s.Get(entity.NewID(999, 1)))
}

func TestEraseSwapAndPop(t *testing.T) {
	var s Storage[dummy]
	ids := make([]entity.ID, 4)
	for i := range ids {
		ids[i] = entity.NewID(uint32(i), 1)
		s.PushBack(ids[i], dummy{a: i})
	}

	s.Erase(ids[1])
	assert.Nil(t, s.Get(ids[1]))
	assert.Equal(t, 3, s.Size())

	for _, id := range []entity.ID{ids[0], ids[2], ids[3]} {
		got := s.Get(id)
		assert.NotNil(t, got)
		assert.Equal(t, int(id.Index()), got.a)
	}
}

func TestEraseMissingIsNoop(t *testing.T) {
	var s Storage[dummy]
	s.PushBack(entity.NewID(0, 1), dummy{a: 1})
	s.Erase(entity.NewID(500, 1))
	assert.Equal(t, 1, s.Size())
}

func TestEmptyAndSize(t *testing.T) {
	var s Storage[dummy]
	assert.True(t, s.Empty())
	s.PushBack(entity.NewID(0, 1), dummy{})
	assert.False(t, s.Empty())
	assert.Equal(t, 1, s.Size())
}

// TestOptimizeOrdersComponentsByEntityIndex is scenario 1 from spec.md §8:
// add components in reverse entity order, then Optimize must reorder the
// dense array to ascending entity-index order without changing values.
func TestOptimizeOrdersComponentsByEntityIndex(t *testing.T) {
	var s Storage[dummy]

	var ids []entity.ID
	for i := 1; i <= 7; i++ {
		ids = append(ids, entity.NewID(uint32(i-1), 1))
	}

	// insert in reverse: e7 first ... e1 last
	for i := len(ids) - 1; i >= 0; i-- {
		k := i + 1
		s.PushBack(ids[i], dummy{a: k, b: -k})
	}

	// before optimize: last pushed (e1) is at the highest slot, e7 at slot 0
	assert.Equal(t, dummy{a: 7, b: -7}, s.data[0])
	assert.Equal(t, dummy{a: 1, b: -1}, s.data[6])

	s.Optimize()

	for i, id := range ids {
		got := s.Get(id)
		assert.NotNil(t, got)
		assert.Equal(t, i+1, got.a)
		assert.Equal(t, -(i + 1), got.b)
	}
	// after optimize slot order matches entity index order
	for slot := 0; slot < len(s.back); slot++ {
		if slot > 0 {
			assert.Less(t, s.back[slot-1].Index(), s.back[slot].Index())
		}
	}
}

func TestOptimizeIdempotent(t *testing.T) {
	var s Storage[dummy]
	for i := 10; i >= 0; i-- {
		s.PushBack(entity.NewID(uint32(i), 1), dummy{a: i})
	}

	s.Optimize()
	first := append([]dummy(nil), s.data...)
	firstBack := append([]entity.ID(nil), s.back...)

	s.Optimize()
	assert.Equal(t, first, s.data)
	assert.Equal(t, firstBack, s.back)
}

func TestOptimizeWithSparseEntities(t *testing.T) {
	var s Storage[dummy]
	s.PushBack(entity.NewID(10, 1), dummy{a: 10})
	s.PushBack(entity.NewID(2, 1), dummy{a: 2})
	s.PushBack(entity.NewID(6, 1), dummy{a: 6})

	s.Optimize()

	assert.Equal(t, uint32(2), s.back[0].Index())
	assert.Equal(t, uint32(6), s.back[1].Index())
	assert.Equal(t, uint32(10), s.back[2].Index())
}
