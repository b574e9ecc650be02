package bitmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetResetGet(t *testing.T) {
	var m Mask
	assert.False(t, m.Get(5))

	m.Set(5)
	assert.True(t, m.Get(5))

	m.Reset(5)
	assert.False(t, m.Get(5))
}

func TestFlip(t *testing.T) {
	var m Mask
	m.Flip(383)
	assert.True(t, m.Get(383))
	m.Flip(383)
	assert.False(t, m.Get(383))
}

func TestClear(t *testing.T) {
	var m Mask
	m.Set(1)
	m.Set(200)
	m.Clear()
	assert.False(t, m.Get(1))
	assert.False(t, m.Get(200))
}

func TestContains(t *testing.T) {
	var a, b Mask
	a.Set(1)
	a.Set(2)
	a.Set(3)

	b.Set(1)
	b.Set(2)
	assert.True(t, a.Contains(&b))
	assert.False(t, b.Contains(&a))

	b.Set(10)
	assert.False(t, a.Contains(&b))
}

func TestContainsEmptyIsAlwaysSatisfied(t *testing.T) {
	var a, empty Mask
	a.Set(42)
	assert.True(t, a.Contains(&empty))
	assert.True(t, empty.Contains(&empty))
}

func TestIterationYieldsSetBitsAscending(t *testing.T) {
	var m Mask
	want := []uint32{0, 31, 32, 200, 383}
	for _, idx := range want {
		m.Set(idx)
	}

	var got []uint32
	for i, ok := m.Next(0); ok; i, ok = m.Next(i + 1) {
		got = append(got, i)
	}
	assert.Equal(t, want, got)
}

func TestIterationEmpty(t *testing.T) {
	var m Mask
	_, ok := m.Next(0)
	assert.False(t, ok)
}

func TestIterationOutOfRange(t *testing.T) {
	var m Mask
	m.Set(383)
	_, ok := m.Next(384)
	assert.False(t, ok)
}
