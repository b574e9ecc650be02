// Package remap implements the aspect-match and stable radix fold that
// turns a per-process, entity-index-keyed tuple list into a dense,
// key-ordered working set sliced into buckets: entities in the same
// bucket can be processed in parallel, while buckets themselves are
// ordered.
package remap

import (
	"github.com/cuemby/ecs/pkg/entity"
)

// Key is the bucket key a process assigns to a matched entity. 0xFF
// (Unused) marks a tuple to be excluded from the working set.
type Key = uint8

// MinKey and MaxKey bound the usable key range; Unused excludes a tuple.
const (
	MinKey Key = 0x00
	MaxKey Key = 0xFE
	Unused Key = 0xFF
)

const keySpace = 256

// MapTuple pairs a bucket key with the entity it describes. A RemapList is
// indexed by entity index: MapTuple at position i must describe the
// entity whose index is i (or be Invalid/Unused) — the remap is a sparse
// table keyed by entity index, not a packed list.
type MapTuple struct {
	Key Key
	ID  entity.ID
}

// Invalid returns the sentinel tuple excluded by FoldAndReorder.
func Invalid() MapTuple {
	return MapTuple{Key: Unused, ID: entity.Invalid}
}

// RemapList is a sparse, entity-index-keyed list of MapTuple.
type RemapList []MapTuple

// Bucket is an inclusive [From, To] range of indices into a working set,
// identifying the contiguous run of entities sharing one key.
type Bucket struct {
	From, To uint32
}

// FoldAndReorder performs a stable counting-sort style fold: every tuple
// in input whose Key is not Unused is placed into out in ascending-key
// order, preserving the relative order of same-key tuples from input
// (stability). buckets receives one Bucket per distinct key present with
// a nonzero count, in ascending key order. Complexity is O(n + 256).
func FoldAndReorder(input RemapList, out *[]entity.ID, buckets *[]Bucket) {
	var histogram [keySpace]uint32
	for i := range input {
		key := input[i].Key
		if key == Unused {
			continue
		}
		histogram[key]++
	}

	*buckets = (*buckets)[:0]

	var offsets [keySpace]uint32
	var current uint32
	for key := 0; key < keySpace; key++ {
		offsets[key] = current
		prev := current
		current += histogram[key]
		if histogram[key] > 0 {
			*buckets = append(*buckets, Bucket{From: prev, To: current - 1})
		}
	}

	if cap(*out) < int(current) {
		*out = make([]entity.ID, current)
	} else {
		*out = (*out)[:current]
	}

	for i := range input {
		tuple := input[i]
		if tuple.Key == Unused {
			continue
		}
		w := offsets[tuple.Key]
		(*out)[w] = tuple.ID
		offsets[tuple.Key] = w + 1
	}
}
