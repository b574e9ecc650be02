// Package directory holds the entity records, per-entity component
// bitmasks, and the two views (append-order and index-sorted) of the set
// of live entities.
package directory

import (
	"sort"

	"github.com/cuemby/ecs/pkg/bitmask"
	"github.com/cuemby/ecs/pkg/ecserr"
	"github.com/cuemby/ecs/pkg/entity"
)

// Eraser is the narrow interface a component.Storage[T] satisfies,
// letting Directory destroy a component without knowing its concrete type.
// This is the Go analogue of the original's IComponentsStorage base class.
type Eraser interface {
	Erase(id entity.ID)
}

// Directory owns the per-entity records, component bitmasks, and active
// entity lists. All mutation must happen from the single driving thread
// while the world is in its MUTABLE phase.
type Directory struct {
	records []entity.Record
	masks   []bitmask.Mask

	unordered []entity.ID
	ordered   []entity.ID
	dirty     bool

	storages [bitmask.MaxComponentTypes]Eraser
}

// New returns an empty Directory with capacity reserved for
// initialCapacity entities.
func New(initialCapacity int) *Directory {
	return &Directory{
		records:   make([]entity.Record, 0, initialCapacity),
		masks:     make([]bitmask.Mask, 0, initialCapacity),
		unordered: make([]entity.ID, 0, initialCapacity),
	}
}

// BindStorage registers the Eraser backing component type index so
// Destroy/DestroyAll can erase that type's component without a type
// switch. Called once per component type, typically at first use.
func (d *Directory) BindStorage(typeIndex uint32, s Eraser) {
	d.storages[typeIndex] = s
}

// Create materializes the directory entry for id, reusing a retired slot
// or growing the records/masks arrays. id.Index() must equal len(records)
// when growing (the ID generator and directory are required to stay in
// sync); this is enforced as a precondition.
func (d *Directory) Create(id entity.ID) {
	idx := id.Index()
	maxIdx := uint32(len(d.records))

	if idx < maxIdx {
		d.records[idx] = entity.Record{ID: id, ActivePosition: uint32(len(d.unordered))}
		d.masks[idx] = bitmask.Mask{}
		d.unordered = append(d.unordered, id)
		d.dirty = true
		return
	}

	ecserr.Checkf(idx == maxIdx, "Directory.Create", "id generator and directory out of sync: index=%d expected=%d", idx, maxIdx)

	d.records = append(d.records, entity.Record{ID: id, ActivePosition: uint32(len(d.unordered))})
	d.masks = append(d.masks, bitmask.Mask{})
	d.unordered = append(d.unordered, id)

	if !d.dirty {
		d.ordered = append(d.ordered, id)
	}
}

// IsValid reports whether id refers to a currently live entity: its index
// is in range and the stored generation matches.
func (d *Directory) IsValid(id entity.ID) bool {
	idx := id.Index()
	if idx >= uint32(len(d.records)) {
		return false
	}
	return d.records[idx].ID == id
}

// Mask returns a pointer to id's live component bitmask. Precondition:
// IsValid(id).
func (d *Directory) Mask(id entity.ID) *bitmask.Mask {
	return &d.masks[id.Index()]
}

// SetComponentBit flips on bit typeIndex in id's mask. Precondition: the
// bit was not already set.
func (d *Directory) SetComponentBit(id entity.ID, typeIndex uint32) {
	m := d.Mask(id)
	ecserr.Checkf(!m.Get(typeIndex), "Directory.SetComponentBit", "entity %v already has component type %d", id, typeIndex)
	m.Set(typeIndex)
}

// ResetComponentBit flips off bit typeIndex in id's mask. Precondition:
// the bit was set.
func (d *Directory) ResetComponentBit(id entity.ID, typeIndex uint32) {
	m := d.Mask(id)
	ecserr.Checkf(m.Get(typeIndex), "Directory.ResetComponentBit", "entity %v has no component type %d", id, typeIndex)
	m.Reset(typeIndex)
}

// Destroy tears down the entity at index idx: every component it carries
// is erased from its backing storage and its record is invalidated. When
// updateActive is true the unordered active list is also fixed up in
// place (swap-and-pop) and the ordered view is marked dirty; callers that
// are about to clear the active lists wholesale (DestroyAll) pass false
// to skip that bookkeeping, matching the original's
// Destroy<needs_active_list_update> fast path.
func (d *Directory) Destroy(idx uint32, updateActive bool) {
	id := d.records[idx].ID
	d.records[idx].ID = entity.Invalid

	if updateActive {
		usedIndex := d.records[idx].ActivePosition
		lastIndex := uint32(len(d.unordered)) - 1
		if usedIndex != lastIndex {
			moved := d.unordered[lastIndex]
			d.unordered[usedIndex] = moved
			d.records[moved.Index()].ActivePosition = usedIndex
		}
		d.unordered = d.unordered[:lastIndex]
		d.dirty = true
	}

	mask := d.masks[idx]
	for bit, ok := mask.Next(0); ok; bit, ok = mask.Next(bit + 1) {
		if s := d.storages[bit]; s != nil {
			s.Erase(id)
		}
	}
}

// Len returns the number of entity slots ever allocated (live or retired) —
// the "max entity index" the remap pipeline sizes its working sets to.
func (d *Directory) Len() uint32 {
	return uint32(len(d.records))
}

// ClearAll resets the directory to empty, as DestroyAll does after
// destroying every live entity.
func (d *Directory) ClearAll() {
	d.records = d.records[:0]
	d.masks = d.masks[:0]
	d.unordered = d.unordered[:0]
	d.ordered = d.ordered[:0]
	d.dirty = false
}

// Unordered returns the active entities in append order.
func (d *Directory) Unordered() []entity.ID {
	return d.unordered
}

// Ordered returns the active entities sorted ascending by index, lazily
// rebuilding the cached view if it was invalidated since the last call.
func (d *Directory) Ordered() []entity.ID {
	if d.dirty {
		d.ordered = append(d.ordered[:0], d.unordered...)
		sort.Slice(d.ordered, func(i, j int) bool {
			return d.ordered[i].Index() < d.ordered[j].Index()
		})
		d.dirty = false
	}
	return d.ordered
}
