// Package world wires the entity generator, directory, component storages
// and dispatcher into the single driving loop: CreateEntity/AddComponent/
// DestroyEntity et al. execute directly while the world is MUTABLE, and are
// recorded by the dispatcher and replayed in order whenever they're called
// from inside a process's Remap or Update.
package world

import (
	"reflect"

	"github.com/cuemby/ecs/pkg/bitmask"
	"github.com/cuemby/ecs/pkg/component"
	"github.com/cuemby/ecs/pkg/directory"
	"github.com/cuemby/ecs/pkg/dispatcher"
	"github.com/cuemby/ecs/pkg/ecserr"
	"github.com/cuemby/ecs/pkg/ecslog"
	"github.com/cuemby/ecs/pkg/ecsmetrics"
	"github.com/cuemby/ecs/pkg/entity"
	"github.com/cuemby/ecs/pkg/process"
	"github.com/cuemby/ecs/pkg/remap"
	"github.com/rs/zerolog"
)

// Phase is the world's position in its MUTABLE -> REMAP -> UPDATE cycle.
type Phase int

const (
	// PhaseMutable is the only phase in which directory and storage
	// mutations execute directly; it holds between calls to Update.
	PhaseMutable Phase = iota
	// PhaseRemap is set while every registered process's Remap runs.
	PhaseRemap
	// PhaseUpdate is set while every registered process's Update runs.
	// Mutating calls made from here are deferred to the dispatcher.
	PhaseUpdate
)

func (p Phase) String() string {
	switch p {
	case PhaseMutable:
		return "mutable"
	case PhaseRemap:
		return "remap"
	case PhaseUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Config configures a World's initial capacities.
type Config struct {
	// DispatcherBufferSize is the size in bytes of the deferred-command
	// accounting buffer. Zero selects dispatcher.DefaultBufferSize.
	DispatcherBufferSize int `yaml:"dispatcherBufferSize"`
	// InitialEntityCapacity is the number of entity slots to preallocate.
	// Zero selects a default of 1024.
	InitialEntityCapacity int `yaml:"initialEntityCapacity"`
}

// DefaultConfig returns the Config a World uses when none is supplied.
func DefaultConfig() Config {
	return Config{
		DispatcherBufferSize:  dispatcher.DefaultBufferSize,
		InitialEntityCapacity: 1024,
	}
}

// componentTypeInfo is the per-type bookkeeping the world keeps so that
// AddComponent[T]/GetComponent[T]/RemoveComponent[T] can find (or lazily
// create) the one Storage[T] and bitmask index for T. Go has no template
// specialization to hand every instantiation of Storage[T] a compile-time
// index the way the original's component registration does, so the world
// assigns type indices at runtime, the first time each T is touched.
type componentTypeInfo struct {
	index   uint32
	storage any // *component.Storage[T]
}

// World is the ECS runtime: it owns the entity generator, the directory of
// live entities and their component bitmasks, the per-type component
// storages, the deferred command dispatcher, and the registered processes.
type World struct {
	generator  *entity.Generator
	dir        *directory.Directory
	dispatcher *dispatcher.Dispatcher
	logger     zerolog.Logger

	phase Phase
	// processes is the active registry: every process that has received
	// at least one Remap. pendingProcesses holds processes registered
	// since the last Update, awaiting their first (full-list) Remap.
	processes        []process.Process
	pendingProcesses []process.Process

	nextTypeIndex  uint32
	componentTypes map[reflect.Type]*componentTypeInfo

	// pendingChanged accumulates entity IDs that changed since the last
	// Remap pass: freshly created/destroyed entities, and anything
	// explicitly reported via NotifyChanges.
	pendingChanged []entity.ID

	cfg Config
}

// New returns a ready-to-use World in the MUTABLE phase.
func New(cfg Config) *World {
	if cfg.DispatcherBufferSize <= 0 {
		cfg.DispatcherBufferSize = dispatcher.DefaultBufferSize
	}
	if cfg.InitialEntityCapacity <= 0 {
		cfg.InitialEntityCapacity = 1024
	}

	return &World{
		generator:      entity.NewGenerator(),
		dir:            directory.New(cfg.InitialEntityCapacity),
		dispatcher:     dispatcher.New(cfg.DispatcherBufferSize),
		logger:         ecslog.WithComponent("world"),
		phase:          PhaseMutable,
		componentTypes: make(map[reflect.Type]*componentTypeInfo),
		cfg:            cfg,
	}
}

// Phase returns the world's current cycle phase.
func (w *World) Phase() Phase {
	return w.phase
}

// CreateEntity acquires a fresh or recycled entity handle. The handle is
// always returned immediately even when called from a process's Update
// (the generator's locked mode hands out IDs lock-free); only the
// directory entry materializing it is deferred until the next unlock.
func (w *World) CreateEntity() entity.ID {
	id := w.generator.Acquire()
	if w.phase == PhaseMutable {
		w.dir.Create(id)
		w.pendingChanged = append(w.pendingChanged, id)
	} else {
		w.dispatcher.Enqueue(dispatcher.CreateEntity{ID: id})
	}
	return id
}

// DestroyEntity tears id down: every component it carries is erased and its
// handle is retired for reuse. No-op if id is not currently valid.
func (w *World) DestroyEntity(id entity.ID) {
	if w.phase == PhaseMutable {
		w.destroyNow(id)
	} else {
		w.dispatcher.Enqueue(dispatcher.DestroyEntity{ID: id})
	}
}

func (w *World) destroyNow(id entity.ID) {
	if !w.dir.IsValid(id) {
		return
	}
	w.dir.Destroy(id.Index(), true)
	w.generator.Release(id)
	w.pendingChanged = append(w.pendingChanged, id)
}

// DestroyAll tears down every live entity and resets the generator's free
// list, as a hard reset between levels/scenes.
func (w *World) DestroyAll() {
	if w.phase == PhaseMutable {
		w.destroyAllNow()
	} else {
		w.dispatcher.Enqueue(dispatcher.DestroyAll{})
	}
}

func (w *World) destroyAllNow() {
	for _, id := range w.dir.Unordered() {
		w.dir.Destroy(id.Index(), false)
		w.pendingChanged = append(w.pendingChanged, id)
	}
	w.dir.ClearAll()
	w.generator.Clear()
}

// IsValid reports whether id refers to a currently live entity.
func (w *World) IsValid(id entity.ID) bool {
	return w.dir.IsValid(id)
}

// NotifyChanges marks id as changed so the next Remap pass reports it to
// every registered process, even if none of its components actually moved
// (e.g. a value mutated in place through a pointer returned by
// GetComponent).
func (w *World) NotifyChanges(id entity.ID) {
	if w.phase == PhaseMutable {
		w.pendingChanged = append(w.pendingChanged, id)
	} else {
		w.dispatcher.Enqueue(dispatcher.NotifyChanges{ID: id})
	}
}

// ActiveList returns live entities in creation/append order.
func (w *World) ActiveList() []entity.ID {
	return w.dir.Unordered()
}

// ActiveListOrdered returns live entities sorted ascending by index.
func (w *World) ActiveListOrdered() []entity.ID {
	return w.dir.Ordered()
}

// MaxEntityIndex returns one past the highest entity index ever allocated,
// live or retired — the size a process should allocate its working-set
// scratch space to.
func (w *World) MaxEntityIndex() uint32 {
	return w.dir.Len()
}

// IsMatchAspect reports whether id's current component set satisfies spec.
func (w *World) IsMatchAspect(id entity.ID, spec remap.AspectSpec) bool {
	if !w.dir.IsValid(id) {
		return false
	}
	return spec.Matches(w.dir.Mask(id))
}

// RegisterProcess queues p to join the update loop. p receives its first
// Remap — a full pass over every currently active entity — at the start of
// the next Update, not immediately; this matches the original's two-step
// pending/active process registration instead of synchronously invoking a
// callback from inside a registration call. Must be called during the
// MUTABLE phase.
func (w *World) RegisterProcess(p process.Process) {
	ecserr.Check(w.phase == PhaseMutable, "World.RegisterProcess", "processes can only be (un)registered during the mutable phase")
	w.pendingProcesses = append(w.pendingProcesses, p)
}

// UnregisterProcess removes p from the update loop. Must be called during
// the MUTABLE phase. No-op if p was never registered; a process still
// awaiting its first Remap is removed from the pending queue.
func (w *World) UnregisterProcess(p process.Process) {
	ecserr.Check(w.phase == PhaseMutable, "World.UnregisterProcess", "processes can only be (un)registered during the mutable phase")
	for i, registered := range w.processes {
		if registered == p {
			w.processes = append(w.processes[:i], w.processes[i+1:]...)
			return
		}
	}
	for i, registered := range w.pendingProcesses {
		if registered == p {
			w.pendingProcesses = append(w.pendingProcesses[:i], w.pendingProcesses[i+1:]...)
			return
		}
	}
}

// Update runs one full world tick: REMAP notifies every process of what
// changed since the last tick, UPDATE runs each process's per-frame work
// (any mutations they issue are deferred), then the world returns to the
// MUTABLE phase and the trailing unlock replays those deferred mutations
// in FIFO order.
func (w *World) Update(dt float64) {
	timer := ecsmetrics.NewTimer()
	defer timer.ObserveDuration(ecsmetrics.UpdateDuration)

	w.phase = PhaseRemap
	w.generator.Lock()

	changed := w.pendingChanged
	w.pendingChanged = nil
	maxIdx := w.dir.Len()

	// Newly registered processes get one full-list Remap as they join the
	// active registry; they are skipped in the changed-set pass below so
	// they don't get remapped twice in the same tick.
	var justPromoted map[process.Process]bool
	if len(w.pendingProcesses) > 0 {
		full := w.dir.Ordered()
		justPromoted = make(map[process.Process]bool, len(w.pendingProcesses))
		for _, p := range w.pendingProcesses {
			p.Remap(full, maxIdx)
			justPromoted[p] = true
		}
		w.processes = append(w.processes, w.pendingProcesses...)
		w.pendingProcesses = nil
	}

	if len(changed) > 0 {
		for _, p := range w.processes {
			if justPromoted[p] {
				continue
			}
			p.Remap(changed, maxIdx)
		}
	}

	w.phase = PhaseUpdate
	for _, p := range w.processes {
		p.Update(dt)
	}

	cmds := w.dispatcher.Drain()
	w.phase = PhaseMutable
	w.generator.Unlock()
	w.replay(cmds)

	ecsmetrics.EntitiesTotal.Set(float64(len(w.dir.Unordered())))
	ecsmetrics.DispatcherBytesInUse.Set(float64(w.dispatcher.BytesInUse()))

	w.logger.Debug().
		Int("processes", len(w.processes)).
		Int("commandsReplayed", len(cmds)).
		Float64("dt", dt).
		Msg("world tick complete")
}

// replay applies every command recorded during the just-finished UPDATE
// phase, in the order they were enqueued.
func (w *World) replay(cmds []dispatcher.Command) {
	for _, c := range cmds {
		switch cmd := c.(type) {
		case dispatcher.CreateEntity:
			w.dir.Create(cmd.ID)
			w.pendingChanged = append(w.pendingChanged, cmd.ID)

		case dispatcher.DestroyEntity:
			w.destroyNow(cmd.ID)

		case dispatcher.DestroyAll:
			w.destroyAllNow()

		case dispatcher.AddComponent:
			if w.dir.IsValid(cmd.ID) {
				cmd.Apply(cmd.ID)
				w.pendingChanged = append(w.pendingChanged, cmd.ID)
			}

		case dispatcher.RemoveComponent:
			if w.dir.IsValid(cmd.ID) {
				cmd.Apply(cmd.ID)
				w.pendingChanged = append(w.pendingChanged, cmd.ID)
			}

		case dispatcher.NotifyChanges:
			w.pendingChanged = append(w.pendingChanged, cmd.ID)
		}
	}
}

// typeInfoFor returns the componentTypeInfo for T, registering a fresh
// Storage[T] and bitmask index the first time T is seen.
func typeInfoFor[T any](w *World) *componentTypeInfo {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if info, ok := w.componentTypes[key]; ok {
		return info
	}

	ecserr.Checkf(w.nextTypeIndex < bitmask.MaxComponentTypes, "World.componentType",
		"exceeded the maximum of %d distinct component types", bitmask.MaxComponentTypes)

	storage := &component.Storage[T]{}
	info := &componentTypeInfo{index: w.nextTypeIndex, storage: storage}
	w.nextTypeIndex++
	w.componentTypes[key] = info
	w.dir.BindStorage(info.index, storage)
	return info
}

func storageFor[T any](w *World) *component.Storage[T] {
	return typeInfoFor[T](w).storage.(*component.Storage[T])
}

// AddComponent attaches a component of type T to id. Panics if id already
// carries a component of type T. In the MUTABLE phase it also panics if id
// is not a currently live handle; outside it the call is recorded and, on
// replay, applied only if id is live by then (so a handle returned by a
// deferred CreateEntity can be given components in the same Update).
func AddComponent[T any](w *World, id entity.ID, value T) {
	if w.phase == PhaseMutable {
		ecserr.Checkf(w.dir.IsValid(id), "world.AddComponent", "invalid entity handle %v", id)
	}
	info := typeInfoFor[T](w)

	apply := func(id entity.ID) {
		storageFor[T](w).PushBack(id, value)
		w.dir.SetComponentBit(id, info.index)
	}

	if w.phase == PhaseMutable {
		apply(id)
		w.pendingChanged = append(w.pendingChanged, id)
	} else {
		w.dispatcher.Enqueue(dispatcher.AddComponent{ID: id, Apply: apply})
	}
}

// GetComponent returns a pointer to id's component of type T and true, or
// nil and false if id is invalid or carries no such component. The pointer
// is only valid until the next structural change to this storage (Optimize,
// or any Add/Remove of type T); callers that mutate through it during
// UPDATE should follow up with NotifyChanges to be picked up by the next
// Remap.
func GetComponent[T any](w *World, id entity.ID) (*T, bool) {
	if !w.dir.IsValid(id) {
		return nil, false
	}
	ptr := storageFor[T](w).Get(id)
	return ptr, ptr != nil
}

// RemoveComponent detaches id's component of type T, if present. No-op if
// id is invalid or has no component of type T.
func RemoveComponent[T any](w *World, id entity.ID) {
	if !w.dir.IsValid(id) {
		return
	}
	info := typeInfoFor[T](w)
	if !w.dir.Mask(id).Get(info.index) {
		return
	}

	apply := func(id entity.ID) {
		storageFor[T](w).Erase(id)
		w.dir.ResetComponentBit(id, info.index)
	}

	if w.phase == PhaseMutable {
		apply(id)
		w.pendingChanged = append(w.pendingChanged, id)
	} else {
		w.dispatcher.Enqueue(dispatcher.RemoveComponent{ID: id, Apply: apply})
	}
}

// AddComponents2 attaches two components of different types to an
// already-live entity in one call.
func AddComponents2[T0, T1 any](w *World, id entity.ID, c0 T0, c1 T1) {
	AddComponent(w, id, c0)
	AddComponent(w, id, c1)
}

// AddComponents3 attaches three components of different types to an
// already-live entity in one call.
func AddComponents3[T0, T1, T2 any](w *World, id entity.ID, c0 T0, c1 T1, c2 T2) {
	AddComponent(w, id, c0)
	AddComponent(w, id, c1)
	AddComponent(w, id, c2)
}

// RemoveComponents2 detaches two component types from id in one call.
// Each is a no-op on its own if id doesn't carry that type.
func RemoveComponents2[T0, T1 any](w *World, id entity.ID) {
	RemoveComponent[T0](w, id)
	RemoveComponent[T1](w, id)
}

// RemoveComponents3 detaches three component types from id in one call.
func RemoveComponents3[T0, T1, T2 any](w *World, id entity.ID) {
	RemoveComponent[T0](w, id)
	RemoveComponent[T1](w, id)
	RemoveComponent[T2](w, id)
}

// ComponentTypeIndex returns the bitmask bit index assigned to T,
// registering it if this is the first time T has been touched. Useful for
// building a remap.AspectSpec without first calling AddComponent.
func ComponentTypeIndex[T any](w *World) uint32 {
	return typeInfoFor[T](w).index
}

// ComponentStorage exposes the backing Storage[T] for introspection and
// direct iteration (e.g. from a Process that wants to Optimize() its own
// working set's locality).
func ComponentStorage[T any](w *World) *component.Storage[T] {
	return storageFor[T](w)
}

// CreateEntityWith1 creates an entity and attaches one component in a
// single MUTABLE-phase call.
func CreateEntityWith1[T0 any](w *World, c0 T0) entity.ID {
	id := w.CreateEntity()
	AddComponent(w, id, c0)
	return id
}

// CreateEntityWith2 creates an entity and attaches two components.
func CreateEntityWith2[T0, T1 any](w *World, c0 T0, c1 T1) entity.ID {
	id := w.CreateEntity()
	AddComponent(w, id, c0)
	AddComponent(w, id, c1)
	return id
}

// CreateEntityWith3 creates an entity and attaches three components.
func CreateEntityWith3[T0, T1, T2 any](w *World, c0 T0, c1 T1, c2 T2) entity.ID {
	id := w.CreateEntity()
	AddComponent(w, id, c0)
	AddComponent(w, id, c1)
	AddComponent(w, id, c2)
	return id
}
