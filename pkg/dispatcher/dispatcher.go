// Package dispatcher implements the deferred command buffer that makes
// mutations issued during a process update safe and replayable: while the
// world is locked, every mutating call is recorded here instead of
// executing immediately, then replayed in FIFO order on unlock.
//
// The original C++ dispatcher bump-allocates raw bytes and placement-
// constructs typed command records directly into the arena. Go has no
// placement-new, so this port keeps the externally observable contract
// (atomic bump allocation sized in 128-byte blocks, FIFO replay order,
// fatal overflow) but records commands as boxed interface values appended
// to a slice. The capacity check runs against an atomic offset, the same
// accounting the arena would have used; the append itself is done under a
// short sync.Mutex, so enqueue is not lock-free. Drain returns commands in
// the order they were appended, and overflow panics.
package dispatcher

import (
	"sync"
	"sync/atomic"

	"github.com/cuemby/ecs/pkg/ecserr"
	"github.com/cuemby/ecs/pkg/entity"
)

// blockSize is the alignment the original dispatcher rounds every command
// up to, to avoid false sharing between concurrently-enqueuing goroutines.
const blockSize = 128

// DefaultBufferSize is the default size of the dispatcher's accounting
// arena (4 MiB), matching the original's dispatcherBufferSize.
const DefaultBufferSize = 4 * 1024 * 1024

// Command is one recorded mutation, replayed in enqueue order on Unlock.
type Command interface {
	size() uint32
}

// NotifyChanges records a change notification for id.
type NotifyChanges struct{ ID entity.ID }

func (NotifyChanges) size() uint32 { return blockSize }

// CreateEntity records that id's directory entry must be materialized.
type CreateEntity struct{ ID entity.ID }

func (CreateEntity) size() uint32 { return blockSize }

// DestroyEntity records that id must be torn down.
type DestroyEntity struct{ ID entity.ID }

func (DestroyEntity) size() uint32 { return blockSize }

// DestroyAll records a request to tear down every live entity.
type DestroyAll struct{}

func (DestroyAll) size() uint32 { return blockSize }

// AddComponent records a component value to be moved into storage on
// replay. Apply is supplied by the caller (world package) because the
// dispatcher is not generic over component type T; it carries the value
// behind a closure the way the original carries a type-erased destructor
// function pointer alongside the inline payload.
type AddComponent struct {
	ID    entity.ID
	Apply func(id entity.ID)
}

func (c AddComponent) size() uint32 {
	// The payload lives behind Apply, so like every other command this is
	// accounted as exactly one block.
	return blockSize
}

// RemoveComponent records a component removal to replay.
type RemoveComponent struct {
	ID    entity.ID
	Apply func(id entity.ID)
}

func (c RemoveComponent) size() uint32 { return blockSize }

// Dispatcher is the deferred command buffer: atomic capacity accounting
// plus a mutex-guarded command slice. The zero value is not usable;
// construct with New.
type Dispatcher struct {
	bufferSize uint32
	offset     atomic.Uint32

	// mu guards only the append to cmd; the capacity check itself (the
	// part the original's bump allocator needs lock-free for high
	// enqueue concurrency) happens against the atomic offset above
	// before mu is ever touched.
	mu  sync.Mutex
	cmd []Command
}

// New returns a Dispatcher with the given accounting arena size.
func New(bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Dispatcher{bufferSize: uint32(bufferSize)}
}

func alignUp(v, alignment uint32) uint32 {
	return (v + alignment - 1) &^ (alignment - 1)
}

// Enqueue appends cmd to the buffer. Safe to call from multiple
// goroutines concurrently: the capacity check uses only the atomic
// offset counter, and the append to the command slice takes mu.
// Enqueue panics (fatal error, per spec.md §4.5/§9) if the buffer's
// configured capacity would be exceeded.
func (d *Dispatcher) Enqueue(cmd Command) {
	block := alignUp(cmd.size(), blockSize)
	newOffset := d.offset.Add(block)
	ecserr.Checkf(newOffset <= d.bufferSize, "Dispatcher.Enqueue",
		"command buffer exhausted: %d bytes requested, capacity %d", newOffset, d.bufferSize)

	d.mu.Lock()
	d.cmd = append(d.cmd, cmd)
	d.mu.Unlock()
}

// BytesInUse reports how many bytes of the accounting arena are currently
// reserved by enqueued-but-undrained commands — used by pkg/ecsmetrics to
// track dispatcher pressure.
func (d *Dispatcher) BytesInUse() uint32 {
	return d.offset.Load()
}

// Capacity returns the configured buffer size in bytes.
func (d *Dispatcher) Capacity() uint32 {
	return d.bufferSize
}

// Drain returns every enqueued command in FIFO order and resets the
// buffer, ready for the next locked phase.
func (d *Dispatcher) Drain() []Command {
	d.mu.Lock()
	cmds := d.cmd
	d.cmd = nil
	d.mu.Unlock()

	d.offset.Store(0)
	return cmds
}
