// Package process defines the lifecycle contract a system implements to
// receive remap notifications and per-frame update calls from the world.
package process

import "github.com/cuemby/ecs/pkg/entity"

// Process is a unit of per-frame work that operates on entities matching
// an aspect. Remap is called whenever the set of entities it should
// consider may have changed (or, for a newly registered process, once
// with the full active list); Update is called once per world tick, in
// registration order, after every process has been given a chance to
// remap.
type Process interface {
	// Remap receives the IDs that changed since the last call (or, for a
	// process's very first call, every currently-active entity) along
	// with the highest entity index currently allocated, so the process
	// can size its own working-set scratch space.
	Remap(changed []entity.ID, maxEntityIndex uint32)

	// Update runs this process's per-frame work over its working set.
	Update(dt float64)
}
