package main

import (
	"github.com/cuemby/ecs/pkg/ecslog"
	"github.com/cuemby/ecs/pkg/entity"
	"github.com/cuemby/ecs/pkg/remap"
	"github.com/cuemby/ecs/pkg/world"
)

// movementProcess advances every entity carrying both Position and
// Velocity. It keeps its own working set, rebuilt from the changed list
// handed to it on each Remap rather than re-scanning the whole world.
type movementProcess struct {
	w       *world.World
	spec    remap.AspectSpec
	working []entity.ID
}

func newMovementProcess(w *world.World) *movementProcess {
	posIdx := world.ComponentTypeIndex[Position](w)
	velIdx := world.ComponentTypeIndex[Velocity](w)

	return &movementProcess{
		w: w,
		spec: remap.NewAspectSpec(
			remap.ComponentAccess{TypeIndex: posIdx, ReadOnly: false},
			remap.ComponentAccess{TypeIndex: velIdx, ReadOnly: true},
		),
	}
}

func (p *movementProcess) Remap(changed []entity.ID, maxEntityIndex uint32) {
	present := make(map[entity.ID]bool, len(p.working))
	for _, id := range p.working {
		present[id] = true
	}

	kept := p.working[:0]
	for _, id := range p.working {
		if p.w.IsValid(id) && p.w.IsMatchAspect(id, p.spec) {
			kept = append(kept, id)
		}
	}
	p.working = kept

	for _, id := range changed {
		if present[id] {
			continue
		}
		if p.w.IsValid(id) && p.w.IsMatchAspect(id, p.spec) {
			p.working = append(p.working, id)
		}
	}
}

func (p *movementProcess) Update(dt float64) {
	for _, id := range p.working {
		pos, ok := world.GetComponent[Position](p.w, id)
		if !ok {
			continue
		}
		vel, ok := world.GetComponent[Velocity](p.w, id)
		if !ok {
			continue
		}
		pos.X += vel.DX * dt
		pos.Y += vel.DY * dt
	}

	ecslog.WithComponent("movement").Debug().
		Int("workingSet", len(p.working)).
		Msg("movement tick")
}
