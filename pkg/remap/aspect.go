package remap

import "github.com/cuemby/ecs/pkg/bitmask"

// MaxAspectComponents is the cap on distinct component types one aspect
// can require, matching the original's compile-time Aspect<T0,T1,T2>
// specialization ceiling.
const MaxAspectComponents = 3

// ComponentAccess names one component type an aspect requires and whether
// it is accessed read-only.
type ComponentAccess struct {
	TypeIndex uint32
	ReadOnly  bool
}

// AspectSpec is the runtime rendering of a compile-time aspect tuple: the
// components required bitmask, and the subset of those accessed
// read-only. This is the Go-idiomatic builder the design notes call for
// in place of C++ variadic template specialization — callers build one
// AspectSpec per process and reuse it across IsMatchAspect/remap calls.
type AspectSpec struct {
	Required bitmask.Mask
	ReadOnly bitmask.Mask
}

// NewAspectSpec builds an AspectSpec from up to MaxAspectComponents
// component accesses.
func NewAspectSpec(accesses ...ComponentAccess) AspectSpec {
	var spec AspectSpec
	for _, a := range accesses {
		spec.Required.Set(a.TypeIndex)
		if a.ReadOnly {
			spec.ReadOnly.Set(a.TypeIndex)
		}
	}
	return spec
}

// Matches reports whether mask satisfies spec's required components.
func (s AspectSpec) Matches(mask *bitmask.Mask) bool {
	return mask.Contains(&s.Required)
}
