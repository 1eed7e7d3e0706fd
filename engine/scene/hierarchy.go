// Package scene holds the entity hierarchy that loaded assets resolve into
// and the shared material table their nodes reference.
package scene

import (
	"fmt"

	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/math"
)

// Entity identifies a node in a Hierarchy. A despawned slot is reused with a
// bumped generation, so stale handles never alias a newer entity.
type Entity struct {
	Index      uint32
	Generation uint32
}

// Nil represents an invalid Entity.
var Nil = Entity{}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.Index, e.Generation)
}

// Tag is a bitset of marker components.
type Tag uint8

const (
	// TagPendingNormalization marks an asset root that has not been normalized yet.
	TagPendingNormalization Tag = 1 << iota
	// TagHostOwned marks lights and cameras authored by the host scene.
	TagHostOwned
	// TagNoFrustumCulling marks meshes the renderer must always draw.
	TagNoFrustumCulling
)

type slot struct {
	generation uint32
	alive      bool

	name      string
	parent    Entity
	children  []Entity
	transform math.Transform
	material  MaterialHandle
	light     *LightDescriptor
	camera    *CameraDescriptor
	mesh      bool
	tags      Tag
}

// Hierarchy is an arena of entities linked by parent/child relations.
// Despawning an entity despawns its whole subtree. A Hierarchy is not safe
// for concurrent use; the update loop owns it.
type Hierarchy struct {
	slots []slot
	free  []uint32
	count int
}

func NewHierarchy() *Hierarchy {
	// Slot 0 is never handed out so that Nil stays invalid.
	return &Hierarchy{slots: make([]slot, 1, 64)}
}

// Len returns the number of live entities.
func (h *Hierarchy) Len() int {
	return h.count
}

// Spawn creates a new parentless entity.
func (h *Hierarchy) Spawn(name string) Entity {
	var idx uint32
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		idx = uint32(len(h.slots))
		h.slots = append(h.slots, slot{})
	}
	s := &h.slots[idx]
	s.generation++
	gen := s.generation
	*s = slot{
		generation: gen,
		alive:      true,
		name:       name,
		transform:  math.TransformCreate(),
	}
	h.count++
	return Entity{Index: idx, Generation: gen}
}

// SpawnChild creates a new entity attached under parent.
func (h *Hierarchy) SpawnChild(parent Entity, name string) (Entity, error) {
	if !h.Contains(parent) {
		return Nil, fmt.Errorf("spawn child of %s: %w", parent, core.ErrEntityNotFound)
	}
	e := h.Spawn(name)
	h.attach(parent, e)
	return e, nil
}

// Contains reports whether e refers to a live entity.
func (h *Hierarchy) Contains(e Entity) bool {
	if e.Index == 0 || int(e.Index) >= len(h.slots) {
		return false
	}
	s := &h.slots[e.Index]
	return s.alive && s.generation == e.Generation
}

func (h *Hierarchy) get(e Entity) *slot {
	if !h.Contains(e) {
		return nil
	}
	return &h.slots[e.Index]
}

// AddChild attaches child under parent, detaching it from any previous
// parent. Attaching an ancestor under its own descendant is rejected.
func (h *Hierarchy) AddChild(parent, child Entity) error {
	if !h.Contains(parent) {
		return fmt.Errorf("add child to %s: %w", parent, core.ErrEntityNotFound)
	}
	if !h.Contains(child) {
		return fmt.Errorf("add child %s: %w", child, core.ErrEntityNotFound)
	}
	for a := parent; a != Nil; a = h.slots[a.Index].parent {
		if a == child {
			return fmt.Errorf("add %s under %s: %w", child, parent, core.ErrHierarchyCycle)
		}
	}
	h.detach(child)
	h.attach(parent, child)
	return nil
}

// Detach turns child into a root.
func (h *Hierarchy) Detach(child Entity) error {
	if !h.Contains(child) {
		return fmt.Errorf("detach %s: %w", child, core.ErrEntityNotFound)
	}
	h.detach(child)
	return nil
}

func (h *Hierarchy) attach(parent, child Entity) {
	p := &h.slots[parent.Index]
	p.children = append(p.children, child)
	h.slots[child.Index].parent = parent
}

func (h *Hierarchy) detach(child Entity) {
	c := &h.slots[child.Index]
	if c.parent == Nil {
		return
	}
	if p := h.get(c.parent); p != nil {
		for i, sib := range p.children {
			if sib == child {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		if len(p.children) == 0 {
			p.children = nil
		}
	}
	c.parent = Nil
}

// Parent returns the parent of e, or Nil for roots and dead entities.
func (h *Hierarchy) Parent(e Entity) Entity {
	if s := h.get(e); s != nil {
		return s.parent
	}
	return Nil
}

// Children returns the children of e. The second result is false when e has
// no Children relation, i.e. nothing is attached to it (yet).
// The returned slice is a copy.
func (h *Hierarchy) Children(e Entity) ([]Entity, bool) {
	s := h.get(e)
	if s == nil || len(s.children) == 0 {
		return nil, false
	}
	return append([]Entity(nil), s.children...), true
}

// Despawn removes e and its whole subtree. Despawning a dead entity is a
// no-op. It returns the number of entities removed.
func (h *Hierarchy) Despawn(e Entity) int {
	if !h.Contains(e) {
		return 0
	}
	h.detach(e)

	removed := 0
	stack := []Entity{e}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := h.get(cur)
		if s == nil {
			continue
		}
		stack = append(stack, s.children...)
		gen := s.generation
		*s = slot{generation: gen}
		h.free = append(h.free, cur.Index)
		h.count--
		removed++
	}
	return removed
}

// DespawnChildren removes every descendant of e, keeping e itself.
func (h *Hierarchy) DespawnChildren(e Entity) int {
	children, ok := h.Children(e)
	if !ok {
		return 0
	}
	removed := 0
	for _, c := range children {
		removed += h.Despawn(c)
	}
	return removed
}

// Tagged returns every live entity carrying all bits of tag, in index order.
func (h *Hierarchy) Tagged(tag Tag) []Entity {
	var out []Entity
	for i := 1; i < len(h.slots); i++ {
		s := &h.slots[i]
		if s.alive && s.tags&tag == tag {
			out = append(out, Entity{Index: uint32(i), Generation: s.generation})
		}
	}
	return out
}

// Cameras returns every live entity carrying a camera descriptor.
func (h *Hierarchy) Cameras() []Entity {
	var out []Entity
	for i := 1; i < len(h.slots); i++ {
		s := &h.slots[i]
		if s.alive && s.camera != nil {
			out = append(out, Entity{Index: uint32(i), Generation: s.generation})
		}
	}
	return out
}

// Lights returns every live entity carrying a light descriptor.
func (h *Hierarchy) Lights() []Entity {
	var out []Entity
	for i := 1; i < len(h.slots); i++ {
		s := &h.slots[i]
		if s.alive && s.light != nil {
			out = append(out, Entity{Index: uint32(i), Generation: s.generation})
		}
	}
	return out
}

func (h *Hierarchy) HasTag(e Entity, tag Tag) bool {
	s := h.get(e)
	return s != nil && s.tags&tag == tag
}

func (h *Hierarchy) AddTag(e Entity, tag Tag) {
	if s := h.get(e); s != nil {
		s.tags |= tag
	}
}

func (h *Hierarchy) RemoveTag(e Entity, tag Tag) {
	if s := h.get(e); s != nil {
		s.tags &^= tag
	}
}

func (h *Hierarchy) Name(e Entity) string {
	if s := h.get(e); s != nil {
		return s.name
	}
	return ""
}

func (h *Hierarchy) Transform(e Entity) (math.Transform, bool) {
	if s := h.get(e); s != nil {
		return s.transform, true
	}
	return math.Transform{}, false
}

func (h *Hierarchy) SetTransform(e Entity, t math.Transform) {
	if s := h.get(e); s != nil {
		s.transform = t
	}
}

// Material returns the material handle of e, if any.
func (h *Hierarchy) Material(e Entity) (MaterialHandle, bool) {
	s := h.get(e)
	if s == nil || s.material == InvalidMaterial {
		return InvalidMaterial, false
	}
	return s.material, true
}

func (h *Hierarchy) SetMaterial(e Entity, m MaterialHandle) {
	if s := h.get(e); s != nil {
		s.material = m
	}
}

func (h *Hierarchy) Light(e Entity) (*LightDescriptor, bool) {
	s := h.get(e)
	if s == nil || s.light == nil {
		return nil, false
	}
	return s.light, true
}

func (h *Hierarchy) SetLight(e Entity, l LightDescriptor) {
	if s := h.get(e); s != nil {
		s.light = &l
	}
}

func (h *Hierarchy) Camera(e Entity) (*CameraDescriptor, bool) {
	s := h.get(e)
	if s == nil || s.camera == nil {
		return nil, false
	}
	return s.camera, true
}

func (h *Hierarchy) SetCamera(e Entity, c CameraDescriptor) {
	if s := h.get(e); s != nil {
		s.camera = &c
	}
}

func (h *Hierarchy) IsMesh(e Entity) bool {
	s := h.get(e)
	return s != nil && s.mesh
}

func (h *Hierarchy) SetMesh(e Entity, mesh bool) {
	if s := h.get(e); s != nil {
		s.mesh = mesh
	}
}
