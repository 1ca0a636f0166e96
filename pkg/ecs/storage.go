package ecs

import (
	"math"
	"slices"

	"github.com/argus-labs/titan/pkg/assert"
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// EntityID uniquely identifies an entity within one storage.
type EntityID uint64

// entityLocation is where an entity's row lives.
type entityLocation struct {
	archetype *Archetype
	row       int
}

// Storage owns the archetypes and the entity id counter. Column data may be accessed from many
// goroutines through the column locks, but spawning is a structural change that must not run
// concurrently with any other storage call.
type Storage struct {
	nextID     EntityID                    // Next id handed out by Spawn
	archetypes map[BundleKind]*Archetype   // Bundle kind -> archetype
	order      []*Archetype                // Archetypes in creation order
	catalog    map[ComponentKind]uint32    // Component kind -> storage-local bit
	entities   map[EntityID]entityLocation // Entity -> row
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{
		nextID:     0,
		archetypes: make(map[BundleKind]*Archetype),
		order:      make([]*Archetype, 0),
		catalog:    make(map[ComponentKind]uint32),
		entities:   make(map[EntityID]entityLocation),
	}
}

func (s *Storage) currentStorage() *Storage {
	return s
}

// Spawn creates an entity with the next auto-assigned id and returns the id.
func (s *Storage) Spawn(r *Registry, components ...Component) (EntityID, error) {
	eid := s.nextID
	if err := s.SpawnWithEntityID(r, eid, NewBundle(components...)); err != nil {
		return 0, err
	}
	return eid, nil
}

// SpawnWithEntityID creates an entity with an explicit id. The bundle is fully validated and every
// column of the target archetype is write-locked before the first value is written, so either the
// whole row is appended or nothing changes. Afterwards the id counter is past eid, so later
// auto-assigned ids never collide with it.
func (s *Storage) SpawnWithEntityID(r *Registry, eid EntityID, bundle Bundle) error {
	resolved, err := bundle.resolve(r)
	if err != nil {
		return eris.Wrapf(err, "failed to spawn entity %d", eid)
	}

	if _, exists := s.entities[eid]; exists {
		return eris.Wrapf(ErrDuplicateEntity, "entity %d", eid)
	}
	if eid == math.MaxUint64 {
		return eris.Wrapf(ErrConfiguration, "entity id %d is reserved", eid)
	}

	arch, err := s.findOrCreateArchetype(resolved)
	if err != nil {
		return err
	}

	if err := arch.acquireAll(accessWrite); err != nil {
		return eris.Wrapf(err, "failed to spawn entity %d", eid)
	}
	row := resolved.pushInto(arch, eid)
	arch.releaseAll(accessWrite)

	s.entities[eid] = entityLocation{archetype: arch, row: row}
	s.nextID = max(s.nextID, eid+1)
	return nil
}

// findOrCreateArchetype returns the archetype of the bundle, creating it on first use.
func (s *Storage) findOrCreateArchetype(resolved resolvedBundle) (*Archetype, error) {
	if arch, ok := s.archetypes[resolved.kind]; ok {
		if !slices.Equal(arch.kinds, resolved.kinds) {
			return nil, eris.Wrapf(ErrConfiguration, "bundle kind %s of %v already names archetype %v",
				resolved.kind, resolved.kinds, arch.kinds)
		}
		return arch, nil
	}

	components := bitmap.Bitmap{}
	for _, kind := range resolved.kinds {
		components.Set(s.componentBit(kind))
	}

	arch := newArchetype(resolved.kind, resolved.kinds, components, resolved.factories)
	s.archetypes[resolved.kind] = arch
	s.order = append(s.order, arch)
	assert.That(len(s.order) == len(s.archetypes), "archetype list doesn't match archetype map")
	return arch, nil
}

// componentBit returns the bit of kind, assigning the next free bit on first use.
func (s *Storage) componentBit(kind ComponentKind) uint32 {
	if bit, ok := s.catalog[kind]; ok {
		return bit
	}
	bit := uint32(len(s.catalog)) //nolint:gosec // component count is small
	s.catalog[kind] = bit
	return bit
}

// componentSet builds the bitmap of the given kinds. ok is false when a kind has never been stored,
// in which case no archetype can contain the set.
func (s *Storage) componentSet(kinds []ComponentKind) (bitmap.Bitmap, bool) {
	set := bitmap.Bitmap{}
	for _, kind := range kinds {
		bit, exists := s.catalog[kind]
		if !exists {
			return set, false
		}
		set.Set(bit)
	}
	return set, true
}

// archContains returns every archetype containing all the given kinds, in creation order.
func (s *Storage) archContains(kinds []ComponentKind) []*Archetype {
	set, ok := s.componentSet(kinds)
	if !ok {
		return nil
	}
	var archs []*Archetype
	for _, arch := range s.order {
		if arch.contains(set) {
			archs = append(archs, arch)
		}
	}
	return archs
}

// archExact returns the archetype made of exactly the given kinds, or nil.
func (s *Storage) archExact(kinds []ComponentKind) *Archetype {
	set, ok := s.componentSet(kinds)
	if !ok {
		return nil
	}
	for _, arch := range s.order {
		if arch.exact(set) {
			return arch
		}
	}
	return nil
}

// Archetype returns the archetype of a bundle kind.
func (s *Storage) Archetype(kind BundleKind) (*Archetype, bool) {
	arch, ok := s.archetypes[kind]
	return arch, ok
}

// Archetypes returns every archetype in creation order.
func (s *Storage) Archetypes() []*Archetype {
	return slices.Clone(s.order)
}

// Locate returns the archetype and row of an entity.
func (s *Storage) Locate(eid EntityID) (*Archetype, int, bool) {
	loc, ok := s.entities[eid]
	if !ok {
		return nil, 0, false
	}
	return loc.archetype, loc.row, true
}

// Len returns the number of entities in the storage.
func (s *Storage) Len() int {
	return len(s.entities)
}

// NextEntityID returns the id the next Spawn will assign.
func (s *Storage) NextEntityID() EntityID {
	return s.nextID
}
