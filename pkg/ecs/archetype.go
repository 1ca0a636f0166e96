package ecs

import (
	"slices"

	"github.com/argus-labs/titan/pkg/assert"
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// Archetype is the table of every entity sharing one exact set of component kinds. Row i of the
// entity list and row i of every column belong to the same entity. Rows are only ever appended, so
// a row index stays valid for the archetype's lifetime.
type Archetype struct {
	kind       BundleKind
	kinds      []ComponentKind                  // Sorted in bundle kind order
	components bitmap.Bitmap                    // Storage-local component bits, used for matching
	entities   []EntityID                       // Entity of each row
	columns    map[ComponentKind]abstractColumn // One column per kind
}

// newArchetype creates an empty archetype with one column per factory. kinds must already be
// sorted and each factory must build the column of the kind at the same index.
func newArchetype(kind BundleKind, kinds []ComponentKind, components bitmap.Bitmap, factories []columnFactory) *Archetype {
	assert.That(len(kinds) == len(factories), "mismatched number of kinds and column factories")
	assert.That(components.Count() == len(kinds), "mismatched number of component bits and kinds")

	columns := make(map[ComponentKind]abstractColumn, len(kinds))
	for i, factory := range factories {
		col := factory()
		assert.That(col.kind() == kinds[i], "column factory for %s built column %s", kinds[i], col.kind())
		columns[kinds[i]] = col
	}

	return &Archetype{
		kind:       kind,
		kinds:      kinds,
		components: components,
		entities:   make([]EntityID, 0),
		columns:    columns,
	}
}

// Kind returns the bundle kind of the archetype.
func (a *Archetype) Kind() BundleKind {
	return a.kind
}

// Components returns the component kinds of the archetype in bundle kind order.
func (a *Archetype) Components() []ComponentKind {
	return slices.Clone(a.kinds)
}

// HasComponent reports whether the archetype's schema includes kind. It doesn't look at locks.
func (a *Archetype) HasComponent(kind ComponentKind) bool {
	_, ok := a.columns[kind]
	return ok
}

// Has reports whether the archetype's schema includes T.
func Has[T Component](a *Archetype) bool {
	return a.HasComponent(KindOf[T]())
}

// RowCount returns the number of entities in the archetype.
func (a *Archetype) RowCount() int {
	return len(a.entities)
}

// EntityID returns the entity stored at row.
func (a *Archetype) EntityID(row int) (EntityID, error) {
	if row < 0 || row >= len(a.entities) {
		return 0, eris.Wrapf(ErrRowOutOfRange, "row %d of archetype %s with %d rows", row, a.kind, len(a.entities))
	}
	return a.entities[row], nil
}

// EntityIDs returns a copy of the entity list in row order.
func (a *Archetype) EntityIDs() []EntityID {
	return slices.Clone(a.entities)
}

// contains returns true if the archetype contains all of the components in the given components.
func (a *Archetype) contains(components bitmap.Bitmap) bool {
	intersect := components.Clone(nil)
	intersect.And(a.components)
	return intersect.Count() == components.Count()
}

// exact returns true if the given components matches the archetype's exactly.
func (a *Archetype) exact(components bitmap.Bitmap) bool {
	if len(a.kinds) != components.Count() {
		return false
	}
	return a.contains(components)
}

// column returns the column of kind or ErrComponentNotInArchetype.
func (a *Archetype) column(kind ComponentKind) (abstractColumn, error) {
	col, ok := a.columns[kind]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotInArchetype, "component %s, archetype %s", kind, a.kind)
	}
	return col, nil
}

// acquireAll try-locks every column in mode. Either all columns are held on return or none are.
func (a *Archetype) acquireAll(mode accessMode) error {
	for i, kind := range a.kinds {
		if a.columns[kind].tryAcquire(mode) {
			continue
		}
		for _, held := range a.kinds[:i] {
			a.columns[held].release(mode)
		}
		return eris.Wrapf(ErrLockConflict, "%s access to column %s of archetype %s", mode, kind, a.kind)
	}
	return nil
}

// releaseAll releases every column held through acquireAll.
func (a *Archetype) releaseAll(mode accessMode) {
	for _, kind := range a.kinds {
		a.columns[kind].release(mode)
	}
}

// pushRow appends one entity and its components, which must be keyed by every kind of the
// archetype. The caller holds all columns in write mode.
func (a *Archetype) pushRow(eid EntityID, components map[ComponentKind]Component) int {
	assert.That(len(components) == len(a.kinds), "row has %d components, archetype %s has %d",
		len(components), a.kind, len(a.kinds))

	a.entities = append(a.entities, eid)
	for _, kind := range a.kinds {
		col := a.columns[kind]
		col.push(components[kind])
		assert.That(col.len() == len(a.entities), "column components length doesn't match entities")
	}
	return len(a.entities) - 1
}
