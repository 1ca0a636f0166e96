package ecs

import (
	"iter"

	"github.com/argus-labs/titan/pkg/assert"
	"github.com/rotisserie/eris"
)

// ReadView is a read-locked view of one column of an archetype. Other readers may hold the same
// column, writers can't until Release.
type ReadView[T Component] struct {
	col      *column[T]
	released bool
}

// WriteView is a write-locked view of one column of an archetype. No other view or query can hold
// the column until Release.
type WriteView[T Component] struct {
	col      *column[T]
	released bool
}

// AcquireRead read-locks the column of T without blocking.
func AcquireRead[T Component](a *Archetype) (*ReadView[T], error) {
	col, err := acquireColumn[T](a, accessRead)
	if err != nil {
		return nil, err
	}
	return &ReadView[T]{col: col}, nil
}

// AcquireWrite write-locks the column of T without blocking.
func AcquireWrite[T Component](a *Archetype) (*WriteView[T], error) {
	col, err := acquireColumn[T](a, accessWrite)
	if err != nil {
		return nil, err
	}
	return &WriteView[T]{col: col}, nil
}

func acquireColumn[T Component](a *Archetype, mode accessMode) (*column[T], error) {
	kind := KindOf[T]()
	abstract, err := a.column(kind)
	if err != nil {
		return nil, err
	}
	if !abstract.tryAcquire(mode) {
		return nil, eris.Wrapf(ErrLockConflict, "%s access to column %s of archetype %s", mode, kind, a.kind)
	}
	return typedColumn[T](abstract), nil
}

// Len returns the number of rows in the column.
func (v *ReadView[T]) Len() int {
	assert.That(!v.released, "read view of %s used after release", v.col.compKind)
	return v.col.len()
}

// At returns the component at row.
func (v *ReadView[T]) At(row int) T {
	assert.That(!v.released, "read view of %s used after release", v.col.compKind)
	return v.col.get(row)
}

// All iterates the column in row order.
func (v *ReadView[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for row := range v.Len() {
			if !yield(row, v.At(row)) {
				return
			}
		}
	}
}

// Release unlocks the column. Calling it again is a no-op.
func (v *ReadView[T]) Release() {
	if v.released {
		return
	}
	v.released = true
	v.col.release(accessRead)
}

// Len returns the number of rows in the column.
func (v *WriteView[T]) Len() int {
	assert.That(!v.released, "write view of %s used after release", v.col.compKind)
	return v.col.len()
}

// At returns the component at row.
func (v *WriteView[T]) At(row int) T {
	assert.That(!v.released, "write view of %s used after release", v.col.compKind)
	return v.col.get(row)
}

// Ptr returns a pointer to the component at row. It must not be used after Release.
func (v *WriteView[T]) Ptr(row int) *T {
	assert.That(!v.released, "write view of %s used after release", v.col.compKind)
	assert.That(row < v.col.len(), "component doesn't exist")
	return &v.col.components[row]
}

// Set replaces the component at row.
func (v *WriteView[T]) Set(row int, component T) {
	assert.That(!v.released, "write view of %s used after release", v.col.compKind)
	v.col.set(row, component)
}

// All iterates the column in row order, yielding pointers that can be written through.
func (v *WriteView[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for row := range v.Len() {
			if !yield(row, v.Ptr(row)) {
				return
			}
		}
	}
}

// Release unlocks the column. Calling it again is a no-op.
func (v *WriteView[T]) Release() {
	if v.released {
		return
	}
	v.released = true
	v.col.release(accessWrite)
}

// Get reads a single component without holding a view. The column is locked only for the read, so
// a column held in write mode elsewhere yields ErrLockConflict.
func Get[T Component](a *Archetype, row int) (T, error) {
	var zero T
	if row < 0 || row >= a.RowCount() {
		return zero, eris.Wrapf(ErrRowOutOfRange, "row %d of archetype %s with %d rows", row, a.kind, a.RowCount())
	}
	view, err := AcquireRead[T](a)
	if err != nil {
		return zero, err
	}
	defer view.Release()
	return view.At(row), nil
}

// Set writes a single component without holding a view. The column is locked only for the write,
// so a column held elsewhere yields ErrLockConflict.
func Set[T Component](a *Archetype, row int, component T) error {
	if row < 0 || row >= a.RowCount() {
		return eris.Wrapf(ErrRowOutOfRange, "row %d of archetype %s with %d rows", row, a.kind, a.RowCount())
	}
	view, err := AcquireWrite[T](a)
	if err != nil {
		return err
	}
	defer view.Release()
	view.Set(row, component)
	return nil
}

// GetEntity reads one component of an entity.
func GetEntity[T Component](s *Storage, eid EntityID) (T, error) {
	var zero T
	arch, row, ok := s.Locate(eid)
	if !ok {
		return zero, eris.Wrapf(ErrEntityNotFound, "entity %d", eid)
	}
	return Get[T](arch, row)
}

// SetEntity writes one component of an entity. The entity must already have the component.
func SetEntity[T Component](s *Storage, eid EntityID, component T) error {
	arch, row, ok := s.Locate(eid)
	if !ok {
		return eris.Wrapf(ErrEntityNotFound, "entity %d", eid)
	}
	return Set(arch, row, component)
}
