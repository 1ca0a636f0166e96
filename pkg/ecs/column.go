package ecs

import (
	"sync"

	"github.com/argus-labs/titan/pkg/assert"
)

// columnFactory is a function that creates a new abstractColumn instance.
type columnFactory func() abstractColumn

// abstractColumn is an internal interface for generic column operations. Each column is guarded
// by its own lock, which is only ever taken with a non-blocking try.
type abstractColumn interface {
	len() int
	kind() ComponentKind

	push(component Component)
	getAbstract(row int) Component

	tryAcquire(mode accessMode) bool
	release(mode accessMode)
}

var _ abstractColumn = &column[Component]{}

// accessMode is the mode a column is held in.
type accessMode uint8

const (
	accessRead accessMode = iota
	accessWrite
)

func (m accessMode) String() string {
	if m == accessWrite {
		return "write"
	}
	return "read"
}

// column stores the component data of entities in an archetype. The length of the components slice
// must match the length of the entities slice in the archetype.
type column[T Component] struct {
	compKind   ComponentKind // The kind of the component stored in this column
	mu         sync.RWMutex  // Held through tryAcquire/release only
	components []T           // Array containing the component data
}

// newColumn creates a new column with the specified type.
func newColumn[T Component]() *column[T] {
	const initialCapacity = 16
	return &column[T]{
		compKind:   KindOf[T](),
		components: make([]T, 0, initialCapacity),
	}
}

// newColumnFactory returns a function that constructs a new column of type T.
func newColumnFactory[T Component]() columnFactory {
	return func() abstractColumn {
		return newColumn[T]()
	}
}

// typedColumn narrows an abstract column to its concrete type. Every type-unsafe cast on column
// data goes through here; a mismatch means storage and registry disagree about a kind.
func typedColumn[T Component](col abstractColumn) *column[T] {
	typed, ok := col.(*column[T])
	assert.That(ok, "column %s does not store %s", col.kind(), KindOf[T]())
	return typed
}

// len returns the length of the components slice.
func (c *column[T]) len() int {
	return len(c.components)
}

// kind returns the kind of the component type.
func (c *column[T]) kind() ComponentKind {
	return c.compKind
}

// push appends a component. Callers hold the column in write mode.
func (c *column[T]) push(component Component) {
	concrete, ok := component.(T)
	assert.That(ok, "tried to push the wrong component type into column %s", c.compKind)
	c.components = append(c.components, concrete)
}

// get gets the value from a given row. Expects the caller to make sure the row is inside the
// column. Prefer this over getAbstract since it avoids boxing the component data.
func (c *column[T]) get(row int) T {
	assert.That(row < len(c.components), "component doesn't exist")
	return c.components[row]
}

// getAbstract gets the value from a given row boxed as a Component. Use this method only when you
// don't know the concrete type of the component.
func (c *column[T]) getAbstract(row int) Component {
	return c.get(row)
}

// set sets the component in a given row.
func (c *column[T]) set(row int, component T) {
	assert.That(row < len(c.components), "component doesn't exist")
	c.components[row] = component
}

// tryAcquire takes the column lock in the given mode without blocking.
func (c *column[T]) tryAcquire(mode accessMode) bool {
	if mode == accessWrite {
		return c.mu.TryLock()
	}
	return c.mu.TryRLock()
}

// release drops a lock taken with tryAcquire in the same mode.
func (c *column[T]) release(mode accessMode) {
	if mode == accessWrite {
		c.mu.Unlock()
		return
	}
	c.mu.RUnlock()
}
