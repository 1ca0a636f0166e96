package ecs

import (
	"github.com/argus-labs/titan/pkg/assert"
	"github.com/rotisserie/eris"
)

var (
	// ErrConfiguration is returned when a component kind or archetype schema is used before it was
	// registered, or when a registration or query is malformed. It is always a setup bug.
	ErrConfiguration = eris.New("configuration error")

	// ErrLockConflict is returned when a column is already held in an incompatible mode. Column
	// locks never block and are never retried.
	ErrLockConflict = eris.New("column lock conflict")

	// ErrMalformedDocument is returned when a serialized document is not a valid record array or a
	// record doesn't match its registered schema.
	ErrMalformedDocument = eris.New("malformed document")

	// ErrInvariantViolation is the panic category for engine bugs, e.g. a column whose stored type
	// differs from the one requested. It is never returned.
	ErrInvariantViolation = assert.ErrInvariantViolation

	// ErrComponentNotInArchetype is returned when accessing a column the archetype doesn't have.
	ErrComponentNotInArchetype = eris.New("component not in archetype")

	// ErrRowOutOfRange is returned by direct indexed access past the archetype's row count.
	ErrRowOutOfRange = eris.New("row out of range")

	// ErrEntityNotFound is returned when an entity id is not in the storage.
	ErrEntityNotFound = eris.New("entity does not exist")

	// ErrDuplicateEntity is returned when spawning at an entity id that is already taken.
	ErrDuplicateEntity = eris.New("entity already exists")

	// ErrSchemaMismatch is returned when a stored component schema differs from the registered one.
	ErrSchemaMismatch = eris.New("component schema mismatch")
)
