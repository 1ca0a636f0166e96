package ecs

import (
	"testing"

	. "github.com/argus-labs/titan/pkg/ecs/internal/testutils"
	"github.com/argus-labs/titan/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------------------------------------------------------------------------------
// Model-based fuzzing column operations
// -------------------------------------------------------------------------------------------------
// This test compares the column against a plain slice by applying random sequences of
// push/set/get operations to both and asserting equivalence.
// -------------------------------------------------------------------------------------------------

func TestColumn_ModelFuzz(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	const opsMax = 1 << 14

	impl := newColumn[Health]()
	model := make([]Health, 0)

	for range opsMax {
		op := testutils.RandWeightedOp(prng, columnOps)
		switch op {
		case c_push:
			value := Health{Value: prng.Int()}
			impl.push(value)
			model = append(model, value)

			// Property: length increases by 1 and the new row holds the pushed value.
			assert.Equal(t, len(model), impl.len(), "push length mismatch")
			assert.Equal(t, value, impl.get(impl.len()-1))

		case c_set:
			if len(model) == 0 {
				continue
			}
			row := prng.IntN(len(model))

			value := Health{Value: prng.Int()}
			impl.set(row, value)
			model[row] = value

			// Property: get(k) after set(k) returns same value.
			assert.Equal(t, value, impl.get(row), "set(%d) then get value mismatch", row)

		case c_get:
			if len(model) == 0 {
				continue
			}
			row := prng.IntN(len(model))

			// Property: get(k) and getAbstract(k) return the model's value.
			assert.Equal(t, model[row], impl.get(row), "get(%d) value mismatch", row)
			assert.Equal(t, Component(model[row]), impl.getAbstract(row), "getAbstract(%d) value mismatch", row)

		default:
			panic("unreachable")
		}
	}

	require.Equal(t, len(model), impl.len(), "final length mismatch")
	for i, expected := range model {
		assert.Equal(t, expected, impl.get(i), "element %d mismatch", i)
	}
}

type columnOp uint8

const (
	c_push columnOp = 40
	c_set  columnOp = 35
	c_get  columnOp = 25
)

var columnOps = []columnOp{c_push, c_set, c_get}

func TestColumn_Locks(t *testing.T) {
	t.Parallel()

	col := newColumn[Age]()

	// Readers share, writers exclude.
	require.True(t, col.tryAcquire(accessRead))
	require.True(t, col.tryAcquire(accessRead))
	assert.False(t, col.tryAcquire(accessWrite))
	col.release(accessRead)
	col.release(accessRead)

	require.True(t, col.tryAcquire(accessWrite))
	assert.False(t, col.tryAcquire(accessRead))
	assert.False(t, col.tryAcquire(accessWrite))
	col.release(accessWrite)

	assert.True(t, col.tryAcquire(accessRead))
	col.release(accessRead)
}

func TestColumn_WrongTypePanics(t *testing.T) {
	t.Parallel()

	col := newColumn[Age]()
	assert.Panics(t, func() { col.push(Height(3)) })
	assert.Panics(t, func() { typedColumn[Height](col) })
	assert.Equal(t, ComponentKind("Age"), col.kind())
}
