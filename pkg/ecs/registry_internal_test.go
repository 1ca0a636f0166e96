package ecs

import (
	"testing"

	. "github.com/argus-labs/titan/pkg/ecs/internal/testutils"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterComponent(t *testing.T) {
	t.Parallel()

	t.Run("registers kind and type", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()

		require.NoError(t, RegisterComponent[Age](r))
		require.NoError(t, RegisterComponent[Health](r))

		capability, err := r.componentCapability("Age")
		require.NoError(t, err)
		assert.Equal(t, ComponentKind("Age"), capability.kind)
		assert.Equal(t, []ComponentKind{"Age", "Health"}, r.Components())
	})

	t.Run("same type twice is a no-op", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()

		require.NoError(t, RegisterComponent[Age](r))
		before := r.components["Age"]
		require.NoError(t, RegisterComponent[Age](r))
		assert.Same(t, before, r.components["Age"])
	})

	tests := []struct {
		name     string
		register func(r RegistrySource) error
	}{
		{name: "kind taken by another type", register: func(r RegistrySource) error {
			if err := RegisterComponent[Age](r); err != nil {
				return err
			}
			return RegisterComponent[Shadow](r)
		}},
		{name: "reserved name", register: RegisterComponent[Reserved]},
		{name: "empty name", register: RegisterComponent[Unnamed]},
		{name: "pointer type", register: RegisterComponent[*Health]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.register(NewRegistry())
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrConfiguration), "got %v", err)
		})
	}
}

func TestRegisterComponent_Capabilities(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	require.NoError(t, RegisterComponent[Position](r))
	capability := r.components["Position"]

	raw, err := capability.serialize(Position{X: 1, Y: -2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"X":1,"Y":-2}`, string(raw))

	c, err := capability.deserialize(raw)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1, Y: -2}, c)

	// Unknown fields are rejected.
	_, err = capability.deserialize([]byte(`{"X":1,"Y":2,"Z":3}`))
	require.Error(t, err)

	// Columns built by the factory store the registered type.
	col := capability.newColumn()
	assert.Equal(t, ComponentKind("Position"), col.kind())
	assert.NotPanics(t, func() { typedColumn[Position](col) })
}

func TestRegisterArchetype(t *testing.T) {
	t.Parallel()

	newRegistry := func(t *testing.T) *Registry {
		t.Helper()
		r := NewRegistry()
		require.NoError(t, RegisterComponent[Age](r))
		require.NoError(t, RegisterComponent[Name](r))
		require.NoError(t, RegisterComponent[Height](r))
		return r
	}

	t.Run("keeps declaration order", func(t *testing.T) {
		t.Parallel()
		r := newRegistry(t)

		require.NoError(t, r.RegisterArchetype(Height(0), Age(0)))

		capability, err := r.bundleCapability("AgeHeight")
		require.NoError(t, err)
		assert.Equal(t, []ComponentKind{"Height", "Age"}, capability.kinds)
		assert.Equal(t, []BundleKind{"AgeHeight"}, r.Archetypes())
	})

	t.Run("same set in another order is a no-op", func(t *testing.T) {
		t.Parallel()
		r := newRegistry(t)

		require.NoError(t, r.RegisterArchetype(Age(0), Name("")))
		require.NoError(t, r.RegisterArchetype(Name(""), Age(0)))

		kinds, err := r.ArchetypeComponents("AgeName")
		require.NoError(t, err)
		assert.Equal(t, []ComponentKind{"Age", "Name"}, kinds)
	})

	tests := []struct {
		name       string
		prototypes []Component
	}{
		{name: "empty", prototypes: nil},
		{name: "unregistered component", prototypes: []Component{Age(0), Weight(0)}},
		{name: "duplicate component", prototypes: []Component{Age(0), Age(1)}},
		{name: "nil component", prototypes: []Component{Age(0), nil}},
		{name: "kind registered with another type", prototypes: []Component{Shadow{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newRegistry(t)

			err := r.RegisterArchetype(tt.prototypes...)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrConfiguration), "got %v", err)
			assert.Empty(t, r.Archetypes())
		})
	}
}

func TestRegistry_LookupsFailWithConfigurationError(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	_, err := r.componentCapability("Age")
	assert.True(t, eris.Is(err, ErrConfiguration))

	_, err = r.bundleCapability("AgeName")
	assert.True(t, eris.Is(err, ErrConfiguration))

	_, err = r.ComponentSchema("Age")
	assert.True(t, eris.Is(err, ErrConfiguration))
}

func TestRegistry_ComponentSchema(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, RegisterComponent[Health](r))

	schema, err := r.ComponentSchema("Health")
	require.NoError(t, err)
	assert.Contains(t, string(schema), `"value"`)

	// The stored schema of the same type validates.
	require.NoError(t, r.ValidateComponentSchema("Health", schema))

	// A schema produced by another type with the same kind doesn't.
	other := NewRegistry()
	require.NoError(t, RegisterComponent[MapComponent](other))
	otherSchema, err := other.ComponentSchema("MapComponent")
	require.NoError(t, err)

	err = r.ValidateComponentSchema("Health", otherSchema)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSchemaMismatch), "got %v", err)
}

func TestRegistry_Fingerprint(t *testing.T) {
	t.Parallel()

	build := func(t *testing.T, order ...Component) *Registry {
		t.Helper()
		r := NewRegistry()
		require.NoError(t, RegisterComponent[Age](r))
		require.NoError(t, RegisterComponent[Name](r))
		require.NoError(t, r.RegisterArchetype(order...))
		return r
	}

	a := build(t, Age(0), Name(""))
	b := build(t, Age(0), Name(""))
	c := build(t, Name(""), Age(0))

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	// Declaration order changes the record layout, so it changes the fingerprint.
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), NewRegistry().Fingerprint())
}
