package ecs_test

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/argus-labs/titan/pkg/ecs"
	. "github.com/argus-labs/titan/pkg/ecs/internal/testutils"
	"github.com/argus-labs/titan/pkg/telemetry"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorld_Options(t *testing.T) {
	t.Parallel()

	_, err := ecs.NewWorld(ecs.WithTracer(nil))
	assert.True(t, eris.Is(err, ecs.ErrConfiguration), "got %v", err)

	shared := ecs.NewRegistry()
	require.NoError(t, ecs.RegisterComponent[Age](shared))

	a, err := ecs.NewWorld(ecs.WithRegistry(shared))
	require.NoError(t, err)
	b, err := ecs.NewWorld(ecs.WithRegistry(shared))
	require.NoError(t, err)
	assert.Same(t, a.Registry(), b.Registry())

	// Worlds sharing a registry still have their own storage.
	_, err = a.Spawn(Age(1))
	require.NoError(t, err)
	assert.Equal(t, 1, a.Storage().Len())
	assert.Equal(t, 0, b.Storage().Len())

	assert.Equal(t, map[ecs.ComponentKind]reflect.Type{"Age": reflect.TypeOf(Age(0))}, a.ComponentTypes())
}

func TestWorld_Logging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	w, err := ecs.NewWorld(ecs.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, ecs.RegisterComponent[Age](w))
	require.NoError(t, ecs.RegisterComponent[Name](w))
	require.NoError(t, w.RegisterArchetype(Name(""), Age(0)))

	w.LogRegistry(zerolog.InfoLevel)
	out := buf.String()
	assert.Contains(t, out, `"archetype":"AgeName"`)
	assert.Contains(t, out, `"total_components":2`)
	assert.Contains(t, out, `"component_kind":"Age"`)
	assert.Contains(t, out, `"components":["Name","Age"]`)
	assert.Contains(t, out, `"fingerprint":`)

	buf.Reset()
	_, err = w.Spawn(Age(1), Name("a"))
	require.NoError(t, err)
	data, err := w.Serialize(context.Background())
	require.NoError(t, err)
	require.NoError(t, w.Deserialize(context.Background(), data))
	assert.Contains(t, buf.String(), `"message":"storage replaced"`)
	assert.Contains(t, buf.String(), `"next_entity_id":1`)
}

func TestWorld_WithTelemetry(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tel, err := telemetry.NewWithWriter(telemetry.Options{
		ServiceName: "titan",
		LogLevel:    "debug",
		LogFormat:   telemetry.LogFormatJSON,
	}, &buf)
	require.NoError(t, err)

	w, err := ecs.NewWorld(ecs.WithLogger(tel.GetLogger("ecs")), ecs.WithTracer(tel.Tracer))
	require.NoError(t, err)
	require.NoError(t, ecs.RegisterComponent[Height](w))
	require.NoError(t, w.RegisterArchetype(Height(0)))
	_, err = w.Spawn(Height(200))
	require.NoError(t, err)

	data, err := w.Serialize(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"bundle_kind":"Height","entity_id":0,"Height":200}]`, string(data))
	assert.Contains(t, buf.String(), `"component":"titan.ecs"`)
}
