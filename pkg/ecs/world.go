package ecs

import (
	"context"
	"reflect"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// World bundles a registry with the storage it populates. Like Storage it isn't safe for
// concurrent structural changes; column data is guarded by the column locks.
type World struct {
	registry *Registry
	storage  *Storage
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger of the world. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// WithTracer sets the tracer used for serialization spans. The default is a noop tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(w *World) {
		w.tracer = tracer
	}
}

// WithRegistry makes the world use an existing registry, e.g. one shared with other worlds.
func WithRegistry(r *Registry) Option {
	return func(w *World) {
		w.registry = r
	}
}

// NewWorld creates a world with an empty storage.
func NewWorld(opts ...Option) (*World, error) {
	w := &World{
		registry: nil,
		storage:  NewStorage(),
		logger:   zerolog.Nop(),
		tracer:   noop.NewTracerProvider().Tracer("titan"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		w.registry = NewRegistry()
	}
	if w.tracer == nil {
		return nil, eris.Wrap(ErrConfiguration, "tracer cannot be nil")
	}
	return w, nil
}

func (w *World) currentStorage() *Storage {
	return w.storage
}

// Registry returns the registry of the world.
func (w *World) Registry() *Registry {
	return w.registry
}

// Storage returns the current storage of the world. Deserialize replaces it.
func (w *World) Storage() *Storage {
	return w.storage
}

func (w *World) currentRegistry() *Registry {
	return w.registry
}

// RegisterArchetype registers an archetype schema in the world's registry.
func (w *World) RegisterArchetype(prototypes ...Component) error {
	if err := w.registry.RegisterArchetype(prototypes...); err != nil {
		return err
	}
	w.logger.Debug().Str("archetype", string(NewBundle(prototypes...).Kind())).Msg("archetype registered")
	return nil
}

// Spawn creates an entity from the components and returns its id.
func (w *World) Spawn(components ...Component) (EntityID, error) {
	return w.storage.Spawn(w.registry, components...)
}

// Search runs a search over the world's storage.
func (w *World) Search(params SearchParam) ([]map[string]any, error) {
	return w.storage.Search(params)
}

// Serialize encodes the world's storage as a document.
func (w *World) Serialize(ctx context.Context) ([]byte, error) {
	_, span := w.tracer.Start(ctx, "ecs.serialize")
	defer span.End()

	data, err := Serialize(w.storage, w.registry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "serialize failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("entities", w.storage.Len()),
		attribute.Int("archetypes", len(w.storage.order)),
		attribute.Int("bytes", len(data)),
	)
	w.logger.Debug().Int("entities", w.storage.Len()).Int("bytes", len(data)).Msg("storage serialized")
	return data, nil
}

// Deserialize replaces the world's storage with the one decoded from data. On error the current
// storage is kept.
func (w *World) Deserialize(ctx context.Context, data []byte) error {
	_, span := w.tracer.Start(ctx, "ecs.deserialize")
	defer span.End()

	storage, err := Deserialize(data, w.registry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deserialize failed")
		w.logger.Warn().Err(err).Msg("document rejected, keeping current storage")
		return err
	}

	w.storage = storage
	span.SetAttributes(attribute.Int("entities", storage.Len()))
	w.logger.Info().
		Int("entities", storage.Len()).
		Uint64("next_entity_id", uint64(storage.NextEntityID())).
		Msg("storage replaced")
	return nil
}

// ComponentTypes returns a map of component kinds to their reflect.Type.
func (w *World) ComponentTypes() map[ComponentKind]reflect.Type {
	types := make(map[ComponentKind]reflect.Type, len(w.registry.components))
	for kind, capability := range w.registry.components {
		types[kind] = capability.typ
	}
	return types
}

// LogRegistry logs every registered component and archetype at the given level.
func (w *World) LogRegistry(level zerolog.Level) {
	logRegistry(&w.logger, w.registry, level)
}
