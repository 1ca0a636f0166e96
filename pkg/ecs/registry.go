package ecs

import (
	"reflect"
	"slices"
	"strconv"

	"github.com/argus-labs/titan/pkg/assert"
	"github.com/argus-labs/titan/pkg/codec"
	"github.com/cespare/xxhash/v2"
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// Registry holds the capabilities of every registered component type and archetype schema. It is
// written during setup and only read afterwards, so one registry can be shared by many storages.
// Registration isn't safe to run concurrently with other use.
type Registry struct {
	components map[ComponentKind]*componentCapability
	bundles    map[BundleKind]*bundleCapability
}

// componentCapability is what the registry knows about one component type.
type componentCapability struct {
	kind        ComponentKind
	typ         reflect.Type
	schema      []byte
	newColumn   columnFactory
	serialize   func(Component) (codec.RawMessage, error)
	deserialize func(codec.RawMessage) (Component, error)
}

// bundleCapability is what the registry knows about one archetype schema.
type bundleCapability struct {
	kind           BundleKind
	kinds          []ComponentKind // Declaration order, which is the field order of records
	serializeRow   func(a *Archetype, row int) (record, error)
	deserializeRow func(rec rawRecord, s *Storage) error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[ComponentKind]*componentCapability),
		bundles:    make(map[BundleKind]*bundleCapability),
	}
}

// RegistrySource is anything components can be registered into, i.e. a *Registry or a *World.
type RegistrySource interface {
	currentRegistry() *Registry
}

func (r *Registry) currentRegistry() *Registry {
	return r
}

// checkComponentType rejects types that can't be stored by value in a column.
func checkComponentType(typ reflect.Type) error {
	if typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Interface {
		return eris.Wrapf(ErrConfiguration, "component type %s must not be a pointer or interface", typ)
	}
	return nil
}

// RegisterComponent registers T under the kind returned by its Name method. Registering the same
// type again is a no-op. T must be a non-pointer type whose values encode to JSON.
func RegisterComponent[T Component](src RegistrySource) error {
	r := src.currentRegistry()
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if err := checkComponentType(typ); err != nil {
		return err
	}

	kind := KindOf[T]()
	switch kind {
	case "":
		return eris.Wrapf(ErrConfiguration, "component %s has an empty name", typ)
	case fieldBundleKind, fieldEntityID:
		return eris.Wrapf(ErrConfiguration, "component name %q is reserved for record fields", kind)
	}

	if existing, ok := r.components[kind]; ok {
		if existing.typ == typ {
			return nil
		}
		return eris.Wrapf(ErrConfiguration, "component %s is already registered as %s", kind, existing.typ)
	}

	schema, err := jsonschema.ReflectFromType(typ).MarshalJSON()
	if err != nil {
		return eris.Wrapf(ErrConfiguration, "component %s must be json serializable: %v", kind, err)
	}

	r.components[kind] = &componentCapability{
		kind:      kind,
		typ:       typ,
		schema:    schema,
		newColumn: newColumnFactory[T](),
		serialize: func(c Component) (codec.RawMessage, error) {
			concrete, ok := c.(T)
			assert.That(ok, "component %s serialized with the wrong type %T", kind, c)
			return codec.Encode(concrete)
		},
		deserialize: func(raw codec.RawMessage) (Component, error) {
			return codec.DecodeStrict[T](raw)
		},
	}
	return nil
}

// RegisterArchetype registers the schema made of the prototypes' component types. The prototypes
// only name their types, e.g. RegisterArchetype(Age(0), Name("")). Every type must be registered as
// a component first. The declaration order becomes the field order of serialized records.
func (r *Registry) RegisterArchetype(prototypes ...Component) error {
	if len(prototypes) == 0 {
		return eris.Wrap(ErrConfiguration, "archetype must have at least one component")
	}

	kinds := make([]ComponentKind, len(prototypes))
	for i, p := range prototypes {
		if p == nil {
			return eris.Wrapf(ErrConfiguration, "archetype component %d is nil", i)
		}
		kind := ComponentKind(p.Name())
		capability, err := r.componentCapability(kind)
		if err != nil {
			return eris.Wrap(err, "failed to register archetype")
		}
		if got := reflect.TypeOf(p); got != capability.typ {
			return eris.Wrapf(ErrConfiguration, "component %s is registered as %s, got %s", kind, capability.typ, got)
		}
		if slices.Contains(kinds[:i], kind) {
			return eris.Wrapf(ErrConfiguration, "component %s appears twice in archetype", kind)
		}
		kinds[i] = kind
	}

	bundleKind := BundleKindOf(kinds...)
	if existing, ok := r.bundles[bundleKind]; ok {
		if slices.Equal(sortKinds(existing.kinds), sortKinds(kinds)) {
			return nil
		}
		return eris.Wrapf(ErrConfiguration, "bundle kind %s already names archetype %v", bundleKind, existing.kinds)
	}

	capability := &bundleCapability{kind: bundleKind, kinds: kinds}
	capability.serializeRow = func(a *Archetype, row int) (record, error) {
		return r.serializeRow(capability, a, row)
	}
	capability.deserializeRow = func(rec rawRecord, s *Storage) error {
		return r.deserializeRow(capability, rec, s)
	}
	r.bundles[bundleKind] = capability
	return nil
}

// componentCapability looks up a component kind.
func (r *Registry) componentCapability(kind ComponentKind) (*componentCapability, error) {
	capability, ok := r.components[kind]
	if !ok {
		return nil, eris.Wrapf(ErrConfiguration, "component %s is not registered", kind)
	}
	return capability, nil
}

// bundleCapability looks up an archetype schema.
func (r *Registry) bundleCapability(kind BundleKind) (*bundleCapability, error) {
	capability, ok := r.bundles[kind]
	if !ok {
		return nil, eris.Wrapf(ErrConfiguration, "archetype %s is not registered", kind)
	}
	return capability, nil
}

// Components returns the registered component kinds, sorted.
func (r *Registry) Components() []ComponentKind {
	kinds := make([]ComponentKind, 0, len(r.components))
	for kind := range r.components {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Archetypes returns the registered bundle kinds, sorted.
func (r *Registry) Archetypes() []BundleKind {
	kinds := make([]BundleKind, 0, len(r.bundles))
	for kind := range r.bundles {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// ArchetypeComponents returns the component kinds of a registered schema in declaration order.
func (r *Registry) ArchetypeComponents(kind BundleKind) ([]ComponentKind, error) {
	capability, err := r.bundleCapability(kind)
	if err != nil {
		return nil, err
	}
	return slices.Clone(capability.kinds), nil
}

// ComponentSchema returns the JSON schema generated for a registered component.
func (r *Registry) ComponentSchema(kind ComponentKind) ([]byte, error) {
	capability, err := r.componentCapability(kind)
	if err != nil {
		return nil, err
	}
	return slices.Clone(capability.schema), nil
}

// ValidateComponentSchema compares a previously stored schema of kind against the registered one.
// A difference is reported as ErrSchemaMismatch carrying the JSON patch between the two.
func (r *Registry) ValidateComponentSchema(kind ComponentKind, stored []byte) error {
	capability, err := r.componentCapability(kind)
	if err != nil {
		return err
	}

	diff, err := jsondiff.CompareJSON(capability.schema, stored)
	if err != nil {
		return eris.Wrap(err, "failed to compare component schema")
	}

	if diff.String() != "" {
		return eris.Wrapf(ErrSchemaMismatch, "component %s: %s", kind, diff.String())
	}

	return nil
}

// Fingerprint hashes every registered component kind with its schema and every archetype schema
// with its declaration order. Registries that can read each other's documents have equal
// fingerprints.
func (r *Registry) Fingerprint() uint64 {
	h := xxhash.New()
	for _, kind := range r.Components() {
		_, _ = h.WriteString("c:" + string(kind) + "\x00")
		_, _ = h.Write(r.components[kind].schema)
		_, _ = h.WriteString("\x00")
	}
	for _, kind := range r.Archetypes() {
		_, _ = h.WriteString("a:" + string(kind) + "\x00")
		for i, component := range r.bundles[kind].kinds {
			_, _ = h.WriteString(strconv.Itoa(i) + "=" + string(component) + "\x00")
		}
	}
	return h.Sum64()
}
