package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Bundle is an ordered list of distinct component values spawned together as one entity.
type Bundle []Component

// NewBundle creates a bundle from the given components.
func NewBundle(components ...Component) Bundle {
	return Bundle(components)
}

// Kinds returns the component kinds of the bundle in declaration order.
func (b Bundle) Kinds() []ComponentKind {
	kinds := make([]ComponentKind, len(b))
	for i, c := range b {
		if c == nil {
			continue
		}
		kinds[i] = ComponentKind(c.Name())
	}
	return kinds
}

// Kind returns the bundle kind, which doesn't depend on declaration order.
func (b Bundle) Kind() BundleKind {
	return BundleKindOf(b.Kinds()...)
}

// resolvedBundle is a bundle checked against a registry and decomposed into the parts an
// archetype push needs.
type resolvedBundle struct {
	kind       BundleKind
	kinds      []ComponentKind // Sorted in bundle kind order
	factories  []columnFactory // Column factory of kinds[i]
	components map[ComponentKind]Component
}

// resolve validates every component of the bundle against the registry. Nothing is written, so a
// failing bundle leaves storage untouched.
func (b Bundle) resolve(r *Registry) (resolvedBundle, error) {
	if len(b) == 0 {
		return resolvedBundle{}, eris.Wrap(ErrConfiguration, "bundle cannot be empty")
	}

	components := make(map[ComponentKind]Component, len(b))
	for i, c := range b {
		if c == nil {
			return resolvedBundle{}, eris.Wrapf(ErrConfiguration, "bundle component %d is nil", i)
		}

		kind := ComponentKind(c.Name())
		capability, err := r.componentCapability(kind)
		if err != nil {
			return resolvedBundle{}, err
		}
		if got := reflect.TypeOf(c); got != capability.typ {
			return resolvedBundle{}, eris.Wrapf(ErrConfiguration,
				"component %s is registered as %s, got %s", kind, capability.typ, got)
		}
		if _, dup := components[kind]; dup {
			return resolvedBundle{}, eris.Wrapf(ErrConfiguration, "component %s appears twice in bundle", kind)
		}
		components[kind] = c
	}

	kinds := sortKinds(b.Kinds())
	factories := make([]columnFactory, len(kinds))
	for i, kind := range kinds {
		factories[i] = r.components[kind].newColumn
	}

	return resolvedBundle{
		kind:       BundleKindOf(kinds...),
		kinds:      kinds,
		factories:  factories,
		components: components,
	}, nil
}

// pushInto pushes the entity id once, then each component into its kind's column. It returns
// the new row.
func (rb resolvedBundle) pushInto(arch *Archetype, eid EntityID) int {
	return arch.pushRow(eid, rb.components)
}
