package ecs

import (
	"slices"
	"strings"
)

// Component is the interface that all components must implement.
// Components are pure data containers that can be attached to entities.
type Component interface { //nolint:iface // We may add more methods in the future.
	// Name returns a unique string identifier for the component type.
	// This should be consistent across program executions since it names the component in
	// serialized documents.
	Name() string
}

// ComponentKind is the canonical name of a component type.
type ComponentKind string

// BundleKind is the canonical name of a set of component types. It is the key of an archetype in
// storage and the tag of a record in a serialized document.
type BundleKind string

// KindOf returns the component kind of T.
func KindOf[T Component]() ComponentKind {
	var zero T
	return ComponentKind(zero.Name())
}

// BundleKindOf sorts the kinds case-insensitively and concatenates them, so every declaration
// order of the same set of kinds gives the same bundle kind. Kinds that differ only by case are
// ordered by their raw value to keep the result deterministic.
func BundleKindOf(kinds ...ComponentKind) BundleKind {
	sorted := sortKinds(kinds)

	var b strings.Builder
	for _, kind := range sorted {
		b.WriteString(string(kind))
	}
	return BundleKind(b.String())
}

// sortKinds returns a sorted copy of kinds in bundle kind order.
func sortKinds(kinds []ComponentKind) []ComponentKind {
	sorted := slices.Clone(kinds)
	slices.SortStableFunc(sorted, compareKinds)
	return sorted
}

func compareKinds(a, b ComponentKind) int {
	if c := strings.Compare(strings.ToLower(string(a)), strings.ToLower(string(b))); c != 0 {
		return c
	}
	return strings.Compare(string(a), string(b))
}
