package ecs

import "github.com/rs/zerolog"

func loadComponentIntoArrayLogger(capability *componentCapability, arrayLogger *zerolog.Array) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Str("component_kind", string(capability.kind))
	dictLogger = dictLogger.Str("go_type", capability.typ.String())
	return arrayLogger.Dict(dictLogger)
}

func loadArchetypeIntoArrayLogger(capability *bundleCapability, arrayLogger *zerolog.Array) *zerolog.Array {
	components := zerolog.Arr()
	for _, kind := range capability.kinds {
		components = components.Str(string(kind))
	}
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Str("bundle_kind", string(capability.kind))
	dictLogger = dictLogger.Array("components", components)
	return arrayLogger.Dict(dictLogger)
}

// logRegistry logs the registered components and archetypes in sorted order.
func logRegistry(logger *zerolog.Logger, r *Registry, level zerolog.Level) {
	event := logger.WithLevel(level)

	components := zerolog.Arr()
	for _, kind := range r.Components() {
		components = loadComponentIntoArrayLogger(r.components[kind], components)
	}
	event.Int("total_components", len(r.components))
	event.Array("components", components)

	archetypes := zerolog.Arr()
	for _, kind := range r.Archetypes() {
		archetypes = loadArchetypeIntoArrayLogger(r.bundles[kind], archetypes)
	}
	event.Int("total_archetypes", len(r.bundles))
	event.Array("archetypes", archetypes)

	event.Uint64("fingerprint", r.Fingerprint()).Msg("registry")
}
