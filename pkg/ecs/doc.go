// Package ecs is an in-process archetype store. Entities with the same set of component kinds share
// one columnar archetype. Queries lock whole columns without blocking and iterate every archetype
// holding at least the requested kinds. A storage round-trips through a JSON array of records.
package ecs
