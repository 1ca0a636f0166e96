package ecs

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rotisserie/eris"
)

// SearchParam contains parameters for a search.
// We use expr lang for the where clause to filter the entities, please refer to its documentation
// for more details: https://expr-lang.org/docs/getting-started.
type SearchParam struct {
	Find  []ComponentKind // List of component kinds to search for
	Match SearchMatch     // A match type to use for the search
	Where string          // Optional expr language string to filter the results.
}

// SearchMatch is the type of match to use for the search.
type SearchMatch string

const (
	// MatchExact matches entities that have exactly the specified components.
	MatchExact SearchMatch = "exact"
	// MatchContains matches entities that contains the specified components, but may have other
	// components as well.
	MatchContains SearchMatch = "contains"
)

// validateAndGetFilter validates the search parameters and returns an expr VM program compiled
// from the where clause.
func (p *SearchParam) validateAndGetFilter() (*vm.Program, error) {
	if len(p.Find) == 0 {
		return nil, eris.New("component list cannot be empty")
	}

	if p.Match != MatchExact && p.Match != MatchContains {
		return nil, eris.Errorf("invalid `match` value: must be either '%s' or '%s'", MatchExact, MatchContains)
	}

	if len(p.Where) == 0 {
		return nil, nil //nolint:nilnil // no filter
	}

	// Compile the expression and check that the return type is boolean.
	filter, err := expr.Compile(p.Where, expr.AsBool())
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse where clause")
	}

	return filter, nil
}

// Search returns every entity matching the params as a map of component kind to component value.
// The entity id is stored under the "_id" key. Each archetype visited is read-locked while its rows
// are read, so a column held in write mode yields ErrLockConflict. Kinds that were never stored
// match nothing.
func (s *Storage) Search(params SearchParam) ([]map[string]any, error) {
	filter, err := params.validateAndGetFilter()
	if err != nil {
		return nil, eris.Wrapf(ErrConfiguration, "invalid search params: %v", err)
	}

	var archs []*Archetype
	switch params.Match {
	case MatchExact:
		if arch := s.archExact(params.Find); arch != nil {
			archs = []*Archetype{arch}
		}
	case MatchContains:
		archs = s.archContains(params.Find)
	}

	results := make([]map[string]any, 0)
	for _, arch := range archs {
		if err := arch.acquireAll(accessRead); err != nil {
			return nil, eris.Wrap(err, "failed to search archetype")
		}
		results, err = arch.appendMatches(results, filter)
		arch.releaseAll(accessRead)
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// appendMatches appends the rows of the archetype that pass the filter. The caller holds the
// archetype's columns in read mode.
func (a *Archetype) appendMatches(results []map[string]any, filter *vm.Program) ([]map[string]any, error) {
	for row := range a.RowCount() {
		entity := a.rowToMap(row)

		// If there's no filter, include all entities.
		if filter == nil {
			results = append(results, entity)
			continue
		}

		// The entity map is the environment of the program so it can reach the component data.
		output, err := expr.Run(filter, entity)
		if err != nil {
			return nil, eris.Wrapf(ErrConfiguration, "failed to run filter expression: %v", err)
		}

		// The program is compiled without an environment, so a where clause like `Height > 1` on a
		// struct can only be type checked here.
		isMatch, ok := output.(bool)
		if !ok {
			return nil, eris.Wrap(ErrConfiguration, "invalid where clause")
		}

		if isMatch {
			results = append(results, entity)
		}
	}
	return results, nil
}

// rowToMap converts a row to a map of its components. A "_id" key is added to the map to store
// the entity ID.
func (a *Archetype) rowToMap(row int) map[string]any {
	data := make(map[string]any, len(a.kinds)+1)

	// expr can't compare a named integer type with integer literals, so the id is a plain uint64.
	data["_id"] = uint64(a.entities[row])

	for _, kind := range a.kinds {
		data[string(kind)] = a.columns[kind].getAbstract(row)
	}

	return data
}
