package ecs

import (
	"iter"
	"reflect"

	"github.com/argus-labs/titan/pkg/assert"
	"github.com/rotisserie/eris"
)

// queryParam is implemented by the field types of a query struct.
type queryParam interface {
	kind() ComponentKind
	componentType() reflect.Type
	mode() accessMode
	attach(col abstractColumn, row int)
}

var _ queryParam = &Read[Component]{}
var _ queryParam = &Write[Component]{}

// Read is a query field giving read-only access to the T of the current row.
type Read[T Component] struct {
	abstract abstractColumn
	col      *column[T]
	row      int
}

func (r *Read[T]) kind() ComponentKind         { return KindOf[T]() }
func (r *Read[T]) componentType() reflect.Type { return reflect.TypeFor[T]() }
func (r *Read[T]) mode() accessMode            { return accessRead }

func (r *Read[T]) attach(col abstractColumn, row int) {
	if col != r.abstract {
		r.abstract = col
		r.col = typedColumn[T](col)
	}
	r.row = row
}

// Get returns the component of the current row.
func (r *Read[T]) Get() T {
	assert.That(r.col != nil, "query field %s is not attached to a row", KindOf[T]())
	return r.col.get(r.row)
}

// Write is a query field giving read-write access to the T of the current row.
type Write[T Component] struct {
	abstract abstractColumn
	col      *column[T]
	row      int
}

func (w *Write[T]) kind() ComponentKind         { return KindOf[T]() }
func (w *Write[T]) componentType() reflect.Type { return reflect.TypeFor[T]() }
func (w *Write[T]) mode() accessMode            { return accessWrite }

func (w *Write[T]) attach(col abstractColumn, row int) {
	if col != w.abstract {
		w.abstract = col
		w.col = typedColumn[T](col)
	}
	w.row = row
}

// Get returns the component of the current row.
func (w *Write[T]) Get() T {
	assert.That(w.col != nil, "query field %s is not attached to a row", KindOf[T]())
	return w.col.get(w.row)
}

// Set replaces the component of the current row.
func (w *Write[T]) Set(component T) {
	assert.That(w.col != nil, "query field %s is not attached to a row", KindOf[T]())
	w.col.set(w.row, component)
}

// Ptr returns a pointer to the component of the current row. It must not outlive the query result.
func (w *Write[T]) Ptr() *T {
	assert.That(w.col != nil, "query field %s is not attached to a row", KindOf[T]())
	assert.That(w.row < w.col.len(), "component doesn't exist")
	return &w.col.components[w.row]
}

// StorageSource is anything a query can run against, i.e. a *Storage or a *World.
type StorageSource interface {
	currentStorage() *Storage
}

// QueryResult holds the column locks of a query and yields its rows once. Locks are released when
// iteration ends or on Close, whichever comes first.
type QueryResult[T any] struct {
	archetypes []*Archetype       // Matched archetypes, in match order
	fields     []int              // Struct field index of each param
	modes      []accessMode       // Access mode of each param
	columns    [][]abstractColumn // columns[param][archetype]
	consumed   bool               // Set once iteration started
	released   bool               // Set once the locks are dropped
}

// Query matches every archetype containing at least the components named by T's fields, then
// locks each field's column in each matched archetype without blocking. T must be a struct whose
// exported fields are all Read or Write, e.g.
//
//	type agingPeople struct {
//	    Age  ecs.Write[Age]
//	    Name ecs.Read[Name]
//	}
//
//	res, err := ecs.Query[agingPeople](storage)
//	if err != nil {
//	    return err
//	}
//	defer res.Close()
//	for row := range res.Iter() {
//	    row.Age.Set(row.Age.Get() + 1)
//	}
//
// If any lock is taken elsewhere the locks acquired so far are released and ErrLockConflict is
// returned. A component can appear only once per query. No matching archetype is an empty result,
// not an error.
func Query[T any](src StorageSource) (*QueryResult[T], error) {
	s := src.currentStorage()

	fields, params, err := queryParams[T]()
	if err != nil {
		return nil, err
	}

	kinds := make([]ComponentKind, len(params))
	modes := make([]accessMode, len(params))
	for i, p := range params {
		kinds[i] = p.kind()
		modes[i] = p.mode()
	}

	res := &QueryResult[T]{
		archetypes: s.archContains(kinds),
		fields:     fields,
		modes:      modes,
		columns:    make([][]abstractColumn, len(params)),
	}

	for i, kind := range kinds {
		res.columns[i] = make([]abstractColumn, 0, len(res.archetypes))
		for _, arch := range res.archetypes {
			col := arch.columns[kind]
			if !col.tryAcquire(modes[i]) {
				res.Close()
				return nil, eris.Wrapf(ErrLockConflict, "%s access to column %s of archetype %s",
					modes[i], kind, arch.kind)
			}
			res.columns[i] = append(res.columns[i], col)
		}
	}

	return res, nil
}

// queryParams validates the query struct T and returns the field index and a zero value of each param.
func queryParams[T any]() ([]int, []queryParam, error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, nil, eris.Wrapf(ErrConfiguration, "query type %s must be a struct", typ)
	}

	var zero T
	value := reflect.ValueOf(&zero).Elem()

	fields := make([]int, 0, typ.NumField())
	params := make([]queryParam, 0, typ.NumField())
	seen := make(map[ComponentKind]string, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			return nil, nil, eris.Wrapf(ErrConfiguration, "query field %s.%s must be exported", typ, field.Name)
		}

		p, ok := value.Field(i).Addr().Interface().(queryParam)
		if !ok {
			return nil, nil, eris.Wrapf(ErrConfiguration, "query field %s.%s must be ecs.Read or ecs.Write", typ, field.Name)
		}

		if err := checkComponentType(p.componentType()); err != nil {
			return nil, nil, eris.Wrapf(err, "query field %s.%s", typ, field.Name)
		}

		kind := p.kind()
		if other, dup := seen[kind]; dup {
			return nil, nil, eris.Wrapf(ErrConfiguration, "query fields %s and %s both access component %s",
				other, field.Name, kind)
		}
		seen[kind] = field.Name

		fields = append(fields, i)
		params = append(params, p)
	}

	if len(params) == 0 {
		return nil, nil, eris.Wrapf(ErrConfiguration, "query type %s has no fields", typ)
	}
	return fields, params, nil
}

// Len returns the number of rows the result yields.
func (q *QueryResult[T]) Len() int {
	n := 0
	for _, arch := range q.archetypes {
		n += arch.RowCount()
	}
	return n
}

// Iter yields one T per matched row, archetype by archetype in match order and row by row within
// an archetype. The result can be iterated only once; later calls yield nothing.
func (q *QueryResult[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, row := range q.All() {
			if !yield(row) {
				return
			}
		}
	}
}

// All is Iter with the entity id of every row.
func (q *QueryResult[T]) All() iter.Seq2[EntityID, T] {
	return func(yield func(EntityID, T) bool) {
		if q.consumed || q.released {
			return
		}
		q.consumed = true
		defer q.Close()

		var row T
		value := reflect.ValueOf(&row).Elem()
		params := make([]queryParam, len(q.fields))
		for i, field := range q.fields {
			params[i] = value.Field(field).Addr().Interface().(queryParam) //nolint:forcetypeassert // checked in Query
		}

		for a, arch := range q.archetypes {
			for r, eid := range arch.entities {
				for i, p := range params {
					p.attach(q.columns[i][a], r)
				}
				if !yield(eid, row) {
					return
				}
			}
		}
	}
}

// Collect drains the result into a slice. The rows still point into the columns but the locks are
// released, so they must not be used while other code can reach the storage.
func (q *QueryResult[T]) Collect() []T {
	rows := make([]T, 0, q.Len())
	for row := range q.Iter() {
		rows = append(rows, row)
	}
	return rows
}

// Close releases every column lock held by the result. Calling it again is a no-op.
func (q *QueryResult[T]) Close() {
	if q.released {
		return
	}
	q.released = true
	for i, cols := range q.columns {
		for _, col := range cols {
			col.release(q.modes[i])
		}
	}
}
