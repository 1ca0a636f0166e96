package ecs

import (
	"bytes"
	"math"
	"slices"
	"strconv"

	"github.com/argus-labs/titan/pkg/codec"
	"github.com/rotisserie/eris"
)

// Reserved record fields. Component kinds can't use these names.
const (
	fieldBundleKind = "bundle_kind"
	fieldEntityID   = "entity_id"
)

// record is one entity of a document. It encodes as an object whose fields are, in order, the bundle
// kind, the entity id and one field per component in schema declaration order.
type record struct {
	bundleKind BundleKind
	entityID   EntityID
	fields     []recordField
}

type recordField struct {
	kind  ComponentKind
	value codec.RawMessage
}

// rawRecord is a record as read back from a document.
type rawRecord map[string]codec.RawMessage

// MarshalJSON writes the record fields in their fixed order, which a map can't keep.
func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"` + fieldBundleKind + `":`)
	if err := writeJSONString(&buf, string(r.bundleKind)); err != nil {
		return nil, err
	}
	buf.WriteString(`,"` + fieldEntityID + `":`)
	buf.WriteString(strconv.FormatUint(uint64(r.entityID), 10))
	for _, f := range r.fields {
		buf.WriteByte(',')
		if err := writeJSONString(&buf, string(f.kind)); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	bz, err := codec.Encode(s)
	if err != nil {
		return eris.Wrapf(err, "failed to encode %q", s)
	}
	buf.Write(bz)
	return nil
}

// Serialize encodes every entity of the storage as an array of records. Archetypes are written in
// creation order and rows in row order. Each archetype is read-locked while its rows are encoded,
// so a column held in write mode yields ErrLockConflict. Every archetype in the storage must be
// registered in r.
func Serialize(s *Storage, r *Registry) ([]byte, error) {
	records := make([]record, 0, s.Len())
	for _, arch := range s.order {
		capability, err := r.bundleCapability(arch.kind)
		if err != nil {
			return nil, eris.Wrap(err, "failed to serialize storage")
		}
		if !slices.Equal(sortKinds(capability.kinds), arch.kinds) {
			return nil, eris.Wrapf(ErrConfiguration, "archetype %s stores %v but is registered as %v",
				arch.kind, arch.kinds, capability.kinds)
		}

		if err := arch.acquireAll(accessRead); err != nil {
			return nil, eris.Wrap(err, "failed to serialize storage")
		}
		for row := range arch.RowCount() {
			rec, err := capability.serializeRow(arch, row)
			if err != nil {
				arch.releaseAll(accessRead)
				return nil, eris.Wrapf(err, "failed to serialize archetype %s", arch.kind)
			}
			records = append(records, rec)
		}
		arch.releaseAll(accessRead)
	}

	bz, err := codec.Encode(records)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode document")
	}
	return bz, nil
}

// Deserialize builds a new storage from a document written by Serialize. Every entity keeps its id
// and the new storage's id counter ends past the largest one. On any error no storage is returned.
func Deserialize(data []byte, r *Registry) (*Storage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, eris.Wrap(ErrMalformedDocument, "document must be an array of records")
	}

	records, err := codec.DecodeStrict[[]rawRecord](trimmed)
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedDocument, "document must be an array of records: %v", err)
	}

	s := NewStorage()
	for i, rec := range records {
		if rec == nil {
			return nil, eris.Wrapf(ErrMalformedDocument, "record %d is not an object", i)
		}

		rawKind, ok := rec[fieldBundleKind]
		if !ok {
			return nil, eris.Wrapf(ErrMalformedDocument, "record %d has no %s", i, fieldBundleKind)
		}
		kind, err := codec.Decode[string](rawKind)
		if err != nil || isNull(rawKind) {
			return nil, eris.Wrapf(ErrMalformedDocument, "record %d: %s must be a string", i, fieldBundleKind)
		}

		capability, err := r.bundleCapability(BundleKind(kind))
		if err != nil {
			return nil, eris.Wrapf(err, "record %d", i)
		}
		if err := capability.deserializeRow(rec, s); err != nil {
			return nil, eris.Wrapf(err, "record %d", i)
		}
	}
	return s, nil
}

// serializeRow builds the record of one row. The caller holds the archetype's columns.
func (r *Registry) serializeRow(capability *bundleCapability, a *Archetype, row int) (record, error) {
	eid := a.entities[row]
	fields := make([]recordField, len(capability.kinds))
	for i, kind := range capability.kinds {
		col, err := a.column(kind)
		if err != nil {
			return record{}, err
		}
		value, err := r.components[kind].serialize(col.getAbstract(row))
		if err != nil {
			return record{}, eris.Wrapf(err, "failed to serialize component %s of entity %d", kind, eid)
		}
		fields[i] = recordField{kind: kind, value: value}
	}
	return record{bundleKind: capability.kind, entityID: eid, fields: fields}, nil
}

// deserializeRow decodes a record of the capability's schema and spawns it into s at its id.
func (r *Registry) deserializeRow(capability *bundleCapability, rec rawRecord, s *Storage) error {
	rawID, ok := rec[fieldEntityID]
	if !ok {
		return eris.Wrapf(ErrMalformedDocument, "missing %s", fieldEntityID)
	}
	// Only a plain run of digits is an entity id, so signs, fractions, exponents, strings and null
	// are all rejected.
	id, err := strconv.ParseUint(string(bytes.TrimSpace(rawID)), 10, 64)
	if err != nil || id == math.MaxUint64 {
		return eris.Wrapf(ErrMalformedDocument, "%s must be a non-negative integer, got %s", fieldEntityID, rawID)
	}

	bundle := make(Bundle, 0, len(capability.kinds))
	for _, kind := range capability.kinds {
		raw, ok := rec[string(kind)]
		if !ok || isNull(raw) {
			return eris.Wrapf(ErrMalformedDocument, "entity %d: missing component %s", id, kind)
		}
		component, err := r.components[kind].deserialize(raw)
		if err != nil {
			return eris.Wrapf(ErrMalformedDocument, "entity %d: component %s: %v", id, kind, err)
		}
		bundle = append(bundle, component)
	}

	if len(rec) != len(capability.kinds)+2 {
		for field := range rec {
			if field == fieldBundleKind || field == fieldEntityID || slices.Contains(capability.kinds, ComponentKind(field)) {
				continue
			}
			return eris.Wrapf(ErrMalformedDocument, "entity %d: unexpected field %s for archetype %s",
				id, field, capability.kind)
		}
	}

	if err := s.SpawnWithEntityID(r, EntityID(id), bundle); err != nil {
		if eris.Is(err, ErrDuplicateEntity) {
			return eris.Wrapf(ErrMalformedDocument, "entity %d appears more than once", id)
		}
		return err
	}
	return nil
}

func isNull(raw codec.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
