package table

import (
	"fmt"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/wire"
)

// FieldDef declares one field of a Go table type T.
// Build it with Field or Retire and pass it to Define.
type FieldDef[T any] struct {
	desc FieldDesc
	slot slot[T]
	err  error
}

// slot reads and writes one Entry of a T.
type slot[T any] interface {
	present(t *T) bool
	appendTo(dst []byte, t *T) ([]byte, error)
	decode(t *T, k wire.Kind, payload []byte, cfg config) error
	clear(t *T)
}

type accessor[T, V any] struct {
	typ Type[V]
	get func(*T) *Entry[V]
}

func (a accessor[T, V]) present(t *T) bool {
	return a.get(t).IsPresent()
}

func (a accessor[T, V]) appendTo(dst []byte, t *T) ([]byte, error) {
	return appendValue(dst, a.typ, a.get(t).Value())
}

func (a accessor[T, V]) decode(t *T, k wire.Kind, p []byte, cfg config) error {
	v, err := decodeValue(a.typ, k, p, cfg)
	if err != nil {
		return err
	}
	a.get(t).Set(v)

	return nil
}

func (a accessor[T, V]) clear(t *T) {
	a.get(t).Clear()
}

// Field declares an active field. get must return the address of the entry
// inside its argument.
//
// Example:
//
//	table.Field(0, "a", table.String, func(t *TableA) *table.Entry[string] { return &t.A })
func Field[T, V any](id FieldID, name string, typ Type[V], get func(*T) *Entry[V]) FieldDef[T] {
	def := FieldDef[T]{desc: FieldDesc{ID: id, Name: name, State: Active}}
	switch {
	case typ == nil:
		def.err = fmt.Errorf("%w: field %d has no type", errs.ErrInvalidSchema, id)
	case get == nil:
		def.err = fmt.Errorf("%w: field %d", errs.ErrNilAccessor, id)
	default:
		def.desc.Type = typ.Tag()
		def.slot = accessor[T, V]{typ: typ, get: get}
	}

	return def
}

// Retire declares a retired field. It takes no accessor, so a retired id can
// never carry a value; typ records what the field used to hold.
//
// Example:
//
//	table.Retire[TableA](1, "b", table.SequenceOf(table.Int))
func Retire[T, V any](id FieldID, name string, typ Type[V]) FieldDef[T] {
	def := FieldDef[T]{desc: FieldDesc{ID: id, Name: name, State: Retired}}
	if typ == nil {
		def.err = fmt.Errorf("%w: field %d has no type", errs.ErrInvalidSchema, id)
		return def
	}
	def.desc.Type = typ.Tag()

	return def
}

// Schema binds a Descriptor to the entries of a Go type T.
// It is immutable and safe for concurrent use.
type Schema[T any] struct {
	desc *Descriptor
	// slots is indexed like desc.fields; retired fields have a nil slot.
	slots []slot[T]
}

// Define builds the schema of table name from defs.
//
// Errors are those of NewDescriptor, plus errs.ErrNilAccessor for an active
// field declared without an accessor.
func Define[T any](name string, defs ...FieldDef[T]) (*Schema[T], error) {
	fields := make([]FieldDesc, 0, len(defs))
	for _, def := range defs {
		if def.err != nil {
			return nil, fmt.Errorf("table %s: %w", name, def.err)
		}
		fields = append(fields, def.desc)
	}

	desc, err := NewDescriptor(name, fields...)
	if err != nil {
		return nil, err
	}

	s := &Schema[T]{desc: desc, slots: make([]slot[T], desc.Len())}
	for _, def := range defs {
		if def.slot == nil {
			continue
		}
		i, _ := desc.index(uint64(def.desc.ID))
		s.slots[i] = def.slot
	}

	return s, nil
}

// MustDefine is like Define but panics on error.
// It is meant for package-level schema variables.
func MustDefine[T any](name string, defs ...FieldDef[T]) *Schema[T] {
	s, err := Define(name, defs...)
	if err != nil {
		panic(err)
	}

	return s
}

// Name returns the table name.
func (s *Schema[T]) Name() string {
	return s.desc.Name()
}

// Descriptor returns the field list of the schema.
func (s *Schema[T]) Descriptor() *Descriptor {
	return s.desc
}

// reset empties every active entry of t.
func (s *Schema[T]) reset(t *T) {
	for _, sl := range s.slots {
		if sl != nil {
			sl.clear(t)
		}
	}
}
