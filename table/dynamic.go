package table

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/wire"
)

// anyCodec is a Type with its Go type erased, used by Record.
type anyCodec interface {
	tag() TypeTag
	check(v any) error
	appendValue(dst []byte, v any) ([]byte, error)
	appendPayload(dst []byte, v any) ([]byte, error)
	decode(k wire.Kind, payload []byte, cfg config) (any, error)
}

type erased[V any] struct {
	typ Type[V]
}

func erase[V any](typ Type[V]) anyCodec {
	return erased[V]{typ: typ}
}

func (e erased[V]) tag() TypeTag { return e.typ.Tag() }

// validator is implemented by types whose values need more than a Go type
// check before they can be stored in a Record.
type validator[V any] interface {
	validate(v V) error
}

func (e erased[V]) check(v any) error {
	x, ok := v.(V)
	if !ok {
		var want V
		return fmt.Errorf("%w: %s field holds %T, got %T", errs.ErrTypeMismatch, e.typ.Tag(), want, v)
	}
	if val, ok := e.typ.(validator[V]); ok {
		return val.validate(x)
	}

	return nil
}

func (e erased[V]) appendValue(dst []byte, v any) ([]byte, error) {
	x, ok := v.(V)
	if !ok {
		return dst, e.check(v)
	}

	return appendValue(dst, e.typ, x)
}

func (e erased[V]) appendPayload(dst []byte, v any) ([]byte, error) {
	x, ok := v.(V)
	if !ok {
		return dst, e.check(v)
	}

	return appendPayload(dst, e.typ, e.typ.Tag().Kind, x)
}

func (e erased[V]) decode(k wire.Kind, p []byte, cfg config) (any, error) {
	return decodeValue(e.typ, k, p, cfg)
}

// rawTable holds a nested record as its encoded bytes. The bytes must frame
// as exactly one record; their fields are not checked against a schema.
type rawTable struct{}

func (rawTable) Tag() TypeTag { return TypeTag{Kind: wire.KindTable} }

func (rawTable) AppendPayload(dst []byte, v []byte) ([]byte, error) {
	return append(dst, v...), nil
}

func (t rawTable) DecodePayload(k wire.Kind, p []byte) ([]byte, error) {
	return t.decodeConfig(k, p, defaultConfig())
}

func (t rawTable) decodeConfig(k wire.Kind, p []byte, cfg config) ([]byte, error) {
	if err := checkKind(t.Tag(), k); err != nil {
		return nil, err
	}
	if err := checkRecord(p, cfg.limits); err != nil {
		return nil, err
	}

	return bytes.Clone(p), nil
}

func (rawTable) validate(v []byte) error {
	return checkRecord(v, wire.DefaultLimits())
}

// checkRecord walks the framing of the record in data, descending into
// nested tables.
func checkRecord(data []byte, limits wire.Limits) error {
	for f, err := range wire.Fields(data, limits) {
		if err != nil {
			return fmt.Errorf("nested table: %w", err)
		}
		if f.Frame.Kind == wire.KindTable {
			if err := checkRecord(f.Frame.Payload, limits); err != nil {
				return fmt.Errorf("field %d: %w", f.ID, err)
			}
		}
	}

	return nil
}

// dynamicSequence holds its elements as []any.
type dynamicSequence struct {
	elem anyCodec
	t    TypeTag
}

func (s dynamicSequence) tag() TypeTag { return s.t }

func (s dynamicSequence) check(v any) error {
	elems, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%w: %s field holds []any, got %T", errs.ErrTypeMismatch, s.t, v)
	}
	for i, e := range elems {
		if err := s.elem.check(e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}

func (s dynamicSequence) appendValue(dst []byte, v any) ([]byte, error) {
	if err := s.check(v); err != nil {
		return dst, err
	}
	out, mark := wire.BeginLengthPrefixed(dst, wire.KindSequence)
	out, err := s.appendElems(out, v.([]any))
	if err != nil {
		return dst, err
	}

	return wire.EndLengthPrefixed(out, mark), nil
}

func (s dynamicSequence) appendPayload(dst []byte, v any) ([]byte, error) {
	if err := s.check(v); err != nil {
		return dst, err
	}
	out, mark := wire.BeginLength(dst)
	out, err := s.appendElems(out, v.([]any))
	if err != nil {
		return dst, err
	}

	return wire.EndLength(out, mark), nil
}

func (s dynamicSequence) appendElems(dst []byte, elems []any) ([]byte, error) {
	dst = wire.AppendSequenceHeader(dst, s.t.Elem.Kind, len(elems))
	var err error
	for i, e := range elems {
		if dst, err = s.elem.appendPayload(dst, e); err != nil {
			return dst, fmt.Errorf("element %d: %w", i, err)
		}
	}

	return dst, nil
}

func (s dynamicSequence) decode(k wire.Kind, p []byte, cfg config) (any, error) {
	if err := checkKind(s.t, k); err != nil {
		return nil, err
	}
	ek, elems, err := wire.SplitSequence(p)
	if err != nil {
		return nil, err
	}
	if !compatible(s.t.Elem.Kind, ek) {
		return nil, fmt.Errorf("sequence element: %w", mismatch(*s.t.Elem, ek))
	}

	out := make([]any, len(elems))
	for i, e := range elems {
		if out[i], err = s.elem.decode(ek, e, cfg); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}

	return out, nil
}

// codecFor returns the dynamic codec for a declared type.
//
// Go types held by a Record, per kind: bool, int8..int64, uint8..uint64,
// float32, float64, uuid.UUID, string, []byte for bytes and for the raw
// encoding of a nested table, any for msgpack, and []any for sequences.
func codecFor(t TypeTag) (anyCodec, error) {
	switch t.Kind {
	case wire.KindBool:
		return erase(Bool), nil
	case wire.KindInt8:
		return erase(Int8), nil
	case wire.KindInt16:
		return erase(Int16), nil
	case wire.KindInt32:
		return erase(Int32), nil
	case wire.KindInt64:
		return erase(Int64), nil
	case wire.KindUint8:
		return erase(Uint8), nil
	case wire.KindUint16:
		return erase(Uint16), nil
	case wire.KindUint32:
		return erase(Uint32), nil
	case wire.KindUint64:
		return erase(Uint64), nil
	case wire.KindFloat32:
		return erase(Float32), nil
	case wire.KindFloat64:
		return erase(Float64), nil
	case wire.KindUUID:
		return erase[uuid.UUID](UUID), nil
	case wire.KindString:
		return erase(String), nil
	case wire.KindBytes:
		return erase(Bytes), nil
	case wire.KindTable:
		return erase[[]byte](rawTable{}), nil
	case wire.KindMsgpack:
		return erase(Msgpack[any]()), nil
	case wire.KindSequence:
		if t.Elem == nil {
			return nil, fmt.Errorf("%w: sequence without element type", errs.ErrInvalidSchema)
		}
		elem, err := codecFor(*t.Elem)
		if err != nil {
			return nil, err
		}

		return dynamicSequence{elem: elem, t: t}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported kind %s", errs.ErrInvalidSchema, t.Kind)
	}
}
