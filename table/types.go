package table

import (
	"bytes"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/wire"
)

// Type encodes and decodes the payload of one declared value type.
//
// AppendPayload writes only the payload; the tag byte and, for
// length-prefixed kinds, the length are written by the caller.
// DecodePayload receives the kind found on the wire, which may be any kind
// the declared tag accepts, and the exact payload bytes. The payload may be
// retained only after copying.
//
// Nil and empty slices encode alike; a present empty value of Bytes or of a
// SequenceOf type decodes as an empty, non-nil slice.
type Type[V any] interface {
	Tag() TypeTag
	AppendPayload(dst []byte, v V) ([]byte, error)
	DecodePayload(k wire.Kind, payload []byte) (V, error)
}

// configDecoder is implemented by types that hold nested records. Those
// records are decoded with the options of the enclosing call.
type configDecoder[V any] interface {
	decodeConfig(k wire.Kind, payload []byte, cfg config) (V, error)
}

// decodeValue decodes p with typ, passing cfg on to nested records.
func decodeValue[V any](typ Type[V], k wire.Kind, p []byte, cfg config) (V, error) {
	if d, ok := typ.(configDecoder[V]); ok {
		return d.decodeConfig(k, p, cfg)
	}

	return typ.DecodePayload(k, p)
}

// Scalar and variable-size value types.
var (
	Bool    Type[bool]      = boolType{}
	Int8    Type[int8]      = signed[int8]{kind: wire.KindInt8}
	Int16   Type[int16]     = signed[int16]{kind: wire.KindInt16}
	Int32   Type[int32]     = signed[int32]{kind: wire.KindInt32}
	Int64   Type[int64]     = signed[int64]{kind: wire.KindInt64}
	Int     Type[int]       = signed[int]{kind: wire.KindInt64}
	Uint8   Type[uint8]     = unsigned[uint8]{kind: wire.KindUint8}
	Uint16  Type[uint16]    = unsigned[uint16]{kind: wire.KindUint16}
	Uint32  Type[uint32]    = unsigned[uint32]{kind: wire.KindUint32}
	Uint64  Type[uint64]    = unsigned[uint64]{kind: wire.KindUint64}
	Float32 Type[float32]   = float32Type{}
	Float64 Type[float64]   = float64Type{}
	String  Type[string]    = stringType{}
	Bytes   Type[[]byte]    = bytesType{}
	UUID    Type[uuid.UUID] = uuidType{}
)

func checkFixed(declared TypeTag, k wire.Kind, payload []byte) error {
	if !compatible(declared.Kind, k) {
		return mismatch(declared, k)
	}
	if size, _ := k.FixedSize(); len(payload) != size {
		return fmt.Errorf("%w: %s payload is %d bytes", errs.ErrInvalidValue, k, len(payload))
	}

	return nil
}

func checkKind(declared TypeTag, k wire.Kind) error {
	if k != declared.Kind {
		return mismatch(declared, k)
	}

	return nil
}

type boolType struct{}

func (boolType) Tag() TypeTag { return TypeTag{Kind: wire.KindBool} }

func (boolType) AppendPayload(dst []byte, v bool) ([]byte, error) {
	if v {
		return append(dst, 1), nil
	}

	return append(dst, 0), nil
}

func (t boolType) DecodePayload(k wire.Kind, p []byte) (bool, error) {
	if err := checkFixed(t.Tag(), k, p); err != nil {
		return false, err
	}
	switch p[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool byte 0x%02x", errs.ErrInvalidValue, p[0])
	}
}

type signed[V int8 | int16 | int32 | int64 | int] struct {
	kind wire.Kind
}

func (t signed[V]) Tag() TypeTag { return TypeTag{Kind: t.kind} }

func (t signed[V]) AppendPayload(dst []byte, v V) ([]byte, error) {
	return wire.AppendFixedPayload(dst, t.kind, uint64(int64(v))), nil //nolint:gosec
}

func (t signed[V]) DecodePayload(k wire.Kind, p []byte) (V, error) {
	if err := checkFixed(t.Tag(), k, p); err != nil {
		return 0, err
	}
	shift := 64 - 8*len(p)

	return V(int64(wire.FixedValue(p)<<shift) >> shift), nil //nolint:gosec
}

type unsigned[V uint8 | uint16 | uint32 | uint64] struct {
	kind wire.Kind
}

func (t unsigned[V]) Tag() TypeTag { return TypeTag{Kind: t.kind} }

func (t unsigned[V]) AppendPayload(dst []byte, v V) ([]byte, error) {
	return wire.AppendFixedPayload(dst, t.kind, uint64(v)), nil
}

func (t unsigned[V]) DecodePayload(k wire.Kind, p []byte) (V, error) {
	if err := checkFixed(t.Tag(), k, p); err != nil {
		return 0, err
	}

	return V(wire.FixedValue(p)), nil
}

type float32Type struct{}

func (float32Type) Tag() TypeTag { return TypeTag{Kind: wire.KindFloat32} }

func (float32Type) AppendPayload(dst []byte, v float32) ([]byte, error) {
	return wire.AppendFixedPayload(dst, wire.KindFloat32, uint64(math.Float32bits(v))), nil
}

func (t float32Type) DecodePayload(k wire.Kind, p []byte) (float32, error) {
	if err := checkFixed(t.Tag(), k, p); err != nil {
		return 0, err
	}

	return math.Float32frombits(uint32(wire.FixedValue(p))), nil //nolint:gosec
}

type float64Type struct{}

func (float64Type) Tag() TypeTag { return TypeTag{Kind: wire.KindFloat64} }

func (float64Type) AppendPayload(dst []byte, v float64) ([]byte, error) {
	return wire.AppendFixedPayload(dst, wire.KindFloat64, math.Float64bits(v)), nil
}

func (t float64Type) DecodePayload(k wire.Kind, p []byte) (float64, error) {
	if err := checkFixed(t.Tag(), k, p); err != nil {
		return 0, err
	}
	if k == wire.KindFloat32 {
		return float64(math.Float32frombits(uint32(wire.FixedValue(p)))), nil //nolint:gosec
	}

	return math.Float64frombits(wire.FixedValue(p)), nil
}

type uuidType struct{}

func (uuidType) Tag() TypeTag { return TypeTag{Kind: wire.KindUUID} }

func (uuidType) AppendPayload(dst []byte, v uuid.UUID) ([]byte, error) {
	return append(dst, v[:]...), nil
}

func (t uuidType) DecodePayload(k wire.Kind, p []byte) (uuid.UUID, error) {
	if err := checkFixed(t.Tag(), k, p); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.FromBytes(p)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", errs.ErrInvalidValue, err)
	}

	return id, nil
}

type stringType struct{}

func (stringType) Tag() TypeTag { return TypeTag{Kind: wire.KindString} }

func (stringType) AppendPayload(dst []byte, v string) ([]byte, error) {
	return append(dst, v...), nil
}

func (t stringType) DecodePayload(k wire.Kind, p []byte) (string, error) {
	if err := checkKind(t.Tag(), k); err != nil {
		return "", err
	}

	return string(p), nil
}

type bytesType struct{}

func (bytesType) Tag() TypeTag { return TypeTag{Kind: wire.KindBytes} }

func (bytesType) AppendPayload(dst []byte, v []byte) ([]byte, error) {
	return append(dst, v...), nil
}

func (t bytesType) DecodePayload(k wire.Kind, p []byte) ([]byte, error) {
	if err := checkKind(t.Tag(), k); err != nil {
		return nil, err
	}
	if p == nil {
		return []byte{}, nil
	}

	return bytes.Clone(p), nil
}

type sequenceType[V any] struct {
	elem Type[V]
	tag  TypeTag
}

// SequenceOf returns the type of a homogeneous sequence of elem values.
// Fixed-width elements are packed; variable elements carry their own
// length prefix.
func SequenceOf[V any](elem Type[V]) Type[[]V] {
	et := elem.Tag()

	return sequenceType[V]{elem: elem, tag: TypeTag{Kind: wire.KindSequence, Elem: &et}}
}

func (t sequenceType[V]) Tag() TypeTag { return t.tag }

func (t sequenceType[V]) AppendPayload(dst []byte, v []V) ([]byte, error) {
	ek := t.tag.Elem.Kind
	dst = wire.AppendSequenceHeader(dst, ek, len(v))
	var err error
	for i, e := range v {
		dst, err = appendPayload(dst, t.elem, ek, e)
		if err != nil {
			return dst, fmt.Errorf("element %d: %w", i, err)
		}
	}

	return dst, nil
}

func (t sequenceType[V]) DecodePayload(k wire.Kind, p []byte) ([]V, error) {
	return t.decodeConfig(k, p, defaultConfig())
}

func (t sequenceType[V]) decodeConfig(k wire.Kind, p []byte, cfg config) ([]V, error) {
	if err := checkKind(t.tag, k); err != nil {
		return nil, err
	}
	ek, elems, err := wire.SplitSequence(p)
	if err != nil {
		return nil, err
	}
	if !compatible(t.tag.Elem.Kind, ek) {
		return nil, fmt.Errorf("sequence element: %w", mismatch(*t.tag.Elem, ek))
	}

	out := make([]V, len(elems))
	for i, e := range elems {
		if out[i], err = decodeValue(t.elem, ek, e, cfg); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}

	return out, nil
}

type nestedTable[U any] struct {
	schema *Schema[U]
}

// TableOf returns the type of a nested table encoded with s.
// Inside Decode the nested record is read with the options of that call.
func TableOf[U any](s *Schema[U]) Type[U] {
	return nestedTable[U]{schema: s}
}

func (t nestedTable[U]) Tag() TypeTag {
	return TypeTag{Kind: wire.KindTable, Name: t.schema.Name()}
}

func (t nestedTable[U]) AppendPayload(dst []byte, v U) ([]byte, error) {
	return appendTable(dst, t.schema, &v, defaultConfig())
}

func (t nestedTable[U]) DecodePayload(k wire.Kind, p []byte) (U, error) {
	return t.decodeConfig(k, p, defaultConfig())
}

func (t nestedTable[U]) decodeConfig(k wire.Kind, p []byte, cfg config) (U, error) {
	var zero U
	if err := checkKind(t.Tag(), k); err != nil {
		return zero, err
	}
	v, err := unmarshal(p, t.schema, cfg)
	if err != nil {
		return zero, err
	}

	return *v, nil
}

type msgpackType[V any] struct{}

// Msgpack returns a type that carries V as a msgpack document.
//
// Documents are written in canonical form so equal values encode to equal
// bytes: structs and maps become maps with sorted string keys and integers
// use their most compact encoding. Maps whose keys are not strings cannot be
// put in that form and are rejected with errs.ErrInvalidValue.
func Msgpack[V any]() Type[V] {
	return msgpackType[V]{}
}

func (msgpackType[V]) Tag() TypeTag { return TypeTag{Kind: wire.KindMsgpack} }

func (msgpackType[V]) AppendPayload(dst []byte, v V) ([]byte, error) {
	doc, err := canonicalMsgpack(v)
	if err != nil {
		return dst, fmt.Errorf("%w: msgpack encode %T: %w", errs.ErrInvalidValue, v, err)
	}
	out, err := encodeMsgpack(dst, doc, true)
	if err != nil {
		return dst, fmt.Errorf("%w: msgpack encode %T: %w", errs.ErrInvalidValue, v, err)
	}

	return out, nil
}

func (t msgpackType[V]) DecodePayload(k wire.Kind, p []byte) (V, error) {
	var v V
	if err := checkKind(t.Tag(), k); err != nil {
		return v, err
	}
	if err := decodeMsgpack(p, &v); err != nil {
		return v, fmt.Errorf("%w: msgpack decode %T: %w", errs.ErrInvalidValue, v, err)
	}

	return v, nil
}

// canonicalMsgpack converts v into the generic values msgpack decodes to:
// every map and struct becomes a map[string]any, which the encoder can sort.
func canonicalMsgpack(v any) (any, error) {
	raw, err := encodeMsgpack(nil, v, false)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := decodeMsgpack(raw, &doc); err != nil {
		return nil, fmt.Errorf("map keys must be strings: %w", err)
	}

	return doc, nil
}

func encodeMsgpack(dst []byte, v any, canonical bool) ([]byte, error) {
	w := appendWriter{buf: dst}
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	enc.Reset(&w)
	if canonical {
		enc.SetSortMapKeys(true)
		enc.UseCompactInts(true)
	}
	if err := enc.Encode(v); err != nil {
		return dst, err
	}

	return w.buf, nil
}

// decodeMsgpack decodes exactly one document from p into v.
func decodeMsgpack(p []byte, v any) error {
	var r bytes.Reader
	r.Reset(p)
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)

	dec.Reset(&r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if r.Len() != 0 {
		return fmt.Errorf("%d bytes after document", r.Len())
	}

	return nil
}

// appendWriter lets the msgpack encoder append to an existing buffer.
type appendWriter struct {
	buf []byte
}

func (w *appendWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// appendPayload appends the payload of v without a tag. Variable-size kinds
// get a length prefix; fixed-width payloads are checked against their size.
func appendPayload[V any](dst []byte, typ Type[V], k wire.Kind, v V) ([]byte, error) {
	if size, fixed := k.FixedSize(); fixed {
		start := len(dst)
		out, err := typ.AppendPayload(dst, v)
		if err != nil {
			return dst, err
		}
		if len(out)-start != size {
			return dst, fmt.Errorf("%w: %s payload is %d bytes, want %d", errs.ErrInvalidValue, k, len(out)-start, size)
		}

		return out, nil
	}

	out, mark := wire.BeginLength(dst)
	out, err := typ.AppendPayload(out, v)
	if err != nil {
		return dst, err
	}

	return wire.EndLength(out, mark), nil
}

// appendValue appends the tag and payload of v.
func appendValue[V any](dst []byte, typ Type[V], v V) ([]byte, error) {
	k := typ.Tag().Kind
	out, err := appendPayload(append(dst, byte(k)), typ, k, v)
	if err != nil {
		return dst, err
	}

	return out, nil
}
