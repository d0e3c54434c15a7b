package table

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/internal/pool"
	"github.com/sheldonrobinson/libnop/wire"
)

// Record is a table value whose fields are only known at run time, such as
// a table loaded from a schema file.
//
// Values use fixed Go types per kind: bool, int8..int64, uint8..uint64,
// float32, float64, uuid.UUID, string, []byte for bytes and for the raw
// record of a nested table, any for msgpack and []any for sequences.
//
// A Record is not safe for concurrent mutation.
type Record struct {
	desc    *Descriptor
	values  []any
	present []bool
}

// NewRecord returns an empty record of desc.
func NewRecord(desc *Descriptor) *Record {
	return &Record{
		desc:    desc,
		values:  make([]any, desc.Len()),
		present: make([]bool, desc.Len()),
	}
}

// Descriptor returns the descriptor the record is bound to.
func (r *Record) Descriptor() *Descriptor {
	return r.desc
}

// Get returns the value of field id and whether it is present.
func (r *Record) Get(id FieldID) (any, bool) {
	i, ok := r.desc.index(uint64(id))
	if !ok || !r.present[i] {
		return nil, false
	}

	return r.values[i], true
}

// Set stores v in field id.
//
// Errors:
//   - errs.ErrUnknownField if the descriptor does not declare id
//   - errs.ErrRetiredField if id is retired
//   - errs.ErrTypeMismatch if v does not have the Go type of the field
//   - a framing error such as errs.ErrTruncated if a nested table's bytes
//     do not hold exactly one record
func (r *Record) Set(id FieldID, v any) error {
	i, ok := r.desc.index(uint64(id))
	if !ok {
		return fmt.Errorf("%w: %s field %d", errs.ErrUnknownField, r.desc.name, id)
	}
	if r.desc.fields[i].State == Retired {
		return fmt.Errorf("%w: %s field %d", errs.ErrRetiredField, r.desc.name, id)
	}
	if err := r.desc.codecs[i].check(v); err != nil {
		return fmt.Errorf("%s field %d: %w", r.desc.name, id, err)
	}
	r.values[i] = v
	r.present[i] = true

	return nil
}

// SetByName is like Set but addresses the field by name.
func (r *Record) SetByName(name string, v any) error {
	f, ok := r.desc.LookupName(name)
	if !ok {
		return fmt.Errorf("%w: %s field %q", errs.ErrUnknownField, r.desc.name, name)
	}

	return r.Set(f.ID, v)
}

// Clear empties field id. Unknown ids are ignored.
func (r *Record) Clear(id FieldID) {
	if i, ok := r.desc.index(uint64(id)); ok {
		r.values[i] = nil
		r.present[i] = false
	}
}

// Reset empties every field.
func (r *Record) Reset() {
	clear(r.values)
	clear(r.present)
}

// IsPresent reports whether field id holds a value.
func (r *Record) IsPresent(id FieldID) bool {
	i, ok := r.desc.index(uint64(id))
	return ok && r.present[i]
}

// Len returns the number of present fields.
func (r *Record) Len() int {
	n := 0
	for _, p := range r.present {
		if p {
			n++
		}
	}

	return n
}

// Fields iterates over the present fields in ascending id order.
func (r *Record) Fields() iter.Seq2[FieldDesc, any] {
	return func(yield func(FieldDesc, any) bool) {
		for i, p := range r.present {
			if p && !yield(r.desc.fields[i], r.values[i]) {
				return
			}
		}
	}
}

// EncodeRecord writes r to w as one record. It follows the rules of Encode.
func EncodeRecord(w io.Writer, r *Record, opts ...Option) (int, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return 0, err
	}

	bb := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(bb)

	bb.B, err = appendRecord(bb.B[:0], r, cfg)
	if err != nil {
		return 0, err
	}
	n, err := bb.WriteTo(w)
	if err != nil {
		return int(n), &errs.EncodeError{Table: r.desc.name, Err: err}
	}

	return int(n), nil
}

// MarshalRecord returns the encoding of r.
func MarshalRecord(r *Record, opts ...Option) ([]byte, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	return appendRecord(nil, r, cfg)
}

func appendRecord(dst []byte, r *Record, cfg config) ([]byte, error) {
	out := wire.AppendUvarint(dst, uint64(r.Len())) //nolint:gosec
	var err error
	for i, p := range r.present {
		if !p {
			continue
		}
		id := r.desc.fields[i].ID
		out = wire.AppendUvarint(out, uint64(id))
		start := len(out)
		if out, err = r.desc.codecs[i].appendValue(out, r.values[i]); err == nil {
			err = checkValueSize(out[start:], cfg.limits.MaxValueSize)
		}
		if err != nil {
			return dst, &errs.EncodeError{Table: r.desc.name, FieldID: uint64(id), HasField: true, Err: err}
		}
	}

	return out, nil
}

// DecodeRecord reads one record from src and reconciles it against desc.
// It follows the rules of Decode.
func DecodeRecord(src io.Reader, desc *Descriptor, opts ...Option) (*Record, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	r := NewRecord(desc)
	if err := decodeTable(wire.NewSource(src), desc, r.sink(cfg), cfg); err != nil {
		return nil, err
	}

	return r, nil
}

// UnmarshalRecord decodes the single record held in data.
// It follows the rules of Unmarshal.
func UnmarshalRecord(data []byte, desc *Descriptor, opts ...Option) (*Record, error) {
	br := bytes.NewReader(data)
	r, err := DecodeRecord(br, desc, opts...)
	if err != nil {
		return nil, wholeRecordErr(desc.name, err)
	}
	if err := trailing(desc.name, data, br); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Record) sink(cfg config) fieldSink {
	return func(i int, k wire.Kind, p []byte) error {
		v, err := r.desc.codecs[i].decode(k, p, cfg)
		if err != nil {
			return err
		}
		r.values[i] = v
		r.present[i] = true

		return nil
	}
}

func (r *Record) String() string {
	var sb bytes.Buffer
	sb.WriteString(r.desc.name)
	sb.WriteByte('{')
	first := true
	for f, v := range r.Fields() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		name := f.Name
		if name == "" {
			name = fmt.Sprint(f.ID)
		}
		fmt.Fprintf(&sb, "%s: %v", name, v)
	}
	sb.WriteByte('}')

	return sb.String()
}
