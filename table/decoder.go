package table

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/internal/pool"
	"github.com/sheldonrobinson/libnop/wire"
)

// Decode reads one record from r and reconciles it against s.
//
// Entries are matched by field id only. Ids unknown to s and ids s has
// retired are stepped over using the wire framing alone; active fields
// missing from the record stay empty. Kinds are checked only for active
// fields.
//
// Decode never reads past the end of the record, so r may hold a stream of
// records. When r is empty before the first byte Decode returns io.EOF
// unchanged. Any other failure is an *errs.DecodeError and no partial value
// is returned.
func Decode[T any](r io.Reader, s *Schema[T], opts ...Option) (*T, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	t := new(T)
	if err := decodeTable(wire.NewSource(r), s.desc, schemaSink(s, t, cfg), cfg); err != nil {
		return nil, err
	}

	return t, nil
}

// DecodeInto is like Decode but stores the result in t.
//
// Every active entry of t is replaced: entries missing from the record are
// cleared. Other fields of T are kept. On error t is left unchanged.
func DecodeInto[T any](r io.Reader, s *Schema[T], t *T, opts ...Option) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	tmp := *t
	s.reset(&tmp)
	if err := decodeTable(wire.NewSource(r), s.desc, schemaSink(s, &tmp, cfg), cfg); err != nil {
		return err
	}
	*t = tmp

	return nil
}

// Unmarshal decodes the single record held in data.
//
// Unlike Decode, empty data is errs.ErrTruncated and bytes left after the
// record are errs.ErrTrailingBytes.
func Unmarshal[T any](data []byte, s *Schema[T], opts ...Option) (*T, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	return unmarshal(data, s, cfg)
}

func unmarshal[T any](data []byte, s *Schema[T], cfg config) (*T, error) {
	r := bytes.NewReader(data)
	t := new(T)
	if err := decodeTable(r, s.desc, schemaSink(s, t, cfg), cfg); err != nil {
		return nil, wholeRecordErr(s.Name(), err)
	}
	if err := trailing(s.Name(), data, r); err != nil {
		return nil, err
	}

	return t, nil
}

func wholeRecordErr(table string, err error) error {
	if err == io.EOF {
		return &errs.DecodeError{Table: table, Err: errs.ErrTruncated}
	}

	return err
}

func trailing(table string, data []byte, r *bytes.Reader) error {
	if r.Len() == 0 {
		return nil
	}

	return &errs.DecodeError{
		Table:  table,
		Offset: int64(len(data) - r.Len()),
		Err:    fmt.Errorf("%w: %d bytes", errs.ErrTrailingBytes, r.Len()),
	}
}

// fieldSink stores the payload of the active field at descriptor index i.
type fieldSink func(i int, k wire.Kind, payload []byte) error

func schemaSink[T any](s *Schema[T], t *T, cfg config) fieldSink {
	return func(i int, k wire.Kind, p []byte) error {
		return s.slots[i].decode(t, k, p, cfg)
	}
}

// decodeTable runs the reconciliation loop of one record against desc.
func decodeTable(src wire.Source, desc *Descriptor, sink fieldSink, cfg config) error {
	cs := wire.NewCountingSource(src)
	fail := func(offset int64, id uint64, hasField bool, err error) error {
		return &errs.DecodeError{Table: desc.name, FieldID: id, HasField: hasField, Offset: offset, Err: err}
	}

	count, err := wire.ReadCount(cs, cfg.limits.MaxEntries)
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}

		return fail(0, 0, false, err)
	}

	seen, release := pool.GetBoolSlice(desc.Len())
	defer release()

	for range count {
		start := cs.Offset()
		id, err := wire.ReadFieldID(cs)
		if err != nil {
			return fail(start, 0, false, err)
		}

		i, known := desc.index(id)
		if !known || desc.fields[i].State == Retired {
			k, n, err := wire.SkipFrame(cs, cfg.limits.MaxValueSize)
			if err != nil {
				return fail(start, id, true, err)
			}
			msg := "skip unknown field"
			if known {
				msg = "skip retired field"
			}
			cfg.logger.Debug().
				Str("table", desc.name).
				Uint64("field_id", id).
				Stringer("kind", k).
				Uint64("size", n).
				Msg(msg)

			continue
		}

		f, err := wire.ReadFrame(cs, cfg.limits.MaxValueSize)
		if err != nil {
			return fail(start, id, true, err)
		}
		if seen[i] {
			return fail(start, id, true, errs.ErrDuplicateEntry)
		}
		seen[i] = true
		if err := sink(i, f.Kind, f.Payload); err != nil {
			return fail(start, id, true, err)
		}
	}

	return nil
}
