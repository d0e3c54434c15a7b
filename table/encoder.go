package table

import (
	"fmt"
	"io"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/internal/pool"
	"github.com/sheldonrobinson/libnop/wire"
)

// Encode writes the present active entries of t to w as one record.
//
// The record is built in a pooled buffer and handed to w in a single Write,
// so a failing sink leaves no half-built record behind in this package. The
// caller must discard whatever w accepted before the failure.
//
// Returns the number of bytes written. A failed write is an *errs.EncodeError
// wrapping the sink error.
func Encode[T any](w io.Writer, s *Schema[T], t *T, opts ...Option) (int, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return 0, err
	}

	bb := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(bb)

	bb.B, err = appendTable(bb.B[:0], s, t, cfg)
	if err != nil {
		return 0, err
	}
	n, err := bb.WriteTo(w)
	if err != nil {
		return int(n), &errs.EncodeError{Table: s.Name(), Err: err}
	}

	return int(n), nil
}

// Append appends the record encoding of t to dst.
func Append[T any](dst []byte, s *Schema[T], t *T, opts ...Option) ([]byte, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return dst, err
	}

	return appendTable(dst, s, t, cfg)
}

// Marshal returns the record encoding of t.
func Marshal[T any](s *Schema[T], t *T, opts ...Option) ([]byte, error) {
	return Append(nil, s, t, opts...)
}

func appendTable[T any](dst []byte, s *Schema[T], t *T, cfg config) ([]byte, error) {
	if t == nil {
		return dst, &errs.EncodeError{Table: s.Name(), Err: fmt.Errorf("%w: nil table", errs.ErrInvalidValue)}
	}

	count := 0
	for _, sl := range s.slots {
		if sl != nil && sl.present(t) {
			count++
		}
	}

	out := wire.AppendUvarint(dst, uint64(count)) //nolint:gosec
	var err error
	for i, sl := range s.slots {
		if sl == nil || !sl.present(t) {
			continue
		}
		id := s.desc.fields[i].ID
		out = wire.AppendUvarint(out, uint64(id))
		start := len(out)
		if out, err = sl.appendTo(out, t); err == nil {
			err = checkValueSize(out[start:], cfg.limits.MaxValueSize)
		}
		if err != nil {
			return dst, &errs.EncodeError{Table: s.Name(), FieldID: uint64(id), HasField: true, Err: err}
		}
	}

	return out, nil
}

// checkValueSize rejects a framed value whose length prefix exceeds limit.
func checkValueSize(value []byte, limit uint64) error {
	if !wire.Kind(value[0]).IsLengthPrefixed() {
		return nil
	}
	n, _, err := wire.Uvarint(value[1:])
	if err != nil {
		return err
	}
	if n > limit {
		return fmt.Errorf("%w: %d > %d", errs.ErrValueTooLarge, n, limit)
	}

	return nil
}
