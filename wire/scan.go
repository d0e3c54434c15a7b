package wire

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/sheldonrobinson/libnop/errs"
)

// RawField is one entry of a record as it appears on the wire.
type RawField struct {
	ID    uint64
	Frame Frame
}

// ReadCount reads the entry count that opens a record.
//
// Returns io.EOF unchanged when src is empty, so callers reading a stream of
// records can stop cleanly. A partial count is errs.ErrTruncated.
func ReadCount(src Source, maxEntries uint64) (uint64, error) {
	count, err := ReadUvarint(src)
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}

		return 0, Truncated(err)
	}
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}
	if count > maxEntries {
		return count, fmt.Errorf("%w: %d > %d", errs.ErrTooManyEntries, count, maxEntries)
	}

	return count, nil
}

// ReadFieldID reads the id that opens an entry.
func ReadFieldID(src Source) (uint64, error) {
	id, err := ReadUvarint(src)
	if err != nil {
		return 0, Truncated(err)
	}

	return id, nil
}

// Scan reads one record from src without a schema and returns its entries
// in stream order.
//
// Parameters:
//   - src: byte source positioned at the start of a record
//   - limits: resource bounds, zero fields select defaults
//
// Returns:
//   - []RawField: every entry of the record
//   - error: io.EOF if src is empty, otherwise a framing error
func Scan(src Source, limits Limits) ([]RawField, error) {
	limits = limits.withDefaults()
	count, err := ReadCount(src, limits.MaxEntries)
	if err != nil {
		return nil, err
	}

	fields := make([]RawField, 0, min(count, 64))
	for i := uint64(0); i < count; i++ {
		id, err := ReadFieldID(src)
		if err != nil {
			return nil, err
		}
		frame, err := ReadFrame(src, limits.MaxValueSize)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", id, err)
		}
		fields = append(fields, RawField{ID: id, Frame: frame})
	}

	return fields, nil
}

// Fields iterates over the entries of the record held in data.
//
// Iteration stops at the first framing error, which is yielded with a zero
// RawField. An exhausted entry list with data left over yields errs.ErrTrailingBytes.
//
// Example:
//
//	for f, err := range wire.Fields(data, wire.Limits{}) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Printf("field %d: %s (%d bytes)\n", f.ID, f.Frame.Kind, len(f.Frame.Payload))
//	}
func Fields(data []byte, limits Limits) iter.Seq2[RawField, error] {
	return func(yield func(RawField, error) bool) {
		limits := limits.withDefaults()
		r := bytes.NewReader(data)
		count, err := ReadCount(r, limits.MaxEntries)
		if err != nil {
			yield(RawField{}, Truncated(err))
			return
		}
		for i := uint64(0); i < count; i++ {
			id, err := ReadFieldID(r)
			if err != nil {
				yield(RawField{}, err)
				return
			}
			frame, err := ReadFrame(r, limits.MaxValueSize)
			if err != nil {
				yield(RawField{}, fmt.Errorf("field %d: %w", id, err))
				return
			}
			if !yield(RawField{ID: id, Frame: frame}, nil) {
				return
			}
		}
		if r.Len() != 0 {
			yield(RawField{}, fmt.Errorf("%w: %d bytes", errs.ErrTrailingBytes, r.Len()))
		}
	}
}
