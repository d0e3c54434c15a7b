package wire

import (
	"fmt"

	"github.com/sheldonrobinson/libnop/errs"
)

// Sequence payload layout:
//
//	Sequence := elem_tag:u8 count:uvarint Element*
//	Element  := fixed payload               (fixed-width elem_tag)
//	          | length:uvarint payload       (length-prefixed elem_tag)

// AppendSequenceHeader appends the element kind and element count of a sequence payload.
func AppendSequenceHeader(dst []byte, elem Kind, count int) []byte {
	dst = append(dst, byte(elem))

	return AppendUvarint(dst, uint64(count)) //nolint:gosec
}

// SplitSequence parses a sequence payload into its element kind and the
// payload of every element. Element slices alias payload.
//
// Errors:
//   - errs.ErrTruncated if the payload ends before count elements
//   - errs.ErrInvalidKind if the element tag has an undefined class
//   - errs.ErrInvalidValue if bytes remain after the last element
func SplitSequence(payload []byte) (Kind, [][]byte, error) {
	if len(payload) == 0 {
		return 0, nil, errs.ErrTruncated
	}
	elem := Kind(payload[0])
	if !elem.Valid() {
		return elem, nil, fmt.Errorf("%w: element tag 0x%02x", errs.ErrInvalidKind, payload[0])
	}
	count, n, err := Uvarint(payload[1:])
	if err != nil {
		return elem, nil, err
	}
	rest := payload[1+n:]
	// every element occupies at least one byte
	if count > uint64(len(rest)) {
		return elem, nil, errs.ErrTruncated
	}

	elems := make([][]byte, 0, count)
	size, fixed := elem.FixedSize()
	for i := uint64(0); i < count; i++ {
		if fixed {
			if len(rest) < size {
				return elem, nil, errs.ErrTruncated
			}
			elems = append(elems, rest[:size:size])
			rest = rest[size:]

			continue
		}
		l, n, err := Uvarint(rest)
		if err != nil {
			return elem, nil, err
		}
		rest = rest[n:]
		if l > uint64(len(rest)) {
			return elem, nil, errs.ErrTruncated
		}
		elems = append(elems, rest[:l:l])
		rest = rest[l:]
	}
	if len(rest) != 0 {
		return elem, nil, fmt.Errorf("%w: %d bytes after last sequence element", errs.ErrInvalidValue, len(rest))
	}

	return elem, elems, nil
}
