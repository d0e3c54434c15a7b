package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sheldonrobinson/libnop/errs"
)

var errUvarintOverflow = fmt.Errorf("%w: uvarint overflows 64 bits", errs.ErrInvalidValue)

// AppendUvarint appends v as a base-128 varint.
//
// The varint uses 1-10 bytes:
//   - 0-127: 1 byte
//   - 128-16383: 2 bytes
//   - 16384-2097151: 3 bytes
//   - And so on...
func AppendUvarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// UvarintLen returns the number of bytes AppendUvarint uses for v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// ReadUvarint reads one varint from src.
//
// Returns:
//   - io.EOF if src was empty before the first byte
//   - io.ErrUnexpectedEOF if src ended inside the varint
//   - an error wrapping errs.ErrInvalidValue if the varint overflows 64 bits
//   - any other error from src unchanged
func ReadUvarint(src io.ByteReader) (uint64, error) {
	var x uint64
	var s uint
	for i := 0; i < binary.MaxVarintLen64; i++ {
		b, err := src.ReadByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}

			return 0, err
		}
		if b < 0x80 {
			if i == binary.MaxVarintLen64-1 && b > 1 {
				return 0, errUvarintOverflow
			}

			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}

	return 0, errUvarintOverflow
}

// Uvarint decodes a varint from the start of buf and returns it with the
// number of bytes consumed.
func Uvarint(buf []byte) (uint64, int, error) {
	v, n := binary.Uvarint(buf)
	switch {
	case n == 0:
		return 0, 0, errs.ErrTruncated
	case n < 0:
		return 0, 0, errUvarintOverflow
	}

	return v, n, nil
}
