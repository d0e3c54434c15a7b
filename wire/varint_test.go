package wire

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sheldonrobinson/libnop/errs"
)

func TestUvarint_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1 << 32, math.MaxUint64}
	for _, v := range values {
		buf := AppendUvarint(nil, v)
		require.Len(t, buf, UvarintLen(v))

		got, err := ReadUvarint(bytes.NewReader(buf))
		require.NoError(t, err)
		require.Equal(t, v, got)

		got, n, err := Uvarint(buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), n)
	}
}

func TestReadUvarint_Empty(t *testing.T) {
	_, err := ReadUvarint(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}

func TestReadUvarint_Truncated(t *testing.T) {
	_, err := ReadUvarint(bytes.NewReader([]byte{0x80, 0x80}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadUvarint_Overflow(t *testing.T) {
	buf := bytes.Repeat([]byte{0xFF}, 10)
	_, err := ReadUvarint(bytes.NewReader(buf))
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	buf = append(bytes.Repeat([]byte{0xFF}, 9), 0x02)
	_, err = ReadUvarint(bytes.NewReader(buf))
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestUvarint_Slice(t *testing.T) {
	_, _, err := Uvarint(nil)
	require.ErrorIs(t, err, errs.ErrTruncated)

	_, _, err = Uvarint([]byte{0x80})
	require.ErrorIs(t, err, errs.ErrTruncated)

	_, _, err = Uvarint(bytes.Repeat([]byte{0xFF}, 11))
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}
