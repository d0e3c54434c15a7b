package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sheldonrobinson/libnop/endian"
	"github.com/sheldonrobinson/libnop/errs"
)

const (
	// DefaultMaxValueSize is the default upper bound for one length-prefixed payload.
	DefaultMaxValueSize = 64 << 20 // 64MiB
	// DefaultMaxEntries is the default upper bound for the entry count of one record.
	DefaultMaxEntries = 1 << 20

	// payloads above this size are read incrementally so a bogus length on a
	// short stream does not allocate the full claimed size up front.
	directReadThreshold = 64 << 10
)

// Limits bounds the resources a reader spends on one record.
// Zero fields select the defaults.
type Limits struct {
	MaxValueSize uint64
	MaxEntries   uint64
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxValueSize: DefaultMaxValueSize, MaxEntries: DefaultMaxEntries}
}

func (l Limits) withDefaults() Limits {
	if l.MaxValueSize == 0 {
		l.MaxValueSize = DefaultMaxValueSize
	}
	if l.MaxEntries == 0 {
		l.MaxEntries = DefaultMaxEntries
	}

	return l
}

// Frame is one framed value: its tag and the exact bytes of its payload.
type Frame struct {
	Kind    Kind
	Payload []byte
}

// EncodedLen returns the number of bytes the frame occupies on the wire.
func (f Frame) EncodedLen() int {
	n := 1 + len(f.Payload)
	if f.Kind.IsLengthPrefixed() {
		n += UvarintLen(uint64(len(f.Payload)))
	}

	return n
}

// AppendFrame appends f in wire form.
//
// Returns an error wrapping errs.ErrInvalidValue if a fixed-width frame has a
// payload of the wrong size, or errs.ErrInvalidKind for an undefined class.
func AppendFrame(dst []byte, f Frame) ([]byte, error) {
	if !f.Kind.Valid() {
		return dst, fmt.Errorf("%w: 0x%02x", errs.ErrInvalidKind, uint8(f.Kind))
	}
	if size, ok := f.Kind.FixedSize(); ok {
		if len(f.Payload) != size {
			return dst, fmt.Errorf("%w: %s payload is %d bytes, want %d", errs.ErrInvalidValue, f.Kind, len(f.Payload), size)
		}
		dst = append(dst, byte(f.Kind))

		return append(dst, f.Payload...), nil
	}
	dst = append(dst, byte(f.Kind))
	dst = AppendUvarint(dst, uint64(len(f.Payload)))

	return append(dst, f.Payload...), nil
}

// AppendFixed appends a fixed-width scalar value of kind k.
// k must be of class Fixed1, Fixed2, Fixed4 or Fixed8.
func AppendFixed(dst []byte, k Kind, v uint64) []byte {
	size, ok := k.FixedSize()
	if !ok || size > 8 {
		panic(fmt.Sprintf("wire: %s is not a scalar kind", k))
	}
	dst = append(dst, byte(k))

	return endian.AppendSized(endian.GetWireEngine(), dst, v, size)
}

// AppendFixedPayload appends the payload of a fixed-width scalar without its tag.
// It is used for packed sequence elements.
func AppendFixedPayload(dst []byte, k Kind, v uint64) []byte {
	size, ok := k.FixedSize()
	if !ok || size > 8 {
		panic(fmt.Sprintf("wire: %s is not a scalar kind", k))
	}

	return endian.AppendSized(endian.GetWireEngine(), dst, v, size)
}

// FixedValue reads the scalar payload of a fixed-width frame as an unsigned value.
func FixedValue(payload []byte) uint64 {
	return endian.Sized(endian.GetWireEngine(), payload)
}

// LengthMark records where a length-prefixed payload starts in a buffer.
type LengthMark struct {
	start int
}

// BeginLength starts a length-prefixed payload without a tag byte.
// The payload is appended directly to the returned buffer and closed with EndLength.
func BeginLength(dst []byte) ([]byte, LengthMark) {
	return dst, LengthMark{start: len(dst)}
}

// BeginLengthPrefixed appends the tag k and starts its length-prefixed payload.
func BeginLengthPrefixed(dst []byte, k Kind) ([]byte, LengthMark) {
	return BeginLength(append(dst, byte(k)))
}

// EndLength inserts the varint length of everything appended since mark.
func EndLength(dst []byte, mark LengthMark) []byte {
	n := len(dst) - mark.start
	var hdr [10]byte
	hl := len(AppendUvarint(hdr[:0], uint64(n)))
	for range hl {
		dst = append(dst, 0)
	}
	copy(dst[mark.start+hl:], dst[mark.start:mark.start+n])
	copy(dst[mark.start:], hdr[:hl])

	return dst
}

// EndLengthPrefixed closes a payload started with BeginLengthPrefixed.
func EndLengthPrefixed(dst []byte, mark LengthMark) []byte {
	return EndLength(dst, mark)
}

// ReadFrameHeader reads a tag and the payload size it announces.
// The payload itself is left unread.
//
// Errors:
//   - errs.ErrTruncated if src ends before the header is complete
//   - errs.ErrInvalidKind for an undefined framing class
//   - errs.ErrValueTooLarge if the length prefix exceeds maxSize
func ReadFrameHeader(src Source, maxSize uint64) (Kind, uint64, error) {
	tag, err := src.ReadByte()
	if err != nil {
		return 0, 0, Truncated(err)
	}
	k := Kind(tag)
	if !k.Valid() {
		return k, 0, fmt.Errorf("%w: 0x%02x", errs.ErrInvalidKind, tag)
	}
	if size, ok := k.FixedSize(); ok {
		return k, uint64(size), nil
	}
	n, err := ReadUvarint(src)
	if err != nil {
		return k, 0, Truncated(err)
	}
	if maxSize == 0 {
		maxSize = DefaultMaxValueSize
	}
	if n > maxSize {
		return k, n, fmt.Errorf("%w: %d > %d", errs.ErrValueTooLarge, n, maxSize)
	}

	return k, n, nil
}

// ReadFrame reads one complete value from src.
func ReadFrame(src Source, maxSize uint64) (Frame, error) {
	k, n, err := ReadFrameHeader(src, maxSize)
	if err != nil {
		return Frame{Kind: k}, err
	}
	payload, err := readPayload(src, n)
	if err != nil {
		return Frame{Kind: k}, err
	}

	return Frame{Kind: k, Payload: payload}, nil
}

// SkipFrame steps over one value in src without retaining its payload.
//
// Returns:
//   - Kind: tag of the skipped value
//   - uint64: payload size in bytes
//   - error: same conditions as ReadFrameHeader, or errs.ErrTruncated
func SkipFrame(src Source, maxSize uint64) (Kind, uint64, error) {
	k, n, err := ReadFrameHeader(src, maxSize)
	if err != nil {
		return k, n, err
	}
	if _, err := io.CopyN(io.Discard, src, int64(n)); err != nil { //nolint:gosec
		return k, n, Truncated(err)
	}

	return k, n, nil
}

func readPayload(src Source, n uint64) ([]byte, error) {
	if n <= directReadThreshold {
		payload := make([]byte, n)
		if _, err := io.ReadFull(src, payload); err != nil {
			return nil, Truncated(err)
		}

		return payload, nil
	}

	var buf bytes.Buffer
	buf.Grow(directReadThreshold)
	if _, err := io.CopyN(&buf, src, int64(n)); err != nil { //nolint:gosec
		return nil, Truncated(err)
	}

	return buf.Bytes(), nil
}
