// Package endian provides the byte order used for fixed-width scalar payloads.
//
// Fixed-width values in a libnop record (int16, uint32, float64, ...) are
// always little-endian. The EndianEngine interface combines binary.ByteOrder
// and binary.AppendByteOrder so the wire package can both append to and read
// from byte slices through one value:
//
//	engine := endian.GetWireEngine()
//	buf = engine.AppendUint32(buf, 42)
//	v := engine.Uint32(buf[len(buf)-4:])
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. The returned
// engines are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetWireEngine returns the engine used for fixed-width payloads on the wire.
func GetWireEngine() EndianEngine {
	return binary.LittleEndian
}

// AppendSized appends the low size bytes of v using engine.
//
// Parameters:
//   - engine: byte order to use
//   - dst: destination buffer
//   - v: value to append, truncated to size bytes
//   - size: 1, 2, 4 or 8
//
// Returns:
//   - []byte: the extended buffer
func AppendSized(engine EndianEngine, dst []byte, v uint64, size int) []byte {
	switch size {
	case 1:
		return append(dst, byte(v))
	case 2:
		return engine.AppendUint16(dst, uint16(v)) //nolint:gosec
	case 4:
		return engine.AppendUint32(dst, uint32(v)) //nolint:gosec
	case 8:
		return engine.AppendUint64(dst, v)
	default:
		panic(fmt.Sprintf("endian: unsupported scalar size %d", size))
	}
}

// Sized reads an unsigned value of len(b) bytes using engine.
//
// len(b) must be 1, 2, 4 or 8.
func Sized(engine EndianEngine, b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(engine.Uint16(b))
	case 4:
		return uint64(engine.Uint32(b))
	case 8:
		return engine.Uint64(b)
	default:
		panic(fmt.Sprintf("endian: unsupported scalar size %d", len(b)))
	}
}
