package wire

import "fmt"

type (
	// Kind is the tag byte that prefixes every value on the wire.
	Kind uint8
	// Class is the framing class of a Kind, stored in the top three bits of the tag.
	Class uint8
)

const (
	ClassFixed1  Class = 0x0 // ClassFixed1 is a 1 byte payload.
	ClassFixed2  Class = 0x1 // ClassFixed2 is a 2 byte payload.
	ClassFixed4  Class = 0x2 // ClassFixed4 is a 4 byte payload.
	ClassFixed8  Class = 0x3 // ClassFixed8 is an 8 byte payload.
	ClassFixed16 Class = 0x4 // ClassFixed16 is a 16 byte payload.
	ClassLength  Class = 0x5 // ClassLength is a uvarint length followed by that many bytes.

	classShift = 5
	codeMask   = 0x1F
)

const (
	KindBool  Kind = Kind(ClassFixed1)<<classShift | 0x01
	KindInt8  Kind = Kind(ClassFixed1)<<classShift | 0x02
	KindUint8 Kind = Kind(ClassFixed1)<<classShift | 0x03

	KindInt16  Kind = Kind(ClassFixed2)<<classShift | 0x01
	KindUint16 Kind = Kind(ClassFixed2)<<classShift | 0x02

	KindInt32   Kind = Kind(ClassFixed4)<<classShift | 0x01
	KindUint32  Kind = Kind(ClassFixed4)<<classShift | 0x02
	KindFloat32 Kind = Kind(ClassFixed4)<<classShift | 0x03

	KindInt64   Kind = Kind(ClassFixed8)<<classShift | 0x01
	KindUint64  Kind = Kind(ClassFixed8)<<classShift | 0x02
	KindFloat64 Kind = Kind(ClassFixed8)<<classShift | 0x03

	KindUUID Kind = Kind(ClassFixed16)<<classShift | 0x01

	KindString   Kind = Kind(ClassLength)<<classShift | 0x01
	KindBytes    Kind = Kind(ClassLength)<<classShift | 0x02
	KindSequence Kind = Kind(ClassLength)<<classShift | 0x03
	KindTable    Kind = Kind(ClassLength)<<classShift | 0x04
	KindMsgpack  Kind = Kind(ClassLength)<<classShift | 0x05
)

// MakeKind builds a tag from a framing class and a 5-bit code.
func MakeKind(class Class, code uint8) Kind {
	return Kind(class)<<classShift | Kind(code&codeMask)
}

// Class returns the framing class of k.
func (k Kind) Class() Class {
	return Class(k >> classShift)
}

// Code returns the 5-bit kind code of k.
func (k Kind) Code() uint8 {
	return uint8(k) & codeMask
}

// Valid reports whether k has a defined framing class.
func (k Kind) Valid() bool {
	return k.Class() <= ClassLength
}

// FixedSize returns the payload size of a fixed-width kind.
// The second result is false for length-prefixed and invalid kinds.
func (k Kind) FixedSize() (int, bool) {
	switch k.Class() {
	case ClassFixed1:
		return 1, true
	case ClassFixed2:
		return 2, true
	case ClassFixed4:
		return 4, true
	case ClassFixed8:
		return 8, true
	case ClassFixed16:
		return 16, true
	default:
		return 0, false
	}
}

// IsLengthPrefixed reports whether values of kind k carry a length prefix.
func (k Kind) IsLengthPrefixed() bool {
	return k.Class() == ClassLength
}

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindUint8:
		return "uint8"
	case KindInt16:
		return "int16"
	case KindUint16:
		return "uint16"
	case KindInt32:
		return "int32"
	case KindUint32:
		return "uint32"
	case KindFloat32:
		return "float32"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat64:
		return "float64"
	case KindUUID:
		return "uuid"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindSequence:
		return "sequence"
	case KindTable:
		return "table"
	case KindMsgpack:
		return "msgpack"
	default:
		return fmt.Sprintf("kind(0x%02x)", uint8(k))
	}
}

func (c Class) String() string {
	switch c {
	case ClassFixed1:
		return "Fixed1"
	case ClassFixed2:
		return "Fixed2"
	case ClassFixed4:
		return "Fixed4"
	case ClassFixed8:
		return "Fixed8"
	case ClassFixed16:
		return "Fixed16"
	case ClassLength:
		return "Length"
	default:
		return "Unknown"
	}
}
