package table

import (
	"fmt"
	"strings"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/wire"
)

// TypeTag describes the declared type of a field: its wire kind and, for
// sequences, the element type.
type TypeTag struct {
	Kind wire.Kind
	// Elem is the element type of a sequence.
	Elem *TypeTag
	// Name is the nested table name for table kinds. It is informational only.
	Name string
}

// String returns the type name as accepted by ParseTypeTag.
func (t TypeTag) String() string {
	switch t.Kind {
	case wire.KindSequence:
		if t.Elem == nil {
			return "sequence<?>"
		}

		return "sequence<" + t.Elem.String() + ">"
	case wire.KindTable:
		if t.Name != "" {
			return "table<" + t.Name + ">"
		}

		return "table"
	default:
		return t.Kind.String()
	}
}

// Accepts reports whether a value framed with kind k can be read as t.
//
// A kind is accepted when it equals the declared kind, or when it is a
// narrower integer of the same signedness, or float32 read as float64.
// Sequence element compatibility is checked when the payload is decoded.
func (t TypeTag) Accepts(k wire.Kind) bool {
	return compatible(t.Kind, k)
}

func (t TypeTag) validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: invalid kind 0x%02x", errs.ErrInvalidSchema, uint8(t.Kind))
	}
	if _, ok := scalarNames[t.Kind]; ok {
		return nil
	}
	switch t.Kind {
	case wire.KindString, wire.KindBytes, wire.KindTable, wire.KindMsgpack:
		return nil
	case wire.KindSequence:
		if t.Elem == nil {
			return fmt.Errorf("%w: sequence without element type", errs.ErrInvalidSchema)
		}

		return t.Elem.validate()
	default:
		return fmt.Errorf("%w: unsupported kind %s", errs.ErrInvalidSchema, t.Kind)
	}
}

var scalarNames = map[wire.Kind]string{
	wire.KindBool:    "bool",
	wire.KindInt8:    "int8",
	wire.KindUint8:   "uint8",
	wire.KindInt16:   "int16",
	wire.KindUint16:  "uint16",
	wire.KindInt32:   "int32",
	wire.KindUint32:  "uint32",
	wire.KindFloat32: "float32",
	wire.KindInt64:   "int64",
	wire.KindUint64:  "uint64",
	wire.KindFloat64: "float64",
	wire.KindUUID:    "uuid",
}

var namedKinds = map[string]wire.Kind{
	"bool":    wire.KindBool,
	"int8":    wire.KindInt8,
	"uint8":   wire.KindUint8,
	"int16":   wire.KindInt16,
	"uint16":  wire.KindUint16,
	"int32":   wire.KindInt32,
	"uint32":  wire.KindUint32,
	"float32": wire.KindFloat32,
	"int64":   wire.KindInt64,
	"int":     wire.KindInt64,
	"uint64":  wire.KindUint64,
	"float64": wire.KindFloat64,
	"uuid":    wire.KindUUID,
	"string":  wire.KindString,
	"bytes":   wire.KindBytes,
	"msgpack": wire.KindMsgpack,
	"table":   wire.KindTable,
}

// ParseTypeTag parses a type name such as "string", "sequence<int32>" or
// "table<Address>".
//
// Returns an error wrapping errs.ErrInvalidTypeName for unknown names.
func ParseTypeTag(name string) (TypeTag, error) {
	s := strings.TrimSpace(name)
	if inner, ok := genericArg(s, "sequence"); ok {
		elem, err := ParseTypeTag(inner)
		if err != nil {
			return TypeTag{}, err
		}

		return TypeTag{Kind: wire.KindSequence, Elem: &elem}, nil
	}
	if inner, ok := genericArg(s, "table"); ok {
		if inner == "" {
			return TypeTag{}, fmt.Errorf("%w: %q", errs.ErrInvalidTypeName, name)
		}

		return TypeTag{Kind: wire.KindTable, Name: inner}, nil
	}
	if k, ok := namedKinds[s]; ok {
		return TypeTag{Kind: k}, nil
	}

	return TypeTag{}, fmt.Errorf("%w: %q", errs.ErrInvalidTypeName, name)
}

// genericArg matches "prefix<arg>" and returns the trimmed arg.
func genericArg(s, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "<") || !strings.HasSuffix(rest, ">") {
		return "", false
	}

	return strings.TrimSpace(rest[1 : len(rest)-1]), true
}

// integer widths by signedness, narrowest first
var (
	signedRank   = map[wire.Kind]int{wire.KindInt8: 1, wire.KindInt16: 2, wire.KindInt32: 3, wire.KindInt64: 4}
	unsignedRank = map[wire.Kind]int{wire.KindUint8: 1, wire.KindUint16: 2, wire.KindUint32: 3, wire.KindUint64: 4}
)

func compatible(declared, actual wire.Kind) bool {
	if declared == actual {
		return true
	}
	if d, ok := signedRank[declared]; ok {
		a, ok := signedRank[actual]
		return ok && a <= d
	}
	if d, ok := unsignedRank[declared]; ok {
		a, ok := unsignedRank[actual]
		return ok && a <= d
	}

	return declared == wire.KindFloat64 && actual == wire.KindFloat32
}

func mismatch(declared TypeTag, actual wire.Kind) error {
	return fmt.Errorf("%w: declared %s, got %s", errs.ErrTypeMismatch, declared, actual)
}
