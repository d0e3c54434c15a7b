// Package errs defines the error values shared by the libnop packages.
//
// Decode and encode failures are reported as *DecodeError and *EncodeError,
// which wrap one of the sentinel errors below (or the underlying I/O error)
// so callers can match them with errors.Is:
//
//	t, err := table.Decode(src, schema)
//	if errors.Is(err, errs.ErrTruncated) {
//	    // the stream ended in the middle of a record
//	}
package errs

import (
	"errors"
	"fmt"
)

// Framing and decoding errors.
var (
	// ErrTruncated is returned when the source ends in the middle of a record.
	ErrTruncated = errors.New("truncated record")
	// ErrTypeMismatch is returned when an active field's wire kind cannot be
	// read as the field's declared type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidKind is returned for a value tag whose framing class is undefined.
	ErrInvalidKind = errors.New("invalid value kind")
	// ErrInvalidValue is returned when a correctly framed payload holds an invalid value.
	ErrInvalidValue = errors.New("invalid value")
	// ErrValueTooLarge is returned when a length prefix exceeds the configured maximum.
	ErrValueTooLarge = errors.New("value exceeds maximum size")
	// ErrTooManyEntries is returned when an entry count exceeds the configured maximum.
	ErrTooManyEntries = errors.New("entry count exceeds maximum")
	// ErrTrailingBytes is returned by Unmarshal when data remains after the record.
	ErrTrailingBytes = errors.New("trailing bytes after record")
	// ErrDuplicateEntry is returned when one record carries the same active field twice.
	ErrDuplicateEntry = errors.New("duplicate entry in record")
)

// Schema definition errors.
var (
	ErrInvalidSchema      = errors.New("invalid schema")
	ErrDuplicateFieldID   = errors.New("duplicate field id")
	ErrDuplicateFieldName = errors.New("duplicate field name")
	ErrNilAccessor        = errors.New("active field has no accessor")
	ErrInvalidTypeName    = errors.New("invalid type name")
	ErrUnknownField       = errors.New("unknown field")
	ErrRetiredField       = errors.New("field is retired")
	ErrSchemaConflict     = errors.New("schema conflicts with registered schema")
	ErrSchemaNotFound     = errors.New("schema not found")
)

// Storage errors.
var (
	ErrNotFound = errors.New("record not found")
)

// DecodeError describes a failure while decoding one table record.
type DecodeError struct {
	// Table is the name of the target schema.
	Table string
	// FieldID is the id of the entry being decoded, valid when HasField is set.
	FieldID  uint64
	HasField bool
	// Offset is the number of bytes consumed from the source when the failure occurred.
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	if e.HasField {
		return fmt.Sprintf("decode %s: field %d at offset %d: %v", e.Table, e.FieldID, e.Offset, e.Err)
	}

	return fmt.Sprintf("decode %s at offset %d: %v", e.Table, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError describes a failure while encoding one table record.
type EncodeError struct {
	Table    string
	FieldID  uint64
	HasField bool
	Err      error
}

func (e *EncodeError) Error() string {
	if e.HasField {
		return fmt.Sprintf("encode %s: field %d: %v", e.Table, e.FieldID, e.Err)
	}

	return fmt.Sprintf("encode %s: %v", e.Table, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
