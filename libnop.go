// Package libnop provides a compact binary format for tables: records whose
// fields are tagged with stable numeric ids so the schema can evolve without
// breaking old readers or old data.
//
// # Core Features
//
//   - Self-describing entries (field id, one-byte type tag, payload)
//   - Forward compatibility: unknown fields are skipped by size
//   - Backward compatibility: absent fields decode as empty
//   - Retired fields keep their id reserved and are never written
//   - Scalars, strings, bytes, UUIDs, sequences, nested tables and msgpack values
//   - Dynamic records for data whose shape is only known at run time
//
// # Basic Usage
//
// Defining a table:
//
//	type Person struct {
//	    Name table.Entry[string]
//	    Age  table.Entry[uint32]
//	}
//
//	var personSchema = table.MustDefine("Person",
//	    table.Field(0, "name", table.String, func(p *Person) *table.Entry[string] { return &p.Name }),
//	    table.Field(1, "age", table.Uint32, func(p *Person) *table.Entry[uint32] { return &p.Age }),
//	)
//
// Encoding and decoding:
//
//	data, _ := libnop.Marshal(personSchema, &Person{Name: table.Some("Ada")})
//	p, _ := libnop.Unmarshal(data, personSchema)
//	fmt.Println(p.Name.Value(), p.Age.IsPresent())
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the table and
// registry packages. For streaming, options and dynamic records use the table
// package directly. The wire package exposes the entry layout for tools that
// work without a schema, and the store package keeps records in a bbolt file.
package libnop

import (
	"github.com/sheldonrobinson/libnop/registry"
	"github.com/sheldonrobinson/libnop/table"
)

// Marshal encodes t as a single record.
//
// It is a shortcut for table.Marshal.
func Marshal[T any](s *table.Schema[T], t *T, opts ...table.Option) ([]byte, error) {
	return table.Marshal(s, t, opts...)
}

// Unmarshal decodes exactly one record from data. Bytes after the record
// are an error.
//
// It is a shortcut for table.Unmarshal.
func Unmarshal[T any](data []byte, s *table.Schema[T], opts ...table.Option) (*T, error) {
	return table.Unmarshal(data, s, opts...)
}

// Register adds the schema's descriptor to the default registry so records
// of its table can be decoded by name.
func Register[T any](s *table.Schema[T]) error {
	return registry.Register(s.Descriptor())
}

// UnmarshalNamed decodes one record of the named table into a dynamic
// record, using the descriptor held by the default registry.
func UnmarshalNamed(name string, data []byte, opts ...table.Option) (*table.Record, error) {
	desc, err := registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	return table.UnmarshalRecord(data, desc, opts...)
}
