// Package table encodes structured records whose fields are identified by
// stable numeric ids, so that producers and consumers built against
// different versions of a table stay mutually readable.
//
// # Defining a table
//
// A table is a Go struct whose fields are Entry values, bound to ids with
// Define:
//
//	type TableA struct {
//	    A table.Entry[string]
//	    B table.Entry[[]int]
//	}
//
//	var TableASchema = table.MustDefine("TableA",
//	    table.Field(0, "a", table.String, func(t *TableA) *table.Entry[string] { return &t.A }),
//	    table.Field(1, "b", table.SequenceOf(table.Int), func(t *TableA) *table.Entry[[]int] { return &t.B }),
//	)
//
// # Evolving a table
//
// New fields get new ids. A field that is no longer wanted is retired
// rather than removed, which keeps its id reserved:
//
//	var TableASchemaV3 = table.MustDefine("TableA",
//	    table.Field(0, "a", table.String, func(t *TableA3) *table.Entry[string] { return &t.A }),
//	    table.Retire[TableA3](1, "b", table.SequenceOf(table.Int)),
//	)
//
// A reader skips ids it does not know and ids it has retired, and leaves
// fields the record does not carry empty. Only the wire framing is needed to
// skip a value, so a reader never has to understand a newer writer's types.
//
// # Dynamic records
//
// When the field list is only known at run time, build a Descriptor with
// NewDescriptor and use Record with EncodeRecord and DecodeRecord. Records
// and typed schemas share one wire format and one decode loop.
//
// # Concurrency
//
// Schemas and descriptors are immutable and safe for concurrent use. Each
// encode or decode call works on its own source, sink and value.
package table
