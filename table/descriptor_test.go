package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/table"
	"github.com/sheldonrobinson/libnop/wire"
)

func mustTag(t *testing.T, name string) table.TypeTag {
	t.Helper()
	tag, err := table.ParseTypeTag(name)
	require.NoError(t, err)

	return tag
}

func TestNewDescriptor(t *testing.T) {
	desc, err := table.NewDescriptor("TableA",
		table.FieldDesc{ID: 7, Name: "c", Type: mustTag(t, "uuid")},
		table.FieldDesc{ID: 0, Name: "a", Type: mustTag(t, "string")},
		table.FieldDesc{ID: 1, Name: "b", Type: mustTag(t, "sequence<int>"), State: table.Retired},
	)
	require.NoError(t, err)

	require.Equal(t, "TableA", desc.Name())
	require.Equal(t, 3, desc.Len())

	var ids []table.FieldID
	for _, f := range desc.Entries() {
		ids = append(ids, f.ID)
	}
	require.Equal(t, []table.FieldID{0, 1, 7}, ids)

	f, ok := desc.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, table.Retired, f.State)
	assert.Equal(t, wire.KindSequence, f.Type.Kind)

	_, ok = desc.Lookup(2)
	require.False(t, ok)

	f, ok = desc.LookupName("c")
	require.True(t, ok)
	assert.Equal(t, table.FieldID(7), f.ID)

	assert.Equal(t, "TableA{a=0:string, b=1:sequence<int64> (retired), c=7:uuid}", desc.String())
}

func TestNewDescriptor_EntriesIsACopy(t *testing.T) {
	desc, err := table.NewDescriptor("T", table.FieldDesc{ID: 1, Name: "x", Type: mustTag(t, "bool")})
	require.NoError(t, err)

	entries := desc.Entries()
	entries[0].State = table.Retired

	f, _ := desc.Lookup(1)
	require.Equal(t, table.Active, f.State)
}

func TestNewDescriptor_Errors(t *testing.T) {
	str := table.FieldDesc{Type: table.TypeTag{Kind: wire.KindString}}
	with := func(id table.FieldID, name string) table.FieldDesc {
		f := str
		f.ID = id
		f.Name = name

		return f
	}

	tests := []struct {
		name   string
		table  string
		fields []table.FieldDesc
		want   error
	}{
		{name: "empty table name", table: "", want: errs.ErrInvalidSchema},
		{name: "duplicate id", table: "T", fields: []table.FieldDesc{with(1, "a"), with(1, "b")}, want: errs.ErrDuplicateFieldID},
		{name: "duplicate name", table: "T", fields: []table.FieldDesc{with(1, "a"), with(2, "a")}, want: errs.ErrDuplicateFieldName},
		{name: "bad state", table: "T", fields: []table.FieldDesc{{ID: 1, Type: str.Type, State: 9}}, want: errs.ErrInvalidSchema},
		{name: "sequence without element", table: "T", fields: []table.FieldDesc{{ID: 1, Type: table.TypeTag{Kind: wire.KindSequence}}}, want: errs.ErrInvalidSchema},
		{name: "zero type", table: "T", fields: []table.FieldDesc{{ID: 1}}, want: errs.ErrInvalidSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.NewDescriptor(tt.table, tt.fields...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewDescriptor_UnnamedFields(t *testing.T) {
	desc, err := table.NewDescriptor("T",
		table.FieldDesc{ID: 1, Type: mustTag(t, "int32")},
		table.FieldDesc{ID: 2, Type: mustTag(t, "int32")},
	)
	require.NoError(t, err)
	require.Equal(t, 2, desc.Len())
}

func TestDescriptor_Fingerprint(t *testing.T) {
	build := func(fields ...table.FieldDesc) uint64 {
		desc, err := table.NewDescriptor("TableA", fields...)
		require.NoError(t, err)

		return desc.Fingerprint()
	}
	a := table.FieldDesc{ID: 0, Name: "a", Type: mustTag(t, "string")}
	b := table.FieldDesc{ID: 1, Name: "b", Type: mustTag(t, "sequence<int64>")}
	bRetired := b
	bRetired.State = table.Retired
	bRenamed := b
	bRenamed.Name = "bee"

	base := build(a, b)
	assert.Equal(t, base, build(b, a), "declaration order")
	assert.Equal(t, base, build(a, bRenamed), "names do not count")
	assert.NotEqual(t, base, build(a), "field removed")
	assert.NotEqual(t, base, build(a, bRetired), "state changed")

	other, err := table.NewDescriptor("TableB", a, b)
	require.NoError(t, err)
	assert.NotEqual(t, base, other.Fingerprint(), "table name")

	assert.Equal(t, schemaV2.Descriptor().Fingerprint(), base)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "active", table.Active.String())
	assert.Equal(t, "retired", table.Retired.String())
	assert.Equal(t, "state(5)", table.State(5).String())
}
