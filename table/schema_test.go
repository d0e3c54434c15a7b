package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/table"
)

func TestDefine_Errors(t *testing.T) {
	t.Run("nil accessor", func(t *testing.T) {
		_, err := table.Define("T", table.Field[tableV1, string](0, "a", table.String, nil))
		require.ErrorIs(t, err, errs.ErrNilAccessor)
	})

	t.Run("nil type", func(t *testing.T) {
		_, err := table.Define("T", table.Field(0, "a", nil, func(t *tableV1) *table.Entry[string] { return &t.A }))
		require.ErrorIs(t, err, errs.ErrInvalidSchema)

		_, err = table.Define("T", table.Retire[tableV1, string](0, "a", nil))
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})

	t.Run("duplicate id across active and retired", func(t *testing.T) {
		_, err := table.Define("T",
			table.Field(1, "a", table.String, func(t *tableV1) *table.Entry[string] { return &t.A }),
			table.Retire[tableV1](1, "old", table.Int),
		)
		require.ErrorIs(t, err, errs.ErrDuplicateFieldID)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := table.Define[tableV1]("")
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})

	t.Run("must define panics", func(t *testing.T) {
		require.Panics(t, func() {
			table.MustDefine("T",
				table.Field(1, "a", table.String, func(t *tableV1) *table.Entry[string] { return &t.A }),
				table.Field(2, "a", table.String, func(t *tableV1) *table.Entry[string] { return &t.A }),
			)
		})
	})
}

func TestSchema_Descriptor(t *testing.T) {
	desc := schemaV3.Descriptor()
	require.Equal(t, "TableA", schemaV3.Name())

	f, ok := desc.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, table.Retired, f.State)
	assert.Equal(t, "b", f.Name)
	assert.Equal(t, "sequence<int64>", f.Type.String())
}

func TestSchema_NoFields(t *testing.T) {
	type empty struct{}
	s := table.MustDefine[empty]("Empty")

	data, err := table.Marshal(s, &empty{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, data)

	// everything in a newer record is unknown to the empty schema
	_, err = table.Unmarshal(unhex(t, version2Hex), s)
	require.NoError(t, err)
}
