package libnop

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/table"
)

type person struct {
	Name table.Entry[string]
	Age  table.Entry[uint32]
}

var personSchema = table.MustDefine("libnop.Person",
	table.Field(0, "name", table.String, func(p *person) *table.Entry[string] { return &p.Name }),
	table.Field(1, "age", table.Uint32, func(p *person) *table.Entry[uint32] { return &p.Age }),
)

// TestMarshalUnmarshal verifies the wrappers produce the table encoding
func TestMarshalUnmarshal(t *testing.T) {
	in := &person{Name: table.Some("Ada")}

	data, err := Marshal(personSchema, in)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x00, 0xA1, 0x03, 'A', 'd', 'a'}, data)

	out, err := Unmarshal(data, personSchema)
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.False(t, out.Age.IsPresent())

	_, err = Unmarshal(append(data, 0x00), personSchema)
	require.ErrorIs(t, err, errs.ErrTrailingBytes)
}

// TestUnmarshalNamed verifies decoding through the default registry
func TestUnmarshalNamed(t *testing.T) {
	require.NoError(t, Register(personSchema))
	// registering the same schema again is a no-op
	require.NoError(t, Register(personSchema))

	data, err := Marshal(personSchema, &person{Name: table.Some("Ada"), Age: table.Some(uint32(36))})
	require.NoError(t, err)

	rec, err := UnmarshalNamed("libnop.Person", data)
	require.NoError(t, err)
	require.Equal(t, "libnop.Person{name: Ada, age: 36}", rec.String())

	_, err = UnmarshalNamed("libnop.Missing", data)
	require.ErrorIs(t, err, errs.ErrSchemaNotFound)
}
