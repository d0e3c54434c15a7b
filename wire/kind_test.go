package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Tags(t *testing.T) {
	tests := []struct {
		kind  Kind
		tag   byte
		class Class
		size  int
	}{
		{KindBool, 0x01, ClassFixed1, 1},
		{KindInt8, 0x02, ClassFixed1, 1},
		{KindUint8, 0x03, ClassFixed1, 1},
		{KindInt16, 0x21, ClassFixed2, 2},
		{KindUint16, 0x22, ClassFixed2, 2},
		{KindInt32, 0x41, ClassFixed4, 4},
		{KindUint32, 0x42, ClassFixed4, 4},
		{KindFloat32, 0x43, ClassFixed4, 4},
		{KindInt64, 0x61, ClassFixed8, 8},
		{KindUint64, 0x62, ClassFixed8, 8},
		{KindFloat64, 0x63, ClassFixed8, 8},
		{KindUUID, 0x81, ClassFixed16, 16},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.tag, byte(tt.kind))
			assert.Equal(t, tt.class, tt.kind.Class())
			size, ok := tt.kind.FixedSize()
			assert.True(t, ok)
			assert.Equal(t, tt.size, size)
			assert.False(t, tt.kind.IsLengthPrefixed())
			assert.True(t, tt.kind.Valid())
		})
	}
}

func TestKind_LengthPrefixed(t *testing.T) {
	for _, k := range []Kind{KindString, KindBytes, KindSequence, KindTable, KindMsgpack} {
		t.Run(k.String(), func(t *testing.T) {
			require.Equal(t, ClassLength, k.Class())
			require.True(t, k.IsLengthPrefixed())
			_, ok := k.FixedSize()
			require.False(t, ok)
		})
	}
	require.Equal(t, byte(0xA1), byte(KindString))
	require.Equal(t, byte(0xA5), byte(KindMsgpack))
}

func TestKind_UnknownCodeKeepsClass(t *testing.T) {
	k := MakeKind(ClassFixed8, 0x1F)
	require.True(t, k.Valid())
	require.Equal(t, uint8(0x1F), k.Code())
	size, ok := k.FixedSize()
	require.True(t, ok)
	require.Equal(t, 8, size)
	require.Equal(t, "kind(0x7f)", k.String())
}

func TestKind_InvalidClass(t *testing.T) {
	for _, tag := range []byte{0xC0, 0xC1, 0xE0, 0xFF} {
		k := Kind(tag)
		require.False(t, k.Valid(), "tag 0x%02x", tag)
		_, ok := k.FixedSize()
		require.False(t, ok)
		require.Equal(t, "Unknown", k.Class().String())
	}
}
