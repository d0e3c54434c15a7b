package pool

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	capacity := 1024
	bb := NewByteBuffer(capacity)

	require.NotNil(t, bb)
	require.NotNil(t, bb.B)
	assert.Equal(t, 0, len(bb.B), "new buffer should have zero length")
	assert.Equal(t, capacity, cap(bb.B), "new buffer should have specified capacity")
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(RecordBufferDefaultSize)
	bb.B = append(bb.B, []byte("some data")...)
	originalCap := cap(bb.B)

	bb.Reset()

	assert.Equal(t, 0, len(bb.B))
	assert.Equal(t, originalCap, cap(bb.B), "reset should keep capacity")
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.B = append(bb.B, 0x01, 0x00, 0xA1)

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, bb.B, out.Bytes())
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestByteBuffer_WriteTo_Errors(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.B = append(bb.B, 1, 2, 3, 4)

	n, err := bb.WriteTo(shortWriter{})
	require.ErrorIs(t, err, io.ErrShortWrite)
	require.Equal(t, int64(2), n)

	boom := errors.New("boom")
	_, err = bb.WriteTo(failingWriter{err: boom})
	require.ErrorIs(t, err, boom)
}

func TestByteBufferPool_GetPut(t *testing.T) {
	p := NewByteBufferPool(64, 128)

	bb := p.Get()
	require.NotNil(t, bb)
	require.Equal(t, 0, len(bb.B))
	bb.B = append(bb.B, "data"...)
	p.Put(bb)

	again := p.Get()
	require.Equal(t, 0, len(again.B), "pooled buffers come back empty")

	p.Put(nil)
}

func TestByteBufferPool_DiscardsLargeBuffers(t *testing.T) {
	p := NewByteBufferPool(8, 16)
	bb := NewByteBuffer(32)
	bb.B = append(bb.B, "abc"...)
	p.Put(bb)

	// the oversized buffer is not reset since it never entered the pool
	assert.Equal(t, 3, len(bb.B))
}

func TestRecordBuffer_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bb := GetRecordBuffer()
			defer PutRecordBuffer(bb)
			bb.B = append(bb.B, byte(i))
			assert.Equal(t, []byte{byte(i)}, bb.B)
		}(i)
	}
	wg.Wait()
}
