package wire

import (
	"errors"
	"io"

	"github.com/sheldonrobinson/libnop/errs"
)

// Source is the byte source consumed by record readers.
//
// *bytes.Reader, *bytes.Buffer and *bufio.Reader all satisfy Source.
type Source interface {
	io.Reader
	io.ByteReader
}

// NewSource adapts r to a Source.
//
// If r already implements io.ByteReader it is returned unchanged. Otherwise
// single bytes are read with one-byte Read calls, so no data beyond what a
// reader asks for is ever consumed from r.
func NewSource(r io.Reader) Source {
	if src, ok := r.(Source); ok {
		return src
	}

	return &byteSource{r: r}
}

type byteSource struct {
	r   io.Reader
	one [1]byte
}

func (s *byteSource) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *byteSource) ReadByte() (byte, error) {
	for {
		n, err := s.r.Read(s.one[:])
		if n == 1 {
			return s.one[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// CountingSource wraps a Source and counts the bytes consumed through it.
type CountingSource struct {
	src Source
	n   int64
}

// NewCountingSource returns a CountingSource reading from src.
func NewCountingSource(src Source) *CountingSource {
	return &CountingSource{src: src}
}

func (c *CountingSource) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	c.n += int64(n)

	return n, err
}

func (c *CountingSource) ReadByte() (byte, error) {
	b, err := c.src.ReadByte()
	if err == nil {
		c.n++
	}

	return b, err
}

// Offset returns the number of bytes consumed so far.
func (c *CountingSource) Offset() int64 {
	return c.n
}

// Truncated maps end-of-stream errors to errs.ErrTruncated and returns any
// other error unchanged. It is used once a record has started, where running
// out of input means the record is incomplete.
func Truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.ErrTruncated
	}

	return err
}
