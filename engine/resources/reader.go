package resources

import (
	"encoding/binary"
	"fmt"
	stdmath "math"

	"github.com/spaghettifunk/on3d/engine/core"
)

// Reader walks a little-endian byte buffer. Strict reads fail with core.ErrFormat
// when the buffer is too short; the UpTo variants clip to what is available instead.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Len returns the total buffer length.
func (r *Reader) Len() int {
	return len(r.data)
}

func (r *Reader) need(n int, what string) error {
	if n < 0 || r.Remaining() < n {
		return fmt.Errorf("%w: %s needs %d bytes at offset %d, %d left", core.ErrFormat, what, n, r.off, r.Remaining())
	}
	return nil
}

func (r *Reader) Skip(n int) error {
	if err := r.need(n, "skip"); err != nil {
		return err
	}
	r.off += n
	return nil
}

func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4, "uint32"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// PeekUint32At reads a uint32 at off bytes past the cursor without consuming it.
func (r *Reader) PeekUint32At(off int) (uint32, bool) {
	pos := r.off + off
	if off < 0 || pos+4 > len(r.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(r.data[pos:]), true
}

func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	return stdmath.Float32frombits(v), err
}

// Bytes returns the next n bytes as a view into the buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n, "bytes"); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n : r.off+n]
	r.off += n
	return b, nil
}

// BytesUpTo returns at most n bytes, fewer when the buffer ends first.
func (r *Reader) BytesUpTo(n int) []byte {
	n = min(max(n, 0), r.Remaining())
	b := r.data[r.off : r.off+n : r.off+n]
	r.off += n
	return b
}

// Float32s reads exactly n floats.
func (r *Reader) Float32s(n int) ([]float32, error) {
	if err := r.need(n*4, "float32 array"); err != nil {
		return nil, err
	}
	return r.Float32sUpTo(n), nil
}

// Float32sUpTo reads at most n floats, stopping at the last whole float in the buffer.
func (r *Reader) Float32sUpTo(n int) []float32 {
	n = min(max(n, 0), r.Remaining()/4)
	out := make([]float32, n)
	for i := range out {
		out[i] = stdmath.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off:]))
		r.off += 4
	}
	return out
}

// Uint16sUpTo reads at most n uint16 values widened to uint32.
func (r *Reader) Uint16sUpTo(n int) []uint32 {
	n = min(max(n, 0), r.Remaining()/2)
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(binary.LittleEndian.Uint16(r.data[r.off:]))
		r.off += 2
	}
	return out
}

// Uint32sUpTo reads at most n uint32 values.
func (r *Reader) Uint32sUpTo(n int) []uint32 {
	n = min(max(n, 0), r.Remaining()/4)
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(r.data[r.off:])
		r.off += 4
	}
	return out
}

// FixedUTF16 reads an n-byte UTF-16LE field.
func (r *Reader) FixedUTF16(n int) (string, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return "", err
	}
	return DecodeUTF16Field(b)
}
