package resources

import (
	"encoding/binary"
	stdmath "math"
)

// Writer appends little-endian values to a growing buffer.
type Writer struct {
	buf []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, max(capacity, 0))}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Zeros(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

func (w *Writer) Uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

func (w *Writer) Float32(v float32) {
	w.Uint32(stdmath.Float32bits(v))
}

func (w *Writer) Float32s(vs []float32) {
	for _, v := range vs {
		w.Float32(v)
	}
}

func (w *Writer) Write(b []byte) {
	w.buf = append(w.buf, b...)
}

// FixedUTF16 writes s as an n-byte UTF-16LE field, zero padded. The returned
// flag reports whether the name had to be cut to fit.
func (w *Writer) FixedUTF16(s string, n int) (bool, error) {
	field, truncated, err := EncodeUTF16Field(s, n)
	if err != nil {
		return false, err
	}
	w.Write(field)
	return truncated, nil
}
