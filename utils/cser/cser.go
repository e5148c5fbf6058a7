// Package cser implements a compact canonical binary frame.
//
// A frame keeps two streams: a byte stream for data and a bit stream for
// flags and integer widths. On the wire the layout is
//
//	[byte stream][bit stream][len(bit stream) as reversed stop-bit varint]
//
// so a reader can locate the bit stream by scanning the tail. Decoding is
// strict: every value must use its shortest form and the whole frame must
// be consumed.
package cser

import (
	"errors"

	"github.com/rony4d/go-bridge-relay/utils/bits"
	"github.com/rony4d/go-bridge-relay/utils/fast"
)

var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// Writer holds the two output streams of a frame.
type Writer struct {
	BitsW  *bits.Writer
	BytesW *fast.Writer
}

// Reader holds the two input streams of a frame.
type Reader struct {
	BitsR  *bits.Reader
	BytesR *fast.Reader
}

func NewWriter() *Writer {
	return &Writer{
		BitsW:  bits.NewWriter(&bits.Array{Bytes: make([]byte, 0, 16)}),
		BytesW: fast.NewWriter(make([]byte, 0, 256)),
	}
}

// writeLE writes v little-endian using at least minSize bytes and returns
// the number of bytes used.
func writeLE(w *fast.Writer, v uint64, minSize int) int {
	size := 0
	for size < minSize || v != 0 {
		w.WriteU8(byte(v))
		v >>= 8
		size++
	}
	return size
}

func readLE(r *fast.Reader, size int) uint64 {
	var v uint64
	buf := r.Read(size)
	for i, b := range buf {
		v |= uint64(b) << uint(8*i)
	}
	if size > 1 && buf[size-1] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

func (w *Writer) writeSized(minSize, widthBits int, v uint64) {
	size := writeLE(w.BytesW, v, minSize)
	w.BitsW.Write(widthBits, uint(size-minSize))
}

func (r *Reader) readSized(minSize, widthBits int) uint64 {
	size := int(r.BitsR.Read(widthBits)) + minSize
	return readLE(r.BytesR, size)
}

func (w *Writer) U8(v uint8) { w.BytesW.WriteU8(v) }
func (r *Reader) U8() uint8  { return r.BytesR.ReadU8() }

// U32 stores 1..4 bytes with the width in 2 bits.
func (w *Writer) U32(v uint32) { w.writeSized(1, 2, uint64(v)) }
func (r *Reader) U32() uint32  { return uint32(r.readSized(1, 2)) }

// U64 stores 1..8 bytes with the width in 3 bits.
func (w *Writer) U64(v uint64) { w.writeSized(1, 3, v) }
func (r *Reader) U64() uint64  { return r.readSized(1, 3) }

// U56 stores 0..7 bytes with the width in 3 bits. Used for lengths.
func (w *Writer) U56(v uint64) {
	const max = 1<<(8*7) - 1
	if v > max {
		panic(ErrTooLargeAlloc)
	}
	w.writeSized(0, 3, v)
}
func (r *Reader) U56() uint64 { return r.readSized(0, 3) }

func (w *Writer) Bool(v bool) {
	var b uint
	if v {
		b = 1
	}
	w.BitsW.Write(1, b)
}
func (r *Reader) Bool() bool { return r.BitsR.Read(1) != 0 }

func (w *Writer) FixedBytes(v []byte) { w.BytesW.Write(v) }
func (r *Reader) FixedBytes(v []byte) { copy(v, r.BytesR.Read(len(v))) }

// SliceBytes writes a length-prefixed byte slice.
func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}

// SliceBytes reads a length-prefixed byte slice of at most maxLen bytes.
func (r *Reader) SliceBytes(maxLen int) []byte {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	buf := make([]byte, size)
	r.FixedBytes(buf)
	return buf
}

func (w *Writer) String(v string)           { w.SliceBytes([]byte(v)) }
func (r *Reader) String(maxLen int) string { return string(r.SliceBytes(maxLen)) }

// MarshalBinaryAdapter runs marshalCser against a fresh Writer and joins
// the streams into one frame.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshalCser(w); err != nil {
		return nil, err
	}
	return join(w.BitsW.Array, w.BytesW.Bytes()), nil
}

// UnmarshalBinaryAdapter splits a frame and runs unmarshalCser over it.
// Any panic raised by the unchecked readers becomes ErrMalformedEncoding.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(*Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && (errors.Is(e, ErrNonCanonicalEncoding) || errors.Is(e, ErrTooLargeAlloc)) {
				err = e
				return
			}
			err = ErrMalformedEncoding
		}
	}()

	bbits, bbytes, err := split(raw)
	if err != nil {
		return err
	}
	r := &Reader{
		BitsR:  bits.NewReader(bbits),
		BytesR: fast.NewReader(bbytes),
	}
	if err := unmarshalCser(r); err != nil {
		return err
	}

	// trailing data or non-zero padding bits make the frame non-canonical
	if r.BitsR.NonReadBytes() > 1 {
		return ErrNonCanonicalEncoding
	}
	if r.BitsR.Read(r.BitsR.NonReadBits()) != 0 {
		return ErrNonCanonicalEncoding
	}
	if !r.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}
	return nil
}

func join(bbits *bits.Array, bbytes []byte) []byte {
	out := fast.NewWriter(bbytes)
	out.Write(bbits.Bytes)

	size := fast.NewWriter(make([]byte, 0, 4))
	writeStopVarint(size, uint64(len(bbits.Bytes)))
	out.Write(reversed(size.Bytes()))
	return out.Bytes()
}

func split(raw []byte) (*bits.Array, []byte, error) {
	if len(raw) == 0 {
		return nil, nil, ErrMalformedEncoding
	}
	tailLen := 9
	if len(raw) < tailLen {
		tailLen = len(raw)
	}
	sizeReader := fast.NewReader(reversed(raw[len(raw)-tailLen:]))
	bitsSize := readStopVarint(sizeReader)

	raw = raw[:len(raw)-sizeReader.Position()]
	if uint64(len(raw)) < bitsSize {
		return nil, nil, ErrMalformedEncoding
	}
	cut := uint64(len(raw)) - bitsSize
	return &bits.Array{Bytes: raw[cut:]}, raw[:cut], nil
}

// writeStopVarint is base-128 with the high bit set on the last byte.
func writeStopVarint(w *fast.Writer, v uint64) {
	for {
		chunk := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			w.WriteU8(chunk | 0x80)
			return
		}
		w.WriteU8(chunk)
	}
}

func readStopVarint(r *fast.Reader) uint64 {
	var v uint64
	for i := 0; ; i++ {
		chunk := r.ReadU8()
		word := uint64(chunk & 0x7f)
		v |= word << uint(7*i)
		if chunk&0x80 != 0 {
			if i > 0 && word == 0 {
				panic(ErrNonCanonicalEncoding)
			}
			return v
		}
	}
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
