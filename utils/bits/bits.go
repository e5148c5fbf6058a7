// Package bits packs small unsigned values into a dense bit stream.
//
// Values are laid out least-significant bit first: the first bit written
// lands in bit 0 of byte 0. The cser frame uses this stream for flags and
// length prefixes so that they do not cost a whole byte each.
package bits

type (
	// Array is the backing storage shared by a Writer and a Reader.
	Array struct {
		Bytes []byte
	}

	// Writer appends bits to an Array.
	Writer struct {
		*Array
		used int // bits already occupied in the last byte, 0..7
	}

	// Reader consumes bits from an Array.
	Reader struct {
		*Array
		pos  int // index of the byte being read
		used int // bits already consumed in Bytes[pos], 0..7
	}
)

// NewWriter returns a Writer appending to arr.
func NewWriter(arr *Array) *Writer {
	return &Writer{Array: arr}
}

// NewReader returns a Reader positioned at the first bit of arr.
func NewReader(arr *Array) *Reader {
	return &Reader{Array: arr}
}

func lowMask(n int) uint {
	return (uint(1) << uint(n)) - 1
}

// Write appends the lowest n bits of v.
func (w *Writer) Write(n int, v uint) {
	for n > 0 {
		if w.used == 0 {
			w.Bytes = append(w.Bytes, 0)
		}
		chunk := 8 - w.used
		if chunk > n {
			chunk = n
		}
		w.Bytes[len(w.Bytes)-1] |= byte((v & lowMask(chunk)) << uint(w.used))
		v >>= uint(chunk)
		n -= chunk
		w.used = (w.used + chunk) % 8
	}
}

// Read consumes n bits and returns them as an integer.
// It panics when the stream is exhausted; callers recover at the frame level.
func (r *Reader) Read(n int) uint {
	var (
		v     uint
		shift uint
	)
	for n > 0 {
		chunk := 8 - r.used
		if chunk > n {
			chunk = n
		}
		part := (uint(r.Bytes[r.pos]) >> uint(r.used)) & lowMask(chunk)
		v |= part << shift
		shift += uint(chunk)
		n -= chunk
		r.used += chunk
		if r.used == 8 {
			r.used = 0
			r.pos++
		}
	}
	return v
}

// View returns the next n bits without consuming them.
func (r *Reader) View(n int) uint {
	cp := *r
	return cp.Read(n)
}

// NonReadBytes is the number of bytes not yet fully consumed.
func (r *Reader) NonReadBytes() int {
	return len(r.Bytes) - r.pos
}

// NonReadBits is the number of bits not yet consumed.
func (r *Reader) NonReadBits() int {
	return r.NonReadBytes()*8 - r.used
}
