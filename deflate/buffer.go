package deflate

// Buffer is a growable byte array with an explicit logical length. Capacity
// grows by doubling so repeated appends cost amortised O(1).
type Buffer struct {
	data []byte
	n    int
}

// NewBuffer creates a buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int { return b.n }

// Cap returns the allocated capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Bytes returns the written bytes. The slice aliases the buffer until the
// next write.
func (b *Buffer) Bytes() []byte { return b.data[:b.n] }

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() { b.n = 0 }

func (b *Buffer) grow(extra int) {
	need := b.n + extra
	if need <= len(b.data) {
		return
	}
	newCap := len(b.data) * 2
	if newCap < 64 {
		newCap = 64
	}
	for newCap < need {
		newCap *= 2
	}
	data := make([]byte, newCap)
	copy(data, b.data[:b.n])
	b.data = data
}

// WriteByte appends one byte.
func (b *Buffer) WriteByte(c byte) error {
	b.grow(1)
	b.data[b.n] = c
	b.n++
	return nil
}

// Write appends p.
func (b *Buffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	copy(b.data[b.n:], p)
	b.n += len(p)
	return len(p), nil
}

// copyBack appends length bytes starting distance bytes behind the end.
// The regions may overlap, in which case the copied run repeats.
func (b *Buffer) copyBack(distance, length int) {
	b.grow(length)
	src := b.n - distance
	if distance >= length {
		copy(b.data[b.n:b.n+length], b.data[src:src+length])
		b.n += length
		return
	}
	for i := 0; i < length; i++ {
		b.data[b.n] = b.data[src+i]
		b.n++
	}
}
