package deflate

import "hash"

const (
	adlerMod = 65521
	// adlerNMax is the largest n such that 255n(n+1)/2 + (n+1)(mod-1) fits
	// in 32 bits, so reductions can be deferred for that many bytes.
	adlerNMax = 5552
)

// Adler32 is a running Adler-32 checksum (two 16-bit sums modulo 65521).
type Adler32 struct {
	a, b uint32
}

var _ hash.Hash32 = (*Adler32)(nil)

// NewAdler32 returns a checksum in its initial state.
func NewAdler32() *Adler32 {
	return &Adler32{a: 1}
}

// Reset restores the initial state.
func (d *Adler32) Reset() { d.a, d.b = 1, 0 }

// Size returns the checksum size in bytes.
func (d *Adler32) Size() int { return 4 }

// BlockSize returns the hash's underlying block size.
func (d *Adler32) BlockSize() int { return 4 }

// Write adds p to the running checksum.
func (d *Adler32) Write(p []byte) (int, error) {
	n := len(p)
	a, b := d.a, d.b
	for len(p) > 0 {
		chunk := p
		if len(chunk) > adlerNMax {
			chunk = chunk[:adlerNMax]
		}
		p = p[len(chunk):]
		for _, c := range chunk {
			a += uint32(c)
			b += a
		}
		a %= adlerMod
		b %= adlerMod
	}
	d.a, d.b = a, b
	return n, nil
}

// WriteByte adds a single byte to the running checksum.
func (d *Adler32) WriteByte(c byte) error {
	d.a = (d.a + uint32(c)) % adlerMod
	d.b = (d.b + d.a) % adlerMod
	return nil
}

// Sum32 returns the checksum, b in the high half and a in the low half.
func (d *Adler32) Sum32() uint32 { return d.b<<16 | d.a }

// Sum appends the big-endian checksum to in.
func (d *Adler32) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

// Adler32Checksum returns the Adler-32 checksum of p.
func Adler32Checksum(p []byte) uint32 {
	d := NewAdler32()
	d.Write(p)
	return d.Sum32()
}
