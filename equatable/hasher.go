package equatable

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hasher accumulates a stable 64-bit digest over typed fields.
// Variable-length fields are length-prefixed so adjacent fields cannot collide
// ("ab"+"c" and "a"+"bc" hash differently).
type Hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{d: xxhash.New()}
}

// Uint64 writes v in little-endian order.
func (h *Hasher) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])
}

// Int writes v as a 64-bit value.
func (h *Hasher) Int(v int) { h.Uint64(uint64(int64(v))) }

// Float64 writes the IEEE-754 bits of v.
func (h *Hasher) Float64(v float64) { h.Uint64(math.Float64bits(v)) }

// Bool writes v as a 64-bit 0 or 1.
func (h *Hasher) Bool(v bool) {
	if v {
		h.Uint64(1)
		return
	}
	h.Uint64(0)
}

// String writes len(s) followed by its bytes.
func (h *Hasher) String(s string) {
	h.Int(len(s))
	_, _ = h.d.WriteString(s)
}

// Bytes writes len(b) followed by b.
func (h *Hasher) Bytes(b []byte) {
	h.Int(len(b))
	_, _ = h.d.Write(b)
}

// Sum64 returns the digest of everything written so far.
func (h *Hasher) Sum64() uint64 { return h.d.Sum64() }
