// Package wideint implements the 130-bit modular arithmetic that Poly1305
// needs over the prime p = 2^130 - 5, as two 64-bit accumulator limbs plus a
// narrow high limb, following the standard Poly1305 partial-reduction
// technique (multiply, then reduce high*5+low). It deliberately does not
// expose a general-purpose wide-integer type: the contract is exactly the
// handful of operations Poly1305 needs, in constant time.
package wideint

import (
	"encoding/binary"
	"math/bits"
)

// Elem is a value modulo p = 2^130 - 5, held as three 64-bit limbs
// [h0, h1, h2] such that the represented value is h0 + h1*2^64 + h2*2^128.
// h2 only ever holds a handful of bits during partial reduction; it is not a
// general third limb.
type Elem struct {
	h0, h1, h2 uint64
}

// [p0, p1, p2] is 2^130 - 5 in little-endian limb order.
const (
	p0 = 0xFFFFFFFFFFFFFFFB
	p1 = 0xFFFFFFFFFFFFFFFF
	p2 = 0x0000000000000003
)

// Clamp masks, RFC 8439 section 2.5: the top nibble of bytes 3, 7, 11, 15 of r
// and the bottom two bits of bytes 4, 8, 12 are forced to zero.
const (
	rMask0 = 0x0FFFFFFC0FFFFFFF
	rMask1 = 0x0FFFFFFC0FFFFFFC
)

// FromKeyHalf decodes a little-endian 16-byte buffer into two 64-bit limbs.
func FromKeyHalf(b [16]byte) (lo, hi uint64) {
	return binary.LittleEndian.Uint64(b[0:8]), binary.LittleEndian.Uint64(b[8:16])
}

// ClampR applies the Poly1305 clamp to the raw r limbs.
func ClampR(lo, hi uint64) (uint64, uint64) {
	return lo & rMask0, hi & rMask1
}

// Add128 adds the little-endian 128-bit value (lo, hi) into e, plus an extra
// high bit (0 or 1) representing a bit set above the 128-bit value itself.
// Poly1305 uses extra=1 for full 16-byte blocks, where the appended 0x01
// byte lands just above bit 128, and extra=0 for the final short block, where
// the 0x01 byte is already folded into lo/hi.
func (e Elem) Add128(lo, hi, extra uint64) Elem {
	h0, c := bits.Add64(e.h0, lo, 0)
	h1, c := bits.Add64(e.h1, hi, c)
	h2 := e.h2 + c + extra
	return Elem{h0, h1, h2}
}

func mul64(a, b uint64) (lo, hi uint64) {
	hi, lo = bits.Mul64(a, b)
	return
}

func add128(alo, ahi, blo, bhi uint64) (lo, hi uint64) {
	lo, c := bits.Add64(alo, blo, 0)
	hi, _ = bits.Add64(ahi, bhi, c)
	return
}

// MulReduce multiplies e by the clamped r (rlo, rhi, a value below 2^124)
// and partially reduces the product modulo p = 2^130 - 5. The result may
// still exceed p, but is always below 2*p, ready for another round of
// Add128/MulReduce or for the final reduction in AddFull128.
func (e Elem) MulReduce(rlo, rhi uint64) Elem {
	h0, h1, h2 := e.h0, e.h1, e.h2

	h0r0lo, h0r0hi := mul64(h0, rlo)
	h1r0lo, h1r0hi := mul64(h1, rlo)
	h2r0lo, h2r0hi := mul64(h2, rlo)
	h0r1lo, h0r1hi := mul64(h0, rhi)
	h1r1lo, h1r1hi := mul64(h1, rhi)
	h2r1lo, h2r1hi := mul64(h2, rhi)

	// h2 is at most a handful of bits and r has its top 4 bits cleared by the
	// clamp, so these high limbs never carry into a fifth limb.
	if h2r0hi != 0 || h2r1hi != 0 {
		panic("wideint: unexpected overflow reducing Poly1305 accumulator")
	}

	m0lo, m0hi := h0r0lo, h0r0hi
	m1lo, m1hi := add128(h1r0lo, h1r0hi, h0r1lo, h0r1hi)
	m2lo, m2hi := add128(h2r0lo, h2r0hi, h1r1lo, h1r1hi)
	m3lo := h2r1lo

	t0 := m0lo
	t1, c := bits.Add64(m1lo, m0hi, 0)
	t2, c := bits.Add64(m2lo, m1hi, c)
	t3, _ := bits.Add64(m3lo, m2hi, c)

	// Split the 4-limb result at the 2^130 mark and fold the high part back
	// in via the identity c*2^130 + n = c*5 + n (mod 2^130 - 5).
	const maskLow2Bits = 0x3
	h0, h1, h2 = t0, t1, t2&maskLow2Bits
	ccLo, ccHi := t2&^maskLow2Bits, t3

	h0, c = bits.Add64(h0, ccLo, 0)
	h1, c = bits.Add64(h1, ccHi, c)
	h2 += c

	ccLo, ccHi = ccLo>>2|(ccHi&3)<<62, ccHi>>2

	h0, c = bits.Add64(h0, ccLo, 0)
	h1, c = bits.Add64(h1, ccHi, c)
	h2 += c

	return Elem{h0, h1, h2}
}

// select64 returns x if v == 1 and y if v == 0, in constant time.
func select64(v, x, y uint64) uint64 { return ^(v-1)&x | (v-1)&y }

// AddFull128 completes the modular reduction of e, adds the little-endian
// 128-bit value (slo, shi) modulo 2^128 (discarding any carry out of the top
// bit), and serializes the 128-bit result as little-endian bytes.
func (e Elem) AddFull128(slo, shi uint64) [16]byte {
	h0, h1, h2 := e.h0, e.h1, e.h2

	// e is below 2*p after MulReduce; subtract p once and keep whichever of
	// e or e-p didn't underflow, in constant time.
	t0, b := bits.Sub64(h0, p0, 0)
	t1, b := bits.Sub64(h1, p1, b)
	_, b = bits.Sub64(h2, p2, b)

	h0 = select64(b, h0, t0)
	h1 = select64(b, h1, t1)

	h0, c := bits.Add64(h0, slo, 0)
	h1, _ = bits.Add64(h1, shi, c)

	var out [16]byte
	binary.LittleEndian.PutUint64(out[0:8], h0)
	binary.LittleEndian.PutUint64(out[8:16], h1)
	return out
}
