// Package poly1305 implements the Poly1305 one-time authenticator as specified
// in https://datatracker.ietf.org/doc/html/rfc8439.
package poly1305

import (
	"encoding/binary"
	"math"

	"github.com/pmuens/ctk-go/internal/wideint"
)

// BlockSize is the size (in bytes) of the input to be processed at a time.
const BlockSize = 16

// Poly1305 is a stateful instance of the Poly1305 one-time authenticator.
//
// A Poly1305 instance must never be reused to authenticate two different
// messages with the same key; the caller is responsible for that discipline.
type Poly1305 struct {
	// accum is the accumulator which is used to compute the tag.
	accum wideint.Elem

	// rLo, rHi are the clamped r limbs.
	rLo, rHi uint64

	// sLo, sHi are the s limbs.
	sLo, sHi uint64
}

// NewPoly1305 creates a new instance of the Poly1305 MAC.
func NewPoly1305(key [32]byte) *Poly1305 {
	var rBytes, sBytes [16]byte
	copy(rBytes[:], key[0:16])
	copy(sBytes[:], key[16:32])

	rLo, rHi := wideint.FromKeyHalf(rBytes)
	rLo, rHi = wideint.ClampR(rLo, rHi)

	sLo, sHi := wideint.FromKeyHalf(sBytes)

	return &Poly1305{
		rLo: rLo,
		rHi: rHi,
		sLo: sLo,
		sHi: sHi,
	}
}

// GenerateTag creates the tag to authenticate the data.
func (p *Poly1305) GenerateTag(data []byte) [16]byte {
	numBlocks := int(math.Ceil(float64(len(data)) / BlockSize))

	for i := range numBlocks {
		// A block is a BlockSize bytes (or less) block from the input data.
		// Default to slice from the last sliced block to the end (to handle blocks
		// that have fewer than BlockSize bytes).
		block := data[(i * BlockSize):]
		// Check if an exact BlockSize byte block can be sliced and slice it, if so.
		if (i+1)*BlockSize < len(data) {
			block = data[(i * BlockSize):((i + 1) * BlockSize)]
		}

		if len(block) == BlockSize {
			lo, hi := binary.LittleEndian.Uint64(block[0:8]), binary.LittleEndian.Uint64(block[8:16])
			p.accum = p.accum.Add128(lo, hi, 1)
		} else {
			var buf [BlockSize]byte
			copy(buf[:], block)
			buf[len(block)] = 0x01

			lo, hi := binary.LittleEndian.Uint64(buf[0:8]), binary.LittleEndian.Uint64(buf[8:16])
			p.accum = p.accum.Add128(lo, hi, 0)
		}

		p.accum = p.accum.MulReduce(p.rLo, p.rHi)
	}

	return p.accum.AddFull128(p.sLo, p.sHi)
}

// Mac computes the one-time Poly1305 tag for msg under key, matching the
// stateless contract described in RFC 8439: callers must never reuse key to
// authenticate more than one message.
func Mac(msg []byte, key [32]byte) [16]byte {
	return NewPoly1305(key).GenerateTag(msg)
}
