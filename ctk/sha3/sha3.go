// Package sha3 implements the Keccak-f[1600] permutation and the SHA3-256 and
// SHA3-512 fixed-output hash functions as specified in FIPS 202.
package sha3

import (
	"encoding/binary"
	"encoding/hex"
)

// stateWords is the number of 64-bit lanes in the Keccak-f[1600] state
// (5x5 lanes of 64 bits each).
const stateWords = 25

const rounds = 24

// roundConstants are the iota step round constants, RC[i], for Keccak-f[1600].
var roundConstants = [rounds]uint64{
	0x0000000000000001, 0x0000000000008082,
	0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001,
	0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088,
	0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B,
	0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080,
	0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080,
	0x0000000080000001, 0x8000000080008008,
}

// rotationConstants are the rho step rotation offsets, indexed in the same
// lane-traversal order as piLane.
var rotationConstants = [24]uint{
	1, 3, 6, 10, 15, 21, 28, 36,
	45, 55, 2, 14, 27, 41, 56, 8,
	25, 43, 62, 18, 39, 61, 20, 44,
}

// piLane gives the destination lane index for each step of the combined
// rho/pi permutation.
var piLane = [24]uint{
	10, 7, 11, 17, 18, 3, 5, 16,
	8, 21, 24, 4, 15, 23, 19, 13,
	12, 2, 20, 14, 22, 9, 6, 1,
}

// SHA3 is a stateful instance of a Keccak-based sponge hash, parameterized by
// its rate and output length. Use NewSHA3256 or NewSHA3512 to construct one;
// do not build an SHA3 value directly.
type SHA3 struct {
	// state is the 1600-bit Keccak permutation state.
	state [stateWords]uint64

	// rate is the sponge's absorption/squeeze rate, in bytes.
	rate int

	// outputSize is the number of digest bytes to squeeze out.
	outputSize int

	// buf holds the message bytes passed to Update/UpdateWithBytes that don't
	// yet fill a whole rate-sized block, and so aren't absorbed into state yet.
	buf []byte
}

// newSHA3 creates a SHA3 instance for the given sponge rate r and output size
// n, both in bits.
func newSHA3(rateBits, outputBits int) *SHA3 {
	return &SHA3{
		rate:       rateBits / 8,
		outputSize: outputBits / 8,
	}
}

// NewSHA3256 creates a new SHA3-256 instance (rate 1088 bits, 256 bit digest).
func NewSHA3256() *SHA3 {
	return newSHA3(1088, 256)
}

// NewSHA3512 creates a new SHA3-512 instance (rate 576 bits, 512 bit digest).
func NewSHA3512() *SHA3 {
	return newSHA3(576, 512)
}

// Update appends str's bytes to the message to be hashed.
func (s *SHA3) Update(str string) {
	s.UpdateWithBytes([]byte(str))
}

// UpdateWithBytes appends b to the message to be hashed, absorbing every full
// rate-sized block that is now available.
func (s *SHA3) UpdateWithBytes(b []byte) {
	s.buf = append(s.buf, b...)

	for len(s.buf) >= s.rate {
		absorb(&s.state, s.buf[:s.rate])
		keccakF1600(&s.state)
		s.buf = s.buf[s.rate:]
	}
}

// Digest absorbs the still-buffered tail of the message (applying FIPS 202's
// pad10*1 rule with the "01" SHA-3 domain separation suffix) into a copy of
// the state and squeezes out the digest.
// Digest doesn't mutate the accumulated message, so it (and HexDigest) may be
// called more than once, or interleaved with further Update calls.
func (s *SHA3) Digest() []byte {
	state := s.state

	for _, block := range blocks(pad101(s.buf, s.rate), s.rate) {
		absorb(&state, block)
		keccakF1600(&state)
	}

	return squeeze(&state, s.rate, s.outputSize)
}

// HexDigest returns Digest encoded as a lowercase hex string.
func (s *SHA3) HexDigest() string {
	return hex.EncodeToString(s.Digest())
}

// blocks splits data, whose length must be a multiple of blockSize, into
// blockSize-sized chunks.
func blocks(data []byte, blockSize int) [][]byte {
	out := make([][]byte, 0, len(data)/blockSize)
	for i := 0; i < len(data); i += blockSize {
		out = append(out, data[i:i+blockSize])
	}
	return out
}

// pad101 implements FIPS 202's pad10*1 rule with the "01" domain separation
// suffix baked in: it always appends at least one padding block's worth of
// bytes (0x06, zero or more 0x00, then the top bit of the last byte set),
// even when data is already a multiple of rate — unlike the original,
// non-standard Keccak padding this algorithm's original Rust implementation
// used, which skipped padding entirely on an exact-multiple message.
func pad101(data []byte, rate int) []byte {
	padLen := rate - (len(data) % rate)

	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	padded[len(data)] = 0x06
	padded[len(padded)-1] |= 0x80

	return padded
}

// absorb XORs a rate-sized block of little-endian 64-bit lanes into state.
func absorb(state *[stateWords]uint64, block []byte) {
	for i := 0; i < len(block)/8; i++ {
		state[i] ^= binary.LittleEndian.Uint64(block[i*8:])
	}
}

// squeeze extracts outputSize bytes from state, running the permutation
// again between squeeze blocks if outputSize exceeds rate.
func squeeze(state *[stateWords]uint64, rate, outputSize int) []byte {
	out := make([]byte, 0, outputSize)
	lane := make([]byte, 8*stateWords)

	for len(out) < outputSize {
		for i := range state {
			binary.LittleEndian.PutUint64(lane[i*8:], state[i])
		}

		remaining := outputSize - len(out)
		n := rate
		if remaining < n {
			n = remaining
		}
		out = append(out, lane[:n]...)

		if len(out) < outputSize {
			keccakF1600(state)
		}
	}

	return out
}

// keccakF1600 applies the 24-round Keccak-f[1600] permutation to state.
func keccakF1600(state *[stateWords]uint64) {
	var bc [5]uint64

	for r := 0; r < rounds; r++ {
		// theta
		for i := range bc {
			bc[i] = state[i] ^ state[5+i] ^ state[10+i] ^ state[15+i] ^ state[20+i]
		}
		for i := range bc {
			t := bc[(i+4)%5] ^ rotl64(bc[(i+1)%5], 1)
			for j := 0; j < len(state); j += 5 {
				state[i+j] ^= t
			}
		}

		// rho and pi
		temp := state[1]
		for i := range piLane {
			j := piLane[i]
			temp2 := state[j]
			state[j] = rotl64(temp, rotationConstants[i])
			temp = temp2
		}

		// chi
		for j := 0; j < len(state); j += 5 {
			for i := range bc {
				bc[i] = state[j+i]
			}
			for i := range bc {
				state[j+i] ^= (^bc[(i+1)%5]) & bc[(i+2)%5]
			}
		}

		// iota
		state[0] ^= roundConstants[r]
	}
}

// rotl64 rotates x left by n bits (0 < n < 64).
func rotl64(x uint64, n uint) uint64 {
	return (x << n) | (x >> (64 - n))
}
