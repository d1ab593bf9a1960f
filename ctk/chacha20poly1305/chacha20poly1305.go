// Package chacha20poly1305 implements the ChaCha20-Poly1305 authenticated
// encryption with associated data (AEAD) algorithm as specified in
// https://datatracker.ietf.org/doc/html/rfc8439.
package chacha20poly1305

import (
	"encoding/binary"
	"errors"

	"github.com/pmuens/ctk-go/ctk/chacha20"
	"github.com/pmuens/ctk-go/ctk/poly1305"
)

// NonceSize is the size (in bytes) of a ChaCha20-Poly1305 nonce.
const NonceSize = 12

// TagSize is the size (in bytes) of the Poly1305 authentication tag.
const TagSize = 16

// ErrInvalidTag is returned by Decrypt when the computed Poly1305 tag doesn't
// match the tag supplied by the caller. Callers must discard the decrypted
// plaintext entirely when this error is returned.
var ErrInvalidTag = errors.New("chacha20poly1305: message authentication failed")

// ChaCha20Poly1305 is a stateless AEAD instance bound to a single key.
//
// The nonce passed to NewChaCha20Poly1305 must never be reused for more than
// one (Encrypt, Decrypt) pair under the same key.
type ChaCha20Poly1305 struct {
	key   [32]byte
	nonce [12]byte
}

// NewChaCha20Poly1305 creates a new ChaCha20-Poly1305 AEAD instance.
func NewChaCha20Poly1305(key [32]byte, nonce [12]byte) *ChaCha20Poly1305 {
	return &ChaCha20Poly1305{
		key:   key,
		nonce: nonce,
	}
}

// Encrypt encrypts plaintext and authenticates it together with aad,
// returning the ciphertext (the same length as plaintext) and its Poly1305
// tag.
func (c *ChaCha20Poly1305) Encrypt(plaintext, aad []byte) ([]byte, [16]byte, error) {
	// Block 0 of the key stream is reserved for deriving the one-time
	// Poly1305 key, so the cipher stream for the plaintext starts at block 1.
	cipher := chacha20.NewChaCha20(c.key, c.nonce, [4]byte{0x01, 0x00, 0x00, 0x00})
	ciphertext, err := cipher.XORWithKeyStream(plaintext)
	if err != nil {
		return nil, [16]byte{}, err
	}

	otk := Poly1305KeyGen(c.key, c.nonce)
	tag := poly1305.Mac(GeneratePoly1305Input(aad, ciphertext), otk)

	return ciphertext, tag, nil
}

// Decrypt verifies tag against ciphertext and aad, and only then decrypts
// ciphertext back into plaintext. It returns ErrInvalidTag (and no
// plaintext) when verification fails.
func (c *ChaCha20Poly1305) Decrypt(ciphertext, aad []byte, tag [16]byte) ([]byte, error) {
	otk := Poly1305KeyGen(c.key, c.nonce)
	want := poly1305.Mac(GeneratePoly1305Input(aad, ciphertext), otk)

	if !ConstantTimeCompare(tag, want) {
		return nil, ErrInvalidTag
	}

	cipher := chacha20.NewChaCha20(c.key, c.nonce, [4]byte{0x01, 0x00, 0x00, 0x00})
	return cipher.XORWithKeyStream(ciphertext)
}

// Poly1305KeyGen generates the one-time Poly1305 key via the ChaCha20 block
// function, per RFC 8439 section 2.6.
func Poly1305KeyGen(key [32]byte, nonce [12]byte) [32]byte {
	// The counter needs to be set to 0.
	counter := [4]byte{0x00, 0x00, 0x00, 0x00}

	// Create a new ChaCha20 instance with the passed-in key, nonce and the counter
	// set to 0.
	cha := chacha20.NewChaCha20(key, nonce, counter)
	// Create the first block of 512 bit state. The counter can't possibly be
	// exhausted on a brand new instance, so the error is always nil here.
	block, _ := cha.CreateBlock()

	// The Poly1305 key will be 256 bit long (128 bit for the r and 128 bit for
	// the s value).
	var result [32]byte

	// Only the first 256 bit of the 512 bit ChaCha20 state will be used.
	// Iterate over every word (32 bit) of those 256 bit.
	for i, word := range block[0:8] {
		index := (i * 4)

		// Extract the individual bytes from the word.
		result[index] = byte(word)
		result[index+1] = byte(word >> 8)
		result[index+2] = byte(word >> 16)
		result[index+3] = byte(word >> 24)
	}

	return result
}

// pad16 returns the number of zero bytes needed to pad n bytes up to the next
// multiple of 16 (0 if n is already a multiple of 16).
func pad16(n int) int {
	rem := n % 16
	if rem == 0 {
		return 0
	}
	return 16 - rem
}

// GeneratePoly1305Input assembles the authenticated data that Poly1305 runs
// over: aad padded to a 16-byte boundary, ciphertext padded to a 16-byte
// boundary, and the little-endian 64-bit lengths of aad and ciphertext, per
// RFC 8439 section 2.8.
func GeneratePoly1305Input(aad, ciphertext []byte) []byte {
	macData := make([]byte, 0, len(aad)+pad16(len(aad))+len(ciphertext)+pad16(len(ciphertext))+16)

	macData = append(macData, aad...)
	macData = append(macData, make([]byte, pad16(len(aad)))...)

	macData = append(macData, ciphertext...)
	macData = append(macData, make([]byte, pad16(len(ciphertext)))...)

	var lengths [16]byte
	binary.LittleEndian.PutUint64(lengths[0:8], uint64(len(aad)))
	binary.LittleEndian.PutUint64(lengths[8:16], uint64(len(ciphertext)))
	macData = append(macData, lengths[:]...)

	return macData
}

// ConstantTimeCompare reports whether a and b are equal, without branching on
// the value of any individual byte, so that the comparison time doesn't leak
// at which byte (if any) the tags first diverge.
func ConstantTimeCompare(a, b [16]byte) bool {
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
