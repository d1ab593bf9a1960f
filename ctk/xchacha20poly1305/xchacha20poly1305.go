// Package xchacha20poly1305 implements the XChaCha20-Poly1305 authenticated
// encryption with associated data (AEAD) algorithm as specified in
// https://datatracker.ietf.org/doc/html/draft-irtf-cfrg-xchacha-03.
package xchacha20poly1305

import (
	"github.com/pmuens/ctk-go/ctk/chacha20poly1305"
	"github.com/pmuens/ctk-go/ctk/xchacha20"
)

// ErrInvalidTag is returned if the Poly1305 tag is invalid.
var ErrInvalidTag = chacha20poly1305.ErrInvalidTag

// XChaCha20Poly1305 is a stateless AEAD instance bound to a single key.
//
// The nonce passed to NewXChaCha20Poly1305 must never be reused for more than
// one (Encrypt, Decrypt) pair under the same key. Unlike ChaCha20Poly1305's
// 96-bit nonce, XChaCha20Poly1305's 192-bit nonce is safe to generate at
// random for every message.
type XChaCha20Poly1305 struct {
	// inner is the ChaCha20-Poly1305 AEAD instance, running under the
	// HChaCha20-derived subkey and the last 64 bits of the XChaCha20 nonce.
	inner *chacha20poly1305.ChaCha20Poly1305
}

// NewXChaCha20Poly1305 creates a new instance of the XChaCha20-Poly1305 AEAD
// algorithm.
func NewXChaCha20Poly1305(key [32]byte, nonce [24]byte) *XChaCha20Poly1305 {
	// The nonce for HChaCha20 consists of the first 16 bytes of the 24 byte
	// nonce; its output becomes the key ChaCha20-Poly1305 runs under.
	hChaChaNonce := [16]byte(nonce[0:16])
	subKey := xchacha20.NewHChaCha20(key, hChaChaNonce).GenerateSubKey()

	// The nonce for ChaCha20-Poly1305 consists of the last 8 bytes of the 24
	// byte nonce, prefixed with 4 zero bytes (RFC 8439 specifies a 12 byte
	// ChaCha20 nonce).
	chaChaNonce := [12]byte(append([]byte{0x00, 0x00, 0x00, 0x00}, nonce[16:24]...))

	return &XChaCha20Poly1305{
		inner: chacha20poly1305.NewChaCha20Poly1305(subKey, chaChaNonce),
	}
}

// Encrypt encrypts plaintext via XChaCha20 and authenticates it, together
// with aad, via Poly1305.
func (x *XChaCha20Poly1305) Encrypt(plaintext, aad []byte) ([]byte, [16]byte, error) {
	return x.inner.Encrypt(plaintext, aad)
}

// Decrypt verifies tag against ciphertext and aad, and only then decrypts
// ciphertext back into plaintext via XChaCha20. It returns ErrInvalidTag
// (and no plaintext) when verification fails.
func (x *XChaCha20Poly1305) Decrypt(ciphertext, aad []byte, tag [16]byte) ([]byte, error) {
	return x.inner.Decrypt(ciphertext, aad, tag)
}
