package main

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/pmuens/ctk-go/ctk/chacha20poly1305"
	"github.com/pmuens/ctk-go/ctk/sha3"
)

func main() {
	// RFC 8439 section 2.8.2 example: encrypt, authenticate, then decrypt and
	// verify a short message under ChaCha20-Poly1305.
	key := [32]byte{
		0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
		0x88, 0x89, 0x8a, 0x8b, 0x8c, 0x8d, 0x8e, 0x8f,
		0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97,
		0x98, 0x99, 0x9a, 0x9b, 0x9c, 0x9d, 0x9e, 0x9f,
	}
	nonce := [12]byte{0x07, 0x00, 0x00, 0x00, 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47}
	aad := []byte{0x50, 0x51, 0x52, 0x53, 0xc0, 0xc1, 0xc2, 0xc3, 0xc4, 0xc5, 0xc6, 0xc7}
	plaintext := []byte("Ladies and Gentlemen of the class of '99: If I could offer you " +
		"only one tip for the future, sunscreen would be it.")

	aead := chacha20poly1305.NewChaCha20Poly1305(key, nonce)

	ciphertext, tag, err := aead.Encrypt(plaintext, aad)
	if err != nil {
		log.Fatalf("encrypt: %v", err)
	}
	fmt.Printf("ciphertext: %s\n", hex.EncodeToString(ciphertext))
	fmt.Printf("tag:        %s\n", hex.EncodeToString(tag[:]))

	decrypted, err := aead.Decrypt(ciphertext, aad, tag)
	if err != nil {
		log.Fatalf("decrypt: %v", err)
	}
	fmt.Printf("decrypted:  %s\n", decrypted)

	digest := sha3.NewSHA3256()
	digest.UpdateWithBytes(ciphertext)
	fmt.Printf("sha3-256(ciphertext): %s\n", digest.HexDigest())
}
