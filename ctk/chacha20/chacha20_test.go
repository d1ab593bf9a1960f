package chacha20_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmuens/ctk-go/ctk/chacha20"
)

func TestCreateBlockIsDeterministicForAGivenState(t *testing.T) {
	key := [32]byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
		0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
		0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f,
	}
	nonce := [12]byte{0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00, 0x4a, 0x00, 0x00, 0x00, 0x00}
	counter := [4]byte{0x01, 0x00, 0x00, 0x00}

	first, err := chacha20.NewChaCha20(key, nonce, counter).CreateBlock()
	require.NoError(t, err)

	second, err := chacha20.NewChaCha20(key, nonce, counter).CreateBlock()
	require.NoError(t, err)

	require.Equal(t, first, second)

	// The block function must actually produce output: it shouldn't leave the
	// state all-zero.
	require.NotEqual(t, [16]uint32{}, first)
}

func TestXORWithKeyStreamMatchesRFC8439EncryptionVector(t *testing.T) {
	key := [32]byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
		0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
		0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f,
	}
	nonce := [12]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x4a, 0x00, 0x00, 0x00, 0x00}
	counter := [4]byte{0x01, 0x00, 0x00, 0x00}

	plaintext := []byte("Ladies and Gentlemen of the class of '99: If I could offer you " +
		"only one tip for the future, sunscreen would be it.")
	wantCiphertext := []byte{
		0x6e, 0x2e, 0x35, 0x9a, 0x25, 0x68, 0xf9, 0x80, 0x41, 0xba, 0x07, 0x28,
		0xdd, 0x0d, 0x69, 0x81, 0xe9, 0x7e, 0x7a, 0xec, 0x1d, 0x43, 0x60, 0xc2,
		0x0a, 0x27, 0xaf, 0xcc, 0xfd, 0x9f, 0xae, 0x0b, 0xf9, 0x1b, 0x65, 0xc5,
		0x52, 0x47, 0x33, 0xab, 0x8f, 0x59, 0x3d, 0xab, 0xcd, 0x62, 0xb3, 0x57,
		0x16, 0x39, 0xd6, 0x24, 0xe6, 0x51, 0x52, 0xab, 0x8f, 0x53, 0x0c, 0x35,
		0x9f, 0x08, 0x61, 0xd8, 0x07, 0xca, 0x0d, 0xbf, 0x50, 0x0d, 0x6a, 0x61,
		0x56, 0xa3, 0x8e, 0x08, 0x8a, 0x22, 0xb6, 0x5e, 0x52, 0xbc, 0x51, 0x4d,
		0x16, 0xcc, 0xf8, 0x06, 0x81, 0x8c, 0xe9, 0x1a, 0xb7, 0x79, 0x37, 0x36,
		0x5a, 0xf9, 0x0b, 0xbf, 0x74, 0xa3, 0x5b, 0xe6, 0xb4, 0x0b, 0x8e, 0xed,
		0xf2, 0x78, 0x5e, 0x42, 0x87, 0x4d,
	}

	c := chacha20.NewChaCha20(key, nonce, counter)
	ciphertext, err := c.XORWithKeyStream(plaintext)
	require.NoError(t, err)
	require.Equal(t, wantCiphertext, ciphertext)

	d := chacha20.NewChaCha20(key, nonce, counter)
	roundTripped, err := d.XORWithKeyStream(ciphertext)
	require.NoError(t, err)

	require.Equal(t, plaintext, roundTripped)
}

func TestCreateBlockReturnsErrCounterOverflowAfterExhaustion(t *testing.T) {
	key := [32]byte{}
	nonce := [12]byte{}
	counter := [4]byte{0xff, 0xff, 0xff, 0xff}

	c := chacha20.NewChaCha20(key, nonce, counter)

	_, err := c.CreateBlock()
	require.NoError(t, err)

	_, err = c.CreateBlock()
	require.ErrorIs(t, err, chacha20.ErrCounterOverflow)
}

func TestXORWithKeyStreamIsInvolutive(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}
	var nonce [12]byte
	for i := range nonce {
		nonce[i] = byte(i * 3)
	}
	counter := [4]byte{}

	lengths := []int{0, 1, 63, 64, 65, 127, 128, 129, 1000}
	for _, n := range lengths {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}

		enc := chacha20.NewChaCha20(key, nonce, counter)
		ciphertext, err := enc.XORWithKeyStream(data)
		require.NoError(t, err)

		dec := chacha20.NewChaCha20(key, nonce, counter)
		plaintext, err := dec.XORWithKeyStream(ciphertext)
		require.NoError(t, err)

		require.Equal(t, data, plaintext, "length %d", n)
	}
}
