package wideint_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmuens/ctk-go/internal/wideint"
)

// bigP is the reference modulus 2^130 - 5, used only to cross-check the
// limb-based implementation against an independent oracle.
var bigP, _ = new(big.Int).SetString("3fffffffffffffffffffffffffffffffb", 16)

func elemToBig(lo, hi uint64) *big.Int {
	v := new(big.Int).SetUint64(hi)
	v.Lsh(v, 64)
	v.Or(v, new(big.Int).SetUint64(lo))
	return v
}

// driveReference replays the Poly1305 accumulation rule a ← ((a + n) * r) mod p
// using math/big, for a given sequence of 16-byte blocks (the last one may be
// shorter, as Poly1305 allows).
func driveReference(blocks [][]byte, r *big.Int) *big.Int {
	acc := big.NewInt(0)
	for _, block := range blocks {
		withBit := append(append([]byte{}, block...), 0x01)
		reversed := make([]byte, len(withBit))
		for i, b := range withBit {
			reversed[len(withBit)-1-i] = b
		}
		n := new(big.Int).SetBytes(reversed)
		acc.Add(acc, n)
		acc.Mul(acc, r)
		acc.Mod(acc, bigP)
	}
	return acc
}

func TestMulReduceMatchesBigIntOracle(t *testing.T) {
	tt := map[string]struct {
		rLo, rHi uint64
		blocks   [][]byte
	}{
		"single full block": {
			rLo: 0x0102030405060708, rHi: 0x0102030400000000,
			blocks: [][]byte{
				{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
			},
		},
		"two full blocks": {
			rLo: 0x00ffffffffffffff, rHi: 0x0000000f0ffffffc,
			blocks: [][]byte{
				{0xff, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
				{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		"trailing short block": {
			rLo: 0x1111111111111111, rHi: 0x0000000011111111,
			blocks: [][]byte{
				{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
				{1, 2, 3},
			},
		},
	}

	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var acc wideint.Elem
			for _, block := range tc.blocks {
				if len(block) == 16 {
					lo := leUint64(block[0:8])
					hi := leUint64(block[8:16])
					acc = acc.Add128(lo, hi, 1)
				} else {
					var buf [16]byte
					copy(buf[:], block)
					buf[len(block)] = 1
					lo := leUint64(buf[0:8])
					hi := leUint64(buf[8:16])
					acc = acc.Add128(lo, hi, 0)
				}
				acc = acc.MulReduce(tc.rLo, tc.rHi)
			}

			got := acc.AddFull128(0, 0)

			want := driveReference(tc.blocks, elemToBig(tc.rLo, tc.rHi))
			want.Mod(want, new(big.Int).Lsh(big.NewInt(1), 128))
			wantBytes := want.FillBytes(make([]byte, 16))
			reverseInPlace(wantBytes)

			require.Equal(t, wantBytes, got[:])
		})
	}
}

func TestClampRZeroesSpecifiedBits(t *testing.T) {
	lo, hi := wideint.FromKeyHalf([16]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	})

	clampedLo, clampedHi := wideint.ClampR(lo, hi)

	require.Equal(t, uint64(0x0FFFFFFC0FFFFFFF), clampedLo)
	require.Equal(t, uint64(0x0FFFFFFC0FFFFFFC), clampedHi)
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func reverseInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
