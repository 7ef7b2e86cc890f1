package utf8stream

import (
	"bytes"
	"crypto/rand"
	mathrand "math/rand"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestDecodeAll(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected []rune
		stats    Stats
	}{
		{"ascii", "foobar", []rune("foobar"), Stats{BytesConsumed: 6, Scalars: 6}},
		{"euro", "hell\xe2\x82\xac", []rune("hell€"), Stats{BytesConsumed: 7, Scalars: 5}},
		{"resync", "\xe2\x28\xa1", []rune{utf8.RuneError, '(', utf8.RuneError},
			Stats{BytesConsumed: 3, Scalars: 1, Invalid: 2, Rejected: 1}},
		{"truncated", "x\xe2\x82", []rune{'x', utf8.RuneError},
			Stats{BytesConsumed: 3, Scalars: 1, Invalid: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dst := make([]rune, len(tc.raw))
			n, stats, err := DecodeAll(dst, []byte(tc.raw))
			require.NoError(t, err)
			require.Equal(t, tc.expected, dst[:n])
			require.Equal(t, tc.stats, stats)
		})
	}
}

func TestDecodeAllErrors(t *testing.T) {
	_, _, err := DecodeAll(make([]rune, 4), nil)
	require.ErrorIs(t, err, ErrDataMissing)

	_, _, err = DecodeAll(make([]rune, 1), []byte("ab"))
	require.ErrorIs(t, err, errDestinationTooSmall)
}

func TestDecodeAllMatchesReader(t *testing.T) {
	// Use a deterministic seed so a failure can be reproduced.
	rng := mathrand.New(mathrand.NewSource(42))
	raw := make([]byte, 1024*1024)
	rng.Read(raw)

	dst := make([]rune, len(raw))
	n, stats, err := DecodeAll(dst, raw)
	require.NoError(t, err)

	r := NewReader(bytes.NewReader(raw))
	tokens := readAll(t, r)

	require.Equal(t, len(tokens), n, "rune counts must match")
	for i, tok := range tokens {
		require.Equal(t, tok.Rune, dst[i], "token %d at offset %d", i, tok.Offset)
	}
	require.Equal(t, r.Stats(), stats)
}

func BenchmarkDecodeAll(b *testing.B) {
	raw := make([]byte, 1024*1024)
	_, err := rand.Read(raw)
	require.NoError(b, err)

	dst := make([]rune, len(raw))

	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for b.Loop() {
		if _, _, err := DecodeAll(dst, raw); err != nil {
			b.Fatal(err)
		}
	}
}
