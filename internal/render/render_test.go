package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mnightingale/utf8stream"
)

func TestEscape(t *testing.T) {
	cases := []struct {
		r        rune
		expected string
	}{
		{0x80, "<U+0080>"},
		{0x20ac, "<U+20ac>"},
		{0xfffd, "<U+fffd>"},
		{0x1f600, "<U+1f600>"},
		{0x10ffff, "<U+10ffff>"},
	}

	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			require.Equal(t, tc.expected, string(Escape(nil, tc.r)))
		})
	}
}

func TestPrinter(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"ascii", "hello", "hello"},
		{"euro", "hell\xe2\x82\xac", "hell<U+20ac>"},
		{"nul", "a\x00b", "a<NUL>b"},
		{"stray continuation", "\xa1", "<?>"},
		{"resync", "\xe2\x28\xa1", "<?>(<?>"},
		{"overlong", "\xc0\x80", "<?>"},
		{"truncated", "ab\xe2\x82", "ab<?>"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := new(bytes.Buffer)
			p := NewPrinter(out)
			r := utf8stream.NewReader(strings.NewReader(tc.raw))

			for {
				tok, err := r.Next()
				if err != nil {
					break
				}
				require.NoError(t, p.Print(tok))
			}
			require.NoError(t, p.Flush())
			require.Equal(t, tc.expected, out.String())
		})
	}
}

func TestPrinterColor(t *testing.T) {
	out := new(bytes.Buffer)
	p := NewPrinter(out, WithColor(true))

	require.NoError(t, p.Print(utf8stream.Token{Kind: utf8stream.Invalid}))
	require.NoError(t, p.Print(utf8stream.Token{Kind: utf8stream.Scalar, Rune: 'x'}))
	require.NoError(t, p.Flush())

	s := out.String()
	require.Contains(t, s, Placeholder)
	require.Contains(t, s, "\x1b[")
	require.True(t, strings.HasSuffix(s, "x"))
}
