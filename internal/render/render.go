// Package render turns decoded tokens into printable text.
//
// ASCII scalars are written literally, other scalars as <U+xxxx> escapes,
// NUL as <NUL> and invalid input as <?>. Placeholders and escapes can be
// coloured for terminal output.
package render

import (
	"bufio"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mnightingale/utf8stream"
)

const (
	Placeholder = "<?>"
	NUL         = "<NUL>"
)

type Printer struct {
	w *bufio.Writer

	color       bool
	placeholder lipgloss.Style
	escape      lipgloss.Style
	scratch     []byte
}

type Option func(p *Printer)

// WithColor enables styling of placeholders and escapes. Without it the
// output is plain text regardless of the destination.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		p.color = enabled
	}
}

func NewPrinter(w io.Writer, opts ...Option) *Printer {
	p := &Printer{w: bufio.NewWriter(w)}

	for _, opt := range opts {
		opt(p)
	}

	renderer := lipgloss.NewRenderer(w)
	if p.color {
		renderer.SetColorProfile(termenv.ANSI256)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	p.placeholder = renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	p.escape = renderer.NewStyle().Foreground(lipgloss.Color("6"))

	return p
}

// Print writes the text form of t.
func (p *Printer) Print(t utf8stream.Token) error {
	if t.Kind != utf8stream.Scalar {
		return p.styled(p.placeholder, Placeholder)
	}
	if t.Rune == 0 {
		return p.styled(p.placeholder, NUL)
	}
	if t.Rune < 0x80 {
		return p.w.WriteByte(byte(t.Rune))
	}
	p.scratch = Escape(p.scratch[:0], t.Rune)
	return p.styled(p.escape, string(p.scratch))
}

func (p *Printer) styled(s lipgloss.Style, text string) error {
	if p.color {
		text = s.Render(text)
	}
	_, err := p.w.WriteString(text)
	return err
}

// Flush writes any buffered output to the underlying writer.
func (p *Printer) Flush() error {
	return p.w.Flush()
}

// Escape appends the <U+xxxx> form of r to dst, using at least four
// lowercase hex digits.
func Escape(dst []byte, r rune) []byte {
	dst = append(dst, "<U+"...)
	hex := strconv.FormatInt(int64(r), 16)
	for i := len(hex); i < 4; i++ {
		dst = append(dst, '0')
	}
	dst = append(dst, hex...)
	return append(dst, '>')
}
