package utf8stream

// MaxRune is the largest valid Unicode scalar value.
const MaxRune = 0x10FFFF

// minValue is the smallest value each continuation count may encode;
// anything below it is overlong.
var minValue = [...]uint32{
	1: 0x80,
	2: 0x800,
	3: 0x10000,
	4: 0x200000,
	5: 0x4000000,
}

// Decoder is an incremental UTF-8 decoder. It consumes one byte per call to
// Feed and keeps just enough state to resume a multi-byte sequence on the
// next call.
//
// The zero value is an idle, strict decoder. A Decoder must not be shared
// between goroutines or streams.
type Decoder struct {
	// AllowNoncharacters disables rejection of U+FFFE and U+FFFF.
	AllowNoncharacters bool

	expected uint8  // continuation bytes still required; 0 means idle
	sequence uint8  // continuation bytes declared by the lead byte
	acc      uint32 // scalar value being assembled
}

// Feed decodes one byte.
//
// When the result is Reject the byte was not part of the aborted sequence;
// the decoder is idle again and the caller must feed the same byte again.
func (d *Decoder) Feed(c byte) Outcome {
	if d.expected == 0 {
		return d.lead(c)
	}

	// decode failure: trailing byte is not 10xxxxxx
	if c>>6 != 0b10 {
		d.expected = 0
		return reject()
	}

	d.expected--
	d.acc |= uint32(c&0x3f) << (6 * uint32(d.expected))
	if d.expected > 0 {
		return pending
	}
	return d.complete()
}

func (d *Decoder) lead(c byte) Outcome {
	var n uint8
	var payload byte

	switch {
	case c>>7 == 0:
		return scalar(rune(c))
	case c>>5 == 0b110:
		n, payload = 1, c&0x1f
	case c>>4 == 0b1110:
		n, payload = 2, c&0x0f
	case c>>3 == 0b11110:
		n, payload = 3, c&0x07
	case c>>2 == 0b111110:
		n, payload = 4, c&0x03
	case c>>1 == 0b1111110:
		n, payload = 5, c&0x01
	default:
		// stray continuation byte, 0xFE or 0xFF
		return invalid(ReasonInvalidLeadByte)
	}

	d.expected = n
	d.sequence = n
	d.acc = uint32(payload) << (6 * uint32(n))
	return pending
}

func (d *Decoder) complete() Outcome {
	v := d.acc

	switch {
	case v < minValue[d.sequence]:
		return invalid(ReasonOverlong)
	case v >= 0xD800 && v <= 0xDFFF:
		return invalid(ReasonSurrogate)
	case (v == 0xFFFE || v == 0xFFFF) && !d.AllowNoncharacters:
		return invalid(ReasonNoncharacter)
	case v > MaxRune:
		return invalid(ReasonOutOfRange)
	}
	return scalar(rune(v))
}

// Flush ends the stream. If a sequence is in progress it is abandoned and
// reported as Invalid with ReasonTruncated; otherwise Flush returns a
// Pending outcome, meaning there is nothing to report.
func (d *Decoder) Flush() Outcome {
	if d.expected == 0 {
		return pending
	}
	d.Reset()
	return invalid(ReasonTruncated)
}

// Reset drops any sequence in progress.
func (d *Decoder) Reset() {
	d.expected = 0
	d.sequence = 0
	d.acc = 0
}

// Idle reports whether the next byte will be read as a lead byte.
func (d *Decoder) Idle() bool {
	return d.expected == 0
}

// Remaining returns the number of continuation bytes still required by the
// sequence in progress.
func (d *Decoder) Remaining() int {
	return int(d.expected)
}
