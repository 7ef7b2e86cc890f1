package utf8stream

import (
	"errors"
	"unicode/utf8"
)

var (
	ErrDataMissing         = errors.New("no input data")
	errDestinationTooSmall = errors.New("destination must be at least the length of source")
)

// DecodeAll decodes src into dst in a single call, substituting
// utf8.RuneError for every invalid sequence. It drives the same [Decoder]
// as [Reader], one byte at a time, so both produce the same runes for the
// same input.
//
// dst must be at least len(src) runes. Returns the number of runes written
// to dst and counters for the input.
func DecodeAll(dst []rune, src []byte) (n int, stats Stats, err error) {
	if len(src) == 0 {
		return 0, stats, ErrDataMissing
	}
	if len(dst) < len(src) {
		return 0, stats, errDestinationTooSmall
	}

	var d Decoder

	put := func(o Outcome) {
		if o.Kind == Scalar {
			dst[n] = o.Rune
			stats.Scalars++
		} else {
			dst[n] = utf8.RuneError
			stats.Invalid++
		}
		n++
	}

	for i := 0; i < len(src); {
		o := d.Feed(src[i])
		switch o.Kind {
		case Pending:
		case Reject:
			// src[i] is fed again as a lead byte
			stats.Rejected++
			put(o)
			continue
		default:
			put(o)
		}
		i++
	}

	if o := d.Flush(); o.Kind == Invalid {
		put(o)
	}
	stats.BytesConsumed = int64(len(src))

	return n, stats, nil
}
