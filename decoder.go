package utf8stream

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Reader decodes UTF-8 from an underlying io.Reader, feeding a [Decoder]
// one byte at a time.
//
// Every byte of input is accounted for by exactly one token: malformed
// input becomes an Invalid token and is never dropped or merged into a
// neighbouring character. A Reader must not be used from more than one
// goroutine.
type Reader struct {
	r   io.Reader
	rb  readBuffer
	dec Decoder
	log *zap.Logger

	offset   int64 // stream offset of the next unconsumed byte
	seqStart int64 // stream offset of the first byte of the sequence in progress
	stats    Stats
}

type ReaderOption func(r *Reader)

func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	rd := &Reader{r: r, log: zap.NewNop()}

	for _, opt := range opts {
		opt(rd)
	}

	return rd
}

// WithBufferSize sets the size of the read buffer.
func WithBufferSize(size int) ReaderOption {
	return func(r *Reader) {
		r.rb = readBuffer{buf: make([]byte, max(size, minReadBufSize))}
	}
}

// WithLogger sets the logger used to report malformed input at debug level.
func WithLogger(log *zap.Logger) ReaderOption {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// WithNoncharacters makes the decoder accept U+FFFE and U+FFFF.
func WithNoncharacters() ReaderOption {
	return func(r *Reader) {
		r.dec.AllowNoncharacters = true
	}
}

// Next returns the next token. At the end of input a sequence left
// incomplete is returned as an Invalid token with ReasonTruncated, after
// which Next returns io.EOF.
func (r *Reader) Next() (Token, error) {
	for {
		if err := r.rb.fill(r.r); err != nil {
			if !errors.Is(err, io.EOF) {
				return Token{}, fmt.Errorf("utf8stream: read at offset %d: %w", r.offset, err)
			}
			if o := r.dec.Flush(); o.Kind == Invalid {
				return r.emit(o), nil
			}
			return Token{}, io.EOF
		}

		c := r.rb.window()[0]
		o := r.dec.Feed(c)

		if o.Kind == Reject {
			// c starts the next sequence; leave it in the buffer so it is
			// fed again on the following iteration.
			r.stats.Rejected++
			return r.emit(o), nil
		}

		r.rb.advance(1)
		r.offset++
		r.stats.BytesConsumed++

		if o.Kind != Pending {
			return r.emit(o), nil
		}
	}
}

func (r *Reader) emit(o Outcome) Token {
	t := Token{
		Kind:   o.Kind,
		Rune:   o.Rune,
		Reason: o.Reason,
		Offset: r.seqStart,
		Len:    int(r.offset - r.seqStart),
	}
	if t.Kind == Reject {
		t.Kind = Invalid
	}
	r.seqStart = r.offset

	if t.Kind == Scalar {
		r.stats.Scalars++
		return t
	}

	r.stats.Invalid++
	r.log.Debug("invalid utf-8 sequence",
		zap.Int64("offset", t.Offset),
		zap.Int("length", t.Len),
		zap.Stringer("reason", t.Reason),
	)
	return t
}

// ReadRune implements io.RuneReader. Invalid sequences are returned as
// utf8.RuneError with the number of bytes they spanned.
func (r *Reader) ReadRune() (ch rune, size int, err error) {
	t, err := r.Next()
	if err != nil {
		return 0, 0, err
	}
	return t.Rune, t.Len, nil
}

// Stats returns counters for the input decoded so far.
func (r *Reader) Stats() Stats {
	return r.stats
}

// Offset returns the stream offset of the next byte to be decoded.
func (r *Reader) Offset() int64 {
	return r.offset
}
