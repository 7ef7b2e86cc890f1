// Package utf8stream is an incremental UTF-8 decoder that consumes one byte
// at a time and never buffers a partial character.
package utf8stream

import (
	"errors"
	"unicode/utf8"
)

// Kind is the result class of a single [Decoder.Feed] call.
type Kind int

const (
	Pending Kind = iota // byte consumed, sequence still in progress
	Scalar              // a complete scalar value was assembled
	Invalid             // the sequence violated a validity rule
	Reject              // the byte is not a continuation byte and was not consumed
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Scalar:
		return "scalar"
	case Invalid:
		return "invalid"
	case Reject:
		return "reject"
	}
	return "unknown"
}

// Reason describes why an [Invalid] or [Reject] outcome was produced.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonInvalidLeadByte
	ReasonMalformedContinuation
	ReasonOverlong
	ReasonSurrogate
	ReasonNoncharacter
	ReasonOutOfRange
	ReasonTruncated // input ended inside a sequence
)

var (
	ErrInvalidLeadByte       = errors.New("invalid lead byte")
	ErrMalformedContinuation = errors.New("malformed continuation byte")
	ErrOverlong              = errors.New("overlong encoding")
	ErrSurrogate             = errors.New("surrogate encoding")
	ErrNoncharacter          = errors.New("noncharacter encoding")
	ErrOutOfRange            = errors.New("code point out of range")
	ErrTruncated             = errors.New("truncated sequence")
)

// Err returns the sentinel error for r, or nil for [ReasonNone].
func (r Reason) Err() error {
	switch r {
	case ReasonInvalidLeadByte:
		return ErrInvalidLeadByte
	case ReasonMalformedContinuation:
		return ErrMalformedContinuation
	case ReasonOverlong:
		return ErrOverlong
	case ReasonSurrogate:
		return ErrSurrogate
	case ReasonNoncharacter:
		return ErrNoncharacter
	case ReasonOutOfRange:
		return ErrOutOfRange
	case ReasonTruncated:
		return ErrTruncated
	}
	return nil
}

func (r Reason) String() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return "none"
}

// Outcome is returned by every call to [Decoder.Feed].
//
// Rune is only meaningful when Kind is [Scalar]; otherwise it holds
// utf8.RuneError. Reason is set for [Invalid] and [Reject].
type Outcome struct {
	Kind   Kind
	Rune   rune
	Reason Reason
}

// Reconsume reports whether the byte passed to Feed was left unconsumed and
// must be fed again as the start of a new sequence.
func (o Outcome) Reconsume() bool {
	return o.Kind == Reject
}

var pending = Outcome{Kind: Pending, Rune: utf8.RuneError}

func scalar(r rune) Outcome {
	return Outcome{Kind: Scalar, Rune: r}
}

func invalid(reason Reason) Outcome {
	return Outcome{Kind: Invalid, Rune: utf8.RuneError, Reason: reason}
}

func reject() Outcome {
	return Outcome{Kind: Reject, Rune: utf8.RuneError, Reason: ReasonMalformedContinuation}
}

// Token is a decoded unit produced by a [Reader]: either a scalar value or
// a placeholder for an invalid sequence.
type Token struct {
	Kind   Kind // Scalar or Invalid
	Rune   rune
	Reason Reason
	Offset int64 // stream offset of the first byte of the sequence
	Len    int   // number of bytes the sequence consumed
}

// Stats counts what a driver has seen so far.
type Stats struct {
	BytesConsumed int64
	Scalars       int64
	Invalid       int64
	Rejected      int64 // malformed continuations; each is also counted in Invalid
}
