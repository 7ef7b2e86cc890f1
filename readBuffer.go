package utf8stream

import (
	"io"
)

const (
	defaultReadBufSize = 32 * 1024
	minReadBufSize     = 16
)

type readBuffer struct {
	buf        []byte
	start, end int
	err        error // sticky error from the underlying reader
}

func (rb *readBuffer) init() {
	if len(rb.buf) == 0 {
		rb.buf = make([]byte, defaultReadBufSize)
	}
}

func (rb *readBuffer) window() []byte {
	return rb.buf[rb.start:rb.end]
}

func (rb *readBuffer) advance(consumed int) {
	if consumed <= 0 {
		return
	}
	rb.start += consumed
	if rb.start >= rb.end {
		rb.start, rb.end = 0, 0
	}
}

// fill reads into the buffer once it has been fully consumed. Readers that
// return (0, nil) are retried, up to io.ErrNoProgress.
func (rb *readBuffer) fill(r io.Reader) error {
	rb.init()

	if rb.start < rb.end {
		return nil
	}
	if rb.err != nil {
		return rb.err
	}

	rb.start, rb.end = 0, 0
	for range 100 {
		n, err := r.Read(rb.buf)
		if n > 0 {
			rb.end = n
		}
		if err != nil {
			rb.err = err
		}
		if n > 0 {
			return nil
		}
		if err != nil {
			return err
		}
	}
	rb.err = io.ErrNoProgress
	return rb.err
}
