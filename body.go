package apptest

import (
	"fmt"
	"io"
)

// Stream is the body of a request or response. Implementations may also
// provide io.Seeker, Sizer or LenReader; the response adapter uses them when
// draining the body.
type Stream interface {
	io.Reader
	io.Writer
}

// Sizer is implemented by streams that know their total size.
type Sizer interface {
	Size() int64
}

// LenReader is an interface implemented by many in-memory io.Reader's. It
// reports the number of unread bytes.
type LenReader interface {
	Len() int
}

var (
	errNegativeOffset = fmt.Errorf("apptest: negative offset")
	errInvalidWhence  = fmt.Errorf("apptest: invalid whence")
)

// Body is an in-memory seekable stream. Writes go to the current offset and
// move it forward, reads continue from the same offset, so a freshly written
// body must be rewound before it is read.
type Body struct {
	buf []byte
	off int64
}

// NewBody creates a body holding content, positioned at the start.
func NewBody(content []byte) *Body {
	return &Body{buf: content}
}

// NewBodyString is NewBody for string content.
func NewBodyString(content string) *Body {
	return NewBody([]byte(content))
}

func (b *Body) Read(p []byte) (int, error) {
	if b.off >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.off:])
	b.off += int64(n)
	return n, nil
}

func (b *Body) Write(p []byte) (int, error) {
	end := b.off + int64(len(p))
	if end > int64(len(b.buf)) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[b.off:], p)
	b.off = end
	return len(p), nil
}

// WriteString writes s at the current offset.
func (b *Body) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

func (b *Body) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errInvalidWhence
	}
	if abs < 0 {
		return 0, errNegativeOffset
	}
	b.off = abs
	return abs, nil
}

// Rewind moves the offset back to the start.
func (b *Body) Rewind() {
	b.off = 0
}

// Size returns the total number of bytes held.
func (b *Body) Size() int64 {
	return int64(len(b.buf))
}

// Len returns the number of unread bytes.
func (b *Body) Len() int {
	if b.off >= int64(len(b.buf)) {
		return 0
	}
	return len(b.buf) - int(b.off)
}

// Bytes returns the whole content regardless of the offset.
func (b *Body) Bytes() []byte {
	return b.buf
}

// String returns the whole content regardless of the offset.
func (b *Body) String() string {
	return string(b.buf)
}

// Close is a no-op so a Body can stand in for an http body.
func (b *Body) Close() error {
	return nil
}
