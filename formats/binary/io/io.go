// Package io реализует кадрирование потока сообщений:
// 4 байта длины (big-endian), затем сами байты сообщения.
package io

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ozontech/amqpconv/consts"
)

const headerSize = 4

var ErrFrameTooLarge = errors.New("frame too large")

type Reader struct {
	buf         []byte
	unprocessed []byte
	header      [headerSize]byte

	r io.Reader
}

func NewReader(r io.Reader, bufSize ...int) *Reader {
	size := consts.DefaultReadBufferSize
	if len(bufSize) > 0 {
		size = bufSize[0]
	}
	return &Reader{
		buf: make([]byte, size),
		r:   r,
	}
}

func (r *Reader) fillUnprocessed() error {
	n, err := r.r.Read(r.buf)
	if n > 0 {
		r.unprocessed = r.buf[:n]
		return nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return err
}

func (r *Reader) readFull(p []byte) (int, error) {
	var filled int
	for filled < len(p) {
		if len(r.unprocessed) == 0 {
			if err := r.fillUnprocessed(); err != nil {
				return filled, err
			}
		}
		n := copy(p[filled:], r.unprocessed)
		filled += n
		r.unprocessed = r.unprocessed[n:]
	}
	return filled, nil
}

// ReadNext читает следующий кадр в b, переиспользуя его емкость.
// Чистый конец потока между кадрами возвращает io.EOF.
func (r *Reader) ReadNext(b []byte) ([]byte, error) {
	n, err := r.readFull(r.header[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n > 0 {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	size := binary.BigEndian.Uint32(r.header[:])
	if size > consts.MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	if uint32(cap(b)) < size {
		b = make([]byte, size)
	} else {
		b = b[:size]
	}

	if _, err = r.readFull(b); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return b, nil
}

type Writer struct {
	w         io.Writer
	prefixBuf [headerSize]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) WriteNext(p []byte) error {
	if len(p) > consts.MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(p))
	}
	binary.BigEndian.PutUint32(w.prefixBuf[:], uint32(len(p)))
	if _, err := w.w.Write(w.prefixBuf[:]); err != nil {
		return err
	}
	_, err := w.w.Write(p)
	return err
}
