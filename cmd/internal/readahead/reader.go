// Copyright (c) 2015 Klaus Post, released under MIT License. See LICENSE file.

// Package readahead does asynchronous read-ahead from an input io.Reader
// so the compressor does not wait on the input.
//
// Once an error has been returned from the Reader, it will not recover.
package readahead

import (
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultBuffers is the default number of buffers used.
	DefaultBuffers = 4

	// DefaultBufferSize is the default buffer size, 1 MB.
	DefaultBufferSize = 1 << 20
)

var errClosed = errors.New("readahead: read after Close")

// Reader serves data read ahead in the background.
type Reader struct {
	in     io.Reader
	closer io.Closer
	ready  chan *buffer // filled, waiting to be served
	reuse  chan *buffer // served, waiting to be filled
	exit   chan struct{}
	exited chan struct{}
	err    error
	cur    *buffer
}

// NewReaderSize returns a reader that keeps up to buffers blocks of
// size bytes read ahead of the consumer.
// If rd is an io.Closer it is closed by Close.
func NewReaderSize(rd io.Reader, buffers, size int) (*Reader, error) {
	if size <= 0 {
		return nil, fmt.Errorf("buffer size too small")
	}
	if buffers <= 0 {
		return nil, fmt.Errorf("number of buffers too small")
	}
	if rd == nil {
		return nil, fmt.Errorf("nil input reader supplied")
	}
	a := &Reader{
		in:     rd,
		ready:  make(chan *buffer, buffers),
		reuse:  make(chan *buffer, buffers),
		exit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	if c, ok := rd.(io.Closer); ok {
		a.closer = c
	}
	x := make([]byte, buffers*size)
	for i := 0; i < buffers; i++ {
		a.reuse <- &buffer{buf: x[i*size : (i+1)*size : (i+1)*size], size: size}
	}
	go a.run()
	return a, nil
}

// run fills buffers until the input is exhausted or Close is called.
func (a *Reader) run() {
	defer close(a.exited)
	defer close(a.ready)
	var atEOF bool
	for {
		select {
		case b := <-a.reuse:
			if atEOF {
				b.buf, b.offset, b.err = b.buf[:0], 0, io.EOF
				a.ready <- b
				return
			}
			err := b.read(a.in)
			// Delay EOF if we have content.
			if err == io.EOF && len(b.buf) > 0 {
				atEOF = true
				err = nil
				b.err = nil
			}
			a.ready <- b
			if err != nil {
				return
			}
		case <-a.exit:
			return
		}
	}
}

// fill swaps in the next buffer when the current one is drained.
func (a *Reader) fill() error {
	if !a.cur.isEmpty() {
		return nil
	}
	if a.cur != nil {
		a.reuse <- a.cur
		a.cur = nil
	}
	b, ok := <-a.ready
	if !ok {
		if a.err == nil {
			a.err = errClosed
		}
		return a.err
	}
	a.cur = b
	return nil
}

// Read will return the next available data.
func (a *Reader) Read(p []byte) (n int, err error) {
	if a.err != nil {
		return 0, a.err
	}
	if err := a.fill(); err != nil {
		return 0, err
	}
	n = copy(p, a.cur.buf[a.cur.offset:])
	a.cur.offset += n
	if a.cur.isEmpty() {
		a.err = a.cur.err
		a.reuse <- a.cur
		a.cur = nil
		return n, a.err
	}
	return n, nil
}

// WriteTo writes data to w until the input is exhausted or an error occurs.
func (a *Reader) WriteTo(w io.Writer) (n int64, err error) {
	if a.err != nil {
		return 0, a.err
	}
	for {
		if err := a.fill(); err != nil {
			return n, err
		}
		n2, err := w.Write(a.cur.buf[a.cur.offset:])
		a.cur.offset += n2
		n += int64(n2)
		if err != nil {
			return n, err
		}
		if a.cur.err != nil {
			a.err = a.cur.err
			if a.err == io.EOF {
				return n, nil
			}
			return n, a.err
		}
	}
}

// Close shuts down the background reader and closes the input
// if it is an io.Closer.
func (a *Reader) Close() error {
	select {
	case <-a.exited:
	case a.exit <- struct{}{}:
		<-a.exited
	}
	a.err = errClosed
	if a.closer != nil {
		c := a.closer
		a.closer = nil
		return c.Close()
	}
	return nil
}

// buffer holds a single read.
// err must be returned once all content has been served.
type buffer struct {
	buf    []byte
	err    error
	offset int
	size   int
}

func (b *buffer) isEmpty() bool {
	return b == nil || len(b.buf)-b.offset <= 0
}

// read fills the buffer from rd, resetting the offset.
func (b *buffer) read(rd io.Reader) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic reading: %v", r)
			b.err = err
		}
	}()

	var n int
	buf := b.buf[:b.size]
	b.err = nil
	for n < b.size {
		n2, err := rd.Read(buf)
		n += n2
		if err != nil {
			b.err = err
			break
		}
		buf = buf[n2:]
	}
	b.buf = b.buf[:n]
	b.offset = 0
	return b.err
}
