// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

import (
	"io"
	"runtime"
	"time"

	"code.hybscloud.com/iox"
)

// These are re-exported so callers can recognize the control-flow signals
// a ChunkSource/ChunkSink built over a non-blocking transport may surface,
// without importing iox directly — the same convenience framer offers.
var (
	// ErrWouldBlock means "no further progress without waiting". It is an
	// expected, non-failure control-flow signal for non-blocking I/O.
	ErrWouldBlock = iox.ErrWouldBlock

	// ErrMore means "this completion is usable and more completions will
	// follow". The caller should process what was returned and call again.
	ErrMore = iox.ErrMore
)

// ChunkSink is the write-side counterpart to ChunkSource: a place to push
// byte chunks, e.g. a transport or an in-memory collector.
type ChunkSink interface {
	WriteChunk(chunk []byte) error
}

// ChunkSinkFunc adapts a function to a ChunkSink.
type ChunkSinkFunc func([]byte) error

// WriteChunk implements ChunkSink.
func (f ChunkSinkFunc) WriteChunk(chunk []byte) error { return f(chunk) }

// readerChunkSource pulls fixed-size-ish chunks out of an io.Reader,
// honoring iox.ErrWouldBlock/iox.ErrMore per Options.RetryDelay. Grounded
// on framer's internal.go readOnce/waitOnceOnWouldBlock.
type readerChunkSource struct {
	r          io.Reader
	bufferSize int
	retryDelay time.Duration
	eof        bool
}

// NewChunkSourceFromReader adapts r into a ChunkSource. Each returned
// chunk is a freshly allocated buffer (the reader's own buffer cannot be
// reused across chunks, since ReadableByteStream may retain a chunk for
// zero-copy slicing long after the call that produced it returns).
func NewChunkSourceFromReader(r io.Reader, opts ...Option) ChunkSource {
	o := resolveOptions(opts)
	size := o.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &readerChunkSource{r: r, bufferSize: size, retryDelay: o.RetryDelay}
}

func (c *readerChunkSource) NextChunk() ([]byte, error) {
	if c.eof {
		return nil, io.EOF
	}
	buf := make([]byte, c.bufferSize)
	for {
		n, err := c.r.Read(buf)
		if len(buf) != 0 && n == 0 && err == nil {
			// Guard against Readers that violate the io.Reader contract.
			return nil, io.ErrNoProgress
		}
		if n > 0 {
			if err == io.EOF {
				c.eof = true
			}
			return buf[:n], nil
		}
		if err == nil {
			continue
		}
		if err == io.EOF {
			c.eof = true
			return nil, io.EOF
		}
		if err != iox.ErrWouldBlock && err != iox.ErrMore {
			return nil, err
		}
		if !c.waitOnceOnWouldBlock() {
			return nil, err
		}
	}
}

func (c *readerChunkSource) waitOnceOnWouldBlock() bool {
	if c.retryDelay < 0 {
		return false
	}
	if c.retryDelay == 0 {
		runtime.Gosched()
		return true
	}
	time.Sleep(c.retryDelay)
	return true
}

// writerChunkSink pushes chunks to an io.Writer, honoring
// iox.ErrWouldBlock/iox.ErrMore per Options.RetryDelay. Grounded on
// framer's internal.go writeOnce/waitOnceOnWouldBlock.
type writerChunkSink struct {
	w          io.Writer
	retryDelay time.Duration
}

// NewChunkSinkToWriter adapts w into a ChunkSink.
func NewChunkSinkToWriter(w io.Writer, opts ...Option) ChunkSink {
	o := resolveOptions(opts)
	return &writerChunkSink{w: w, retryDelay: o.RetryDelay}
}

func (s *writerChunkSink) WriteChunk(chunk []byte) error {
	off := 0
	for off < len(chunk) {
		n, err := s.w.Write(chunk[off:])
		off += n
		if err != nil {
			if err == iox.ErrWouldBlock || err == iox.ErrMore {
				if !s.waitOnceOnWouldBlock() {
					return err
				}
				continue
			}
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

func (s *writerChunkSink) waitOnceOnWouldBlock() bool {
	if s.retryDelay < 0 {
		return false
	}
	if s.retryDelay == 0 {
		runtime.Gosched()
		return true
	}
	time.Sleep(s.retryDelay)
	return true
}
