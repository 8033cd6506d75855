// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

import "io"

// BufferedByteStream regroups a ReadableByteStream into frames of a
// target size, so a producer that writes many small chunks does not turn
// into pathologically small frames on the wire.
//
//   - exact: every emitted frame has length exactly blockSize, except
//     possibly the last (which has length <= blockSize). A single
//     underlying chunk may be split to hit the boundary.
//   - !exact: every emitted frame has length >= blockSize, except the
//     last; chunks are never split.
//
// NextFrame reports end-of-stream as (ByteFrame{}, io.EOF), the idiomatic
// Go rendering of the "a zero-length frame means end-of-stream" rule.
type BufferedByteStream struct {
	rbs       *ReadableByteStream
	blockSize int
	exact     bool
	done      bool
}

// NewBufferedByteStream wraps rbs. blockSize must be positive.
func NewBufferedByteStream(rbs *ReadableByteStream, blockSize int, exact bool) *BufferedByteStream {
	return &BufferedByteStream{rbs: rbs, blockSize: blockSize, exact: exact}
}

// NextFrame returns the next regrouped frame, or io.EOF once the
// underlying stream is exhausted.
func (b *BufferedByteStream) NextFrame() (ByteFrame, error) {
	if b.done {
		return ByteFrame{}, io.EOF
	}

	mode := ModeLazy
	if b.exact {
		mode = ModeAtMost
	}

	frame, err := b.rbs.Read(b.blockSize, mode)
	if err != nil {
		return ByteFrame{}, err
	}
	if frame.Length == 0 {
		b.done = true
		return ByteFrame{}, io.EOF
	}
	if frame.Length < b.blockSize {
		// Read only returns short of blockSize in AtMost/Lazy mode once the
		// source has ended; nothing more will ever be available.
		b.done = true
	}
	return frame, nil
}
