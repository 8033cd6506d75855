// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

import "io"

// ChunkSource is a pull-based source of byte chunks: a lazy byte stream
// expressed as "give me the next chunk, or io.EOF". Implementations need
// not be safe for concurrent use; ReadableByteStream never calls NextChunk
// concurrently with itself.
//
// A well-behaved ChunkSource returns io.EOF exactly once and may then be
// discarded; ReadableByteStream fuses it so that callers never observe a
// second NextChunk call after the first io.EOF.
type ChunkSource interface {
	NextChunk() ([]byte, error)
}

// ChunkSourceFunc adapts a function to a ChunkSource.
type ChunkSourceFunc func() ([]byte, error)

// NextChunk implements ChunkSource.
func (f ChunkSourceFunc) NextChunk() ([]byte, error) { return f() }

// ReadMode selects the length guarantee ReadableByteStream.Read makes
// about its returned ByteFrame.
type ReadMode int

const (
	// ModeExact returns exactly the requested number of bytes, or fails
	// with UnexpectedEOF if the source ends first.
	ModeExact ReadMode = iota

	// ModeAtMost returns at most the requested number of bytes, stopping
	// early (possibly with zero bytes) at end-of-stream.
	ModeAtMost

	// ModeLazy returns at least the requested number of bytes if possible
	// without splitting a chunk; otherwise all remaining data. Never
	// splits a chunk.
	ModeLazy
)

// ReadableByteStream wraps a ChunkSource with read-exact/at-most/lazy
// semantics. It buffers at most the unconsumed suffix of the last chunk it
// had to split, so that a sequence of reads can consume a byte stream
// without ever copying a chunk's backing array.
//
// The zero value is not usable; construct with NewReadableByteStream.
type ReadableByteStream struct {
	source ChunkSource
	ended  bool

	// saved holds previously-pulled chunks not yet returned to a caller,
	// front-to-back in stream order.
	saved    [][]byte
	savedLen int
}

// NewReadableByteStream wraps source.
func NewReadableByteStream(source ChunkSource) *ReadableByteStream {
	return &ReadableByteStream{source: source}
}

// pull fetches the next chunk from the source, respecting the fuse
// discipline: once source has reported io.EOF (or any error other than
// ErrWouldBlock/ErrMore), no further calls reach it.
func (r *ReadableByteStream) pull() ([]byte, error) {
	if r.ended {
		return nil, io.EOF
	}
	chunk, err := r.source.NextChunk()
	if err != nil {
		if err == ErrWouldBlock || err == ErrMore {
			return nil, err
		}
		r.ended = true
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return chunk, nil
}

// Read reads a ByteFrame according to mode. It may return
// code.hybscloud.com/iox's ErrWouldBlock or ErrMore verbatim if the
// underlying source surfaces them; the caller should retry the same call
// once the source is ready again (no bytes are lost: they remain in the
// saved queue).
func (r *ReadableByteStream) Read(count int, mode ReadMode) (ByteFrame, error) {
	for r.savedLen < count && !r.ended {
		chunk, err := r.pull()
		if err != nil {
			if err == io.EOF {
				break
			}
			return ByteFrame{}, err
		}
		if len(chunk) == 0 {
			continue
		}
		r.saved = append(r.saved, chunk)
		r.savedLen += len(chunk)
		if mode == ModeLazy && r.savedLen >= count {
			break
		}
	}

	if mode == ModeExact && r.savedLen < count {
		return ByteFrame{}, newUnexpectedEOF("stream ended before the requested byte count")
	}

	return r.drain(count, mode), nil
}

// ReadExact is Read(count, ModeExact).
func (r *ReadableByteStream) ReadExact(count int) (ByteFrame, error) {
	return r.Read(count, ModeExact)
}

// ReadAtMost is Read(count, ModeAtMost).
func (r *ReadableByteStream) ReadAtMost(count int) (ByteFrame, error) {
	return r.Read(count, ModeAtMost)
}

// drain pops chunks off the front of the saved queue to build a frame of
// up to count bytes, splitting the final chunk when necessary (never for
// ModeLazy, which only ever returns whole chunks).
func (r *ReadableByteStream) drain(count int, mode ReadMode) ByteFrame {
	var chunks [][]byte
	length := 0

	for len(r.saved) > 0 && length < count {
		chunk := r.saved[0]
		if length+len(chunk) <= count || mode == ModeLazy {
			r.saved = r.saved[1:]
			r.savedLen -= len(chunk)
			length += len(chunk)
			chunks = append(chunks, chunk)
			continue
		}
		n := count - length
		chunks = append(chunks, chunk[:n])
		r.saved[0] = chunk[n:]
		r.savedLen -= n
		length += n
	}

	return ByteFrame{Chunks: chunks, Length: length}
}

// Unread pushes frame back onto the front of the saved queue, as if it had
// never been read. It allows single-byte lookahead: a caller can read a
// byte, inspect it, and push it back.
func (r *ReadableByteStream) Unread(frame ByteFrame) {
	if frame.Length == 0 {
		return
	}
	r.saved = append(append([][]byte{}, frame.Chunks...), r.saved...)
	r.savedLen += frame.Length
}

// IntoChunkSource relinquishes ownership of the stream, returning a
// ChunkSource that yields any saved prefix first, then the original
// source. Use this to hand the stream back to a caller that wants a plain
// pull-based source instead of ReadableByteStream's read-mode API.
func (r *ReadableByteStream) IntoChunkSource() ChunkSource {
	saved := r.saved
	i := 0
	return ChunkSourceFunc(func() ([]byte, error) {
		if i < len(saved) {
			c := saved[i]
			i++
			return c, nil
		}
		return r.pull()
	})
}

// IntoInner returns any saved data as a single buffer together with the
// original source. Reads leave at most one saved chunk; Unread can leave
// more, in which case they are concatenated.
func (r *ReadableByteStream) IntoInner() (saved []byte, source ChunkSource) {
	switch len(r.saved) {
	case 0:
		return nil, r.source
	case 1:
		return r.saved[0], r.source
	default:
		// Only reachable after Unread: collapse into one buffer so callers
		// never observe a multi-chunk saved queue.
		buf := make([]byte, 0, r.savedLen)
		for _, c := range r.saved {
			buf = append(buf, c...)
		}
		return buf, r.source
	}
}
