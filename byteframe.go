// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

// ByteFrame is an ordered sequence of immutable byte chunks together with
// their precomputed total length. Chunks are plain []byte slices: Go
// slices already give cheap, shared-backing-array prefix/suffix views, so
// no separate reference-counted buffer type is needed to get zero-copy
// slicing (see SPEC_FULL.md for the rationale).
//
// Callers must not mutate the bytes behind any chunk in a ByteFrame; they
// may be shared with other frames produced by splitting the same
// underlying chunk.
type ByteFrame struct {
	Chunks [][]byte
	Length int
}

// NewByteFrame constructs a ByteFrame from chunks. The caller guarantees
// Length equals the sum of len(c) for every chunk.
func NewByteFrame(chunks [][]byte, length int) ByteFrame {
	return ByteFrame{Chunks: chunks, Length: length}
}

// ByteFrameFromChunks derives Length from chunks.
func ByteFrameFromChunks(chunks [][]byte) ByteFrame {
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	return ByteFrame{Chunks: chunks, Length: n}
}

// ByteFrameFromBytes wraps a single buffer as a one-chunk ByteFrame.
func ByteFrameFromBytes(b []byte) ByteFrame {
	return ByteFrame{Chunks: [][]byte{b}, Length: len(b)}
}

// Pack returns a single contiguous buffer holding the frame's bytes. If
// the frame already holds exactly one chunk, that chunk is returned
// directly without copying; otherwise the chunks are concatenated.
func (f ByteFrame) Pack() []byte {
	if len(f.Chunks) == 1 {
		return f.Chunks[0]
	}
	buf := make([]byte, 0, f.Length)
	for _, c := range f.Chunks {
		buf = append(buf, c...)
	}
	return buf
}

// FlattenFrames turns a channel of ByteFrame values into a channel of
// individual chunks, in order, without copying. It is the streaming
// equivalent of concatenating every frame's Chunks slice. The returned
// channel is closed once frames is drained (or a chunk carrying an error
// has been emitted, whichever happens first).
func FlattenFrames(frames <-chan frameOrError) <-chan chunkOrError {
	out := make(chan chunkOrError)
	go func() {
		defer close(out)
		for fr := range frames {
			if fr.err != nil {
				out <- chunkOrError{err: fr.err}
				return
			}
			for _, c := range fr.frame.Chunks {
				out <- chunkOrError{chunk: c}
			}
		}
	}()
	return out
}

// frameOrError pairs a ByteFrame with a terminal error, for use on
// channels that must be able to report a failure as their last item.
type frameOrError struct {
	frame ByteFrame
	err   error
}

// chunkOrError is FlattenFrames' per-item output type.
type chunkOrError struct {
	chunk []byte
	err   error
}
