// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

import (
	"io"

	"code.hybscloud.com/bottle/internal/streamkit"
)

// minBufferSize is the smallest amount of data BufferedByteStream
// accumulates before emitting a frame when writing an inner stream,
// preventing many small producer writes from turning into pathological
// per-byte framing overhead.
const minBufferSize = 1024

// Bottle is a typed header followed by an ordered sequence of inner
// streams. Construct one with NewBottle to encode, or obtain one from
// ReadBottle to decode.
type Bottle struct {
	Header Header

	// write side
	streamsIn []ChunkSource

	// read side
	items      <-chan frameEvent
	completion *streamkit.Completion[decodeState]
	finished   bool
	finalErr   error
	remainder  *ReadableByteStream
	prev       *InnerStream
	opts       Options
}

// NewBottle constructs a Bottle ready to Encode: a header and the ordered
// sequence of inner streams to frame after it.
func NewBottle(t BottleType, table Table, streams ...ChunkSource) *Bottle {
	return &Bottle{Header: NewHeader(t, table), streamsIn: streams}
}

// Encode writes the bottle's header, every inner stream (each regrouped
// into minBufferSize-ish frames and terminated by the end-of-stream
// sentinel), and the end-of-bottle sentinel, to sink.
func (bt *Bottle) Encode(sink ChunkSink) error {
	headerBytes, err := bt.Header.Encode()
	if err != nil {
		return err
	}
	if err := sink.WriteChunk(headerBytes); err != nil {
		return err
	}
	for _, s := range bt.streamsIn {
		if err := writeFramedStream(sink, s); err != nil {
			return err
		}
	}
	return sink.WriteChunk([]byte{endOfBottleByte})
}

// writeFramedStream serializes one inner stream as a sequence of
// (frame-length, payload) frames terminated by the end-of-stream
// sentinel, per spec §4.I.
func writeFramedStream(sink ChunkSink, source ChunkSource) error {
	buffered := NewBufferedByteStream(NewReadableByteStream(source), minBufferSize, false)
	for {
		frame, err := buffered.NextFrame()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		lenBytes, err := EncodeFrameLength(uint32(frame.Length))
		if err != nil {
			return err
		}
		if err := sink.WriteChunk(lenBytes); err != nil {
			return err
		}
		for _, c := range frame.Chunks {
			if err := sink.WriteChunk(c); err != nil {
				return err
			}
		}
	}
	return sink.WriteChunk([]byte{endOfStreamByte})
}

// frameEventKind classifies one item produced while decoding a bottle's
// body.
type frameEventKind uint8

const (
	kindFrameData frameEventKind = iota
	kindEndOfStream
	kindEndOfBottle
	kindDecodeError
)

// frameEvent is the item type threaded through the decode generator and
// split into per-inner-stream sequences.
type frameEvent struct {
	kind  frameEventKind
	frame ByteFrame
	err   error
}

// decodeState is the generator state for decoding a bottle's body: the
// shared reader position, and whether decoding has reached a terminal
// condition (end-of-bottle or an error) and should stop on the next step.
type decodeState struct {
	rbs  *ReadableByteStream
	stop bool
}

// stepDecodeFrame is the streamkit.Step driving bottle body decoding. See
// spec §4.I's state machine: read one byte; 0xff ends the whole bottle,
// 0x00 ends the current inner stream (but not the bottle), anything else
// is a frame-length prefix to parse and read.
func stepDecodeFrame(s decodeState) (frameEvent, bool, decodeState) {
	if s.stop {
		return frameEvent{}, false, s
	}

	first, err := s.rbs.ReadExact(1)
	if err != nil {
		return frameEvent{kind: kindDecodeError, err: err}, true, decodeState{rbs: s.rbs, stop: true}
	}
	kind, additional, partial, err := decodeFirstLengthByte(first.Pack()[0])
	if err != nil {
		return frameEvent{kind: kindDecodeError, err: err}, true, decodeState{rbs: s.rbs, stop: true}
	}

	switch kind {
	case lengthEndOfBottle:
		return frameEvent{kind: kindEndOfBottle}, true, decodeState{rbs: s.rbs, stop: true}
	case lengthEndOfStream:
		return frameEvent{kind: kindEndOfStream}, true, decodeState{rbs: s.rbs, stop: false}
	default:
		length := partial
		if additional > 0 {
			extra, err := s.rbs.ReadExact(additional)
			if err != nil {
				return frameEvent{kind: kindDecodeError, err: err}, true, decodeState{rbs: s.rbs, stop: true}
			}
			for _, b := range extra.Pack() {
				length = accumulateLengthByte(length, b)
			}
		}
		if length == 0 || length > maxFrameLength {
			err := newInvalidInput("frame length out of range")
			return frameEvent{kind: kindDecodeError, err: err}, true, decodeState{rbs: s.rbs, stop: true}
		}
		payload, err := s.rbs.ReadExact(int(length))
		if err != nil {
			return frameEvent{kind: kindDecodeError, err: err}, true, decodeState{rbs: s.rbs, stop: true}
		}
		return frameEvent{kind: kindFrameData, frame: payload}, true, decodeState{rbs: s.rbs, stop: false}
	}
}

func isTerminalEvent(ev frameEvent) bool { return ev.kind != kindFrameData }

// ReadBottle parses a Header from rbs and returns a Bottle whose inner
// streams can be pulled, in order, via Next. Decoding of the body runs on
// a background goroutine that starts reading frames as soon as ReadBottle
// returns, without waiting for the caller to ask; it stays at most two
// frames (sentinels included) ahead of what the caller has received, and
// never reads past the end-of-bottle sentinel. opts configures the
// returned InnerStreams' auto-drain-on-Close budget.
func ReadBottle(rbs *ReadableByteStream, opts ...Option) (*Bottle, error) {
	header, err := DecodeHeader(rbs)
	if err != nil {
		return nil, err
	}
	gen, completion := streamkit.Generate(decodeState{rbs: rbs}, stepDecodeFrame)
	return &Bottle{Header: *header, items: gen.Items(), completion: completion, opts: resolveOptions(opts)}, nil
}

// Next returns the next inner stream, or (nil, io.EOF) once the
// end-of-bottle sentinel has been observed. The previously returned
// InnerStream must be fully drained (Read until io.EOF, or Close) before
// calling Next again.
func (bt *Bottle) Next() (*InnerStream, error) {
	if bt.finished {
		return nil, io.EOF
	}
	if bt.prev != nil && !bt.prev.terminalSeen {
		return nil, newInvalidInput("previous inner stream must be drained before reading the next")
	}

	prefix, remainder := streamkit.SplitUntil(bt.items, isTerminalEvent)
	first, ok := <-prefix
	if !ok {
		bt.finish(frameEvent{kind: kindEndOfBottle}, remainder)
		return nil, io.EOF
	}

	switch first.kind {
	case kindDecodeError:
		bt.finish(first, remainder)
		return nil, first.err
	case kindEndOfBottle:
		bt.finish(first, remainder)
		return nil, io.EOF
	case kindEndOfStream:
		remainder()
		bt.prev = nil
		return &InnerStream{terminalSeen: true, err: io.EOF}, nil
	default:
		is := &InnerStream{bottle: bt, prefix: prefix, remainder: remainder, chunks: first.frame.Chunks}
		bt.prev = is
		return is, nil
	}
}

// finish marks the bottle as fully decoded (no more inner streams will
// ever be produced) and resolves the completion future into bt.remainder.
func (bt *Bottle) finish(ev frameEvent, remainder func()) {
	remainder()
	bt.finished = true
	if ev.kind == kindDecodeError {
		bt.finalErr = ev.err
	}
	final := bt.completion.Wait()
	bt.remainder = final.rbs
}

// Remainder returns the ReadableByteStream positioned immediately after
// the end-of-bottle sentinel. It is only valid once every inner stream
// has been drained and Next has returned io.EOF (or an error).
func (bt *Bottle) Remainder() (*ReadableByteStream, error) {
	if !bt.finished {
		return nil, newInvalidInput("bottle has not been fully read yet")
	}
	if bt.finalErr != nil {
		return nil, bt.finalErr
	}
	return bt.remainder, nil
}

// InnerStream is one inner byte stream decoded from a Bottle. It
// implements io.Reader; Close (or the Skip alias) auto-drains and
// discards any unread data, bounded by Options.MaxAutoDrainBytes, so an
// abandoned InnerStream does not leave the outer Bottle's Completion
// future unresolved forever.
type InnerStream struct {
	bottle    *Bottle
	prefix    <-chan frameEvent
	remainder func()

	chunks       [][]byte
	err          error
	terminalSeen bool
}

// Read implements io.Reader.
func (is *InnerStream) Read(p []byte) (int, error) {
	if is.err != nil {
		return 0, is.err
	}
	for len(is.chunks) == 0 {
		ev, ok := <-is.prefix
		if !ok {
			is.err = io.EOF
			return 0, io.EOF
		}
		switch ev.kind {
		case kindFrameData:
			if ev.frame.Length == 0 {
				continue
			}
			is.chunks = ev.frame.Chunks
		default:
			is.finish(ev)
			if is.err == nil {
				is.err = io.EOF
			}
			return 0, is.err
		}
	}

	n := copy(p, is.chunks[0])
	is.chunks[0] = is.chunks[0][n:]
	if len(is.chunks[0]) == 0 {
		is.chunks = is.chunks[1:]
	}
	return n, nil
}

// finish records the terminal event ending this inner stream and, for
// end-of-bottle/error terminals, propagates that into the owning Bottle.
func (is *InnerStream) finish(ev frameEvent) {
	if is.terminalSeen {
		return
	}
	is.terminalSeen = true
	switch ev.kind {
	case kindDecodeError:
		is.err = ev.err
		is.bottle.finish(ev, is.remainder)
	case kindEndOfBottle:
		is.bottle.finish(ev, is.remainder)
	default: // kindEndOfStream
		is.remainder()
	}
}

// Close drains and discards any unread data up to the owning Bottle's
// Options.MaxAutoDrainBytes (DefaultMaxAutoDrainBytes if ReadBottle was
// called with no override), then returns. It is safe to call on a stream
// that has already been read to completion. Close implements io.Closer,
// so an *InnerStream is a valid io.ReadCloser.
func (is *InnerStream) Close() error {
	if is.terminalSeen {
		return nil
	}
	var scratch [32 * 1024]byte
	var drained int64
	var limit int64 = DefaultMaxAutoDrainBytes
	if is.bottle != nil && is.bottle.opts.MaxAutoDrainBytes > 0 {
		limit = is.bottle.opts.MaxAutoDrainBytes
	}
	for {
		n, err := is.Read(scratch[:])
		drained += int64(n)
		if drained > limit {
			return newInvalidInput("auto-drain budget exceeded while closing an inner stream")
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// Skip is an alias for Close, for callers that want the intent to abandon
// and discard this inner stream to read clearly at the call site.
func (is *InnerStream) Skip() error { return is.Close() }
