package bottle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteFramePack(t *testing.T) {
	f := ByteFrameFromChunks([][]byte{[]byte("ab"), []byte("cde")})
	assert.Equal(t, 5, f.Length)
	assert.Equal(t, "abcde", string(f.Pack()))
}

func TestByteFramePackSingleChunkNoCopy(t *testing.T) {
	chunk := []byte("hello")
	f := ByteFrameFromChunks([][]byte{chunk})
	packed := f.Pack()
	assert.Same(t, &chunk[0], &packed[0])
}

func TestByteFrameFromBytes(t *testing.T) {
	f := ByteFrameFromBytes([]byte("xyz"))
	assert.Equal(t, 3, f.Length)
	assert.Len(t, f.Chunks, 1)
}

func TestFlattenFrames(t *testing.T) {
	in := make(chan frameOrError, 2)
	in <- frameOrError{frame: ByteFrameFromChunks([][]byte{[]byte("a"), []byte("b")})}
	in <- frameOrError{frame: ByteFrameFromChunks([][]byte{[]byte("c")})}
	close(in)

	out := FlattenFrames(in)
	var got []byte
	for c := range out {
		require.NoError(t, c.err)
		got = append(got, c.chunk...)
	}
	assert.Equal(t, "abc", string(got))
}

func TestFlattenFramesPropagatesError(t *testing.T) {
	boom := newInvalidInput("boom")
	in := make(chan frameOrError, 2)
	in <- frameOrError{frame: ByteFrameFromBytes([]byte("a"))}
	in <- frameOrError{err: boom}
	close(in)

	out := FlattenFrames(in)
	var sawErr error
	for c := range out {
		if c.err != nil {
			sawErr = c.err
		}
	}
	assert.Equal(t, boom, sawErr)
}
