package bottle

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource replays a fixed sequence of chunks, then io.EOF.
func sliceSource(chunks ...string) ChunkSource {
	i := 0
	return ChunkSourceFunc(func() ([]byte, error) {
		if i >= len(chunks) {
			return nil, io.EOF
		}
		c := chunks[i]
		i++
		return []byte(c), nil
	})
}

func TestReadExact(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource("ab", "cde", "f"))
	frame, err := rbs.ReadExact(4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(frame.Pack()))

	frame, err = rbs.ReadExact(2)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(frame.Pack()))
}

func TestReadExactUnexpectedEOF(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource("ab"))
	_, err := rbs.ReadExact(3)
	assert.True(t, IsUnexpectedEOF(err))
}

func TestReadAtMost(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource("ab"))
	frame, err := rbs.ReadAtMost(10)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(frame.Pack()))

	frame, err = rbs.ReadAtMost(10)
	require.NoError(t, err)
	assert.Zero(t, frame.Length)
}

func TestReadLazyNeverSplitsChunks(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource("abc", "defgh"))
	frame, err := rbs.Read(2, ModeLazy)
	require.NoError(t, err)
	// Lazy must return the whole first chunk even though it exceeds count,
	// but must not also pull the second chunk once count is satisfied.
	assert.Equal(t, "abc", string(frame.Pack()))

	frame, err = rbs.Read(10, ModeLazy)
	require.NoError(t, err)
	assert.Equal(t, "defgh", string(frame.Pack()))
}

func TestUnread(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource("abcd"))
	frame, err := rbs.ReadExact(1)
	require.NoError(t, err)
	rbs.Unread(frame)

	all, err := rbs.ReadExact(4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(all.Pack()))
}

func TestIntoChunkSource(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource("abcd", "ef"))
	_, err := rbs.ReadExact(1)
	require.NoError(t, err)

	frame, err := rbs.Read(1, ModeExact)
	require.NoError(t, err)
	rbs.Unread(frame)

	source := rbs.IntoChunkSource()
	var got []byte
	for {
		chunk, err := source.NextChunk()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, chunk...)
	}
	assert.Equal(t, "bcdef", string(got))
}
