package bottle

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectFrames(t *testing.T, b *BufferedByteStream) []string {
	t.Helper()
	var got []string
	for {
		frame, err := b.NextFrame()
		if err == io.EOF {
			return got
		}
		require.NoError(t, err)
		got = append(got, string(frame.Pack()))
	}
}

func TestBufferedByteStreamExact(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource("aa", "bb", "cc", "dd", "e"))
	b := NewBufferedByteStream(rbs, 3, true)
	assert.Equal(t, []string{"aab", "bcc", "dde"}, collectFrames(t, b))
}

func TestBufferedByteStreamLazyNeverSplits(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource("aaaa", "bb", "c"))
	b := NewBufferedByteStream(rbs, 3, false)
	assert.Equal(t, []string{"aaaa", "bbc"}, collectFrames(t, b))
}

func TestBufferedByteStreamEmptySource(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource())
	b := NewBufferedByteStream(rbs, 16, true)
	_, err := b.NextFrame()
	assert.Equal(t, io.EOF, err)
}
