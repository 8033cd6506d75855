package bottle

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeToBytes(t *testing.T, bt *Bottle) []byte {
	t.Helper()
	var buf bytes.Buffer
	sink := ChunkSinkFunc(func(c []byte) error { buf.Write(c); return nil })
	require.NoError(t, bt.Encode(sink))
	return buf.Bytes()
}

func readAllStreams(t *testing.T, bt *Bottle) [][]byte {
	t.Helper()
	var streams [][]byte
	for {
		is, err := bt.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(is)
		require.NoError(t, err)
		streams = append(streams, data)
		require.NoError(t, is.Close())
	}
	return streams
}

func TestBottleEncodeEmptyScenario(t *testing.T) {
	bt := NewBottle(TypeFile, Table{})
	got := encodeToBytes(t, bt)
	assert.Equal(t, mustHex(t, "f09f8dbc00000000ff"), got)
}

func TestBottleEncodeSingleStreamScenario(t *testing.T) {
	bt := NewBottle(TypeTest, Table{}, sliceSource(string([]byte{0xff, 0x00, 0xff, 0x00})))
	got := encodeToBytes(t, bt)
	assert.Equal(t, mustHex(t, "f09f8dbc0000a00004ff00ff0000ff"), got)
}

func TestBottleEncodeThreeStreamsScenario(t *testing.T) {
	bt := NewBottle(TypeTest, Table{},
		sliceSource("\xf0\xf0\xf0"),
		sliceSource("\xe0\xe0\xe0"),
		sliceSource("\xcc\xcc\xcc"),
	)
	got := encodeToBytes(t, bt)
	assert.Equal(t, mustHex(t, "f09f8dbc0000a00003f0f0f00003e0e0e00003cccccc00ff"), got)
}

func TestBottleEncodeNestedScenario(t *testing.T) {
	inner := NewBottle(TypeTest, Table{})
	innerBytes := encodeToBytes(t, inner)

	outer := NewBottle(TypeTest2, Table{}, sliceSource(string(innerBytes)))
	got := encodeToBytes(t, outer)
	assert.Equal(t, mustHex(t, "f09f8dbc0000b00009f09f8dbc0000a000ff00ff"), got)
}

func TestBottleDecodeEmptyScenario(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource(string(mustHex(t, "f09f8dbc00000000ff"))))
	bt, err := ReadBottle(rbs)
	require.NoError(t, err)
	assert.Equal(t, TypeFile, bt.Header.Type)

	streams := readAllStreams(t, bt)
	assert.Empty(t, streams)

	_, err = bt.Remainder()
	assert.NoError(t, err)
}

func TestBottleDecodeThreeStreamsScenario(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource(string(mustHex(t, "f09f8dbc0000a00003f0f0f00003e0e0e00003cccccc00ff"))))
	bt, err := ReadBottle(rbs)
	require.NoError(t, err)

	streams := readAllStreams(t, bt)
	want := [][]byte{{0xf0, 0xf0, 0xf0}, {0xe0, 0xe0, 0xe0}, {0xcc, 0xcc, 0xcc}}
	assert.Equal(t, want, streams)
}

func TestBottleDecodeNestedScenario(t *testing.T) {
	rbs := NewReadableByteStream(sliceSource(string(mustHex(t, "f09f8dbc0000b00009f09f8dbc0000a000ff00ff"))))
	outer, err := ReadBottle(rbs)
	require.NoError(t, err)

	is, err := outer.Next()
	require.NoError(t, err)

	innerSource := NewReadableByteStream(ChunkSourceFunc(func() ([]byte, error) {
		buf := make([]byte, 32)
		n, err := is.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		return nil, err
	}))
	inner, err := ReadBottle(innerSource)
	require.NoError(t, err)
	assert.Equal(t, TypeTest, inner.Header.Type)
	assert.Empty(t, readAllStreams(t, inner))
	require.NoError(t, is.Close())

	_, err = outer.Next()
	assert.Equal(t, io.EOF, err)
}

func TestBottleEncodeDecodeRoundTripWithEmptyInnerStream(t *testing.T) {
	bt := NewBottle(TypeFile, Table{}, sliceSource())
	encoded := encodeToBytes(t, bt)

	decoded, err := ReadBottle(NewReadableByteStream(sliceSource(string(encoded))))
	require.NoError(t, err)

	streams := readAllStreams(t, decoded)
	require.Len(t, streams, 1)
	assert.Empty(t, streams[0])
}

func TestBottleDecodeRejectsGarbageFramePrefix(t *testing.T) {
	// 0xc1 has top bits 0b11 but is not the end-of-bottle byte: malformed.
	buf := append(mustHex(t, "f09f8dbc00000000"), 0xc1)
	bt, err := ReadBottle(NewReadableByteStream(sliceSource(string(buf))))
	require.NoError(t, err)

	_, err = bt.Next()
	assert.True(t, IsInvalidInput(err))
}

func TestBottleNextRejectsReadingAheadOfUndrainedStream(t *testing.T) {
	buf := mustHex(t, "f09f8dbc0000a00003f0f0f00003e0e0e00003cccccc00ff")
	bt, err := ReadBottle(NewReadableByteStream(sliceSource(string(buf))))
	require.NoError(t, err)

	_, err = bt.Next()
	require.NoError(t, err)

	_, err = bt.Next()
	assert.True(t, IsInvalidInput(err))
}

func TestInnerStreamCloseAutoDrains(t *testing.T) {
	buf := mustHex(t, "f09f8dbc0000a00003f0f0f00003e0e0e00003cccccc00ff")
	bt, err := ReadBottle(NewReadableByteStream(sliceSource(string(buf))))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		is, err := bt.Next()
		require.NoError(t, err)
		require.NoError(t, is.Close())
	}

	_, err = bt.Next()
	assert.Equal(t, io.EOF, err)
}

func TestInnerStreamSkipIsCloseAlias(t *testing.T) {
	buf := mustHex(t, "f09f8dbc0000a00004ff00ff0000ff")
	bt, err := ReadBottle(NewReadableByteStream(sliceSource(string(buf))))
	require.NoError(t, err)

	is, err := bt.Next()
	require.NoError(t, err)
	require.NoError(t, is.Skip())

	_, err = bt.Next()
	assert.Equal(t, io.EOF, err)
}

func TestInnerStreamCloseRespectsAutoDrainBudget(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 100)
	bt := NewBottle(TypeFile, Table{}, sliceSource(string(payload)))
	encoded := encodeToBytes(t, bt)

	decoded, err := ReadBottle(NewReadableByteStream(sliceSource(string(encoded))), WithMaxAutoDrainBytes(10))
	require.NoError(t, err)

	is, err := decoded.Next()
	require.NoError(t, err)
	err = is.Close()
	assert.True(t, IsInvalidInput(err))
}
