// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

// This file implements the two variable-length integer encodings used
// throughout the container: a packed little-endian u64 (length carried
// out-of-band, used inside table fields) and a frame-length encoding
// (length carried in-band via its own leading bits, sharing its byte
// space with the end-of-stream and end-of-bottle sentinels).

const maxFrameLength = 1<<22 - 1 // frame lengths are 22 bits

// BytesNeeded returns the number of bytes the packed-u64 encoding of n
// occupies: the minimum count of little-endian bytes needed to hold n,
// with zero needing exactly one byte.
func BytesNeeded(n uint64) int {
	count := 1
	for n > 0xff {
		n >>= 8
		count++
	}
	return count
}

// EncodePackedUint64 encodes n as little-endian bytes up to and including
// its most significant non-zero byte. Zero encodes as a single 0x00. The
// resulting length is not carried in the encoding itself; callers (the
// Table TLV layout) carry it out-of-band.
func EncodePackedUint64(n uint64) []byte {
	buf := make([]byte, BytesNeeded(n))
	for i := range buf {
		buf[i] = byte(n)
		n >>= 8
	}
	return buf
}

// DecodePackedUint64 decodes a packed little-endian u64 from buf. buf may
// be any length from 0 (decodes to 0) up to 8 bytes; longer inputs
// contribute only their low 8 bytes' worth of shifting, matching the
// reference decoder's "sum buf[i] << 8*i" definition.
func DecodePackedUint64(buf []byte) uint64 {
	var n uint64
	for i, b := range buf {
		if i >= 8 {
			break
		}
		n |= uint64(b) << uint(8*i)
	}
	return n
}

// lengthKind classifies the meaning of a decoded frame-length first byte.
type lengthKind uint8

const (
	lengthValue lengthKind = iota
	lengthEndOfStream
	lengthEndOfBottle
)

const (
	endOfStreamByte = 0x00
	endOfBottleByte = 0xff
)

// EncodeFrameLength encodes n, where 1 <= n < 2^22, using the smallest of
// the three frame-length forms. It fails with InvalidInput if n is out of
// range for the format (n == 0 must use the end-of-stream sentinel byte
// directly; that is not a frame length).
func EncodeFrameLength(n uint32) ([]byte, error) {
	switch {
	case n == 0 || n > maxFrameLength:
		return nil, newInvalidInput("frame length out of range")
	case n < 1<<6:
		return []byte{byte(n)}, nil
	case n < 1<<14:
		return []byte{0b01000000 | byte(n>>8), byte(n)}, nil
	default:
		return []byte{0b10000000 | byte(n>>16), byte(n >> 8), byte(n)}, nil
	}
}

// decodeFirstLengthByte interprets the first byte of a frame-length
// encoding. It returns the kind of sentinel/value this byte represents,
// the number of additional bytes still needed (0, 1, or 2), and the
// accumulator seeded with this byte's value bits (0 for the sentinels).
//
// The only first byte with its top two bits set to 0b11 that the encoder
// ever produces is the end-of-bottle sentinel 0xff itself; any other
// 0b11xxxxxx byte is malformed input.
func decodeFirstLengthByte(b byte) (kind lengthKind, additional int, partial uint32, err error) {
	switch b {
	case endOfStreamByte:
		return lengthEndOfStream, 0, 0, nil
	case endOfBottleByte:
		return lengthEndOfBottle, 0, 0, nil
	}
	switch b >> 6 {
	case 0b00:
		return lengthValue, 0, uint32(b & 0x3f), nil
	case 0b01:
		return lengthValue, 1, uint32(b & 0x3f), nil
	case 0b10:
		return lengthValue, 2, uint32(b & 0x3f), nil
	default:
		return 0, 0, 0, newInvalidInput("malformed frame length prefix byte")
	}
}

// accumulateLengthByte folds in one continuation byte of a multi-byte
// frame length, as described by decodeFirstLengthByte's partial result.
func accumulateLengthByte(partial uint32, b byte) uint32 {
	return partial<<8 | uint32(b)
}
