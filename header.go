// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

// BottleType enumerates the payload interpretation carried in the high
// nibble of header byte 6.
type BottleType uint8

const (
	TypeFile       BottleType = 0
	TypeHashed     BottleType = 1
	TypeEncrypted  BottleType = 3
	TypeCompressed BottleType = 4
	TypeTest       BottleType = 10
	TypeTest2      BottleType = 11
)

func (t BottleType) valid() bool {
	switch t {
	case TypeFile, TypeHashed, TypeEncrypted, TypeCompressed, TypeTest, TypeTest2:
		return true
	default:
		return false
	}
}

// magic is the 4-byte signature every bottle header begins with: the
// UTF-8 encoding of 🍼.
var magic = [4]byte{0xf0, 0x9f, 0x8d, 0xbc}

const (
	headerVersion  = 0x00
	headerFlags    = 0x00
	headerFixedLen = 8 // magic(4) + version(1) + flags(1) + type/len(2)

	// MaxTableLen is the largest table length the 12-bit header field can
	// carry.
	MaxTableLen = 4095
)

// Header is the (bottle type, table) pair every Bottle begins with.
type Header struct {
	Type  BottleType
	Table Table
}

// NewHeader constructs a Header.
func NewHeader(t BottleType, table Table) Header {
	return Header{Type: t, Table: table}
}

// Encode serializes the header to its on-wire byte representation.
func (h Header) Encode() ([]byte, error) {
	tableBytes, err := h.Table.Encode()
	if err != nil {
		return nil, err
	}
	if len(tableBytes) > MaxTableLen {
		return nil, newInvalidInput("encoded table exceeds 4095 bytes")
	}
	if !h.Type.valid() {
		return nil, newInvalidInput("unknown bottle type")
	}

	out := make([]byte, 0, headerFixedLen+len(tableBytes))
	out = append(out, magic[:]...)
	out = append(out, headerVersion, headerFlags)
	out = append(out,
		byte(h.Type)<<4|byte(len(tableBytes)>>8),
		byte(len(tableBytes)),
	)
	out = append(out, tableBytes...)
	return out, nil
}

// DecodeHeader reads a Header from rbs. On success, rbs is positioned
// immediately after the table bytes, ready to read the bottle's first
// framed inner stream.
func DecodeHeader(rbs *ReadableByteStream) (*Header, error) {
	fixed, err := rbs.ReadExact(headerFixedLen)
	if err != nil {
		return nil, err
	}
	buf := fixed.Pack()

	if buf[0] != magic[0] || buf[1] != magic[1] || buf[2] != magic[2] || buf[3] != magic[3] {
		return nil, newInvalidInput("bad magic")
	}
	if buf[4] != headerVersion {
		return nil, newInvalidInput("incompatible version")
	}
	if buf[5] != headerFlags {
		return nil, newInvalidInput("incompatible flags")
	}
	bottleType := BottleType(buf[6] >> 4)
	if !bottleType.valid() {
		return nil, newInvalidInput("unknown bottle type")
	}
	tableLen := int(buf[6]&0x0f)<<8 | int(buf[7])

	var table *Table
	if tableLen == 0 {
		table = &Table{}
	} else {
		tableFrame, err := rbs.ReadExact(tableLen)
		if err != nil {
			return nil, err
		}
		table, err = DecodeTable(tableFrame.Pack())
		if err != nil {
			return nil, err
		}
	}

	return &Header{Type: bottleType, Table: *table}, nil
}
