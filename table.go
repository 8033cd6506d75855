// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

import "unicode/utf8"

// MaxFieldID is the largest id a Field may carry (4 bits).
const MaxFieldID = 15

// MaxStringFieldLen is the largest number of UTF-8 bytes a String field
// may carry (10-bit length).
const MaxStringFieldLen = 1023

// FieldKind distinguishes how a Field's value is interpreted.
type FieldKind uint8

const (
	// KindString carries a UTF-8 string value.
	KindString FieldKind = 0
	// kind 1 is reserved; decoding it is an InvalidInput error.
	// KindNumber carries a packed u64 value.
	KindNumber FieldKind = 2
	// KindBoolean carries no value; its presence is the value.
	KindBoolean FieldKind = 3
)

// Field is one entry of a Table: a 4-bit id plus a kind-tagged value.
type Field struct {
	ID     uint8
	Kind   FieldKind
	Number uint64
	String string
}

// NewBooleanField constructs a presence-only field.
func NewBooleanField(id uint8) Field { return Field{ID: id, Kind: KindBoolean} }

// NewNumberField constructs a Number field.
func NewNumberField(id uint8, n uint64) Field { return Field{ID: id, Kind: KindNumber, Number: n} }

// NewStringField constructs a String field.
func NewStringField(id uint8, s string) Field { return Field{ID: id, Kind: KindString, String: s} }

// Table is an insertion-ordered sequence of Fields. Duplicate ids are
// permitted; their semantics are left to the interpreting bottle type.
type Table struct {
	Fields []Field
}

// Add appends f to the table and returns the table for chaining.
func (t *Table) Add(f Field) *Table {
	t.Fields = append(t.Fields, f)
	return t
}

// Get returns the first field with the given id and whether it was found.
func (t *Table) Get(id uint8) (Field, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// content returns the encoded bytes for a field's value: empty for
// Boolean, the packed u64 encoding for Number, UTF-8 bytes for String.
func (f Field) content() ([]byte, error) {
	switch f.Kind {
	case KindBoolean:
		return nil, nil
	case KindNumber:
		return EncodePackedUint64(f.Number), nil
	case KindString:
		if len(f.String) > MaxStringFieldLen {
			return nil, newInvalidInput("string field exceeds 1023 bytes")
		}
		return []byte(f.String), nil
	default:
		return nil, newInvalidInput("unknown field kind")
	}
}

// Encode serializes the table to its on-wire byte representation.
func (t *Table) Encode() ([]byte, error) {
	var out []byte
	for _, f := range t.Fields {
		if f.ID > MaxFieldID {
			return nil, newInvalidInput("field id exceeds 15")
		}
		content, err := f.content()
		if err != nil {
			return nil, err
		}
		if len(content) > MaxStringFieldLen { // defensive; Number/Boolean never exceed this
			return nil, newInvalidInput("field content exceeds 1023 bytes")
		}
		length := len(content)
		out = append(out,
			byte(f.Kind)<<6|f.ID<<2|byte(length>>8),
			byte(length),
		)
		out = append(out, content...)
	}
	return out, nil
}

// DecodeTable parses a table from its on-wire byte representation.
func DecodeTable(buf []byte) (*Table, error) {
	t := &Table{}
	i := 0
	for i < len(buf) {
		if i+2 > len(buf) {
			return nil, newUnexpectedEOF("truncated table field header")
		}
		b0, b1 := buf[i], buf[i+1]
		kind := FieldKind(b0 >> 6)
		id := (b0 >> 2) & 0x0f
		length := int(b0&0x03)<<8 | int(b1)
		i += 2

		if i+length > len(buf) {
			return nil, newInvalidInput("table field content runs past end of table")
		}
		content := buf[i : i+length]
		i += length

		field := Field{ID: id, Kind: kind}
		switch kind {
		case KindBoolean:
			// no content
		case KindNumber:
			field.Number = DecodePackedUint64(content)
		case KindString:
			if !utf8.Valid(content) {
				return nil, newInvalidInput("string field is not valid UTF-8")
			}
			field.String = string(content)
		default:
			return nil, newInvalidInput("unknown table field kind")
		}
		t.Fields = append(t.Fields, field)
	}
	return t, nil
}
