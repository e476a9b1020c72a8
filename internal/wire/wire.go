// Package wire holds the small set of protobuf wire-format helpers shared by the
// hand-written message codecs. Encoders follow proto3 rules: scalar fields holding
// their zero value are omitted; embedded messages are always written.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field is a single decoded field of a protobuf message. Varint is set for varint
// fields and Bytes for length-delimited fields.
type Field struct {
	Num    protowire.Number
	Type   protowire.Type
	Varint uint64
	Bytes  []byte
}

// RangeFields decodes bz field by field and calls fn for each varint and
// length-delimited field. Fields of other wire types are skipped.
func RangeFields(bz []byte, fn func(Field) error) error {
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return protowire.ParseError(n)
		}
		bz = bz[n:]

		field := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			field.Varint, n = protowire.ConsumeVarint(bz)
		case protowire.BytesType:
			field.Bytes, n = protowire.ConsumeBytes(bz)
		default:
			n = protowire.ConsumeFieldValue(num, typ, bz)
			if n < 0 {
				return protowire.ParseError(n)
			}
			bz = bz[n:]
			continue
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		bz = bz[n:]

		if err := fn(field); err != nil {
			return err
		}
	}

	return nil
}

// ExpectType returns an error when the field is not of the given wire type.
func (f Field) ExpectType(typ protowire.Type) error {
	if f.Type != typ {
		return fmt.Errorf("field %d: unexpected wire type %d, expected %d", f.Num, f.Type, typ)
	}
	return nil
}

// AppendVarint appends a varint field, omitting it when v is zero.
func AppendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// AppendBytes appends a length-delimited field, omitting it when v is empty.
func AppendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	return AppendMessage(b, num, v)
}

// AppendString appends a string field, omitting it when v is empty.
func AppendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// AppendMessage appends an embedded message field, including when it is empty.
func AppendMessage(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}
