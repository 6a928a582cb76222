package tlv

import (
	"bytes"
	"fmt"
)

// maxLength is the largest value a single length byte holds.
const maxLength = 0xFF

// Encode writes a record in the layout Decode reads: the envelope followed
// by every schema field in order, each as one tag byte, one length byte and
// the value. Tags are written as is, so schema tags such as 9F or DF that
// BER would read as the start of a multi-byte tag round-trip unchanged.
// All values must be present with the field's Kind and fit in the field's
// maximum length.
func Encode(schema Schema, record Record) ([]byte, error) {
	var body bytes.Buffer

	for _, field := range schema.Fields {
		payload, err := encodeValue(field, record[field.Name])
		if err != nil {
			return nil, err
		}
		if len(payload) > field.MaxLen || len(payload) > maxLength {
			return nil, &LengthOverflowError{Field: field.Name, DeclaredMax: min(field.MaxLen, maxLength), Actual: len(payload)}
		}

		body.WriteByte(field.Tag)
		body.WriteByte(byte(len(payload)))
		body.Write(payload)
	}

	if body.Len() > maxLength {
		return nil, &LengthOverflowError{Field: "envelope", DeclaredMax: maxLength, Actual: body.Len()}
	}

	out := make([]byte, 0, 2+body.Len())
	out = append(out, schema.Envelope, byte(body.Len()))
	return append(out, body.Bytes()...), nil
}

func encodeValue(field FieldSpec, value Value) ([]byte, error) {
	if value == nil {
		return nil, &InvalidValueError{Field: field.Name, Kind: field.Kind, Reason: "missing"}
	}
	if value.Kind() != field.Kind {
		return nil, &InvalidValueError{Field: field.Name, Kind: field.Kind,
			Reason: fmt.Sprintf("got %s value", value.Kind())}
	}

	switch v := value.(type) {
	case Text:
		return []byte(v), nil
	case Date:
		if v.Year < 0 || v.Year > 9999 || v.Month < 0 || v.Month > 99 || v.Day < 0 || v.Day > 99 {
			return nil, &InvalidValueError{Field: field.Name, Kind: KindDate, Reason: "out of range"}
		}
		return []byte(fmt.Sprintf("%04d%02d%02d", v.Year, v.Month, v.Day)), nil
	case Byte:
		return []byte{byte(v)}, nil
	case Raw:
		return []byte(v), nil
	default:
		return nil, &InvalidValueError{Field: field.Name, Kind: field.Kind, Reason: "unsupported value type"}
	}
}
