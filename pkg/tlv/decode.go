package tlv

import (
	"fmt"
	"unicode/utf8"
)

// Decode walks data against the schema and returns one value per field.
//
// The first two bytes are the envelope (tag, length); the envelope tag must
// match and its length byte is not interpreted. Fields are then read in
// schema order. The first tag mismatch, length overflow, truncation or
// malformed value aborts the walk and no partial record is returned. Bytes
// after the last field are ignored.
func Decode(schema Schema, data []byte) (Record, error) {
	if len(data) < 2 {
		return nil, &TruncatedError{Field: "envelope", Offset: 0, Need: 2, Have: len(data)}
	}
	if data[0] != schema.Envelope {
		return nil, &TagMismatchError{Field: "envelope", Expected: schema.Envelope, Actual: data[0], Offset: 0}
	}

	record := make(Record, len(schema.Fields))
	offset := 2

	for _, field := range schema.Fields {
		value, next, err := decodeField(field, data, offset)
		if err != nil {
			return nil, err
		}
		record[field.Name] = value
		offset = next
	}

	return record, nil
}

func decodeField(field FieldSpec, data []byte, offset int) (Value, int, error) {
	if offset+2 > len(data) {
		return nil, 0, &TruncatedError{Field: field.Name, Offset: offset, Need: 2, Have: len(data)}
	}

	if tag := data[offset]; tag != field.Tag {
		return nil, 0, &TagMismatchError{Field: field.Name, Expected: field.Tag, Actual: tag, Offset: offset}
	}

	length := int(data[offset+1])
	if length > field.MaxLen {
		return nil, 0, &LengthOverflowError{Field: field.Name, DeclaredMax: field.MaxLen, Actual: length}
	}

	start := offset + 2
	end := start + length
	if end > len(data) {
		return nil, 0, &TruncatedError{Field: field.Name, Offset: start, Need: length, Have: len(data)}
	}

	value, err := interpret(field, data[start:end])
	if err != nil {
		return nil, 0, err
	}
	return value, end, nil
}

func interpret(field FieldSpec, payload []byte) (Value, error) {
	switch field.Kind {
	case KindText:
		if !utf8.Valid(payload) {
			return nil, &InvalidValueError{Field: field.Name, Kind: field.Kind, Reason: "not valid UTF-8"}
		}
		return Text(payload), nil

	case KindDate:
		return parseDate(field, payload)

	case KindByte:
		if len(payload) != 1 {
			return nil, &InvalidValueError{Field: field.Name, Kind: field.Kind,
				Reason: fmt.Sprintf("expected 1 byte, got %d", len(payload))}
		}
		return Byte(payload[0]), nil

	case KindRaw:
		raw := make(Raw, len(payload))
		copy(raw, payload)
		return raw, nil

	default:
		return nil, &InvalidValueError{Field: field.Name, Kind: field.Kind, Reason: "unsupported kind"}
	}
}

func parseDate(field FieldSpec, payload []byte) (Date, error) {
	if len(payload) != 8 {
		return Date{}, &InvalidValueError{Field: field.Name, Kind: KindDate,
			Reason: fmt.Sprintf("expected 8 digits, got %d bytes", len(payload))}
	}

	for _, c := range payload {
		if c < '0' || c > '9' {
			return Date{}, &InvalidValueError{Field: field.Name, Kind: KindDate,
				Reason: fmt.Sprintf("non-digit %q", MakeSafeASCII(payload))}
		}
	}

	return Date{
		Year:  digits(payload[0:4]),
		Month: digits(payload[4:6]),
		Day:   digits(payload[6:8]),
	}, nil
}

func digits(b []byte) int {
	n := 0
	for _, c := range b {
		n = n*10 + int(c-'0')
	}
	return n
}
