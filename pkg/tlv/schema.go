package tlv

import (
	"fmt"
)

// SCHEMA-DRIVEN TLV:
// The eHealth card files use a flat, fixed-order TLV layout inside a
// two-byte envelope:
//
//	65 LL | T1 L1 V1 | T2 L2 V2 | ...
//
// Every tag and every length is a single byte. A Schema lists the fields in
// the order they must appear, with the largest length each one may declare
// and how its value is interpreted.

// EnvelopeTag is the leading byte of every schema-encoded card file.
const EnvelopeTag byte = 0x65

// Kind is the semantic type of a field value.
type Kind int

const (
	KindText Kind = iota + 1 // UTF-8 string
	KindDate                 // 8 ASCII digits, YYYYMMDD
	KindByte                 // exactly one raw byte
	KindRaw                  // opaque byte sequence
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindByte:
		return "byte"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FieldSpec describes one TLV field of a Schema.
type FieldSpec struct {
	Tag    byte
	MaxLen int
	Kind   Kind
	Name   string
}

// TextField declares a UTF-8 text field.
func TextField(tag byte, maxLen int, name string) FieldSpec {
	return FieldSpec{Tag: tag, MaxLen: maxLen, Kind: KindText, Name: name}
}

// DateField declares a YYYYMMDD date field.
func DateField(tag byte, maxLen int, name string) FieldSpec {
	return FieldSpec{Tag: tag, MaxLen: maxLen, Kind: KindDate, Name: name}
}

// ByteField declares a single byte field.
func ByteField(tag byte, maxLen int, name string) FieldSpec {
	return FieldSpec{Tag: tag, MaxLen: maxLen, Kind: KindByte, Name: name}
}

// RawField declares an opaque byte field.
func RawField(tag byte, maxLen int, name string) FieldSpec {
	return FieldSpec{Tag: tag, MaxLen: maxLen, Kind: KindRaw, Name: name}
}

// Schema is an ordered list of fields wrapped in an envelope tag.
type Schema struct {
	Name     string
	Envelope byte
	Fields   []FieldSpec
}

// NewSchema builds a schema using the standard EnvelopeTag.
func NewSchema(name string, fields ...FieldSpec) Schema {
	return Schema{Name: name, Envelope: EnvelopeTag, Fields: fields}
}

// Value is a decoded field value. The concrete type is one of Text, Date,
// Byte or Raw, matching the Kind of the field it was decoded from.
type Value interface {
	Kind() Kind
	String() string
}

// Text is the value of a KindText field.
type Text string

func (Text) Kind() Kind       { return KindText }
func (t Text) String() string { return string(t) }

// Date is the value of a KindDate field.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (Date) Kind() Kind { return KindDate }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Byte is the value of a KindByte field.
type Byte byte

func (Byte) Kind() Kind       { return KindByte }
func (b Byte) String() string { return fmt.Sprintf("%02X", byte(b)) }

// Raw is the value of a KindRaw field.
type Raw []byte

func (Raw) Kind() Kind       { return KindRaw }
func (r Raw) String() string { return fmt.Sprintf("%X", []byte(r)) }

// Record maps field names to decoded values.
type Record map[string]Value

// Text returns the named text value.
func (r Record) Text(name string) (string, bool) {
	v, ok := r[name].(Text)
	return string(v), ok
}

// Date returns the named date value.
func (r Record) Date(name string) (Date, bool) {
	v, ok := r[name].(Date)
	return v, ok
}

// Byte returns the named byte value.
func (r Record) Byte(name string) (byte, bool) {
	v, ok := r[name].(Byte)
	return byte(v), ok
}
