package tlv

import (
	"errors"
	"fmt"
)

var (
	ErrTagMismatch    = errors.New("tlv: tag mismatch")
	ErrLengthOverflow = errors.New("tlv: length overflow")
	ErrTruncated      = errors.New("tlv: truncated buffer")
	ErrInvalidValue   = errors.New("tlv: invalid value")
)

// TagMismatchError is returned when the tag at the current offset is not
// the one the schema expects next.
type TagMismatchError struct {
	Field    string
	Expected byte
	Actual   byte
	Offset   int
}

func (e *TagMismatchError) Error() string {
	return fmt.Sprintf("tlv: field %q: expected tag %02X, got %02X at offset %d",
		e.Field, e.Expected, e.Actual, e.Offset)
}

func (e *TagMismatchError) Is(target error) bool { return target == ErrTagMismatch }

// LengthOverflowError is returned when a field declares more bytes than its
// schema allows.
type LengthOverflowError struct {
	Field       string
	DeclaredMax int
	Actual      int
}

func (e *LengthOverflowError) Error() string {
	return fmt.Sprintf("tlv: field %q: length %d exceeds maximum %d",
		e.Field, e.Actual, e.DeclaredMax)
}

func (e *LengthOverflowError) Is(target error) bool { return target == ErrLengthOverflow }

// TruncatedError is returned when the buffer ends before a tag, length or
// payload could be read in full.
type TruncatedError struct {
	Field  string
	Offset int
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("tlv: field %q: need %d bytes at offset %d, buffer has %d",
		e.Field, e.Need, e.Offset, e.Have)
}

func (e *TruncatedError) Is(target error) bool { return target == ErrTruncated }

// InvalidValueError is returned when a payload cannot be interpreted as the
// field's Kind.
type InvalidValueError struct {
	Field  string
	Kind   Kind
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("tlv: field %q: invalid %s value: %s", e.Field, e.Kind, e.Reason)
}

func (e *InvalidValueError) Is(target error) bool { return target == ErrInvalidValue }
