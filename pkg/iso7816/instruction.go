package iso7816

import "fmt"

// Instruction Byte (INS) according to ISO/IEC 7816-4.
//
// Only the file access instructions used to read a transparent elementary
// file are modelled here. INS values whose upper nibble is '6' or '9' are
// reserved for SW1 and transport procedures and are rejected by Validate.

// InsCode is a typed representation of the instruction byte.
type InsCode byte

const (
	INS_SELECT      InsCode = 0xA4
	INS_READ_BINARY InsCode = 0xB0
)

var insNames = map[InsCode]string{
	INS_SELECT:      "SELECT FILE",
	INS_READ_BINARY: "READ BINARY",
}

// String returns the command name, or a hex form for unknown codes.
func (i InsCode) String() string {
	if name, ok := insNames[i]; ok {
		return name
	}
	return fmt.Sprintf("INS(0x%02X)", byte(i))
}

// Validate rejects '6X' and '9X' values as required by ISO 7816-3.
func (i InsCode) Validate() error {
	highNibble := byte(i) & 0xF0
	if highNibble == 0x60 || highNibble == 0x90 {
		return fmt.Errorf("invalid INS 0x%02X: 6X and 9X are reserved", byte(i))
	}
	return nil
}

// Verbose returns a human-readable description of the instruction.
func (i InsCode) Verbose() string {
	return fmt.Sprintf("INS: 0x%02X | Command: %s", byte(i), i.String())
}
