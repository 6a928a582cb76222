package iso7816

// READ BINARY COMMAND LOGIC (ISO 7816-4):
// READ BINARY (INS 'B0') returns bytes of the currently selected transparent
// EF starting at the offset given by P1-P2. The eHealth profile always reads
// from offset 0 and encodes Le in the 3-byte extended form:
//
//	00 B0 00 00 | 00 00 Le

// ReadBinary creates a READ BINARY command for n bytes at offset 0.
func ReadBinary(n int) *CommandAPDU {
	cmd := NewCommandAPDU(ClassInterindustry, INS_READ_BINARY, 0x00, 0x00, nil, n)
	cmd.Extended = true
	return cmd
}
