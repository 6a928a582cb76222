package iso7816

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/gregLibert/ehealth-card/pkg/tlv"
)

func TestFileCommands(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *CommandAPDU
		expected []byte
	}{
		{
			name: "Select EF.ID under MF",
			cmd:  SelectFile([]byte{0x2F, 0x06}),
			expected: tlv.Hex(
				"00 A4 00 00", // Header: CLA=00, INS=A4, P1=00 (FileID), P2=00
				"02",          // Lc=2
				"2F 06",       // Data: File ID
				// No Le
			),
		},
		{
			name: "Select EF.CERT by path",
			cmd:  SelectFile([]byte{0xDF, 0x02, 0x1F, 0x06}),
			expected: tlv.Hex(
				"00 A4 00 00",
				"04",
				"DF 02 1F 06",
			),
		},
		{
			name: "Read Binary 0x54 bytes",
			cmd:  ReadBinary(0x54),
			expected: tlv.Hex(
				"00 B0 00 00", // Header: offset 0
				"00 00 54",    // Extended Le
			),
		},
		{
			name: "Read Binary 4 bytes",
			cmd:  ReadBinary(4),
			expected: tlv.Hex(
				"00 B0 00 00",
				"00 00 04",
			),
		},
		{
			name: "Read Binary beyond one byte of Le",
			cmd:  ReadBinary(0x0123),
			expected: tlv.Hex(
				"00 B0 00 00",
				"00 01 23",
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Failed to encode bytes: %v", err)
			}

			if !bytes.Equal(got, tt.expected) {
				t.Errorf("Mismatch:\nExpected: %s\nGot:      %s",
					hex.EncodeToString(tt.expected),
					hex.EncodeToString(got))
			}
		})
	}
}
