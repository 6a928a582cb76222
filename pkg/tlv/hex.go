package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex builds a byte slice from hex fixtures such as "65 00", "80 0C ...".
// Whitespace is skipped and '#' starts a comment running to the end of the
// line, so card dumps can be annotated in place:
//
//	Hex(`65 00        # envelope
//	     80 0C 4D75...  # name`)
//
// It panics on any other character or on an odd digit count and is meant
// for fixtures and constant tables only.
func Hex(parts ...string) []byte {
	var digits strings.Builder

	for i, part := range parts {
		comment := false
		for pos, r := range part {
			switch {
			case r == '\n':
				comment = false
			case comment, r == ' ', r == '\t', r == '\r':
			case r == '#':
				comment = true
			case strings.ContainsRune("0123456789abcdefABCDEF", r):
				digits.WriteRune(r)
			default:
				panic(fmt.Sprintf("tlv.Hex: part %d, offset %d: unexpected %q", i, pos, r))
			}
		}
	}

	if digits.Len()%2 != 0 {
		panic(fmt.Sprintf("tlv.Hex: odd number of hex digits (%d)", digits.Len()))
	}
	data, err := hex.DecodeString(digits.String())
	if err != nil {
		panic(fmt.Sprintf("tlv.Hex: %v", err))
	}
	return data
}
