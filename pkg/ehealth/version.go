package ehealth

import (
	"fmt"
	"strings"

	"github.com/gregLibert/ehealth-card/pkg/tlv"
)

// EF.VERSION is 4 bytes without TLV framing:
//
//	byte 0-2  application acronym, ASCII
//	byte 3    b8 = PDC supported, b7..b1 = version number

const versionSize = 4

// Version describes the card application version of EF.VERSION.
type Version struct {
	Acronym      string
	Number       int
	PDCSupported bool
}

// DecodeVersion decodes the content of EF.VERSION. Bytes after the fourth
// are ignored.
func DecodeVersion(data []byte) (*Version, error) {
	if len(data) < versionSize {
		return nil, fmt.Errorf("decode EF.VERSION: %w",
			&tlv.TruncatedError{Field: "version", Offset: 0, Need: versionSize, Have: len(data)})
	}

	flags := data[3]
	return &Version{
		Acronym:      string(data[:3]),
		Number:       int(flags & 0x7F),
		PDCSupported: flags&0x80 != 0,
	}, nil
}

// Describe generates a report of the version record.
func (v *Version) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== VERSION (EF.VERSION) ===")
	sb.WriteString(fmt.Sprintf("\n    - Version.Acronym:      %s", v.Acronym))
	sb.WriteString(fmt.Sprintf("\n    - Version.Number:       %d", v.Number))
	sb.WriteString(fmt.Sprintf("\n    - Version.PDCSupported: %t", v.PDCSupported))
	return sb.String()
}

// ReadVersion reads and decodes EF.VERSION.
func (s *Session) ReadVersion() (*Version, error) {
	data, err := s.ReadFile("VERSION")
	if err != nil {
		return nil, err
	}
	return DecodeVersion(data)
}
