package ehealth

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gregLibert/ehealth-card/pkg/tlv"
	"github.com/moov-io/bertlv"
)

// Application is one Application Template (tag '61') of EF.DIR, ISO/IEC 7816-4.
type Application struct {
	AID     []byte       `tlv:"4F"`
	Label   []byte       `tlv:"50" fmt:"ascii"`
	Path    []byte       `tlv:"51"`
	DDO     []byte       `tlv:"73"`
	Unknown []bertlv.TLV `tlv:",unknown"`
}

type applicationDirectory struct {
	Applications []Application `tlv:"61"`
}

// DecodeApplications decodes the content of EF.DIR. Trailing 00 or FF
// padding of the transparent file is dropped before decoding.
func DecodeApplications(data []byte) ([]Application, error) {
	data = bytes.TrimRight(data, "\x00\xff")
	if len(data) == 0 {
		return nil, nil
	}

	var dir applicationDirectory
	if err := tlv.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("decode EF.DIR: %w", err)
	}
	return dir.Applications, nil
}

// DescribeApplications generates a report listing every application found.
func DescribeApplications(apps []Application) string {
	var sb strings.Builder
	sb.WriteString("=== APPLICATIONS (EF.DIR) ===")

	if len(apps) == 0 {
		sb.WriteString("\n    - No application templates.")
		return sb.String()
	}

	for i, app := range apps {
		tlv.WriteStructFields(&sb, fmt.Sprintf("App[%d]", i+1), app)
	}
	return sb.String()
}

// ReadApplications reads and decodes EF.DIR.
func (s *Session) ReadApplications() ([]Application, error) {
	data, err := s.ReadFile("DIR")
	if err != nil {
		return nil, err
	}
	return DecodeApplications(data)
}

// DescribeFile renders a BER-TLV tree of raw file content, or a hex dump if
// the content is not BER-TLV.
func DescribeFile(name string, data []byte) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== FILE %s (%d bytes) ===", name, len(data)))

	tree, err := tlv.DescribeTree(bytes.TrimRight(data, "\x00\xff"))
	if err != nil || tree == "" {
		sb.WriteString(fmt.Sprintf("\n    + Dump:   %X", data))
		sb.WriteString(fmt.Sprintf("\n    + ASCII:  %q", tlv.MakeSafeASCII(data)))
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString(tree)
	return sb.String()
}
