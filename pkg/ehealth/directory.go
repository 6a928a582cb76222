package ehealth

import (
	"fmt"
	"sort"
	"strings"
)

// CARD FILE SYSTEM (eCH-0064):
//
//	MF 3F00
//	 |- EF.DIR, EF.ATR, EF.ID, EF.AD, EF.VERSION, CVC and key files
//	 |- DF.NOT    DF01   emergency data
//	 '- DF.PKCS15 DF02   PKCS#15 certificate and key metadata
//
// Files are addressed by the concatenation of the identifiers on their path
// below the MF, e.g. DF02 1F06 for EF.CERT.

// FileID is the identifier path of a file, 2 or 4 bytes.
type FileID struct {
	path [4]byte
	n    int
}

// NewFileID builds a FileID from a 2 or 4 byte path.
func NewFileID(path ...byte) (FileID, error) {
	if len(path) != 2 && len(path) != 4 {
		return FileID{}, fmt.Errorf("file identifier must be 2 or 4 bytes, got %d", len(path))
	}
	var id FileID
	id.n = copy(id.path[:], path)
	return id, nil
}

func mustFileID(path ...byte) FileID {
	id, err := NewFileID(path...)
	if err != nil {
		panic(err)
	}
	return id
}

// Bytes returns a copy of the identifier path.
func (id FileID) Bytes() []byte {
	out := make([]byte, id.n)
	copy(out, id.path[:id.n])
	return out
}

// IsZero reports whether the identifier is unset.
func (id FileID) IsZero() bool {
	return id.n == 0
}

// String renders the path as 2-byte groups, e.g. "DF02/1F06".
func (id FileID) String() string {
	parts := make([]string, 0, 2)
	for i := 0; i+1 < id.n; i += 2 {
		parts = append(parts, fmt.Sprintf("%02X%02X", id.path[i], id.path[i+1]))
	}
	return strings.Join(parts, "/")
}

// FileKind is the ISO 7816-4 node type.
type FileKind int

const (
	MasterFile FileKind = iota + 1
	DedicatedFile
	ElementaryFile
)

func (k FileKind) String() string {
	switch k {
	case MasterFile:
		return "MF"
	case DedicatedFile:
		return "DF"
	case ElementaryFile:
		return "EF"
	default:
		return "?"
	}
}

// File is one entry of the card directory.
type File struct {
	Name        string
	Kind        FileKind
	ID          FileID
	Size        int  // READ BINARY length for records with a fixed layout, 0 if not known
	Certificate bool // holds a certificate that may be exported
}

var directory = []File{
	{Name: "MF", Kind: MasterFile, ID: mustFileID(0x3F, 0x00)},
	{Name: "NOT", Kind: DedicatedFile, ID: mustFileID(0xDF, 0x01)},
	{Name: "PKCS15", Kind: DedicatedFile, ID: mustFileID(0xDF, 0x02)},

	// MF
	{Name: "DIR", Kind: ElementaryFile, ID: mustFileID(0x2F, 0x00)},
	{Name: "ATR", Kind: ElementaryFile, ID: mustFileID(0x2F, 0x01)},
	{Name: "ICCSN", Kind: ElementaryFile, ID: mustFileID(0x2F, 0x05)},
	{Name: "PIN1", Kind: ElementaryFile, ID: mustFileID(0x00, 0x11)},
	{Name: "PIN2", Kind: ElementaryFile, ID: mustFileID(0x00, 0x12)},
	{Name: "PUK", Kind: ElementaryFile, ID: mustFileID(0x00, 0x14)},
	{Name: "ID", Kind: ElementaryFile, ID: mustFileID(0x2F, 0x06), Size: 0x54},
	{Name: "AD", Kind: ElementaryFile, ID: mustFileID(0x2F, 0x07), Size: 0x5F},
	{Name: "VERSION", Kind: ElementaryFile, ID: mustFileID(0x56, 0x00), Size: 4},
	{Name: "CVC.PDC", Kind: ElementaryFile, ID: mustFileID(0x2F, 0x03), Certificate: true},
	{Name: "CVC.CA_ORG_PDC", Kind: ElementaryFile, ID: mustFileID(0x2F, 0x08), Certificate: true},
	{Name: "PrK.SB", Kind: ElementaryFile, ID: mustFileID(0x00, 0x15)},
	{Name: "CVC.CA_ROOT_VK", Kind: ElementaryFile, ID: mustFileID(0x2F, 0x04), Certificate: true},
	{Name: "PuK.CA_ROOT_VK", Kind: ElementaryFile, ID: mustFileID(0x00, 0x1C)},
	{Name: "C2CSTATE", Kind: ElementaryFile, ID: mustFileID(0x00, 0x1D)},
	{Name: "GPKeys", Kind: ElementaryFile, ID: mustFileID(0x00, 0x01)},

	// DF.NOT
	{Name: "BGTD", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x01, 0x1F, 0x01)},
	{Name: "IMMD", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x01, 0x1F, 0x02)},
	{Name: "TPLD", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x01, 0x1F, 0x03)},
	{Name: "KHUF", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x01, 0x1F, 0x04)},
	{Name: "ZUSE", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x01, 0x1F, 0x05)},
	{Name: "MEDI", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x01, 0x1F, 0x06)},
	{Name: "ALLG", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x01, 0x1F, 0x07)},
	{Name: "ADDR", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x01, 0x1F, 0x08)},
	{Name: "VERF", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x01, 0x1F, 0x09)},

	// DF.PKCS15
	{Name: "CIAInfo", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x50, 0x32)},
	{Name: "OD", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x50, 0x31)},
	{Name: "PrKD", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x1F, 0x01)},
	{Name: "PuKD", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x1F, 0x02)},
	{Name: "CD", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x1F, 0x03)},
	{Name: "DCOD", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x1F, 0x04)},
	{Name: "AOD", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x1F, 0x05)},
	{Name: "CERT", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x1F, 0x06), Certificate: true},
	{Name: "PuK.DEC", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x1F, 0x07)},
	{Name: "PuK.X509", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x1F, 0x08)},
	{Name: "PrK.DEC", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x00, 0x16)},
	{Name: "PrK.X509", Kind: ElementaryFile, ID: mustFileID(0xDF, 0x02, 0x00, 0x17)},
}

// Resolve looks up a file by its symbolic name (case-sensitive, as printed
// on the eCH-0064 file list).
func Resolve(name string) (File, error) {
	for _, f := range directory {
		if f.Name == name {
			return f, nil
		}
	}
	return File{}, &UnknownFileError{Name: name}
}

// Files returns every directory entry sorted by name.
func Files() []File {
	out := make([]File, len(directory))
	copy(out, directory)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DescribeFiles lists the directory, one file per line.
func DescribeFiles() string {
	var sb strings.Builder
	sb.WriteString("=== CARD FILES ===")
	for _, f := range Files() {
		flags := ""
		if f.Certificate {
			flags = " [certificate]"
		}
		sb.WriteString(fmt.Sprintf("\n    - %s %-15s %s%s", f.Kind, f.Name, f.ID, flags))
	}
	return sb.String()
}
