package ehealth

import (
	"fmt"
	"strings"

	"github.com/gregLibert/ehealth-card/pkg/tlv"
	"golang.org/x/text/unicode/norm"
)

// Sex is the administrative sex stored on EF.ID (ISO/IEC 5218).
type Sex byte

const (
	SexUnknown       Sex = 0
	SexMale          Sex = 1
	SexFemale        Sex = 2
	SexNotApplicable Sex = 9
)

func (s Sex) String() string {
	switch s {
	case SexUnknown:
		return "unknown"
	case SexMale:
		return "male"
	case SexFemale:
		return "female"
	case SexNotApplicable:
		return "not applicable"
	default:
		return fmt.Sprintf("Sex(%d)", byte(s))
	}
}

// ParseSex maps the card byte to a Sex.
func ParseSex(b byte) (Sex, error) {
	switch s := Sex(b); s {
	case SexUnknown, SexMale, SexFemale, SexNotApplicable:
		return s, nil
	default:
		return 0, &InvalidEnumError{Field: "sex", Value: b}
	}
}

// IdentitySchema returns the layout of EF.ID.
func IdentitySchema() tlv.Schema {
	return tlv.NewSchema("EF.ID",
		tlv.TextField(0x80, 50, "name"),
		tlv.DateField(0x82, 8, "date_of_birth"),
		tlv.TextField(0x83, 13, "insurance_number"),
		tlv.ByteField(0x84, 1, "sex"),
	)
}

// Identity is the card holder record of EF.ID.
type Identity struct {
	Name            string // as stored: "Family, Given"
	FamilyName      string
	GivenName       string
	DateOfBirth     tlv.Date
	InsuranceNumber string
	Sex             Sex
}

// DecodeIdentity decodes the content of EF.ID.
func DecodeIdentity(data []byte) (*Identity, error) {
	rec, err := tlv.Decode(IdentitySchema(), data)
	if err != nil {
		return nil, fmt.Errorf("decode EF.ID: %w", err)
	}

	name, _ := rec.Text("name")
	dob, _ := rec.Date("date_of_birth")
	number, _ := rec.Text("insurance_number")
	sexByte, _ := rec.Byte("sex")

	sex, err := ParseSex(sexByte)
	if err != nil {
		return nil, fmt.Errorf("decode EF.ID: %w", err)
	}

	name = norm.NFC.String(name)
	family, given := splitName(name)

	return &Identity{
		Name:            name,
		FamilyName:      family,
		GivenName:       given,
		DateOfBirth:     dob,
		InsuranceNumber: number,
		Sex:             sex,
	}, nil
}

// splitName cuts "Family, Given" at the first comma. A name without comma
// is all family name.
func splitName(name string) (family, given string) {
	family, given, found := strings.Cut(name, ",")
	if !found {
		return name, ""
	}
	return family, strings.TrimSpace(given)
}

// Describe generates a report of the identity record.
func (id *Identity) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== IDENTITY (EF.ID) ===")
	sb.WriteString(fmt.Sprintf("\n    - Identity.FamilyName:      %s", id.FamilyName))
	sb.WriteString(fmt.Sprintf("\n    - Identity.GivenName:       %s", id.GivenName))
	sb.WriteString(fmt.Sprintf("\n    - Identity.DateOfBirth:     %s", id.DateOfBirth))
	sb.WriteString(fmt.Sprintf("\n    - Identity.InsuranceNumber: %s", id.InsuranceNumber))
	sb.WriteString(fmt.Sprintf("\n    - Identity.Sex:             %s", id.Sex))
	return sb.String()
}

// ReadIdentity reads and decodes EF.ID.
func (s *Session) ReadIdentity() (*Identity, error) {
	data, err := s.ReadFile("ID")
	if err != nil {
		return nil, err
	}
	return DecodeIdentity(data)
}
