package ehealth

import (
	"fmt"
	"strings"

	"github.com/gregLibert/ehealth-card/pkg/tlv"
	"golang.org/x/text/unicode/norm"
)

// AdministrativeSchema returns the layout of EF.AD.
func AdministrativeSchema() tlv.Schema {
	return tlv.NewSchema("EF.AD",
		tlv.TextField(0x90, 2, "issuing_state_id"),
		tlv.TextField(0x91, 50, "insurance_name"),
		tlv.TextField(0x92, 5, "insurance_BAG_number"),
		tlv.TextField(0x93, 20, "card_number"),
		tlv.DateField(0x94, 8, "expiry_date"),
	)
}

// AdministrativeData is the insurer record of EF.AD.
type AdministrativeData struct {
	IssuingStateID     string
	InsuranceName      string
	InsuranceBAGNumber string
	CardNumber         string
	ExpiryDate         tlv.Date
}

// DecodeAdministrativeData decodes the content of EF.AD.
func DecodeAdministrativeData(data []byte) (*AdministrativeData, error) {
	rec, err := tlv.Decode(AdministrativeSchema(), data)
	if err != nil {
		return nil, fmt.Errorf("decode EF.AD: %w", err)
	}

	ad := &AdministrativeData{}
	ad.IssuingStateID, _ = rec.Text("issuing_state_id")
	ad.InsuranceName, _ = rec.Text("insurance_name")
	ad.InsuranceBAGNumber, _ = rec.Text("insurance_BAG_number")
	ad.CardNumber, _ = rec.Text("card_number")
	ad.ExpiryDate, _ = rec.Date("expiry_date")

	ad.InsuranceName = norm.NFC.String(ad.InsuranceName)
	return ad, nil
}

// Describe generates a report of the administrative record.
func (ad *AdministrativeData) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== ADMINISTRATIVE DATA (EF.AD) ===")
	sb.WriteString(fmt.Sprintf("\n    - AD.IssuingStateID:     %s", ad.IssuingStateID))
	sb.WriteString(fmt.Sprintf("\n    - AD.InsuranceName:      %s", ad.InsuranceName))
	sb.WriteString(fmt.Sprintf("\n    - AD.InsuranceBAGNumber: %s", ad.InsuranceBAGNumber))
	sb.WriteString(fmt.Sprintf("\n    - AD.CardNumber:         %s", ad.CardNumber))
	sb.WriteString(fmt.Sprintf("\n    - AD.ExpiryDate:         %s", ad.ExpiryDate))
	return sb.String()
}

// ReadAdministrativeData reads and decodes EF.AD.
func (s *Session) ReadAdministrativeData() (*AdministrativeData, error) {
	data, err := s.ReadFile("AD")
	if err != nil {
		return nil, err
	}
	return DecodeAdministrativeData(data)
}
