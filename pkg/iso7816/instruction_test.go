package iso7816

import "testing"

func TestInsCode_Validate(t *testing.T) {
	tests := []struct {
		ins     InsCode
		wantErr bool
	}{
		{INS_SELECT, false},
		{INS_READ_BINARY, false},
		{InsCode(0x61), true},
		{InsCode(0x90), true},
		{InsCode(0x6C), true},
	}

	for _, tt := range tests {
		err := tt.ins.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%02X) error = %v, wantErr %v", byte(tt.ins), err, tt.wantErr)
		}
	}
}

func TestInsCode_String(t *testing.T) {
	if got := INS_SELECT.String(); got != "SELECT FILE" {
		t.Errorf("String() = %q, want %q", got, "SELECT FILE")
	}
	if got := InsCode(0x20).String(); got != "INS(0x20)" {
		t.Errorf("String() = %q, want %q", got, "INS(0x20)")
	}
}
