package iso7816

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makeTx(sw StatusWord) Transaction {
	return Transaction{
		Command:  SelectFile([]byte{0x2F, 0x06}),
		Response: &ResponseAPDU{Status: sw},
	}
}

func TestTransaction_IsSuccess(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want bool
	}{
		{
			name: "Successful Transaction (9000)",
			tx:   makeTx(SW_NO_ERROR),
			want: true,
		},
		{
			name: "Response Available (6110)",
			tx:   makeTx(NewStatusWord(0x61, 0x10)),
			want: false, // only SW1=90 counts as success
		},
		{
			name: "Error Transaction (6A82)",
			tx:   makeTx(SW_ERR_FILE_NOT_FOUND),
			want: false,
		},
		{
			name: "Nil Response (Incomplete Transaction)",
			tx:   Transaction{Command: &CommandAPDU{}, Response: nil},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.IsSuccess(); got != tt.want {
				t.Errorf("Transaction.IsSuccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrace_Logic(t *testing.T) {
	t.Run("Empty Trace", func(t *testing.T) {
		var tr Trace
		if tr.Last() != nil {
			t.Error("Empty trace Last() should be nil")
		}
		if tr.IsSuccess() {
			t.Error("Empty trace IsSuccess() should be false")
		}
	})

	t.Run("Failure at the end", func(t *testing.T) {
		tr := Trace{
			makeTx(SW_NO_ERROR),
			makeTx(SW_ERR_FILE_NOT_FOUND),
		}

		if tr.IsSuccess() {
			t.Error("Trace should fail if the last action failed")
		}
	})
}

func TestTrace_Describe(t *testing.T) {
	tr := Trace{
		makeTx(SW_NO_ERROR),
		{
			Command:  ReadBinary(3),
			Response: &ResponseAPDU{Data: []byte{1, 2, 3}, Status: SW_ERR_WRONG_LENGTH},
		},
	}

	expectedLines := []string{
		"=== APDU TRACE ===",
		"[1] SELECT FILE",
		"    + C-APDU:  00A40000022F06",
		"    + Result:  [OK] [9000] SW_NO_ERROR",
		"[2] READ BINARY",
		"    + C-APDU:  00B00000000003",
		"    + Result:  [!!] [6700] SW_ERR_WRONG_LENGTH",
		"    + Payload: 3 bytes",
	}

	actualLines := strings.Split(tr.Describe(), "\n")
	if diff := cmp.Diff(expectedLines, actualLines); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}
}
