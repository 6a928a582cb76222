package pcsc

import (
	"errors"
	"testing"
)

func TestPickReader(t *testing.T) {
	readers := []string{
		"Alcor Micro AU9540 00 00",
		"Identiv uTrust 2700 R Smart Card Reader 01 00",
	}

	tests := []struct {
		name    string
		match   string
		index   int
		want    string
		wantErr bool
	}{
		{name: "first by default", want: readers[0]},
		{name: "by index", index: 1, want: readers[1]},
		{name: "index out of range", index: 2, wantErr: true},
		{name: "negative index", index: -1, wantErr: true},
		{name: "by name", match: "utrust", want: readers[1]},
		{name: "name wins over index", match: "alcor", index: 1, want: readers[0]},
		{name: "unknown name", match: "gemalto", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PickReader(readers, tt.match, tt.index)
			if tt.wantErr {
				if !errors.Is(err, ErrNoReader) {
					t.Fatalf("PickReader() error = %v, want ErrNoReader", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PickReader() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PickReader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickReader_NoReaders(t *testing.T) {
	if _, err := PickReader(nil, "", 0); !errors.Is(err, ErrNoReader) {
		t.Errorf("PickReader(nil) error = %v, want ErrNoReader", err)
	}
}
