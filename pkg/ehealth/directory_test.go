package ehealth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		id   string
		kind FileKind
		size int
		cert bool
	}{
		{"MF", "3F00", MasterFile, 0, false},
		{"ID", "2F06", ElementaryFile, 0x54, false},
		{"AD", "2F07", ElementaryFile, 0x5F, false},
		{"VERSION", "5600", ElementaryFile, 4, false},
		{"PKCS15", "DF02", DedicatedFile, 0, false},
		{"CERT", "DF02/1F06", ElementaryFile, 0, true},
		{"MEDI", "DF01/1F06", ElementaryFile, 0, false},
		{"CVC.PDC", "2F03", ElementaryFile, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Resolve(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.id, f.ID.String())
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.size, f.Size)
			assert.Equal(t, tt.cert, f.Certificate)
		})
	}
}

func TestResolve_Unknown(t *testing.T) {
	for _, name := range []string{"", "id", "EF.ID", "PIN2 "} {
		_, err := Resolve(name)
		assert.ErrorIs(t, err, ErrUnknownFile, "name %q", name)
	}
}

func TestFiles_UniqueNamesAndPaths(t *testing.T) {
	names := map[string]bool{}
	paths := map[string]string{}

	for _, f := range Files() {
		assert.False(t, names[f.Name], "duplicate name %s", f.Name)
		names[f.Name] = true

		if other, ok := paths[f.ID.String()]; ok {
			t.Errorf("%s and %s share path %s", f.Name, other, f.ID)
		}
		paths[f.ID.String()] = f.Name
	}
}

func TestNewFileID(t *testing.T) {
	id, err := NewFileID(0xDF, 0x02, 0x1F, 0x06)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDF, 0x02, 0x1F, 0x06}, id.Bytes())
	assert.False(t, id.IsZero())

	_, err = NewFileID(0x2F)
	assert.Error(t, err)
	_, err = NewFileID(1, 2, 3)
	assert.Error(t, err)

	assert.True(t, FileID{}.IsZero())
}

func TestDescribeFiles(t *testing.T) {
	report := DescribeFiles()
	assert.Contains(t, report, "=== CARD FILES ===")
	assert.Contains(t, report, "DF02/1F06 [certificate]")
}
