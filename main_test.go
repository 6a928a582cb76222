package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gregLibert/ehealth-card/pkg/ehealth"
	"github.com/gregLibert/ehealth-card/pkg/ehealth/mocks"
	"github.com/gregLibert/ehealth-card/pkg/tlv"
)

func newMockSession(t *testing.T) (*ehealth.Session, *mocks.MockChannel) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ch := mocks.NewMockChannel(ctrl)

	sess, err := ehealth.Open(ch)
	require.NoError(t, err)
	return sess, ch
}

func TestReport_Version(t *testing.T) {
	sess, ch := newMockSession(t)
	ch.EXPECT().ATR().Return(ehealth.ExpectedATR())
	gomock.InOrder(
		ch.EXPECT().Transmit(tlv.Hex("00 A4 00 00 02 56 00")).Return(tlv.Hex("90 00"), nil),
		ch.EXPECT().Transmit(tlv.Hex("00 B0 00 00 00 00 04")).Return(tlv.Hex("48 43 41 81 90 00"), nil),
	)

	sections, err := report(sess, defaultConfig(), options{version: true, trace: true}, nil)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Contains(t, sections[0], "    - Version.Acronym:      HCA")
	assert.True(t, strings.HasPrefix(sections[1], "=== APDU TRACE ==="))
}

func TestReport_UnsupportedCard(t *testing.T) {
	sess, ch := newMockSession(t)
	ch.EXPECT().ATR().Return(tlv.Hex("3B 8F 80 01"))

	_, err := report(sess, defaultConfig(), options{identity: true}, nil)
	assert.ErrorIs(t, err, ehealth.ErrUnsupportedCard)
}

func TestReport_IdentityThenExport(t *testing.T) {
	sess, ch := newMockSession(t)
	ch.EXPECT().ATR().Return(ehealth.ExpectedATR())

	identity := tlv.Hex(`65 00 80 0C 4D 75 73 74 65 72 2C 20 48 61 6E 73
		82 08 31 39 38 30 30 31 30 31 83 03 31 32 33 84 01 01`)
	cert := tlv.Hex("30 05 02 03 01 00 01")
	gomock.InOrder(
		ch.EXPECT().Transmit(tlv.Hex("00 A4 00 00 02 2F 06")).Return(tlv.Hex("90 00"), nil),
		ch.EXPECT().Transmit(tlv.Hex("00 B0 00 00 00 00 54")).Return(append(identity, 0x90, 0x00), nil),
		ch.EXPECT().Transmit(tlv.Hex("00 A4 00 00 04 DF 02 1F 06")).Return(tlv.Hex("90 00"), nil),
		ch.EXPECT().Transmit(tlv.Hex("00 B0 00 00 00 00 06")).Return(append(append([]byte(nil), cert[:6]...), 0x90, 0x00), nil),
		ch.EXPECT().Transmit(tlv.Hex("00 B0 00 00 00 00 07")).Return(append(append([]byte(nil), cert...), 0x90, 0x00), nil),
	)

	var out bytes.Buffer
	sections, err := report(sess, defaultConfig(), options{identity: true, export: "CERT"}, &out)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Contains(t, sections[0], "Identity.FamilyName:      Muster")
	assert.Equal(t, cert, out.Bytes())
}

func TestRun_ExportRefusesExistingBeforeCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card-cert.der")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))

	// The run must stop before opening PC/SC: ErrOutputExists, not a
	// connection failure, comes back even without a reader.
	var stdout, stderr bytes.Buffer
	err := run([]string{"-i", "-x", "CERT", "-o", path}, &stdout, &stderr)
	require.ErrorIs(t, err, ehealth.ErrOutputExists)
	assert.NotErrorIs(t, err, ehealth.ErrConnection)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("keep"), data)
}

func TestRun_ExportRejectsNonCertificate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.der")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-x", "ID", "-o", path}, &stdout, &stderr)
	require.ErrorIs(t, err, ehealth.ErrNotCertificate)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFinishExport_RemovesOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cert.der")
	f, err := os.Create(path)
	require.NoError(t, err)

	failure := ehealth.ErrFileSelect
	assert.ErrorIs(t, finishExport(f, failure), failure)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_ListFiles(t *testing.T) {
	var stdout, stderr bytes.Buffer

	require.NoError(t, run([]string{"-F"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "=== CARD FILES ===")
}

func TestRun_ReportToFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "report.txt")

	require.NoError(t, run([]string{"-F", "-f", path}, &stdout, &stderr))
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "EF CERT")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-z"}},
		{"extra argument", []string{"-F", "extra"}},
		{"missing config", []string{"-F", "-c", filepath.Join(t.TempDir(), "none.toml")}},
		{"negative reader", []string{"-F", "-r", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(tt.args, &stdout, &stderr))
		})
	}
}

func TestDescribeReaders(t *testing.T) {
	assert.Equal(t, "=== READERS ===\n    - No reader attached.", describeReaders(nil))
	assert.Equal(t, "=== READERS ===\n    [0] A\n    [1] B", describeReaders([]string{"A", "B"}))
}
