package ehealth

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/gregLibert/ehealth-card/pkg/iso7816"
)

// certHeaderLength covers a two-byte tag (CVC '7F21') and a length field
// of up to four bytes ('83' LL LL LL).
const certHeaderLength = 6

// CreateExport checks that name is a certificate file and creates path
// exclusively for its content. Nothing is sent to the card, so an existing
// output file is refused before any command. The caller owns the file and
// removes it if the export fails.
func CreateExport(name, path string) (*os.File, error) {
	if _, err := certificateFile(name); err != nil {
		return nil, err
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, path)
		}
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return out, nil
}

// ExportCertificateTo reads the certificate file name and writes it to w.
//
// With n = 0 the length comes from the certificate itself: the BER header
// (X.509 '30', CVC '7F21') is read first, then the whole element with a
// single READ BINARY. With n > 0 exactly n bytes are read. Either way a
// certificate whose header declares more bytes than were returned is an
// IncompleteCertificateError and nothing is written; bytes after the
// element are dropped.
func (s *Session) ExportCertificateTo(name string, w io.Writer, n int) error {
	f, err := certificateFile(name)
	if err != nil {
		return err
	}

	var data []byte
	if n == 0 {
		header, err := s.ReadFileN(f.Name, certHeaderLength)
		if err != nil {
			return err
		}
		total, ok := berElementLength(header)
		if !ok {
			return fmt.Errorf("%w: %s: no BER header in %X", ErrIncompleteCert, f.Name, header)
		}
		if total > iso7816.MaxExtendedLe {
			return &IncompleteCertificateError{Name: f.Name, Declared: total}
		}
		// The file stays selected after the header read.
		if data, err = s.ReadBinary(total); err != nil {
			return err
		}
	} else if data, err = s.ReadFileN(f.Name, n); err != nil {
		return err
	}

	if total, ok := berElementLength(data); ok {
		if total > len(data) {
			return &IncompleteCertificateError{Name: f.Name, Declared: total, Read: len(data)}
		}
		data = data[:total]
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write certificate %s: %w", f.Name, err)
	}
	s.log.Info().Str("file", f.Name).Int("bytes", len(data)).Msg("certificate exported")
	return nil
}

func certificateFile(name string) (File, error) {
	f, err := Resolve(name)
	if err != nil {
		return File{}, err
	}
	if !f.Certificate {
		return File{}, fmt.Errorf("%w: %s", ErrNotCertificate, name)
	}
	return f, nil
}

// berElementLength returns the size of the BER element starting data,
// header included, from its tag and length fields. Indefinite lengths and
// lengths above 3 bytes are not reported.
func berElementLength(data []byte) (int, bool) {
	i := 1
	if len(data) < 2 || data[0] == 0x00 || data[0] == 0xFF {
		return 0, false
	}
	if data[0]&0x1F == 0x1F {
		i++ // two-byte tag: every tag on this card fits in two bytes
	}
	if i >= len(data) {
		return 0, false
	}

	first := data[i]
	i++
	if first < 0x80 {
		return i + int(first), true
	}

	size := int(first & 0x7F)
	if size == 0 || size > 3 || i+size > len(data) {
		return 0, false
	}
	length := 0
	for _, b := range data[i : i+size] {
		length = length<<8 | int(b)
	}
	return i + size + length, true
}
