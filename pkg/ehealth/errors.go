package ehealth

import (
	"errors"
	"fmt"

	"github.com/gregLibert/ehealth-card/pkg/iso7816"
)

var (
	ErrConnection      = errors.New("ehealth: connection failure")
	ErrUnsupportedCard = errors.New("ehealth: unsupported card")
	ErrFileSelect      = errors.New("ehealth: file select failed")
	ErrRead            = errors.New("ehealth: read failed")
	ErrUnknownFile     = errors.New("ehealth: unknown file")
	ErrInvalidEnum     = errors.New("ehealth: invalid enumerated value")
	ErrInvalidState    = errors.New("ehealth: invalid session state")
	ErrNotCertificate  = errors.New("ehealth: file holds no certificate")
	ErrOutputExists    = errors.New("ehealth: output file already exists")
	ErrIncompleteCert  = errors.New("ehealth: incomplete certificate")
)

// ConnectionError reports that the reader connection could not be
// established or was lost. The session is unusable afterwards.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failure: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error        { return e.Err }
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// UnsupportedCardError reports an ATR that is not the eHealth card profile.
type UnsupportedCardError struct {
	ATR []byte
}

func (e *UnsupportedCardError) Error() string {
	return fmt.Sprintf("unsupported card: ATR %X", e.ATR)
}

func (e *UnsupportedCardError) Is(target error) bool { return target == ErrUnsupportedCard }

// FileSelectError reports a SELECT FILE answered with a non-success status.
type FileSelectError struct {
	File   FileID
	Status iso7816.StatusWord
}

func (e *FileSelectError) Error() string {
	return fmt.Sprintf("select %s: %s %s", e.File, statusLabel(e.Status), e.Status.Verbose())
}

func (e *FileSelectError) Is(target error) bool { return target == ErrFileSelect }

// ReadError reports a READ BINARY answered with a non-success status.
type ReadError struct {
	File   FileID
	Status iso7816.StatusWord
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read binary %s: %s %s", e.File, statusLabel(e.Status), e.Status.Verbose())
}

func (e *ReadError) Is(target error) bool { return target == ErrRead }

// statusLabel names the ISO 7816-4 category of a failing status word.
func statusLabel(sw iso7816.StatusWord) string {
	switch {
	case sw.IsWarning():
		return "card warning"
	case sw.IsError():
		return "card error"
	default:
		return "unexpected status"
	}
}

// IncompleteCertificateError reports a certificate whose DER header
// declares more bytes than the card returned or than one READ BINARY can
// fetch.
type IncompleteCertificateError struct {
	Name     string
	Declared int
	Read     int
}

func (e *IncompleteCertificateError) Error() string {
	return fmt.Sprintf("certificate %s: DER header declares %d bytes, read %d", e.Name, e.Declared, e.Read)
}

func (e *IncompleteCertificateError) Is(target error) bool { return target == ErrIncompleteCert }

// UnknownFileError reports a symbolic name missing from the directory.
type UnknownFileError struct {
	Name string
}

func (e *UnknownFileError) Error() string {
	return fmt.Sprintf("unknown file %q", e.Name)
}

func (e *UnknownFileError) Is(target error) bool { return target == ErrUnknownFile }

// InvalidEnumError reports an enumerated byte outside its known set.
type InvalidEnumError struct {
	Field string
	Value byte
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("field %q: invalid value %02X", e.Field, e.Value)
}

func (e *InvalidEnumError) Is(target error) bool { return target == ErrInvalidEnum }

// StateError reports an operation attempted in the wrong session state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

func (e *StateError) Is(target error) bool { return target == ErrInvalidState }
