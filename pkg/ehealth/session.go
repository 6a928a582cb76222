package ehealth

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gregLibert/ehealth-card/pkg/iso7816"
	"github.com/rs/zerolog"
)

// SESSION STATE MACHINE:
//
//	Disconnected -> Connected -> Verified -> FileSelected
//	                                ^             |
//	                                '-------------'  failed SELECT
//
// A session is opened once per channel. The ATR check moves it to Verified;
// only then may files be selected. READ BINARY needs a selected file. A lost
// connection drops the session to Disconnected for good; nothing is retried.

// expectedATR is the Answer-To-Reset of the eHealth card profile (MTCOS).
var expectedATR = [25]byte{
	0x3B, 0x9F, 0x13, 0x81, 0xB1, 0x80, 0x37, 0x1F, 0x03, 0x80, 0x31, 0xF8, 0x69,
	0x4D, 0x54, 0x43, 0x4F, 0x53, 0x70, 0x02, 0x01, 0x02, 0x81, 0x07, 0x86,
}

// ExpectedATR returns a copy of the ATR a supported card must present.
func ExpectedATR() []byte {
	atr := expectedATR
	return atr[:]
}

// DefaultReadLength is used for files whose layout does not fix a size.
const DefaultReadLength = 0xFF

// Channel is an open connection to one card reader.
//
//go:generate mockgen -source=session.go -destination=mocks/channel_mock.go -package=mocks Channel
type Channel interface {
	iso7816.Transmitter
	ATR() []byte
}

// State is the position of a Session in its life cycle.
type State int

const (
	Disconnected State = iota
	Connected
	Verified
	FileSelected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case Verified:
		return "Verified"
	case FileSelected:
		return "FileSelected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session drives the SELECT FILE / READ BINARY protocol over a Channel.
// It is not safe for concurrent use.
type Session struct {
	channel  Channel
	client   *iso7816.Client
	state    State
	selected FileID
	log      zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for state transitions and APDU exchanges.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// Open starts a session on an already connected channel.
func Open(ch Channel, opts ...Option) (*Session, error) {
	if ch == nil {
		return nil, &ConnectionError{Err: errors.New("no channel")}
	}

	s := &Session{channel: ch, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.client = iso7816.NewClient(ch, iso7816.WithLogger(s.log))
	s.setState(Connected)
	return s, nil
}

// Dial connects through open and starts a session on the resulting channel.
// Any failure of open is reported as a ConnectionError.
func Dial(open func() (Channel, error), opts ...Option) (*Session, error) {
	ch, err := open()
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return Open(ch, opts...)
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// Selected returns the identifier of the currently selected file, if any.
func (s *Session) Selected() (FileID, bool) {
	return s.selected, s.state == FileSelected
}

// Trace returns every APDU exchanged during the session.
func (s *Session) Trace() iso7816.Trace {
	return s.client.Trace()
}

// VerifyCardProfile compares the channel's ATR with ExpectedATR.
func (s *Session) VerifyCardProfile() error {
	if s.state == Disconnected {
		return &StateError{Op: "verify card profile", State: s.state}
	}

	atr := s.channel.ATR()
	if !bytes.Equal(atr, expectedATR[:]) {
		s.log.Debug().Hex("atr", atr).Msg("unexpected ATR")
		return &UnsupportedCardError{ATR: append([]byte(nil), atr...)}
	}

	if s.state == Connected {
		s.setState(Verified)
	}
	return nil
}

// SelectFile issues SELECT FILE for id.
func (s *Session) SelectFile(id FileID) error {
	if s.state < Verified {
		return &StateError{Op: "select file", State: s.state}
	}
	if id.IsZero() {
		return fmt.Errorf("select file: empty file identifier")
	}

	tx, err := s.send(iso7816.SelectFile(id.Bytes()))
	if err != nil {
		return fmt.Errorf("select %s: %w", id, err)
	}

	if !tx.IsSuccess() {
		s.selected = FileID{}
		s.setState(Verified)
		return &FileSelectError{File: id, Status: tx.Response.Status}
	}

	s.selected = id
	s.setState(FileSelected)
	return nil
}

// ReadBinary reads n bytes from offset 0 of the selected file and returns
// the payload without the status word.
func (s *Session) ReadBinary(n int) ([]byte, error) {
	if s.state != FileSelected {
		return nil, &StateError{Op: "read binary", State: s.state}
	}
	if n < 1 || n > iso7816.MaxExtendedLe {
		return nil, fmt.Errorf("read binary: length %d out of range (1..%d)", n, iso7816.MaxExtendedLe)
	}

	tx, err := s.send(iso7816.ReadBinary(n))
	if err != nil {
		return nil, fmt.Errorf("read binary %s: %w", s.selected, err)
	}

	if !tx.IsSuccess() {
		return nil, &ReadError{File: s.selected, Status: tx.Response.Status}
	}
	return tx.Response.Data, nil
}

// ReadFile resolves name, selects it and reads its directory size, or
// DefaultReadLength when the directory does not fix one.
func (s *Session) ReadFile(name string) ([]byte, error) {
	f, err := Resolve(name)
	if err != nil {
		return nil, err
	}

	n := f.Size
	if n == 0 {
		n = DefaultReadLength
	}
	return s.readFile(f, n)
}

// ReadFileN resolves name, selects it and reads n bytes.
func (s *Session) ReadFileN(name string, n int) ([]byte, error) {
	f, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	return s.readFile(f, n)
}

func (s *Session) readFile(f File, n int) ([]byte, error) {
	if err := s.SelectFile(f.ID); err != nil {
		return nil, err
	}
	data, err := s.ReadBinary(n)
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("file", f.Name).Int("bytes", len(data)).Msg("file read")
	return data, nil
}

// send transmits cmd; a transport failure or a response without status
// word ends the session.
func (s *Session) send(cmd *iso7816.CommandAPDU) (*iso7816.Transaction, error) {
	tx, err := s.client.Send(cmd)
	if err != nil {
		var transportErr *iso7816.TransportError
		if errors.As(err, &transportErr) {
			s.disconnect()
			return nil, &ConnectionError{Err: transportErr.Err}
		}
		var malformed *iso7816.MalformedResponseError
		if errors.As(err, &malformed) {
			s.disconnect()
			return nil, &ConnectionError{Err: malformed}
		}
		return nil, err
	}
	return tx, nil
}

func (s *Session) disconnect() {
	s.selected = FileID{}
	s.setState(Disconnected)
}

func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	s.log.Debug().Stringer("from", s.state).Stringer("to", next).Msg("session state")
	s.state = next
}
