// Package pcsc connects to contact card readers through the platform PC/SC
// service (pcsclite, WinSCard) and exposes a connected card as a channel
// that transmits raw APDUs.
package pcsc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ebfe/scard"
	"github.com/rs/zerolog"
)

// ErrNoReader is returned when no reader matches the request.
var ErrNoReader = errors.New("pcsc: no matching reader")

// Context is an established PC/SC resource manager context.
type Context struct {
	ctx *scard.Context
	log zerolog.Logger
}

// EstablishContext opens a PC/SC context. It must be released with Release.
func EstablishContext(log zerolog.Logger) (*Context, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establish context: %w", err)
	}
	return &Context{ctx: ctx, log: log}, nil
}

// Release frees the context.
func (c *Context) Release() error {
	return c.ctx.Release()
}

// ListReaders returns the names of the readers currently attached.
func (c *Context) ListReaders() ([]string, error) {
	readers, err := c.ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("list readers: %w", err)
	}
	return readers, nil
}

// Connect opens a shared connection to the card in reader and records its
// ATR.
func (c *Context) Connect(reader string) (*Channel, error) {
	c.log.Debug().Str("reader", reader).Msg("connecting to card")

	// T=0 or T=1 only; ProtocolAny is rejected by some drivers (SCARD_E_INVALID_PARAMETER).
	card, err := c.ctx.Connect(reader, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		return nil, fmt.Errorf("connect %q: %w", reader, err)
	}

	status, err := card.Status()
	if err != nil {
		if derr := card.Disconnect(scard.LeaveCard); derr != nil {
			c.log.Warn().Err(derr).Msg("disconnect after status failure")
		}
		return nil, fmt.Errorf("card status %q: %w", reader, err)
	}

	c.log.Debug().
		Str("reader", reader).
		Hex("atr", status.Atr).
		Str("protocol", protocolName(status.ActiveProtocol)).
		Msg("card connected")

	return &Channel{
		Reader: reader,
		card:   card,
		atr:    append([]byte(nil), status.Atr...),
	}, nil
}

func protocolName(p scard.Protocol) string {
	switch p {
	case scard.ProtocolT0:
		return "T=0"
	case scard.ProtocolT1:
		return "T=1"
	default:
		return "unknown"
	}
}

// Channel is a connected card.
type Channel struct {
	Reader string

	card *scard.Card
	atr  []byte
}

// Transmit sends a raw command APDU and returns the raw response including
// the status word.
func (ch *Channel) Transmit(cmd []byte) ([]byte, error) {
	return ch.card.Transmit(cmd)
}

// ATR returns the Answer-To-Reset read when the connection was opened.
func (ch *Channel) ATR() []byte {
	return append([]byte(nil), ch.atr...)
}

// Close disconnects from the card, leaving it powered.
func (ch *Channel) Close() error {
	return ch.card.Disconnect(scard.LeaveCard)
}

// PickReader chooses a reader from readers. A non-empty name selects the
// first reader whose name contains it (case-insensitive); otherwise index
// selects by position.
func PickReader(readers []string, name string, index int) (string, error) {
	if len(readers) == 0 {
		return "", fmt.Errorf("%w: no reader attached", ErrNoReader)
	}

	if name != "" {
		needle := strings.ToLower(name)
		for _, r := range readers {
			if strings.Contains(strings.ToLower(r), needle) {
				return r, nil
			}
		}
		return "", fmt.Errorf("%w: no reader named %q", ErrNoReader, name)
	}

	if index < 0 || index >= len(readers) {
		return "", fmt.Errorf("%w: index %d out of range (0..%d)", ErrNoReader, index, len(readers)-1)
	}
	return readers[index], nil
}
