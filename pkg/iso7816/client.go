package iso7816

import (
	"fmt"

	"github.com/rs/zerolog"
)

// CLIENT & PROTOCOL LOGIC:
// The Client is a thin, strictly serial driver over the physical connection:
// each command is encoded, transmitted and its response fully parsed before
// the next one can be sent. It performs no automatic follow-up (GET RESPONSE,
// re-send with corrected Le); the status word is handed back untouched.

// Transmitter abstracts the physical card connection.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// TransportError reports a failure of the underlying Transmitter.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transmission error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client manages the high-level communication with the card.
type Client struct {
	Card Transmitter

	log   zerolog.Logger
	trace Trace
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger makes the client log every exchange at debug level.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new Client instance.
func NewClient(card Transmitter, opts ...ClientOption) *Client {
	c := &Client{Card: card, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send transmits a command and returns the parsed exchange.
func (c *Client) Send(cmd *CommandAPDU) (*Transaction, error) {
	rawCmd, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	c.log.Debug().
		Stringer("ins", cmd.Instruction).
		Hex("capdu", rawCmd).
		Msg("transmit")

	rawResp, err := c.Card.Transmit(rawCmd)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	resp, err := ParseResponseAPDU(rawResp)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Stringer("ins", cmd.Instruction).
		Int("len", len(resp.Data)).
		Str("sw", fmt.Sprintf("%04X", uint16(resp.Status))).
		Msg("response")

	c.trace = append(c.trace, Transaction{Command: cmd, Response: resp})
	return c.trace.Last(), nil
}

// Trace returns the exchanges sent through this client so far.
func (c *Client) Trace() Trace {
	return c.trace
}
