package iso7816

import (
	"fmt"
	"strings"
)

// TRANSACTION:
// The atomic unit of communication defined in ISO 7816-3: one Command APDU
// sent by the terminal, followed by one Response APDU sent back by the card.
//
// TRACE:
// A chronological sequence of Transactions. The Client appends every exchange
// of a session to its Trace so that a failing run can be replayed in a report.

// Transaction represents a completed Command-Response pair.
type Transaction struct {
	Command  *CommandAPDU
	Response *ResponseAPDU
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.Status.IsSuccess()
}

// Trace is a sequence of transactions (Command-Response pairs).
type Trace []Transaction

// Last returns the final transaction of the trace.
// Returns nil if the trace is empty.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the FINAL transaction in the trace was successful.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Describe renders one block per transaction: the command, its raw bytes and
// the status word with the number of payload bytes received.
func (t Trace) Describe() string {
	var sb strings.Builder

	sb.WriteString("=== APDU TRACE ===")

	for i, tx := range t {
		sb.WriteString(fmt.Sprintf("\n[%d] %s", i+1, tx.Command.Instruction))

		if raw, err := tx.Command.Bytes(); err == nil {
			sb.WriteString(fmt.Sprintf("\n    + C-APDU:  %X", raw))
		}

		if tx.Response == nil {
			sb.WriteString("\n    + Result:  no response")
			continue
		}

		resultMsg := "[OK]"
		if !tx.IsSuccess() {
			resultMsg = "[!!]"
		}
		sb.WriteString(fmt.Sprintf("\n    + Result:  %s %s", resultMsg, tx.Response.Status.Verbose()))

		if len(tx.Response.Data) > 0 {
			sb.WriteString(fmt.Sprintf("\n    + Payload: %d bytes", len(tx.Response.Data)))
		}
	}

	return sb.String()
}
