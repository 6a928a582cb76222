/*
Package iso7816 implements the subset of ISO/IEC 7816 needed to read transparent files from a contact smart card.

It provides Command and Response APDU structures, Status Word (SW) analysis, the SELECT FILE and READ BINARY command builders, and a serial Client that records every exchange in a Trace.

# Fundamentals

The communication with a smart card is strictly synchronous:
 1. The Host sends a Command APDU (Header + Optional Body).
 2. The Card processes it and returns a Response APDU (Optional Body + Trailer SW1/SW2).

# Status Words

Every response ends with a 2-byte Status Word (SW). Only SW1 = 0x90 is treated as success; every other value is a failure of the command and is returned to the caller as is.

# Usage Example: Reading a transparent EF

	client := iso7816.NewClient(card)

	tx, err := client.Send(iso7816.SelectFile([]byte{0x2F, 0x06}))
	if err != nil {
	    log.Fatal(err)
	}
	if !tx.IsSuccess() {
	    log.Fatalf("select failed: %s", tx.Response.Status.Verbose())
	}

	tx, err = client.Send(iso7816.ReadBinary(0x54))
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("%X\n", tx.Response.Data)

	// Full report of the exchanges
	fmt.Println(client.Trace().Describe())
*/
package iso7816
