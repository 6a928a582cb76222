/*
Package ehealth reads the holder and insurer data of Swiss eHealth insurance cards (eCH-0064).

A Session owns the channel to the card for its whole life: it verifies the card's ATR, then selects files by identifier path and reads them with READ BINARY. The fixed-layout records are decoded with the schemas of package tlv into Identity, AdministrativeData and Version values.

	sess, err := ehealth.Open(channel)
	if err != nil {
	    log.Fatal(err)
	}
	if err := sess.VerifyCardProfile(); err != nil {
	    log.Fatal(err) // errors.Is(err, ehealth.ErrUnsupportedCard)
	}

	id, err := sess.ReadIdentity()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(id.Describe())

Every failure is returned as a typed error (FileSelectError, ReadError, ...) matching one of the Err sentinels; nothing is retried.
*/
package ehealth
