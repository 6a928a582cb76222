package iso7816

// SELECT COMMAND LOGIC (ISO 7816-4):
// The SELECT command (INS 'A4') opens a file (MF, DF or EF).
//
// P1 (Selection Method): how the file is targeted. The eHealth card family
// is addressed with P1 = 00 and the concatenated file identifiers of the
// path in the data field (e.g. DF02 1F06).
//
// P2 (Selection Control): 00 requests the FCI; the card answers with a bare
// status word for this profile, so no Le is sent.

// SelectionMethod defines how the file is targeted (P1).
type SelectionMethod byte

// SelectByFileID selects a file by its identifier, or by the concatenated
// identifiers of its path below the MF.
const SelectByFileID SelectionMethod = 0x00

// NewSelectCommand creates a SELECT command with the given method and file reference.
func NewSelectCommand(method SelectionMethod, ref []byte) *CommandAPDU {
	return NewCommandAPDU(ClassInterindustry, INS_SELECT, byte(method), 0x00, ref, 0)
}

// SelectFile creates the SELECT FILE command for a file identifier path:
// 00 A4 00 00 Lc <path>.
func SelectFile(path []byte) *CommandAPDU {
	return NewSelectCommand(SelectByFileID, path)
}
