package telnet

// EncodeRecord escapes every 0xFF in the record and appends the end-of-record marker.
func EncodeRecord(record []byte) []byte {
	out := make([]byte, 0, len(record)+2)
	for _, b := range record {
		if b == CmdIAC {
			out = append(out, CmdIAC)
		}
		out = append(out, b)
	}
	return append(out, CmdIAC, CmdEOR)
}

// command builds a three-byte option command.
func command(cmd, opt byte) []byte {
	return []byte{CmdIAC, cmd, opt}
}

// subnegotiation builds IAC SB opt payload IAC SE, escaping the payload.
func subnegotiation(opt byte, payload []byte) []byte {
	out := []byte{CmdIAC, CmdSB, opt}
	for _, b := range payload {
		if b == CmdIAC {
			out = append(out, CmdIAC)
		}
		out = append(out, b)
	}
	return append(out, CmdIAC, CmdSE)
}
