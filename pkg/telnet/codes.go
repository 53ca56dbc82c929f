// Package telnet handles the byte stream beneath records: option negotiation,
// record framing with end-of-record markers, and transparency of the 0xFF byte.
package telnet

import "fmt"

// Command codes.
const (
	CmdIAC  byte = 255 // interpret as command
	CmdDONT byte = 254
	CmdDO   byte = 253
	CmdWONT byte = 252
	CmdWILL byte = 251
	CmdSB   byte = 250 // subnegotiation begin
	CmdNOP  byte = 241
	CmdSE   byte = 240 // subnegotiation end
	CmdEOR  byte = 239 // end of record
)

// Option codes.
const (
	OptBinary byte = 0
	OptTTYPE  byte = 24
	OptEOR    byte = 25
)

// Terminal-type subnegotiation verbs.
const (
	TTypeIS   byte = 0
	TTypeSEND byte = 1
)

var optionNames = map[byte]string{
	OptBinary: "BINARY",
	OptTTYPE:  "TERMINAL-TYPE",
	OptEOR:    "END-OF-RECORD",
}

// OptionName returns a readable option name.
func OptionName(opt byte) string {
	if name, ok := optionNames[opt]; ok {
		return name
	}
	return fmt.Sprintf("OPTION-%d", opt)
}

// CommandName returns a readable command name.
func CommandName(cmd byte) string {
	switch cmd {
	case CmdDO:
		return "DO"
	case CmdDONT:
		return "DONT"
	case CmdWILL:
		return "WILL"
	case CmdWONT:
		return "WONT"
	case CmdSB:
		return "SB"
	case CmdSE:
		return "SE"
	case CmdEOR:
		return "EOR"
	case CmdNOP:
		return "NOP"
	}
	return fmt.Sprintf("CMD-%d", cmd)
}
