package datastream

import (
	"fmt"
	"strings"
)

// Attention identifiers.
const (
	AIDNone  byte = 0x60
	AIDEnter byte = 0x7D
	AIDClear byte = 0x6D
	AIDPA1   byte = 0x6C
	AIDPA2   byte = 0x6E
	AIDPA3   byte = 0x6B
)

var pfKeys = [24]byte{
	0xF1, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6, 0xF7, 0xF8, 0xF9, 0x7A, 0x7B, 0x7C,
	0xC1, 0xC2, 0xC3, 0xC4, 0xC5, 0xC6, 0xC7, 0xC8, 0xC9, 0x4A, 0x4B, 0x4C,
}

var (
	aidByName = map[string]byte{
		"ENTER": AIDEnter,
		"CLEAR": AIDClear,
		"PA1":   AIDPA1,
		"PA2":   AIDPA2,
		"PA3":   AIDPA3,
	}
	aidNames = map[byte]string{}
)

func init() {
	for i, b := range pfKeys {
		aidByName[fmt.Sprintf("PF%d", i+1)] = b
	}
	for name, b := range aidByName {
		aidNames[b] = name
	}
}

// ParseAID resolves a key name such as "ENTER" or "pf3".
func ParseAID(name string) (byte, error) {
	b, ok := aidByName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown attention key %q", name)
	}
	return b, nil
}

// AIDName returns the key name of an attention identifier, or its hex form.
func AIDName(b byte) string {
	if name, ok := aidNames[b]; ok {
		return name
	}
	return fmt.Sprintf("AID_%02X", b)
}
