package telnet

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecord_DoublesIAC(t *testing.T) {
	got := EncodeRecord([]byte{0x01, 0xFF, 0x02})
	assert.Equal(t, []byte{0x01, 0xFF, 0xFF, 0x02, CmdIAC, CmdEOR}, got)
}

func TestScanner_UnescapesAndSkipsCommands(t *testing.T) {
	raw := []byte{0x01, CmdIAC, CmdIAC, CmdIAC, CmdNOP, CmdIAC, CmdDO, OptBinary, 0x02, CmdIAC, CmdEOR}
	r := bufio.NewReader(bytes.NewReader(raw))
	var data []byte
	for {
		tok, err := nextToken(r)
		require.NoError(t, err)
		if tok.kind == tokEOR {
			break
		}
		if tok.kind == tokData {
			data = append(data, tok.data)
		}
	}
	assert.Equal(t, []byte{0x01, 0xFF, 0x02}, data)
}

func TestScanner_SubnegotiationPayload(t *testing.T) {
	raw := subnegotiation(OptTTYPE, []byte{TTypeIS, 'A', 0xFF, 'B'})
	tok, err := nextToken(bufio.NewReader(bytes.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, tokSub, tok.kind)
	assert.Equal(t, OptTTYPE, tok.opt)
	assert.Equal(t, []byte{TTypeIS, 'A', 0xFF, 'B'}, tok.payload)
}
