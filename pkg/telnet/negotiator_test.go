package telnet

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deliver feeds raw bytes into a negotiator and returns what it answers.
func deliver(t *testing.T, n *Negotiator, raw []byte) ([]byte, error) {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(raw))
	var out []byte
	for {
		tok, err := nextToken(r)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		require.NoError(t, err)
		var reply []byte
		switch tok.kind {
		case tokOption:
			reply, err = n.Receive(tok.cmd, tok.opt)
		case tokSub:
			reply, err = n.ReceiveSub(tok.opt, tok.payload)
		}
		if err != nil {
			return out, err
		}
		out = append(out, reply...)
	}
}

// converse shuttles bytes between the two sides until both are quiet.
func converse(t *testing.T, host, client *Negotiator) error {
	t.Helper()
	toClient := host.Start()
	for round := 0; round < 16 && len(toClient) > 0; round++ {
		toHost, err := deliver(t, client, toClient)
		if err != nil {
			return err
		}
		toClient, err = deliver(t, host, toHost)
		if err != nil {
			return err
		}
	}
	return nil
}

func TestNegotiation_HostAndClientComplete(t *testing.T) {
	host := NewNegotiator(RoleHost)
	client := NewNegotiator(RoleClient, WithTerminalType("IBM-3278-2-E@LU01"))

	require.NoError(t, converse(t, host, client))
	assert.True(t, host.Done())
	assert.True(t, client.Done())
	assert.Equal(t, "IBM-3278-2-E@LU01", host.PeerTerminalType())
}

func TestNegotiation_ClientIsPassive(t *testing.T) {
	assert.Nil(t, NewNegotiator(RoleClient).Start())
}

func TestNegotiation_HostOpening(t *testing.T) {
	got := NewNegotiator(RoleHost).Start()
	want := []byte{
		CmdIAC, CmdDO, OptTTYPE,
		CmdIAC, CmdDO, OptEOR,
		CmdIAC, CmdWILL, OptEOR,
		CmdIAC, CmdDO, OptBinary,
		CmdIAC, CmdWILL, OptBinary,
	}
	assert.Equal(t, want, got)
}

func TestNegotiation_AcknowledgementsAreNotAnswered(t *testing.T) {
	host := NewNegotiator(RoleHost)
	host.Start()
	reply, err := host.Receive(CmdWILL, OptBinary)
	require.NoError(t, err)
	assert.Empty(t, reply)
	reply, err = host.Receive(CmdDO, OptBinary)
	require.NoError(t, err)
	assert.Empty(t, reply)
	// repeated agreement is also silent
	reply, err = host.Receive(CmdDO, OptBinary)
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestNegotiation_RefusesUnsupported(t *testing.T) {
	client := NewNegotiator(RoleClient)
	reply, err := client.Receive(CmdDO, 31)
	require.NoError(t, err)
	assert.Equal(t, []byte{CmdIAC, CmdWONT, 31}, reply)

	reply, err = client.Receive(CmdWILL, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{CmdIAC, CmdDONT, 1}, reply)
}

func TestNegotiation_RefusedBinaryNeverCompletes(t *testing.T) {
	host := NewNegotiator(RoleHost)
	host.Start()
	_, err := host.Receive(CmdWONT, OptBinary)
	var negErr *domain.NegotiationError
	require.ErrorAs(t, err, &negErr)
	assert.Equal(t, "BINARY", negErr.Option)
	assert.False(t, host.Done())

	client := NewNegotiator(RoleClient)
	_, err = client.Receive(CmdDONT, OptEOR)
	require.ErrorAs(t, err, &negErr)
	assert.False(t, client.Done())
}

func TestNegotiation_CompletesWithoutTerminalType(t *testing.T) {
	host := NewNegotiator(RoleHost)
	host.Start()
	for _, c := range [][2]byte{
		{CmdWONT, OptTTYPE},
		{CmdWILL, OptEOR}, {CmdDO, OptEOR},
		{CmdWILL, OptBinary}, {CmdDO, OptBinary},
	} {
		_, err := host.Receive(c[0], c[1])
		require.NoError(t, err)
	}
	assert.True(t, host.Done())
	assert.Empty(t, host.PeerTerminalType())
}

func TestNegotiation_ClientWithoutTerminalTypeRequest(t *testing.T) {
	client := NewNegotiator(RoleClient)
	for _, c := range [][2]byte{
		{CmdDO, OptEOR}, {CmdWILL, OptEOR},
		{CmdDO, OptBinary}, {CmdWILL, OptBinary},
	} {
		_, err := client.Receive(c[0], c[1])
		require.NoError(t, err)
	}
	assert.True(t, client.Done())
}

func TestNegotiation_ClientWaitsForRequestedTerminalType(t *testing.T) {
	client := NewNegotiator(RoleClient, WithTerminalType("IBM-3278-2-E"))
	for _, c := range [][2]byte{
		{CmdDO, OptTTYPE},
		{CmdDO, OptEOR}, {CmdWILL, OptEOR},
		{CmdDO, OptBinary}, {CmdWILL, OptBinary},
	} {
		_, err := client.Receive(c[0], c[1])
		require.NoError(t, err)
	}
	assert.False(t, client.Done())

	reply, err := client.ReceiveSub(OptTTYPE, []byte{TTypeSEND})
	require.NoError(t, err)
	assert.Equal(t, subnegotiation(OptTTYPE, append([]byte{TTypeIS}, "IBM-3278-2-E"...)), reply)
	assert.True(t, client.Done())
}

func TestNegotiation_Budget(t *testing.T) {
	client := NewNegotiator(RoleClient, WithBudget(3))
	for i := 0; i < 3; i++ {
		_, err := client.Receive(CmdDO, 99)
		require.NoError(t, err)
	}
	_, err := client.Receive(CmdDO, 99)
	assert.ErrorIs(t, err, domain.ErrNegotiationBudget)
}
