package telnet

import (
	"fmt"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// Role selects which side of the negotiation a Negotiator plays.
type Role int

const (
	// RoleClient answers the host's requests and never opens negotiation.
	RoleClient Role = iota
	// RoleHost opens negotiation and requests the terminal type.
	RoleHost
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "client"
}

// DefaultBudget is the number of option commands accepted before giving up.
const DefaultBudget = 64

// optionState tracks one option in both directions.
// Local is our side (WILL/WONT), remote is the peer's side (DO/DONT).
type optionState struct {
	supportLocal  bool
	supportRemote bool
	local         bool
	remote        bool
	pendingLocal  bool // we sent WILL and await DO/DONT
	pendingRemote bool // we sent DO and await WILL/WONT
}

type ttypePhase int

const (
	ttypeIdle      ttypePhase = iota // never offered, or refused
	ttypeRequested                   // host sent SEND / client agreed and awaits SEND
	ttypeAnswered
)

// Negotiator is the option state machine shared by host and client.
// It is not safe for concurrent use.
type Negotiator struct {
	role         Role
	terminalType string
	budget       int
	received     int
	options      map[byte]*optionState
	ttype        ttypePhase
	peerTerminal string
}

// NegotiatorOption configures a Negotiator.
type NegotiatorOption func(*Negotiator)

// WithTerminalType sets the type a client reports when asked.
func WithTerminalType(tt string) NegotiatorOption {
	return func(n *Negotiator) {
		n.terminalType = tt
	}
}

// WithBudget bounds the number of option commands accepted from the peer.
func WithBudget(max int) NegotiatorOption {
	return func(n *Negotiator) {
		n.budget = max
	}
}

// NewNegotiator creates a negotiator for the given role.
func NewNegotiator(role Role, opts ...NegotiatorOption) *Negotiator {
	n := &Negotiator{
		role:         role,
		terminalType: domain.DefaultTerminalType,
		budget:       DefaultBudget,
		options: map[byte]*optionState{
			OptBinary: {supportLocal: true, supportRemote: true},
			OptEOR:    {supportLocal: true, supportRemote: true},
			OptTTYPE: {
				supportLocal:  role == RoleClient,
				supportRemote: role == RoleHost,
			},
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Role returns the negotiator's role.
func (n *Negotiator) Role() Role { return n.role }

// PeerTerminalType is the terminal type a client reported to the host.
func (n *Negotiator) PeerTerminalType() string { return n.peerTerminal }

// Start returns the opening commands. Clients are passive and return nil.
func (n *Negotiator) Start() []byte {
	if n.role != RoleHost {
		return nil
	}
	var out []byte
	out = append(out, n.ask(OptTTYPE)...)
	out = append(out, n.ask(OptEOR)...)
	out = append(out, n.offer(OptEOR)...)
	out = append(out, n.ask(OptBinary)...)
	out = append(out, n.offer(OptBinary)...)
	return out
}

func (n *Negotiator) ask(opt byte) []byte {
	st := n.options[opt]
	st.pendingRemote = true
	return command(CmdDO, opt)
}

func (n *Negotiator) offer(opt byte) []byte {
	st := n.options[opt]
	st.pendingLocal = true
	return command(CmdWILL, opt)
}

func (n *Negotiator) state(opt byte) *optionState {
	st, ok := n.options[opt]
	if !ok {
		st = &optionState{}
		n.options[opt] = st
	}
	return st
}

func required(opt byte) bool {
	return opt == OptBinary || opt == OptEOR
}

// Receive processes one DO/DONT/WILL/WONT from the peer and returns the reply bytes.
// Acknowledgements of our own requests produce no reply.
func (n *Negotiator) Receive(cmd, opt byte) ([]byte, error) {
	n.received++
	if n.received > n.budget {
		return nil, fmt.Errorf("%w after %d commands", domain.ErrNegotiationBudget, n.budget)
	}

	st := n.state(opt)
	switch cmd {
	case CmdWILL:
		switch {
		case !st.supportRemote:
			return command(CmdDONT, opt), nil
		case st.remote:
			return nil, nil
		case st.pendingRemote:
			st.pendingRemote = false
			st.remote = true
			return n.afterRemoteEnabled(opt), nil
		default:
			st.remote = true
			return append(command(CmdDO, opt), n.afterRemoteEnabled(opt)...), nil
		}

	case CmdWONT:
		was := st.remote
		st.pendingRemote = false
		st.remote = false
		if required(opt) {
			return nil, &domain.NegotiationError{Option: OptionName(opt), Reason: "peer refused WILL"}
		}
		if opt == OptTTYPE {
			n.ttype = ttypeIdle
		}
		if was {
			return command(CmdDONT, opt), nil
		}
		return nil, nil

	case CmdDO:
		switch {
		case !st.supportLocal:
			return command(CmdWONT, opt), nil
		case st.local:
			return nil, nil
		case st.pendingLocal:
			st.pendingLocal = false
			st.local = true
			n.afterLocalEnabled(opt)
			return nil, nil
		default:
			st.local = true
			n.afterLocalEnabled(opt)
			return command(CmdWILL, opt), nil
		}

	case CmdDONT:
		was := st.local
		st.pendingLocal = false
		st.local = false
		if required(opt) {
			return nil, &domain.NegotiationError{Option: OptionName(opt), Reason: "peer refused DO"}
		}
		if opt == OptTTYPE {
			n.ttype = ttypeIdle
		}
		if was {
			return command(CmdWONT, opt), nil
		}
		return nil, nil
	}
	return nil, &domain.NegotiationError{Option: OptionName(opt), Reason: fmt.Sprintf("unexpected command %s", CommandName(cmd))}
}

// afterRemoteEnabled asks a client for its terminal type once it agrees to send one.
func (n *Negotiator) afterRemoteEnabled(opt byte) []byte {
	if opt != OptTTYPE || n.role != RoleHost {
		return nil
	}
	n.ttype = ttypeRequested
	return subnegotiation(OptTTYPE, []byte{TTypeSEND})
}

// afterLocalEnabled notes that a client has agreed to report its terminal type
// and must wait for the host's request.
func (n *Negotiator) afterLocalEnabled(opt byte) {
	if opt == OptTTYPE && n.role == RoleClient {
		n.ttype = ttypeRequested
	}
}

// ReceiveSub processes a subnegotiation payload and returns the reply bytes.
func (n *Negotiator) ReceiveSub(opt byte, payload []byte) ([]byte, error) {
	if opt != OptTTYPE || len(payload) == 0 {
		return nil, nil
	}
	switch {
	case n.role == RoleClient && payload[0] == TTypeSEND:
		n.ttype = ttypeAnswered
		return subnegotiation(OptTTYPE, append([]byte{TTypeIS}, n.terminalType...)), nil
	case n.role == RoleHost && payload[0] == TTypeIS:
		n.peerTerminal = string(payload[1:])
		n.ttype = ttypeAnswered
	}
	return nil, nil
}

// Done reports whether binary and end-of-record are agreed in both directions
// and no terminal-type exchange is outstanding.
func (n *Negotiator) Done() bool {
	for _, opt := range []byte{OptBinary, OptEOR} {
		st := n.options[opt]
		if !st.local || !st.remote {
			return false
		}
	}
	if n.role == RoleHost && n.options[OptTTYPE].pendingRemote {
		return false
	}
	return n.ttype != ttypeRequested
}
