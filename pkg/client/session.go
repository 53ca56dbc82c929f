package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/aretw0/greenscreen/pkg/datastream"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/screen"
	"github.com/aretw0/greenscreen/pkg/telnet"
)

// Terminal is what the workflow engine drives: a current screen and a way to
// submit input that replaces it.
type Terminal interface {
	// Screen returns the current buffer. Callers may fill fields in place
	// before submitting.
	Screen() *screen.Buffer
	// Submit sends the attention key with the given field writes and waits for
	// the next screen.
	Submit(ctx context.Context, aid byte, writes []datastream.FieldWrite) error
	Close() error
}

// Session is a live terminal connection in the client role.
type Session struct {
	conn   *telnet.Conn
	buf    *screen.Buffer
	peer   string
	logger *slog.Logger
}

// SessionOption configures Dial.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	logger *slog.Logger
	dialer *net.Dialer
}

// WithSessionLogger sets the logger used by the session and its connection.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// Dial connects to the host, negotiates in the client role and reads the
// initial screen. Connect, negotiation and first-screen failures carry the
// step names "connect", "negotiate" and "initial-screen" respectively.
func Dial(ctx context.Context, params domain.ConnectionParams, opts ...SessionOption) (*Session, error) {
	params = params.WithDefaults()
	cfg := sessionConfig{logger: logging.NewNop(), dialer: &net.Dialer{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	raw, err := connect(ctx, cfg.dialer, params)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseConnect, Err: err}
	}

	conn := telnet.NewConn(raw,
		telnet.WithLogger(cfg.logger),
		telnet.WithReadTimeout(params.ResponseTimeout),
	)
	s := &Session{conn: conn, buf: screen.NewBuffer(), peer: params.Addr(), logger: cfg.logger}

	neg := telnet.NewNegotiator(telnet.RoleClient, telnet.WithTerminalType(params.TerminalID()))
	if err := conn.Negotiate(ctx, neg); err != nil {
		_ = conn.Close()
		return nil, &PhaseError{Phase: PhaseNegotiate, Err: err}
	}
	if err := s.read(ctx); err != nil {
		_ = conn.Close()
		return nil, &PhaseError{Phase: PhaseInitialScreen, Err: err}
	}
	cfg.logger.Debug("session established", "host", s.peer, "terminal", params.TerminalID())
	return s, nil
}

func connect(ctx context.Context, d *net.Dialer, params domain.ConnectionParams) (net.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, params.ConnectTimeout)
	defer cancel()

	raw, err := d.DialContext(dialCtx, "tcp", params.Addr())
	if err != nil {
		return nil, dialError(ctx, dialCtx, err)
	}
	if !params.TLS.Enabled {
		return raw, nil
	}

	tlsCfg, err := clientTLS(params)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	tc := tls.Client(raw, tlsCfg)
	if err := tc.HandshakeContext(dialCtx); err != nil {
		_ = raw.Close()
		return nil, dialError(ctx, dialCtx, err)
	}
	return tc, nil
}

func dialError(parent, dialCtx context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("%w: %v", domain.ErrCancelled, err)
	}
	var ne net.Error
	if errors.Is(dialCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrConnectTimeout, err)
	}
	return fmt.Errorf("connect: %w", err)
}

func clientTLS(params domain.ConnectionParams) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         params.TLS.ServerName,
		InsecureSkipVerify: params.TLS.InsecureSkipVerify, //nolint:gosec // opt-in for test hosts
	}
	if cfg.ServerName == "" {
		cfg.ServerName = params.Host
	}
	if params.TLS.CAFile != "" {
		pem, err := os.ReadFile(params.TLS.CAFile)
		if err != nil {
			return nil, &domain.ConfigError{Source: "tls", Problems: []string{err.Error()}}
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, &domain.ConfigError{Source: "tls", Problems: []string{"no certificates in " + params.TLS.CAFile}}
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}

// Screen returns the current buffer.
func (s *Session) Screen() *screen.Buffer { return s.buf }

// Peer returns the host address the session dialed.
func (s *Session) Peer() string { return s.peer }

// Submit sends input and waits for the host's next screen.
func (s *Session) Submit(ctx context.Context, aid byte, writes []datastream.FieldWrite) error {
	cursor := s.buf.Cursor()
	if n := len(writes); n > 0 {
		last := writes[n-1]
		cursor = last.Address + len([]rune(last.Value))
	}
	rec := datastream.EncodeInput(datastream.Input{AID: aid, Cursor: cursor % domain.BufferSize, Fields: writes})
	s.logger.Debug("submit", "key", datastream.AIDName(aid), "fields", len(writes))
	if err := s.conn.WriteRecord(ctx, rec); err != nil {
		return err
	}
	return s.read(ctx)
}

func (s *Session) read(ctx context.Context) error {
	rec, err := s.conn.ReadRecord(ctx)
	if err != nil {
		return err
	}
	buf, err := datastream.DecodeScreen(rec, s.buf)
	if err != nil {
		return err
	}
	s.buf = buf
	return nil
}

// Close drops the connection.
func (s *Session) Close() error { return s.conn.Close() }

// Phase names the run stages that precede the first workflow step.
type Phase string

const (
	PhaseConnect       Phase = "connect"
	PhaseNegotiate     Phase = "negotiate"
	PhaseInitialScreen Phase = "initial-screen"
)

// PhaseError wraps a failure that happened before the first step.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string { return fmt.Sprintf("%s: %v", e.Phase, e.Err) }

func (e *PhaseError) Unwrap() error { return e.Err }
