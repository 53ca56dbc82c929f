package host

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/aretw0/greenscreen/pkg/datastream"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/session"
	"github.com/aretw0/greenscreen/pkg/telnet"
	"golang.org/x/time/rate"
)

// Default server limits.
const (
	DefaultIdleTimeout        = 15 * time.Minute
	DefaultNegotiationTimeout = 10 * time.Second
)

// Server accepts terminal connections and runs one session per connection.
type Server struct {
	navigator *Navigator
	registry  *session.Registry
	logger    *slog.Logger
	hooks     domain.HostHooks

	limiter            *rate.Limiter
	idleTimeout        time.Duration
	negotiationTimeout time.Duration
	tlsConfig          *tls.Config

	wg sync.WaitGroup
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.HostHooks) Option {
	return func(s *Server) {
		s.hooks = s.hooks.Join(hooks)
	}
}

// WithRegistry shares a session registry, e.g. with the admin API.
func WithRegistry(r *session.Registry) Option {
	return func(s *Server) {
		s.registry = r
	}
}

// WithAcceptRate limits new connections per second. Excess connections are closed.
func WithAcceptRate(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
		}
	}
}

// WithIdleTimeout ends sessions that send nothing for d. Zero disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.idleTimeout = d
	}
}

// WithNegotiationTimeout bounds the option exchange of each connection.
func WithNegotiationTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.negotiationTimeout = d
	}
}

// WithTLSConfig serves over TLS.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

// NewServer creates a server driven by the navigator.
func NewServer(nav *Navigator, opts ...Option) *Server {
	s := &Server{
		navigator:          nav,
		logger:             logging.NewNop(),
		idleTimeout:        DefaultIdleTimeout,
		negotiationTimeout: DefaultNegotiationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = session.NewRegistry(session.WithLogger(s.logger))
	}
	return s
}

// Registry exposes the live session registry.
func (s *Server) Registry() *session.Registry { return s.registry }

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then waits for
// every session to end. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.wg.Wait()

	s.logger.Info("host listening", "addr", ln.Addr().String(), "tls", s.tlsConfig != nil)
	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("host stopping", "active", s.registry.Len())
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		if s.limiter != nil && !s.limiter.Allow() {
			s.logger.Warn("connection rejected: accept rate exceeded", "remote", raw.RemoteAddr().String())
			_ = raw.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, raw)
		}()
	}
}

func (s *Server) handle(ctx context.Context, raw net.Conn) {
	defer raw.Close()
	remote := raw.RemoteAddr().String()

	h, err := s.registry.Open(remote)
	if err != nil {
		s.logger.Warn("connection rejected", "remote", remote, "err", err)
		return
	}
	defer h.Close()

	logger := s.logger.With("session_id", h.ID(), "remote", remote)
	conn := telnet.NewConn(raw, telnet.WithLogger(logger))
	state := domain.NewSessionState(h.ID(), s.navigator.InitialScreen())
	state.RemoteAddr = remote

	if s.hooks.OnSessionStart != nil {
		s.hooks.OnSessionStart(ctx, &domain.SessionEvent{Timestamp: time.Now(), SessionID: h.ID(), RemoteAddr: remote})
	}
	logger.Info("session started")

	err = s.converse(ctx, conn, h, state, logger)

	if s.hooks.OnSessionEnd != nil {
		s.hooks.OnSessionEnd(ctx, &domain.SessionEvent{
			Timestamp:    time.Now(),
			SessionID:    h.ID(),
			RemoteAddr:   remote,
			TerminalType: state.TerminalType,
			Turns:        state.Turns,
			Duration:     time.Since(state.Started),
			Err:          err,
		})
	}
	switch domain.CodeOf(err) {
	case domain.CodeOK, domain.CodePeerDisconnected, domain.CodeCancelled:
		logger.Info("session ended", "turns", state.Turns, "screen", state.CurrentScreen)
	case domain.CodeResponseTimeout:
		logger.Info("session ended: idle timeout", "turns", state.Turns)
	default:
		logger.Warn("session failed", "turns", state.Turns, "code", domain.CodeOf(err), "err", err)
	}
}

func (s *Server) converse(ctx context.Context, conn *telnet.Conn, h *session.Handle, state *domain.SessionState, logger *slog.Logger) error {
	neg := telnet.NewNegotiator(telnet.RoleHost)
	negCtx, cancel := context.WithTimeout(ctx, s.negotiationTimeout)
	err := conn.Negotiate(negCtx, neg)
	cancel()
	if err != nil {
		return fmt.Errorf("negotiate: %w", err)
	}
	state.TerminalType = neg.PeerTerminalType()
	h.SetTerminalType(state.TerminalType)
	h.Update(state.CurrentScreen, state.Turns)
	logger.Debug("negotiated", "terminal_type", state.TerminalType)

	conn.SetReadTimeout(s.idleTimeout)
	if err := s.paint(ctx, conn, state, ""); err != nil {
		return err
	}

	for {
		rec, err := conn.ReadRecord(ctx)
		if err != nil {
			return err
		}
		in, err := datastream.DecodeInput(rec)
		if err != nil {
			return err
		}

		def, ok := s.navigator.Catalog().Screen(state.CurrentScreen)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownScreen, state.CurrentScreen)
		}
		submitted, dropped := collect(def, in)
		if len(dropped) > 0 {
			logger.Debug("dropped writes outside input fields", "addresses", dropped)
		}

		out := s.navigator.Navigate(state, in.Key(), submitted)
		s.navigator.Apply(state, out)
		h.Update(state.CurrentScreen, state.Turns)
		s.emitTransition(ctx, state, out)

		if err := s.paint(ctx, conn, state, out.Error); err != nil {
			return err
		}
	}
}

func (s *Server) paint(ctx context.Context, conn *telnet.Conn, state *domain.SessionState, errText string) error {
	def, ok := s.navigator.Catalog().Screen(state.CurrentScreen)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownScreen, state.CurrentScreen)
	}
	if s.hooks.OnScreenEnter != nil {
		s.hooks.OnScreenEnter(ctx, &domain.ScreenEvent{
			Timestamp: time.Now(),
			SessionID: state.ID,
			ScreenID:  def.ID,
			Error:     errText,
		})
	}
	return conn.WriteRecord(ctx, Render(def, state, errText))
}

func (s *Server) emitTransition(ctx context.Context, state *domain.SessionState, out Outcome) {
	ev := &domain.TransitionEvent{
		Timestamp: time.Now(),
		SessionID: state.ID,
		From:      out.From,
		To:        out.Target,
		Key:       out.Key,
		Error:     out.Error,
	}
	if out.Rule != nil {
		ev.Validation = out.Rule.Validation
	}
	s.logger.Debug("transition", "session_id", state.ID, "from", ev.From, "to", ev.To, "key", ev.Key, "message", ev.Error)
	if s.hooks.OnTransition != nil {
		s.hooks.OnTransition(ctx, ev)
	}
	if ev.Validation != "" && ev.Error != "" && s.hooks.OnValidationFailed != nil {
		s.hooks.OnValidationFailed(ctx, ev)
	}
}
