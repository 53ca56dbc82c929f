package telnet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"syscall"
	"time"

	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/aretw0/greenscreen/pkg/domain"
)

// Conn carries records over a negotiated byte stream.
// Reads and writes may run concurrently with each other but not with themselves.
type Conn struct {
	raw    net.Conn
	r      *bufio.Reader
	logger *slog.Logger

	readTimeout  time.Duration
	writeTimeout time.Duration

	// Records and partial data that arrived while negotiating.
	pending [][]byte
	partial []byte
}

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithLogger sets the connection logger.
func WithLogger(logger *slog.Logger) ConnOption {
	return func(c *Conn) {
		c.logger = logger
	}
}

// WithReadTimeout bounds every blocking read. Zero disables the bound.
func WithReadTimeout(d time.Duration) ConnOption {
	return func(c *Conn) {
		c.readTimeout = d
	}
}

// WithWriteTimeout bounds every write. Zero disables the bound.
func WithWriteTimeout(d time.Duration) ConnOption {
	return func(c *Conn) {
		c.writeTimeout = d
	}
}

// NewConn wraps an established network connection.
func NewConn(raw net.Conn, opts ...ConnOption) *Conn {
	c := &Conn{
		raw:          raw,
		r:            bufio.NewReader(raw),
		logger:       logging.NewNop(),
		writeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetReadTimeout changes the bound applied to subsequent reads.
func (c *Conn) SetReadTimeout(d time.Duration) { c.readTimeout = d }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.raw.Close() }

// Negotiate runs the option exchange until the negotiator reports completion.
// Record data the peer sends early is kept for the first ReadRecord.
func (c *Conn) Negotiate(ctx context.Context, n *Negotiator) error {
	if out := n.Start(); len(out) > 0 {
		if err := c.write(ctx, out); err != nil {
			return err
		}
	}

	stop, err := c.armRead(ctx)
	if err != nil {
		return err
	}
	defer stop()

	for !n.Done() {
		tok, err := nextToken(c.r)
		if err != nil {
			return c.classify(ctx, err)
		}
		var reply []byte
		switch tok.kind {
		case tokOption:
			c.logger.Debug("telnet recv", "role", n.Role(), "cmd", CommandName(tok.cmd), "opt", OptionName(tok.opt))
			reply, err = n.Receive(tok.cmd, tok.opt)
		case tokSub:
			c.logger.Debug("telnet recv subnegotiation", "role", n.Role(), "opt", OptionName(tok.opt))
			reply, err = n.ReceiveSub(tok.opt, tok.payload)
		case tokData:
			c.partial = append(c.partial, tok.data)
		case tokEOR:
			c.pending = append(c.pending, c.partial)
			c.partial = nil
		}
		if err != nil {
			return err
		}
		if len(reply) > 0 {
			if err := c.write(ctx, reply); err != nil {
				return err
			}
		}
	}
	c.logger.Debug("telnet negotiation complete", "role", n.Role(), "peer_terminal", n.PeerTerminalType())
	return nil
}

// ReadRecord returns the next unescaped record.
// Option commands arriving between or inside records are discarded.
func (c *Conn) ReadRecord(ctx context.Context) ([]byte, error) {
	if len(c.pending) > 0 {
		rec := c.pending[0]
		c.pending = c.pending[1:]
		return rec, nil
	}

	stop, err := c.armRead(ctx)
	if err != nil {
		return nil, err
	}
	defer stop()

	for {
		tok, err := nextToken(c.r)
		if err != nil {
			return nil, c.classify(ctx, err)
		}
		switch tok.kind {
		case tokData:
			c.partial = append(c.partial, tok.data)
		case tokEOR:
			rec := c.partial
			c.partial = nil
			if rec == nil {
				rec = []byte{}
			}
			return rec, nil
		case tokOption:
			c.logger.Debug("telnet discard", "cmd", CommandName(tok.cmd), "opt", OptionName(tok.opt))
		case tokSub:
			c.logger.Debug("telnet discard subnegotiation", "opt", OptionName(tok.opt))
		}
	}
}

// WriteRecord escapes and terminates a record and writes it.
func (c *Conn) WriteRecord(ctx context.Context, record []byte) error {
	return c.write(ctx, EncodeRecord(record))
}

func (c *Conn) write(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return c.classify(ctx, err)
	}
	deadline := time.Time{}
	if c.writeTimeout > 0 {
		deadline = time.Now().Add(c.writeTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := c.raw.SetWriteDeadline(deadline); err != nil {
		return c.classify(ctx, err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.raw.SetWriteDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := c.raw.Write(p); err != nil {
		return c.classify(ctx, err)
	}
	return nil
}

// armRead applies the read timeout and makes ctx cancellation interrupt a blocked read.
func (c *Conn) armRead(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, c.classify(ctx, err)
	}
	deadline := time.Time{}
	if c.readTimeout > 0 {
		deadline = time.Now().Add(c.readTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := c.raw.SetReadDeadline(deadline); err != nil {
		return nil, c.classify(ctx, err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.raw.SetReadDeadline(time.Unix(1, 0))
	})
	return func() { stop() }, nil
}

// classify maps low-level failures onto the domain's transport sentinels.
func (c *Conn) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.Canceled) {
			return domain.ErrCancelled
		}
		return fmt.Errorf("%w: %w", domain.ErrResponseTimeout, ctxErr)
	}
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", domain.ErrResponseTimeout, err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed), errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE), errors.Is(err, io.ErrClosedPipe):
		return fmt.Errorf("%w: %w", domain.ErrPeerDisconnected, err)
	}
	return fmt.Errorf("telnet: %w", err)
}
