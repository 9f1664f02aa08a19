package gateway

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Default protocol timings
const (
	DefaultConnectTimeout  = 8 * time.Second
	DefaultReadTimeout     = 2 * time.Second
	DefaultResponseTimeout = 5 * time.Second
	DefaultMaxResends      = 3

	writeTimeout = 5 * time.Second
)

// Options tunes a gateway session.
type Options struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	ResponseTimeout time.Duration

	// MaxResends caps how often a request is re-sent after an unsolicited
	// push or wrong-method reply.
	MaxResends int
}

// DefaultOptions returns the protocol defaults.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:  DefaultConnectTimeout,
		ReadTimeout:     DefaultReadTimeout,
		ResponseTimeout: DefaultResponseTimeout,
		MaxResends:      DefaultMaxResends,
	}
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.ResponseTimeout <= 0 {
		o.ResponseTimeout = DefaultResponseTimeout
	}
	if o.MaxResends < 0 {
		o.MaxResends = 0
	}
	return o
}

// Conn is an open TCP session to one gateway.
//
// Call holds the session lock for a full send/receive/correlate cycle, so
// concurrent callers are serialized rather than interleaved on the stream.
type Conn struct {
	addr Address
	opts Options
	nc   net.Conn

	mu sync.Mutex

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Dial opens a session to addr.
func Dial(ctx context.Context, addr Address, opts Options) (*Conn, error) {
	opts = opts.withDefaults()

	d := net.Dialer{Timeout: opts.ConnectTimeout}
	nc, err := d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, addr, err)
	}

	log.Info().Str("addr", addr.String()).Msg("Gateway session opened")

	return &Conn{addr: addr, opts: opts, nc: nc}, nil
}

// Addr returns the gateway address of this session.
func (c *Conn) Addr() Address {
	return c.addr
}

// IsClosed reports whether Close has been called.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Close closes the session. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.nc.Close()
		log.Info().Str("addr", c.addr.String()).Msg("Gateway session closed")
	})
	return c.closeErr
}

// Call sends req and returns the reply that correlates with it. Unsolicited
// pushes and wrong-method replies trigger a resend of the same request, at
// most MaxResends times.
func (c *Conn) Call(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := c.call(ctx, req)
	observeCall(req.RequestMethod(), start, err)
	return resp, err
}

func (c *Conn) call(ctx context.Context, req Request) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	method := req.RequestMethod()

	for attempt := 0; attempt <= c.opts.MaxResends; attempt++ {
		if c.closed.Load() {
			return nil, ErrNotConnected
		}
		if attempt > 0 {
			resendsTotal.WithLabelValues(method).Inc()
			log.Debug().
				Int64("id", req.RequestID()).
				Str("method", method).
				Int("attempt", attempt).
				Msg("Resending gateway request")
		}

		if err := c.nc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return nil, fmt.Errorf("%w: set write deadline: %w", ErrConnection, err)
		}
		if err := Send(c.nc, req); err != nil {
			return nil, fmt.Errorf("%w: send %s: %w", ErrConnection, method, err)
		}

		frame, err := Receive(ctx, c.nc, c.opts.ReadTimeout, c.opts.ResponseTimeout)
		if err != nil {
			return nil, err
		}

		batch, err := Decode(frame)
		if err != nil {
			return nil, err
		}

		resp, v := correlate(req, batch)
		switch v {
		case verdictMatch:
			return resp, nil
		case verdictNone:
			return nil, fmt.Errorf("%w: %s id=%d among %d values", ErrCorrelation, method, req.RequestID(), len(batch))
		}
	}

	return nil, fmt.Errorf("%w: %s id=%d still unmatched after %d resends",
		ErrCorrelation, method, req.RequestID(), c.opts.MaxResends)
}

// Manager owns the single authoritative session. Connecting again supersedes
// and closes the previous session.
type Manager struct {
	opts Options

	mu      sync.RWMutex
	current *Conn
}

// NewManager creates a manager that dials with opts.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts.withDefaults()}
}

// Connect dials addr and makes it the current session. On failure the
// previous session, if any, stays current.
func (m *Manager) Connect(ctx context.Context, addr Address) (*Conn, error) {
	conn, err := Dial(ctx, addr, m.opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	old := m.current
	m.current = conn
	m.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			log.Warn().Err(err).Str("addr", old.Addr().String()).Msg("Failed to close superseded gateway session")
		}
	}
	return conn, nil
}

// Current returns the live session.
func (m *Manager) Current() (*Conn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.IsClosed() {
		return nil, ErrNotConnected
	}
	return m.current, nil
}

// Call issues req on the current session.
func (m *Manager) Call(ctx context.Context, req Request) (Response, error) {
	conn, err := m.Current()
	if err != nil {
		return nil, err
	}
	return conn.Call(ctx, req)
}

// IsConnected reports whether a live session exists.
func (m *Manager) IsConnected() bool {
	_, err := m.Current()
	return err == nil
}

// Close closes the current session. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	conn := m.current
	m.current = nil
	m.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}
