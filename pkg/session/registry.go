package session

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/google/uuid"
)

// ErrRegistryFull is returned by Open when the session limit is reached.
var ErrRegistryFull = errors.New("session limit reached")

// Snapshot is a point-in-time view of one live session.
type Snapshot struct {
	ID           string    `json:"id"`
	RemoteAddr   string    `json:"remote_addr"`
	TerminalType string    `json:"terminal_type,omitempty"`
	Screen       string    `json:"screen"`
	Turns        int       `json:"turns"`
	Started      time.Time `json:"started"`
	LastActivity time.Time `json:"last_activity"`
}

// Registry holds snapshots of live sessions. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Snapshot
	limit    int
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Registry.
type Option func(*Registry)

// WithLimit caps the number of concurrent sessions. Zero means unlimited.
func WithLimit(n int) Option {
	return func(r *Registry) {
		r.limit = n
	}
}

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*Snapshot),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open registers a new session and returns its handle.
func (r *Registry) Open(remoteAddr string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limit > 0 && len(r.sessions) >= r.limit {
		return nil, ErrRegistryFull
	}
	now := r.now()
	snap := &Snapshot{
		ID:           uuid.NewString(),
		RemoteAddr:   remoteAddr,
		Started:      now,
		LastActivity: now,
	}
	r.sessions[snap.ID] = snap
	r.logger.Debug("session registered", "session_id", snap.ID, "remote", remoteAddr, "active", len(r.sessions))
	return &Handle{id: snap.ID, registry: r}, nil
}

// Get returns a copy of one session's snapshot.
func (r *Registry) Get(id string) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.sessions[id]
	if !ok {
		return Snapshot{}, false
	}
	return *snap, true
}

// List returns copies of all snapshots, oldest first.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	out := make([]Snapshot, 0, len(r.sessions))
	for _, snap := range r.sessions {
		out = append(out, *snap)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Snapshot) int {
		if c := a.Started.Compare(b.Started); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		return 1
	})
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) update(id string, fn func(*Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if snap, ok := r.sessions[id]; ok {
		fn(snap)
		snap.LastActivity = r.now()
	}
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	r.logger.Debug("session unregistered", "session_id", id, "active", len(r.sessions))
}

// Handle is the owning connection's reference to its registry entry.
type Handle struct {
	id       string
	registry *Registry
	once     sync.Once
}

// ID returns the session ID.
func (h *Handle) ID() string { return h.id }

// SetTerminalType records the negotiated terminal type.
func (h *Handle) SetTerminalType(tt string) {
	h.registry.update(h.id, func(s *Snapshot) { s.TerminalType = tt })
}

// Update records the current screen and turn count.
func (h *Handle) Update(screen string, turns int) {
	h.registry.update(h.id, func(s *Snapshot) {
		s.Screen = screen
		s.Turns = turns
	})
}

// Close removes the session from the registry. It is idempotent.
func (h *Handle) Close() {
	h.once.Do(func() { h.registry.remove(h.id) })
}
