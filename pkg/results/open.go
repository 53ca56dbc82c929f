package results

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/greenscreen/pkg/ports"
	"github.com/aretw0/greenscreen/pkg/results/file"
	"github.com/aretw0/greenscreen/pkg/results/memory"
	"github.com/aretw0/greenscreen/pkg/results/middleware"
	"github.com/aretw0/greenscreen/pkg/results/redis"
)

// Config selects and decorates a result store.
type Config struct {
	// Location is "memory", a redis:// or rediss:// URL, or a directory
	// (optionally prefixed with file:). Empty means the default directory.
	Location string
	// TTL applies to Redis-backed results.
	TTL time.Duration
	// Mask lists key patterns whose values are masked before storage.
	Mask []string
	// EncryptionKey is a hex-encoded AES-256 key. Empty disables encryption.
	EncryptionKey string
}

// Store is an opened result store and the resources behind it.
type Store struct {
	ports.ResultStore
	closer io.Closer
	// Locker is set when the backend can coordinate runs across processes.
	Locker ports.Locker
}

// Close releases backend connections.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Open builds the store described by cfg.
func Open(cfg Config) (*Store, error) {
	out := &Store{}
	var base ports.ResultStore

	loc := strings.TrimSpace(cfg.Location)
	switch {
	case loc == "memory":
		base = memory.NewStore()
	case strings.HasPrefix(loc, "redis://"), strings.HasPrefix(loc, "rediss://"):
		rs, err := redis.New(loc, redis.WithTTL(cfg.TTL))
		if err != nil {
			return nil, err
		}
		base = rs
		out.closer = rs
		out.Locker = redis.NewLocker(rs.Client(), redis.DefaultPrefix)
	default:
		base = file.NewStore(strings.TrimPrefix(loc, "file:"))
	}

	var mws []middleware.Middleware
	if len(cfg.Mask) > 0 {
		mw, err := middleware.NewMaskMiddleware(cfg.Mask)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern: %w", err)
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encryption key must be hex: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	out.ResultStore = middleware.Chain(base, mws...)
	return out, nil
}
