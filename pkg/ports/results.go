package ports

import (
	"context"
	"time"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// ResultStore persists workflow run results by run ID.
type ResultStore interface {
	// Save stores the result under its RunID, replacing any previous copy.
	Save(ctx context.Context, result *domain.Result) error

	// Load returns domain.ErrResultNotFound for unknown run IDs.
	Load(ctx context.Context, runID string) (*domain.Result, error)

	// Delete is a no-op for unknown run IDs.
	Delete(ctx context.Context, runID string) error

	// List returns the stored run IDs.
	List(ctx context.Context) ([]string, error)
}

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes work across processes, such as two replicas running the
// same workflow against one host.
type Locker interface {
	// Lock blocks until the lock for key is held or ctx ends.
	// The lock expires after ttl even if never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
