package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// RunResultStoreContract verifies that a ResultStore implementation honours
// the interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405.000000000")

	sample := func(id string) *domain.Result {
		started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
		return &domain.Result{
			RunID:      id,
			Workflow:   "loan-balance",
			Success:    false,
			FailedStep: "check",
			Code:       domain.CodeAssertionFailed,
			Message:    "borrower_name not_empty",
			Data:       map[string]string{"borrower_name": "JANE Q BORROWER"},
			Log: []domain.LogEntry{
				{Timestamp: started, Step: "sign-on", Severity: domain.SeverityInfo, Message: "navigate completed"},
			},
			Started:  started,
			Finished: started.Add(2 * time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		res := sample(runID)
		require.NoError(t, store.Save(ctx, res), "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, res.Workflow, loaded.Workflow)
		assert.Equal(t, res.Code, loaded.Code)
		assert.Equal(t, res.FailedStep, loaded.FailedStep)
		assert.Equal(t, "JANE Q BORROWER", loaded.Data["borrower_name"])
		require.Len(t, loaded.Log, 1)
		assert.Equal(t, "sign-on", loaded.Log[0].Step)
		assert.True(t, res.Started.Equal(loaded.Started))
	})

	t.Run("Load Isolation", func(t *testing.T) {
		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		loaded.Data["borrower_name"] = "CHANGED"

		again, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "JANE Q BORROWER", again.Data["borrower_name"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Empty Run ID", func(t *testing.T) {
		assert.Error(t, store.Save(ctx, sample("")))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sample(runID)))
		require.NoError(t, store.Delete(ctx, runID), "Delete should not return error")

		_, err := store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrResultNotFound, "Load after Delete should return ErrResultNotFound")
		assert.NoError(t, store.Delete(ctx, runID), "Delete of a missing run is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.Save(ctx, sample(id1)))
		require.NoError(t, store.Save(ctx, sample(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
