package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/ports"
	"github.com/aretw0/greenscreen/pkg/results/file"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunResultStoreContract(t, file.NewStore(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(filepath.Join(dir, "nested"))
	ctx := context.Background()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "missing directory lists as empty")

	require.NoError(t, store.Save(ctx, &domain.Result{RunID: "run-1", Workflow: "wf", Code: domain.CodeOK}))
	data, err := os.ReadFile(filepath.Join(dir, "nested", "run-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"workflow": "wf"`)

	assert.Error(t, store.Save(ctx, &domain.Result{RunID: "../escape"}))
}
