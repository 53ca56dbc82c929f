package memory_test

import (
	"testing"

	"github.com/aretw0/greenscreen/pkg/ports"
	"github.com/aretw0/greenscreen/pkg/results/memory"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunResultStoreContract(t, memory.NewStore())
}
