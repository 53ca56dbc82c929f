package cli

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterrupt_RecordsSignalAndCancels(t *testing.T) {
	ctx, in := NotifyInterrupt(context.Background())
	defer in.Stop()
	assert.Nil(t, in.Signal())
	assert.Equal(t, 0, in.ExitCode())

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
	assert.Equal(t, syscall.SIGTERM, in.Signal())
	assert.Equal(t, 143, in.ExitCode())
}

func TestInterrupt_InterruptExitCode(t *testing.T) {
	ctx, in := NotifyInterrupt(context.Background())
	defer in.Stop()
	in.ch <- os.Interrupt
	<-ctx.Done()
	assert.Equal(t, os.Interrupt, in.Signal())
	assert.Equal(t, 130, in.ExitCode())
}

func TestInterrupt_StopWithoutSignal(t *testing.T) {
	ctx, in := NotifyInterrupt(context.Background())
	in.Stop()
	<-ctx.Done()
	assert.Nil(t, in.Signal())
	assert.Equal(t, 0, in.ExitCode())
}
