// Package testutils holds helpers shared by tests that need a live simulator.
package testutils

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/greenscreen/pkg/host"
)

// ServeLoopback serves srv on an ephemeral loopback port and stops it, waiting
// for every session to end, when the test finishes.
func ServeLoopback(t *testing.T, srv *host.Server) *net.TCPAddr {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "Failed to listen on loopback")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done, "Simulator did not stop cleanly")
	})
	return ln.Addr().(*net.TCPAddr)
}

// WriteFile writes content to name inside a per-test directory and returns
// the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	return path
}
