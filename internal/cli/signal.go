package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Interrupt cancels a command's context on SIGINT or SIGTERM and keeps the
// signal so the command can report it and exit the way shells expect.
type Interrupt struct {
	cancel context.CancelFunc
	ch     chan os.Signal
	once   sync.Once

	mu  sync.Mutex
	sig os.Signal
}

// NotifyInterrupt derives a context that is cancelled when the process is interrupted.
// Call Stop when the command finishes.
func NotifyInterrupt(parent context.Context) (context.Context, *Interrupt) {
	ctx, cancel := context.WithCancel(parent)
	in := &Interrupt{cancel: cancel, ch: make(chan os.Signal, 1)}
	signal.Notify(in.ch, os.Interrupt, syscall.SIGTERM)
	go in.watch(ctx)
	return ctx, in
}

func (in *Interrupt) watch(ctx context.Context) {
	select {
	case sig := <-in.ch:
		in.mu.Lock()
		in.sig = sig
		in.mu.Unlock()
		in.cancel()
	case <-ctx.Done():
	}
	in.once.Do(func() { signal.Stop(in.ch) })
}

// Stop cancels the context and releases the signal handler.
func (in *Interrupt) Stop() {
	in.cancel()
	in.once.Do(func() { signal.Stop(in.ch) })
}

// Signal returns the signal that interrupted the command, or nil.
func (in *Interrupt) Signal() os.Signal {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.sig
}

// ExitCode is 128 plus the signal number once interrupted, 0 otherwise.
func (in *Interrupt) ExitCode() int {
	sig, ok := in.Signal().(syscall.Signal)
	if !ok {
		return 0
	}
	return 128 + int(sig)
}
