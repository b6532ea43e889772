// Package interrupt provides a one-way cancellation flag for in-flight
// cleaning runs.
//
// The flag is tripped by Cancel (typically from a signal handler installed
// via Install) and is never cleared. Long-running operations poll Canceled
// or Err between phases and unwind with their own cleanup when the flag is
// set, so the history file is never left half-rewritten.
package interrupt

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"

	"github.com/chazuruo/histwipe/internal/errors"
)

// exit is swapped out in tests.
var exit = os.Exit

// Flag is a one-way cancellation latch shared between the signal handler
// and the cleaning pipeline. The zero value is ready to use. Once tripped
// it stays tripped; Cancel is safe to call from any goroutine and any
// number of times.
type Flag struct {
	canceled atomic.Bool
}

// NewFlag returns a fresh, untripped flag.
func NewFlag() *Flag {
	return &Flag{}
}

// Cancel trips the flag. It never blocks and never resets.
func (f *Flag) Cancel() {
	f.canceled.Store(true)
}

// Canceled reports whether the flag has been tripped.
func (f *Flag) Canceled() bool {
	return f.canceled.Load()
}

// Err returns errors.ErrCanceled if the flag has been tripped, nil
// otherwise. It exists so poll sites can stay one-liners:
//
//	if err := flag.Err(); err != nil {
//	    return err
//	}
func (f *Flag) Err() error {
	if f.canceled.Load() {
		return errors.ErrCanceled
	}
	return nil
}

// Install registers handlers for SIGINT, SIGTERM and SIGHUP that trip the
// flag. The first signal cancels the run and lets it unwind through its
// normal cleanup; a second signal forces the process to exit immediately.
// The returned stop function releases the handlers.
func Install(f *Flag, logger *zap.Logger) (stop func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go watch(ch, f, logger)
	return func() {
		signal.Stop(ch)
		close(ch)
	}
}

func watch(ch <-chan os.Signal, f *Flag, logger *zap.Logger) {
	sig, ok := <-ch
	if !ok {
		return
	}
	logger.Warn("received signal, canceling run", zap.String("signal", sig.String()))
	f.Cancel()

	sig, ok = <-ch
	if !ok {
		return
	}
	logger.Error("received second signal, forcing exit", zap.String("signal", sig.String()))
	exit(1)
}
